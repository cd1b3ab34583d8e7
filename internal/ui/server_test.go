package ui_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/storm-inference-service/internal/adapter/predictapi"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAPI struct {
	calls      int
	got        domain.FeatureVector
	prediction domain.Prediction
	err        error
}

func (m *mockAPI) Predict(_ context.Context, v domain.FeatureVector) (domain.Prediction, error) {
	m.calls++
	m.got = v
	return m.prediction, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stormForm() url.Values {
	form := url.Values{}
	values := []string{"300", "35", "50", "0.2", "1.5", "800", "10", "0.9"}
	for i, f := range domain.FieldNames() {
		form.Set(f, values[i])
	}
	return form
}

func submit(t *testing.T, srv http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.ServeHTTP(rec, req)
	return rec
}

func probability(p float64) *float64 { return &p }

// --- tests ---

func TestForm_Idle(t *testing.T) {
	srv := ui.NewServer(":0", &mockAPI{}, discardLogger())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	for _, f := range domain.Features {
		assert.Contains(t, body, fmt.Sprintf(`name="%s" value="0.0"`, f.Field))
		assert.Contains(t, body, f.Label)
	}
	assert.Contains(t, body, `class="spinner"`)
	assert.NotContains(t, body, `id="result"`)
	assert.NotContains(t, body, `id="error"`)
}

func TestSubmit_StormResult(t *testing.T) {
	api := &mockAPI{prediction: domain.Prediction{Label: 1, Probability: probability(0.9961)}}
	srv := ui.NewServer(":0", api, discardLogger())

	rec := submit(t, srv, stormForm())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, domain.FeatureVector{300, 35, 50, 0.2, 1.5, 800, 10, 0.9}, api.got)

	body := rec.Body.String()
	assert.Contains(t, body, "result-storm")
	assert.Contains(t, body, "Thunderstorm Likely")
	assert.Contains(t, body, "99.6%")
	assert.Contains(t, body, "<details>")
	assert.Contains(t, body, "<td>Convective Potential</td><td>800</td>")
	assert.Contains(t, body, "<td>Temperature &amp; Pressure</td><td>10</td>")
	assert.Contains(t, body, `name="SWEAT_index" value="300"`)
}

func TestSubmit_ClearResultWithoutProbability(t *testing.T) {
	api := &mockAPI{prediction: domain.Prediction{Label: 0}}
	srv := ui.NewServer(":0", api, discardLogger())

	rec := submit(t, srv, stormForm())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "result-clear")
	assert.Contains(t, body, "No Thunderstorm</")
	assert.NotContains(t, body, "Probability of thunderstorm")
}

func TestSubmit_ErrorPresentations(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "non-200",
			err:  &predictapi.StatusError{Code: http.StatusInternalServerError},
			want: "API returned status 500. Make sure the inference service is running.",
		},
		{
			name: "connection failure",
			err:  fmt.Errorf("%w: dial tcp: connection refused", predictapi.ErrConnection),
			want: "Cannot connect to the API.",
		},
		{
			name: "timeout",
			err:  fmt.Errorf("%w: deadline exceeded", predictapi.ErrTimeout),
			want: "Request timed out. The API server might be overloaded.",
		},
		{
			name: "other",
			err:  errors.New("decode response: bad"),
			want: "Unexpected error: decode response: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{err: tt.err}
			srv := ui.NewServer(":0", api, discardLogger())

			rec := submit(t, srv, stormForm())

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, `id="error"`)
			assert.Contains(t, body, tt.want)
			assert.NotContains(t, body, `id="result"`)
			assert.Equal(t, 1, api.calls, "no retry")
		})
	}
}

func TestSubmit_InvalidNumberSkipsAPI(t *testing.T) {
	api := &mockAPI{}
	srv := ui.NewServer(":0", api, discardLogger())
	form := stormForm()
	form.Set("K_index", "lots")
	form.Del("Moisture_Indices")

	rec := submit(t, srv, form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, api.calls)
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "Enter a number."))
	assert.Contains(t, body, `name="K_index" value="lots"`)
}

// TestSubmit_AgainstAPIServer wires the real client to a stub API to check the
// three failure kinds end to end.
func TestSubmit_AgainstAPIServer(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer api.Close()

		srv := ui.NewServer(":0", predictapi.NewClient(api.URL+"/predict", 5*time.Second, discardLogger()), discardLogger())
		rec := submit(t, srv, stormForm())
		assert.Contains(t, rec.Body.String(), "API returned status 422.")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		api := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer api.Close()
		defer close(release)

		srv := ui.NewServer(":0", predictapi.NewClient(api.URL+"/predict", 50*time.Millisecond, discardLogger()), discardLogger())
		rec := submit(t, srv, stormForm())
		assert.Contains(t, rec.Body.String(), "Request timed out.")
	})

	t.Run("success", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"prediction":1,"probability":0.5}`))
		}))
		defer api.Close()

		srv := ui.NewServer(":0", predictapi.NewClient(api.URL+"/predict", 5*time.Second, discardLogger()), discardLogger())
		rec := submit(t, srv, stormForm())
		assert.Contains(t, rec.Body.String(), "50.0%")
	})
}

func TestHealthz(t *testing.T) {
	srv := ui.NewServer(":0", &mockAPI{}, discardLogger())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
