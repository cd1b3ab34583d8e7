package ui

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-inference-service/internal/adapter/predictapi"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
)

// Messages shown for each kind of API failure.
const (
	msgConnection = "Cannot connect to the API. Start the inference service first:\n\ngo run ./cmd/inference"
	msgTimeout    = "Request timed out. The API server might be overloaded."
	msgStatusFmt  = "API returned status %d. Make sure the inference service is running."
)

type fieldView struct {
	Name  string
	Label string
	Help  string
	Value string
	Error string
}

type inputRow struct {
	Label string
	Value string
}

type resultView struct {
	Storm       bool
	Icon        string
	Title       string
	Probability string
	Inputs      []inputRow
}

type pageView struct {
	Fields []fieldView
	Result *resultView
	Error  string
}

// idleView is the empty form with every field at 0.0.
func idleView() pageView {
	fields := make([]fieldView, domain.FeatureCount)
	for i, f := range domain.Features {
		fields[i] = fieldView{Name: f.Field, Label: f.Label, Help: f.Help, Value: "0.0"}
	}
	return pageView{Fields: fields}
}

// parseForm reads the eight inputs. The returned view echoes the submitted
// values and carries per-field errors; ok is false if any field is invalid.
func parseForm(form url.Values) (domain.FeatureVector, pageView, bool) {
	view := idleView()
	var v domain.FeatureVector
	ok := true

	for i, f := range domain.Features {
		raw := strings.TrimSpace(form.Get(f.Field))
		view.Fields[i].Value = raw

		x, err := strconv.ParseFloat(raw, 64)
		switch {
		case raw == "" || err != nil:
			view.Fields[i].Error = "Enter a number."
			ok = false
		case math.IsNaN(x) || math.IsInf(x, 0):
			view.Fields[i].Error = "Enter a finite number."
			ok = false
		default:
			v[i] = x
		}
	}
	return v, view, ok
}

func newResultView(v domain.FeatureVector, p domain.Prediction) *resultView {
	r := &resultView{
		Storm:  p.Label == domain.LabelThunderstorm,
		Icon:   "☀️",
		Title:  "No Thunderstorm",
		Inputs: make([]inputRow, domain.FeatureCount),
	}
	if r.Storm {
		r.Icon = "⛈️"
		r.Title = "Thunderstorm Likely"
	}
	if p.Probability != nil {
		r.Probability = fmt.Sprintf("%.1f%%", *p.Probability*100)
	}
	for i, f := range domain.Features {
		r.Inputs[i] = inputRow{Label: f.Label, Value: strconv.FormatFloat(v[i], 'f', -1, 64)}
	}
	return r
}

// errorMessage turns a client error into the text shown to the user.
func errorMessage(err error) string {
	var statusErr *predictapi.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf(msgStatusFmt, statusErr.Code)
	case errors.Is(err, predictapi.ErrTimeout):
		return msgTimeout
	case errors.Is(err, predictapi.ErrConnection):
		return msgConnection
	default:
		return "Unexpected error: " + err.Error()
	}
}
