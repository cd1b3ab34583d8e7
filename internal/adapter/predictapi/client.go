// Package predictapi calls the inference service's scoring endpoint.
package predictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
)

var (
	// ErrTimeout is returned when the API does not answer within the client timeout.
	ErrTimeout = errors.New("prediction request timed out")
	// ErrConnection is returned when the API cannot be reached.
	ErrConnection = errors.New("cannot connect to prediction API")
	// ErrStatus is matched by every *StatusError.
	ErrStatus = errors.New("prediction API returned an error status")
)

// StatusError reports a non-200 response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prediction API error: status %d: %s", e.Code, e.Body)
}

// Is makes errors.Is(err, ErrStatus) true for any StatusError.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Client posts feature vectors to the scoring endpoint. It never retries.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the given /predict URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Predict sends one scoring request.
func (c *Client) Predict(ctx context.Context, v domain.FeatureVector) (domain.Prediction, error) {
	payload, err := json.Marshal(v.Map())
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Prediction{}, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Prediction{}, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	var result domain.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if isTimeout(err) {
			return domain.Prediction{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return domain.Prediction{}, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("prediction received", "prediction", result.Label, "has_probability", result.HasProbability())
	return result, nil
}

// classify maps a transport error to ErrTimeout or ErrConnection.
func classify(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
