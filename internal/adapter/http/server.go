package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scorer produces predictions from feature vectors.
type Scorer interface {
	sharedobs.ReadinessChecker
	ModelName() string
	PredictVector(ctx context.Context, v domain.FeatureVector) (domain.Prediction, error)
}

// EventPublisher forwards scored requests to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.PredictionEvent) error
}

// Server exposes the scoring API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	scorer     Scorer
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewServer creates an HTTP server with /, /predict, /healthz, /readyz, and
// /metrics routes. publisher may be nil to disable event publishing.
func NewServer(addr string, scorer Scorer, publisher EventPublisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		scorer:    scorer,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(scorer))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = s.withRequestID(s.withAccessLog(s.withRecovery(mux)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// writeJSON encodes v before committing the status. Unlike sharedobs.WriteJSON,
// a value that cannot be encoded becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n')) //nolint:errcheck // client may have gone away
}
