// Package ui serves the form-based client for the thunderstorm prediction API.
package ui

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Predictor scores a feature vector through the inference API.
type Predictor interface {
	Predict(ctx context.Context, v domain.FeatureVector) (domain.Prediction, error)
}

// Server renders the form and forwards submissions to the API, one request
// per submission.
type Server struct {
	httpServer *http.Server
	api        Predictor
	logger     *slog.Logger
}

// NewServer creates the UI server with / and /healthz routes.
func NewServer(addr string, api Predictor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("ui server starting", "addr", s.httpServer.Addr)
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

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, idleView())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view := idleView()
		view.Error = "Could not read the submitted form."
		s.render(w, http.StatusBadRequest, view)
		return
	}

	vector, view, ok := parseForm(r.PostForm)
	if !ok {
		s.render(w, http.StatusUnprocessableEntity, view)
		return
	}

	prediction, err := s.api.Predict(r.Context(), vector)
	if err != nil {
		s.logger.Warn("prediction request failed", "error", err)
		view.Error = errorMessage(err)
		s.render(w, http.StatusOK, view)
		return
	}

	s.logger.Info("prediction rendered", "prediction", prediction.Label)
	view.Result = newResultView(vector, prediction)
	s.render(w, http.StatusOK, view)
}

func (s *Server) render(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
