package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/google/uuid"
)

const rootMessage = "Thunderstorm Prediction API is running"

// maxBodyBytes bounds the scoring request body.
const maxBodyBytes = 1 << 20

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.metrics.ValidationFailures.Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"detail": "Request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Could not read request body"})
		return
	}

	vector, verrs := decodeFeatures(body)
	if len(verrs) > 0 {
		s.metrics.ValidationFailures.Inc()
		s.logger.Debug("rejected scoring request", "errors", len(verrs), "request_id", requestID(r.Context()))
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Detail: verrs})
		return
	}

	start := s.clock.Now()
	prediction, err := s.scorer.PredictVector(r.Context(), vector)
	s.metrics.PredictionDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		s.metrics.InferenceErrors.Inc()
		s.logger.Error("prediction failed", "error", err, "request_id", requestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
		return
	}

	s.metrics.Predictions.WithLabelValues(strconv.Itoa(prediction.Label)).Inc()
	s.publish(r, vector, prediction)

	writeJSON(w, http.StatusOK, prediction)
}

// publish hands the prediction to the event publisher. Failures are logged and
// never affect the response.
func (s *Server) publish(r *http.Request, v domain.FeatureVector, p domain.Prediction) {
	if s.publisher == nil {
		return
	}
	event := domain.NewPredictionEvent(uuid.NewString(), s.scorer.ModelName(), v, p, s.clock.Now())
	if err := s.publisher.Publish(r.Context(), event); err != nil {
		s.metrics.EventPublishErrors.Inc()
		s.logger.Warn("publish prediction event failed", "error", err, "event_id", event.ID)
		return
	}
	s.metrics.EventsPublished.Inc()
}
