// internal/workflow/intake/handler.go
package intake

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"whitelist-bot/internal/common/logger"
	"whitelist-bot/internal/common/metrics"
	"whitelist-bot/internal/common/validation"
	"whitelist-bot/internal/models"
)

// Handler accepts application payloads over HTTP and hands them to
// the poster through a bounded queue. Acceptance is acknowledged
// before the message is posted; downstream failures are the poster's
// problem and the caller is never informed of them.
type Handler struct {
	config    *Config
	validator *validation.IntakeValidator
	queue     chan Task
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		validator: validation.NewIntakeValidator(),
		queue:     make(chan Task, config.QueueSize),
		logger:    log.WithFields(map[string]interface{}{"component": "intake"}),
	}
}

// Queue exposes the hand-off channel to the poster.
func (h *Handler) Queue() <-chan Task {
	return h.queue
}

// Register mounts the intake route on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/new_application", h.HandleNewApplication)
}

func (h *Handler) HandleNewApplication(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		metrics.IntakeRequests.WithLabelValues("rejected").Inc()
		h.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	if stdErr := h.validator.Validate(body); stdErr != nil {
		metrics.IntakeRequests.WithLabelValues("rejected").Inc()
		h.logger.Warn("rejected inbound payload", map[string]interface{}{
			"reason": stdErr.Details,
		})
		h.writeError(w, http.StatusBadRequest, stdErr.Message)
		return
	}

	var app models.Application
	if err := json.Unmarshal(body, &app); err != nil {
		// Schema validation already passed, so this indicates a type
		// mismatch the schema tolerated; reject it the same way.
		metrics.IntakeRequests.WithLabelValues("rejected").Inc()
		h.writeError(w, http.StatusBadRequest, "malformed application payload")
		return
	}

	task := Task{
		ID:         uuid.NewString(),
		App:        app,
		ReceivedAt: time.Now().UTC(),
	}

	select {
	case h.queue <- task:
	default:
		metrics.IntakeRequests.WithLabelValues("queue_full").Inc()
		h.logger.Error("intake queue full, dropping payload", map[string]interface{}{
			"taskId": task.ID,
		})
		h.writeError(w, http.StatusServiceUnavailable, "intake queue full")
		return
	}

	metrics.IntakeRequests.WithLabelValues("accepted").Inc()
	h.logger.Info("accepted application payload", map[string]interface{}{
		"taskId":      task.ID,
		"applicantId": app.ApplicantID,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(acceptedResponse{Status: "success"})
}

func (h *Handler) writeError(w http.ResponseWriter, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Status: "error", Reason: reason})
}
