package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"committee-notifier/internal/job"
	"committee-notifier/internal/logger"
	"committee-notifier/internal/middleware"
	"committee-notifier/internal/models"
)

// DebtRunner is the part of the debt job exposed over HTTP
type DebtRunner interface {
	Preview(ctx context.Context) (*models.DebtSummary, error)
	SendNow(ctx context.Context) (*job.SendResult, error)
}

// DebtHandler handles the manual send and preview endpoints
type DebtHandler struct {
	runner DebtRunner
}

func NewDebtHandler(runner DebtRunner) *DebtHandler {
	return &DebtHandler{runner: runner}
}

// Preview returns the current debt breakdown without sending anything
// GET /api/debts/preview
func (h *DebtHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.runner.Preview(ctx)
	if err != nil {
		logFailure(r, err, "Debt preview failed")
		writeError(w, http.StatusInternalServerError, "failed to get debt summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Send runs the full job immediately
// POST /api/debts/send
func (h *DebtHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.runner.SendNow(ctx)
	if err != nil {
		logFailure(r, err, "Manual debt send failed")
		writeError(w, http.StatusInternalServerError, "failed to send debt notices")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func logFailure(r *http.Request, err error, msg string) {
	log := logger.WithComponent("http")
	event := log.Error().Err(err).Str("request_id", middleware.GetRequestIDFromContext(r.Context()))
	if email, ok := middleware.GetEmailFromContext(r.Context()); ok {
		event = event.Str("caller", email)
	}
	event.Msg(msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
