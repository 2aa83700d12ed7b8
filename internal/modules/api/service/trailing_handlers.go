package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	trailingsvc "terminal_bridge/internal/modules/trailing/service"
	"terminal_bridge/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type applyTrailingRequest struct {
	PositionTicket   *int64   `json:"position_ticket"`
	TrailingDistance *float64 `json:"trailing_distance"`
}

// ApplyTrailingStop включает (или обновляет) трейлинг-стоп по позиции.
// POST /apply_trailing_stop
func (h *Handler) ApplyTrailingStop(w http.ResponseWriter, r *http.Request) {
	var req applyTrailingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PositionTicket == nil || req.TrailingDistance == nil {
		writeError(w, http.StatusBadRequest, "position_ticket and trailing_distance are required")
		return
	}

	err := h.trailing.Enable(r.Context(), *req.PositionTicket, *req.TrailingDistance)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Trailing stop enabled successfully for position. Worker will now monitor.",
		})
	case errors.Is(err, trailingsvc.ErrPositionNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Position with ticket %d not found.", *req.PositionTicket))
	case errors.Is(err, trailingsvc.ErrBadDistance):
		writeError(w, http.StatusBadRequest, "trailing_distance must be positive")
	default:
		logger.Error("apply_trailing_stop: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CancelTrailingStop снимает джоб.
// DELETE /cancel_trailing_stop/{ticket}
func (h *Handler) CancelTrailingStop(w http.ResponseWriter, r *http.Request) {
	ticket, err := strconv.ParseInt(chi.URLParam(r, "ticket"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ticket must be an integer")
		return
	}

	if err := h.trailing.Disable(ticket); err != nil {
		if errors.Is(err, trailingsvc.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("No active trailing stop job found for position %d", ticket))
			return
		}
		logger.Error("cancel_trailing_stop: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Trailing stop for position %d disabled successfully.", ticket),
	})
}

// ListTrailingStopJobs — все активные джобы воркера.
// GET /list_trailing_stop_jobs
func (h *Handler) ListTrailingStopJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active_jobs": h.trailing.List(),
	})
}
