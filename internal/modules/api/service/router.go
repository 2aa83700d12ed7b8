package service

import (
	healthsvc "terminal_bridge/internal/modules/health/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает все маршруты сервиса на одном порту:
// торговые ручки, трейлинг и health-пробы.
func NewRouter(h *Handler, health *healthsvc.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(accessLog)
	r.Use(traceRequest)

	r.Post("/apply_trailing_stop", h.ApplyTrailingStop)
	r.Delete("/cancel_trailing_stop/{ticket}", h.CancelTrailingStop)
	r.Get("/list_trailing_stop_jobs", h.ListTrailingStopJobs)

	r.Post("/order", h.SendOrder)
	r.Post("/close_position", h.ClosePosition)
	r.Post("/close_all_positions", h.CloseAllPositions)
	r.Post("/modify_sl_tp", h.ModifySLTP)
	r.Post("/get_positions", h.GetPositions)
	r.Get("/positions_total", h.PositionsTotal)

	r.Get("/livez", health.Livez)
	r.Get("/readyz", health.Readyz)
	r.Get("/healthz", health.Healthz)

	return r
}
