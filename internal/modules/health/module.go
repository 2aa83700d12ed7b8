package health

import (
	"terminal_bridge/internal/modules/health/service"
	trailingsvc "terminal_bridge/internal/modules/trailing/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			func(r *trailingsvc.Registry) service.JobCounter {
				return r
			},
			service.NewHandler,
		),
	)
}
