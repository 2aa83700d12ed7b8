package terminal

import (
	"terminal_bridge/internal/modules/config"
	"terminal_bridge/internal/modules/terminal/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("terminal",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(service.Config{
					BaseURL: cfg.Terminal.BaseURL,
					Token:   cfg.Terminal.Token,
					Timeout: cfg.Terminal.Timeout,
				})
			},
		),
	)
}
