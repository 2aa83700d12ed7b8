package main

import (
	"context"

	"terminal_bridge/internal/modules/api"
	"terminal_bridge/internal/modules/config"
	"terminal_bridge/internal/modules/health"
	"terminal_bridge/internal/modules/terminal"
	"terminal_bridge/internal/modules/trailing"
	"terminal_bridge/pkg/logger"
	"terminal_bridge/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "terminal_bridge"

func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		terminal.Module(),
		health.Module(),
		trailing.Module(),
		api.Module(),

		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if !cfg.Tracing.Enabled {
				return nil
			}
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Tracing.Host,
				Port: cfg.Tracing.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
