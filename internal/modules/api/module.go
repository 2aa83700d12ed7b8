package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"terminal_bridge/internal/modules/api/service"
	"terminal_bridge/internal/modules/config"
	terminalsvc "terminal_bridge/internal/modules/terminal/service"
	trailingsvc "terminal_bridge/internal/modules/trailing/service"
	"terminal_bridge/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			func(s *trailingsvc.Service) service.TrailingService {
				return s
			},
			func(c *terminalsvc.Client) service.Terminal {
				return c
			},
			service.NewHandler,
			service.NewRouter,
		),
		fx.Invoke(RunHTTP),
	)
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, router chi.Router) {
	addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("http api listening on %s", addr)
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
