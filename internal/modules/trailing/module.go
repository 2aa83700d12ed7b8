package trailing

import (
	"context"

	"terminal_bridge/internal/modules/config"
	healthsvc "terminal_bridge/internal/modules/health/service"
	terminalsvc "terminal_bridge/internal/modules/terminal/service"
	"terminal_bridge/internal/modules/trailing/service"
	"terminal_bridge/internal/notify"
	"terminal_bridge/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trailing",
		fx.Provide(
			service.NewRegistry,

			// терминальный клиент как гейтвей трейлинга
			func(c *terminalsvc.Client) service.Gateway {
				return c
			},

			// нотифайер: telegram если сконфигурирован, иначе лог
			func(cfg *config.Config) notify.Notifier {
				if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
					return notify.NewStdout()
				}
				t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
				if err != nil {
					logger.Warn("telegram notifier init failed, falling back to stdout: %v", err)
					return notify.NewStdout()
				}
				return t
			},

			service.NewService,

			func(
				cfg *config.Config,
				gw service.Gateway,
				jobs *service.Registry,
				n notify.Notifier,
				state *healthsvc.State,
			) *service.Worker {
				return service.NewWorker(gw, jobs, n, state, service.WorkerConfig{
					Interval:    cfg.TrailInterval,
					StopTimeout: cfg.TrailStopTimeout,
					MaxFailures: cfg.TrailMaxFailures,
				})
			},
		),

		// Запуск и остановка цикла привязаны к жизненному циклу процесса:
		// при падении старта любого модуля fx откатит уже запущенные хуки,
		// фоновый цикл не останется сиротой.
		fx.Invoke(func(lc fx.Lifecycle, w *service.Worker) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					w.Start()
					return nil
				},
				OnStop: func(_ context.Context) error {
					w.Stop()
					return nil
				},
			})
		}),
	)
}
