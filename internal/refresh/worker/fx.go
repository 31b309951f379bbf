package worker

import (
	"context"

	"github.com/staypoint/staypoint/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh.worker",
	fx.Provide(func(cfg config.Config) Config {
		return Config{PollInterval: cfg.Refresh.PollInterval}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, cfg config.Config, worker *Worker) {
	if !cfg.Refresh.WorkerOn {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(context.Background())
			return nil
		},
	})
}
