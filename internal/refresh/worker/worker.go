// Package worker runs refresh cycles on a fixed interval.
package worker

import (
	"context"
	"time"

	"github.com/staypoint/staypoint/internal/events"
	"github.com/staypoint/staypoint/internal/refresh/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Service *service.Service
	Outbox  *events.Outbox
	Config  Config `optional:"true"`
}

type Worker struct {
	log    *zap.Logger
	svc    *service.Service
	outbox *events.Outbox
	cfg    Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:    p.Log.Named("refresh.worker"),
		svc:    p.Service,
		outbox: p.Outbox,
		cfg:    p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("refresh cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single refresh cycle and publishes its summary event.
func (w *Worker) RunOnce(ctx context.Context) error {
	cycleCtx, cancel := context.WithTimeout(ctx, w.cfg.CycleTimeout)
	defer cancel()

	report, err := w.svc.RunCycle(cycleCtx)
	if err != nil {
		return err
	}

	payload := events.CycleCompletedPayload{
		StartedAt:  report.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: report.FinishedAt.UTC().Format(time.RFC3339),
		Units:      len(report.Units),
		Saved:      report.Saved,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
	}
	if err := w.outbox.Publish(ctx, events.Event{
		Type:      events.EventCycleCompleted,
		Payload:   payload.ToMap(),
		DedupeKey: events.EventCycleCompleted + ":" + payload.StartedAt,
	}); err != nil {
		w.log.Warn("cycle event publish failed", zap.Error(err))
	}
	return nil
}
