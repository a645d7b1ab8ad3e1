package workflow

import (
	"context"
	"log/slog"
	"time"
)

// Ticker drives one recurring maintenance task on a fixed interval
// until its context is cancelled. Grounded on
// _examples/original_source/src/recurring_reminder.rs's single
// scheduled-task loop, translated from tokio::time::interval to
// time.Ticker in the teacher's plain-stdlib idiom (no cron/scheduler
// library appears anywhere in the retrieval pack).
type Ticker struct {
	Interval time.Duration
	Log      *slog.Logger
}

// Run invokes task once immediately and then every Interval until ctx
// is cancelled. A task error is logged and never stops the loop — a
// single bad tick must not take down recurring maintenance.
func (t *Ticker) Run(ctx context.Context, name string, task func(ctx context.Context) error) {
	logger := t.Log
	if logger == nil {
		logger = slog.Default()
	}

	tick := func() {
		if err := task(ctx); err != nil {
			logger.Warn("recurring task failed", "task", name, "error", err)
		}
	}

	tick()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
