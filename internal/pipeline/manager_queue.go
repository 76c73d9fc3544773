package pipeline

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nycterent/thefilter/internal/logging"
	"github.com/nycterent/thefilter/internal/runs"
)

// queueStatuses are the resting states a queued run waits in. Processing
// and terminal states are never picked up directly; ResetProcessing rolls
// abandoned processing runs back first.
var queueStatuses = []runs.Status{
	runs.StatusGenerated,
	runs.StatusValidated,
	runs.StatusPublished,
}

// ProcessQueued drains every actionable run once and reports how many were
// driven. Runs are processed oldest first, across the configured number of
// workers; a failed run is counted and logged without stopping the drain.
func (m *Manager) ProcessQueued(ctx context.Context) (int, error) {
	reset, err := m.store.ResetProcessing(ctx)
	if err != nil {
		return 0, err
	}
	if reset > 0 {
		m.logger.Info("rolled back abandoned processing runs", logging.Int64("count", reset))
	}

	queued, err := m.store.List(ctx, queueStatuses...)
	if err != nil {
		return 0, err
	}
	if len(queued) == 0 {
		return 0, nil
	}
	slices.Reverse(queued)

	workers := m.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}

	var processed atomic.Int64
	var group errgroup.Group
	group.SetLimit(workers)
	for _, run := range queued {
		if ctx.Err() != nil {
			break
		}
		run := run // pre-go1.22 loopvar semantics: keep a per-iteration copy
		group.Go(func() error {
			if err := m.ProcessRun(ctx, run); err != nil {
				if ctx.Err() == nil {
					logging.WithContext(ctx, m.logger).Error("run processing failed",
						logging.Int64(logging.FieldRunID, run.ID),
						logging.String(logging.FieldOutcome, string(run.Status)),
						logging.Error(err),
					)
				}
			}
			processed.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return int(processed.Load()), err
	}
	return int(processed.Load()), ctx.Err()
}

// Run drains the queue, then keeps polling for new runs until the context
// is cancelled. This backs the process command's watch mode.
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := m.ProcessQueued(ctx); err != nil && ctx.Err() == nil {
			m.logger.Error("queue drain failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
