package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// HistoryPruner deletes prediction runs older than a cutoff.
type HistoryPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryPruneWorker enforces the prediction history retention window.
type HistoryPruneWorker struct {
	pruner    HistoryPruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewHistoryPruneWorker constructs a HistoryPruneWorker.
func NewHistoryPruneWorker(pruner HistoryPruner, retention, interval time.Duration) *HistoryPruneWorker {
	return &HistoryPruneWorker{
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start prunes once immediately, then on every tick until ctx is done.
func (w *HistoryPruneWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("retention", w.retention).Msg("Starting history prune worker")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("History prune worker stopped")
			return
		}
	}
}

func (w *HistoryPruneWorker) run(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)

	start := time.Now()
	deleted, err := w.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to prune prediction history")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Dur("duration", time.Since(start)).Msg("Prediction history pruned")
	}
}
