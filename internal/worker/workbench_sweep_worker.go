package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// WorkbenchSweeper evicts idle in-memory workbenches.
type WorkbenchSweeper interface {
	Sweep(idle time.Duration) int
	ActiveWorkbenches() int
}

// WorkbenchSweepWorker frees workbenches of shopkeepers who went away.
type WorkbenchSweepWorker struct {
	sweeper  WorkbenchSweeper
	idleTTL  time.Duration
	interval time.Duration
}

// NewWorkbenchSweepWorker constructs a WorkbenchSweepWorker.
func NewWorkbenchSweepWorker(sweeper WorkbenchSweeper, idleTTL, interval time.Duration) *WorkbenchSweepWorker {
	return &WorkbenchSweepWorker{
		sweeper:  sweeper,
		idleTTL:  idleTTL,
		interval: interval,
	}
}

// Start begins the sweep loop and listens for context cancellation.
func (w *WorkbenchSweepWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Dur("idle_ttl", w.idleTTL).Msg("Starting workbench sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Workbench sweep worker stopped")
			return
		}
	}
}

func (w *WorkbenchSweepWorker) run() int {
	evicted := w.sweeper.Sweep(w.idleTTL)
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Int("active", w.sweeper.ActiveWorkbenches()).Msg("Idle workbenches evicted")
	}
	return evicted
}
