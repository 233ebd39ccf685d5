package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu     sync.Mutex
	calls  int
	idle   time.Duration
	result int
}

func (s *fakeSweeper) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.idle = idle
	return s.result
}

func (s *fakeSweeper) ActiveWorkbenches() int { return 0 }

func (s *fakeSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *fakePruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func (p *fakePruner) Cutoffs() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.cutoffs...)
}

func TestWorkbenchSweepWorker_Run(t *testing.T) {
	s := &fakeSweeper{result: 2}
	w := NewWorkbenchSweepWorker(s, 2*time.Hour, time.Minute)

	assert.Equal(t, 2, w.run())
	assert.Equal(t, 2*time.Hour, s.idle)
}

func TestWorkbenchSweepWorker_StartStops(t *testing.T) {
	s := &fakeSweeper{}
	w := NewWorkbenchSweepWorker(s, time.Hour, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestHistoryPruneWorker_Cutoff(t *testing.T) {
	p := &fakePruner{}
	w := NewHistoryPruneWorker(p, 720*time.Hour, time.Hour)
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	w.run(context.Background())

	cutoffs := p.Cutoffs()
	require.Len(t, cutoffs, 1)
	assert.Equal(t, now.Add(-720*time.Hour), cutoffs[0])
}

func TestHistoryPruneWorker_ErrorDoesNotStop(t *testing.T) {
	p := &fakePruner{err: errors.New("db down")}
	w := NewHistoryPruneWorker(p, time.Hour, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool { return len(p.Cutoffs()) >= 2 }, time.Second, 5*time.Millisecond)
}
