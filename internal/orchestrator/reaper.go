package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"conductor/pkg/logging"
)

// Reaper periodically reclaims idle servers so forgotten activations do not
// pin tool context forever. Zero active usage is not an excuse: activation
// time counts as first use, so an untouched server ages out too.
type Reaper struct {
	orch      *Orchestrator
	interval  time.Duration
	threshold time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReaper builds a reaper polling every interval and reclaiming servers
// idle beyond threshold. Non-positive interval defaults to one minute;
// non-positive threshold defers to the orchestrator's configured default.
func NewReaper(orch *Orchestrator, interval, threshold time.Duration) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		orch:      orch,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the reap loop. The loop exits when ctx is cancelled or
// Stop is called. Starting twice is a no-op.
func (r *Reaper) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	logging.Info("Reaper", "Idle reaper started, polling every %s", r.interval)
	go r.loop(ctx)
}

// Stop halts the loop and waits for any in-flight sweep to finish, so a
// caller can rely on no further gateway traffic after it returns.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.started.Load() {
		<-r.doneCh
	}
}

func (r *Reaper) loop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			report := r.orch.ReclaimIdle(ctx, r.threshold)
			if len(report.Reclaimed) > 0 || len(report.Failed) > 0 {
				logging.Info("Reaper", "Sweep reclaimed %d idle servers, %d failures",
					len(report.Reclaimed), len(report.Failed))
			}
		}
	}
}
