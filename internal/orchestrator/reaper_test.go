package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaperReclaimsIdleServers(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	f.orch.now = time.Now

	f.orch.Activate(context.Background(), []string{"redis"}, "manual", false)

	r := NewReaper(f.orch, 20*time.Millisecond, 40*time.Millisecond)
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool {
		return !f.orch.ledger.Has("redis")
	}, 2*time.Second, 10*time.Millisecond, "idle server should be swept")

	assert.Equal(t, 1, f.gw.DisableCalls("redis"))
	assert.False(t, f.gw.IsEnabled("redis"))
}

func TestReaperSparesBusyServers(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	f.orch.now = time.Now

	f.orch.Activate(context.Background(), []string{"redis"}, "manual", false)

	r := NewReaper(f.orch, 10*time.Millisecond, 10*time.Second)
	r.Start(context.Background())

	time.Sleep(60 * time.Millisecond)
	r.Stop()

	assert.True(t, f.orch.ledger.Has("redis"), "server within the threshold survives sweeps")
	assert.Zero(t, f.gw.DisableCalls("redis"))
}

func TestReaperStopIsIdempotent(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	f.orch.now = time.Now

	r := NewReaper(f.orch, 10*time.Millisecond, time.Minute)
	r.Start(context.Background())

	r.Stop()
	r.Stop()
}

func TestReaperStopWithoutStart(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	r := NewReaper(f.orch, 10*time.Millisecond, time.Minute)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start must not block")
	}
}

func TestReaperStartTwice(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	f.orch.now = time.Now

	r := NewReaper(f.orch, 10*time.Millisecond, time.Minute)
	r.Start(context.Background())
	r.Start(context.Background())
	r.Stop()
}

func TestReaperStopsOnContextCancel(t *testing.T) {
	f := newFixture(t, orchestratorYAML)
	f.orch.now = time.Now

	ctx, cancel := context.WithCancel(context.Background())
	r := NewReaper(f.orch, 10*time.Millisecond, time.Minute)
	r.Start(ctx)

	cancel()

	select {
	case <-r.doneCh:
	case <-time.After(time.Second):
		t.Fatal("loop must exit when the context is cancelled")
	}
}
