package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/gateway"
)

func TestLedgerCommitAndGet(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	l.Commit(ActivationRecord{
		Server:      "redis",
		ActivatedAt: now,
		LastUsed:    now,
		Reason:      "manual",
		Tools:       []gateway.ToolDef{{Name: "get"}},
	})

	rec, ok := l.Get("redis")
	require.True(t, ok)
	assert.Equal(t, "manual", rec.Reason)

	// Mutating the returned copy must not leak into the ledger.
	rec.Reason = "tampered"
	rec.Tools[0].Name = "tampered"

	fresh, _ := l.Get("redis")
	assert.Equal(t, "manual", fresh.Reason)
	assert.Equal(t, "get", fresh.Tools[0].Name)

	_, ok = l.Get("ghost")
	assert.False(t, ok)
}

func TestLedgerRecordUse(t *testing.T) {
	l := NewLedger()
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.Commit(ActivationRecord{Server: "redis", ActivatedAt: t0, LastUsed: t0})

	assert.True(t, l.RecordUse("redis", t0.Add(time.Minute)))
	rec, _ := l.Get("redis")
	assert.EqualValues(t, 1, rec.UseCount)
	assert.Equal(t, t0.Add(time.Minute), rec.LastUsed)

	// Unknown servers are not created on use.
	assert.False(t, l.RecordUse("ghost", t0))
	assert.False(t, l.Has("ghost"))
}

func TestLedgerRemove(t *testing.T) {
	l := NewLedger()
	l.Commit(ActivationRecord{Server: "redis"})

	assert.True(t, l.Remove("redis"))
	assert.False(t, l.Has("redis"))
	assert.False(t, l.Remove("redis"), "second remove reports nothing to do")

	// A removed record must not come back through use signals.
	assert.False(t, l.RecordUse("redis", time.Now()))
	assert.Zero(t, l.Len())
}

func TestLedgerActiveSorted(t *testing.T) {
	l := NewLedger()
	for _, name := range []string{"postgres", "context7", "redis"} {
		l.Commit(ActivationRecord{Server: name})
	}

	assert.Equal(t, []string{"context7", "postgres", "redis"}, l.Active())
	assert.Equal(t, 3, l.Len())
}

func TestLedgerSnapshot(t *testing.T) {
	l := NewLedger()
	l.Commit(ActivationRecord{Server: "redis", Reason: "manual"})
	l.Commit(ActivationRecord{Server: "context7", Reason: "dependency of redis"})

	snap := l.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "context7", snap[0].Server)
	assert.Equal(t, "redis", snap[1].Server)

	// Snapshot copies are detached from the ledger.
	snap[1].Reason = "tampered"
	rec, _ := l.Get("redis")
	assert.Equal(t, "manual", rec.Reason)
}
