package orchestrator

import (
	"sort"
	"sync"
	"time"

	"conductor/internal/gateway"
)

// ActivationRecord tracks one active server. LastUsed starts at the
// activation time, so a server that never sees use still ages toward the
// idle threshold instead of living forever.
type ActivationRecord struct {
	Server      string            `json:"server"`
	ActivatedAt time.Time         `json:"activated_at"`
	LastUsed    time.Time         `json:"last_used"`
	UseCount    int64             `json:"use_count"`
	Reason      string            `json:"reason,omitempty"`
	Tools       []gateway.ToolDef `json:"tools,omitempty"`
}

// Ledger is the in-memory record of which servers the orchestrator believes
// are active. A server is Active exactly when a record exists; there are no
// other states. One mutex guards every access and no gateway traffic ever
// happens under it.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]*ActivationRecord
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*ActivationRecord)}
}

// Get returns a copy of the record for server.
func (l *Ledger) Get(server string) (ActivationRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[server]
	if !ok {
		return ActivationRecord{}, false
	}
	return copyRecord(rec), true
}

// Has reports whether server has a record.
func (l *Ledger) Has(server string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.records[server]
	return ok
}

// Commit stores rec, replacing any existing record for the same server.
func (l *Ledger) Commit(rec ActivationRecord) {
	stored := copyRecord(&rec)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[rec.Server] = &stored
}

// Remove drops the record for server, reporting whether one existed.
func (l *Ledger) Remove(server string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[server]
	delete(l.records, server)
	return ok
}

// RecordUse bumps LastUsed and UseCount iff a record exists. A use signal
// for an inactive server is dropped; it never resurrects a record.
func (l *Ledger) RecordUse(server string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[server]
	if !ok {
		return false
	}
	rec.LastUsed = now
	rec.UseCount++
	return true
}

// Active returns the active server names sorted.
func (l *Ledger) Active() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.records))
	for name := range l.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns copies of all records sorted by server name.
func (l *Ledger) Snapshot() []ActivationRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ActivationRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Server < out[j].Server })
	return out
}

// Len returns the number of active records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func copyRecord(rec *ActivationRecord) ActivationRecord {
	out := *rec
	if rec.Tools != nil {
		out.Tools = make([]gateway.ToolDef, len(rec.Tools))
		copy(out.Tools, rec.Tools)
	}
	return out
}
