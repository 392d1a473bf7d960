// Package telemetry records activation and deactivation outcomes so
// operators can see what the orchestrator has been doing and how long the
// gateway takes to do it. Recording is strictly best-effort and never fails
// the operation that produced the event.
package telemetry

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"conductor/pkg/logging"
)

// DefaultMaxEvents bounds the in-memory history when no cap is configured.
const DefaultMaxEvents = 1000

// Event is one recorded lifecycle outcome.
type Event struct {
	ID        string    `json:"id"`
	Server    string    `json:"server"`
	Reason    string    `json:"reason"`
	Success   bool      `json:"success"`
	LatencyMS float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Stats aggregates the recorded history. Average latency covers successful
// events with a measured latency only; failures usually report the timeout
// rather than real work.
type Stats struct {
	TotalEvents  int            `json:"total_events"`
	Successful   int            `json:"successful"`
	Failed       int            `json:"failed"`
	AvgLatencyMS float64        `json:"avg_latency_ms"`
	ServerCounts map[string]int `json:"server_counts"`
}

// Sink buffers events in memory up to a cap, dropping the oldest first, and
// optionally appends each event as one JSON line to a file. File trouble is
// logged once and then suppressed.
type Sink struct {
	mu         sync.Mutex
	events     []Event
	maxEvents  int
	filePath   string
	fileWarned bool
}

// NewSink returns a sink capped at maxEvents (DefaultMaxEvents when zero or
// negative). filePath may be empty to disable the file side channel.
func NewSink(maxEvents int, filePath string) *Sink {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &Sink{maxEvents: maxEvents, filePath: filePath}
}

// Millis converts a measured duration to the milliseconds stored on events.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Record stores the event, stamping ID and Timestamp when unset. The oldest
// events are dropped once the cap is reached.
func (s *Sink) Record(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
	path := s.filePath
	warned := s.fileWarned
	s.mu.Unlock()

	if path == "" {
		return
	}
	if err := appendLine(path, e); err != nil {
		if !warned {
			logging.Error("Telemetry", err, "Failed to append event to %s, suppressing further file errors", path)
		}
		s.mu.Lock()
		s.fileWarned = true
		s.mu.Unlock()
	}
}

// Stats summarizes the buffered history.
func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{ServerCounts: make(map[string]int)}
	var latencySum float64
	var latencyCount int
	for _, e := range s.events {
		st.TotalEvents++
		if e.Success {
			st.Successful++
			if e.LatencyMS > 0 {
				latencySum += e.LatencyMS
				latencyCount++
			}
		} else {
			st.Failed++
		}
		st.ServerCounts[e.Server]++
	}
	if latencyCount > 0 {
		st.AvgLatencyMS = latencySum / float64(latencyCount)
	}
	return st
}

// Recent returns up to n buffered events in chronological order, newest
// last. n <= 0 returns the whole buffer.
func (s *Sink) Recent(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.events) {
		n = len(s.events)
	}
	out := make([]Event, n)
	copy(out, s.events[len(s.events)-n:])
	return out
}

func appendLine(path string, e Event) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}
