package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"conductor/internal/dependency"
	"conductor/internal/gateway"
	"conductor/internal/matcher"
	"conductor/internal/profile"
	"conductor/internal/registry"
	"conductor/internal/telemetry"
	"conductor/pkg/logging"
	pkgstrings "conductor/pkg/strings"
)

const subsystem = "Orchestrator"

// Per-server outcome statuses.
const (
	StatusActivated     = "activated"
	StatusAlreadyActive = "already_active"
	StatusDeactivated   = "deactivated"
	StatusNotActive     = "not_active"
	StatusFailed        = "failed"
)

// ServerOutcome is the per-server result of a mutating operation. Partial
// success is normal: callers get one outcome per requested server instead
// of a single collapsed error.
type ServerOutcome struct {
	Server    string `json:"server"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	ToolCount int    `json:"tool_count,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// ActivationReport aggregates one Activate call.
type ActivationReport struct {
	Activated     []string        `json:"activated"`
	AlreadyActive []string        `json:"already_active,omitempty"`
	Failed        []string        `json:"failed,omitempty"`
	Outcomes      []ServerOutcome `json:"outcomes"`
	TotalTools    int             `json:"total_tools"`
}

func (r *ActivationReport) add(outcome ServerOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case StatusActivated:
		r.Activated = append(r.Activated, outcome.Server)
		r.TotalTools += outcome.ToolCount
	case StatusAlreadyActive:
		r.AlreadyActive = append(r.AlreadyActive, outcome.Server)
		r.TotalTools += outcome.ToolCount
	case StatusFailed:
		r.Failed = append(r.Failed, outcome.Server)
	}
}

// DeactivationReport aggregates one Deactivate call.
type DeactivationReport struct {
	Deactivated []string        `json:"deactivated"`
	NotActive   []string        `json:"not_active,omitempty"`
	Failed      []string        `json:"failed,omitempty"`
	Outcomes    []ServerOutcome `json:"outcomes"`
}

func (r *DeactivationReport) add(outcome ServerOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case StatusDeactivated:
		r.Deactivated = append(r.Deactivated, outcome.Server)
	case StatusNotActive:
		r.NotActive = append(r.NotActive, outcome.Server)
	case StatusFailed:
		r.Failed = append(r.Failed, outcome.Server)
	}
}

// ServerStatus describes one active server in a Status report.
type ServerStatus struct {
	Server      string    `json:"server"`
	ActivatedAt time.Time `json:"activated_at"`
	LastUsed    time.Time `json:"last_used"`
	UseCount    int64     `json:"use_count"`
	ToolCount   int       `json:"tool_count"`
	ActiveFor   string    `json:"active_for"`
	IdleFor     string    `json:"idle_for"`
	Reason      string    `json:"reason,omitempty"`
}

// StatusReport is a pure read of the ledger plus registry counts.
type StatusReport struct {
	Active         []ServerStatus `json:"active"`
	ActiveCount    int            `json:"active_count"`
	AvailableCount int            `json:"available_count"`
	TotalTools     int            `json:"total_tools"`
}

// SyncReport describes one reconciliation against gateway ground truth.
type SyncReport struct {
	Active  []string `json:"active"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Unknown []string `json:"unknown,omitempty"`
}

// ReclaimReport describes one idle sweep.
type ReclaimReport struct {
	Reclaimed []string        `json:"reclaimed"`
	Failed    []string        `json:"failed,omitempty"`
	Checked   int             `json:"checked"`
	Threshold string          `json:"threshold"`
	Outcomes  []ServerOutcome `json:"outcomes,omitempty"`
}

// ProfileActivationReport pairs the resolved profile with its activation.
type ProfileActivationReport struct {
	Profile    profile.Profile   `json:"profile"`
	Activation *ActivationReport `json:"activation"`
}

// TaskActivationReport describes an ActivateForTask run: either the profile
// shortcut or the suggestion path, plus the resulting activation.
type TaskActivationReport struct {
	Task        string                `json:"task"`
	ViaProfile  string                `json:"via_profile,omitempty"`
	Suggestions []matcher.MatchResult `json:"suggestions,omitempty"`
	Activation  *ActivationReport     `json:"activation"`
}

// Orchestrator owns the activation ledger and drives every lifecycle
// transition through the gateway. The gateway is ground truth; the ledger
// only mirrors it, which is why a failed enable never leaves a record and
// Sync exists at all.
type Orchestrator struct {
	registry  *registry.Registry
	gateway   gateway.Gateway
	telemetry *telemetry.Sink
	matcher   *matcher.Matcher

	ledger *Ledger

	// flight collapses concurrent activations of the same server into a
	// single gateway enable.
	flight singleflight.Group

	topK          int
	minConfidence float64
	idleThreshold time.Duration

	// now is a test seam for aging ledger records.
	now func() time.Time
}

// Config holds the orchestrator dependencies and tunables.
type Config struct {
	Registry  *registry.Registry
	Gateway   gateway.Gateway
	Telemetry *telemetry.Sink
	Matcher   *matcher.Matcher

	// TopK bounds suggestion lists (default 5).
	TopK int
	// MinConfidence is the default suggestion floor (default 0.3).
	MinConfidence float64
	// IdleThreshold is the default reclaim threshold (default 10m).
	IdleThreshold time.Duration
}

// New creates an orchestrator with an empty ledger.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		registry:      cfg.Registry,
		gateway:       cfg.Gateway,
		telemetry:     cfg.Telemetry,
		matcher:       cfg.Matcher,
		ledger:        NewLedger(),
		topK:          cfg.TopK,
		minConfidence: cfg.MinConfidence,
		idleThreshold: cfg.IdleThreshold,
		now:           time.Now,
	}
	if o.topK <= 0 {
		o.topK = 5
	}
	if o.minConfidence < 0 {
		o.minConfidence = 0
	}
	if o.idleThreshold <= 0 {
		o.idleThreshold = 10 * time.Minute
	}
	return o
}

// Activate enables the named servers through the gateway, committing a
// ledger record per success. Outcomes are per server; one failure never
// aborts the rest and nothing is rolled back. With autoResolveDeps, each
// server that ends up active pulls in its declared related servers, one
// level deep.
func (o *Orchestrator) Activate(ctx context.Context, servers []string, reason string, autoResolveDeps bool) *ActivationReport {
	report := &ActivationReport{Activated: []string{}}
	visited := make(map[string]bool, len(servers))

	for _, name := range servers {
		if visited[name] {
			continue
		}
		visited[name] = true

		outcome := o.activateOne(ctx, name, reason)
		report.add(outcome)
		if !autoResolveDeps || (outcome.Status != StatusActivated && outcome.Status != StatusAlreadyActive) {
			continue
		}

		for _, rel := range o.registry.RelatedOf(name) {
			if visited[rel] {
				continue
			}
			visited[rel] = true
			report.add(o.activateOne(ctx, rel, "dependency of "+name))
		}
	}
	return report
}

// flightResult distinguishes a record this call committed from one an
// earlier flight left behind.
type flightResult struct {
	rec   ActivationRecord
	fresh bool
}

// activateOne drives a single server to Active. Unknown servers fail
// without any gateway traffic. Losers of a concurrent activation race see
// the committed record on re-check and report already_active.
func (o *Orchestrator) activateOne(ctx context.Context, name, reason string) ServerOutcome {
	if _, known := o.registry.Get(name); !known {
		logging.Warn(subsystem, "Activation requested for unknown server %q", name)
		return ServerOutcome{
			Server: name,
			Status: StatusFailed,
			Error:  fmt.Sprintf("%s: %s", ErrUnknownServer, name),
			Reason: reason,
		}
	}

	if rec, ok := o.ledger.Get(name); ok {
		return ServerOutcome{
			Server:    name,
			Status:    StatusAlreadyActive,
			ToolCount: len(rec.Tools),
			Reason:    rec.Reason,
		}
	}

	v, err, _ := o.flight.Do(name, func() (interface{}, error) {
		// A concurrent activation may have committed while this call
		// waited its turn.
		if rec, ok := o.ledger.Get(name); ok {
			return flightResult{rec: rec}, nil
		}

		start := o.now()
		if err := o.gateway.Enable(ctx, name); err != nil {
			o.telemetry.Record(telemetry.Event{
				Server:    name,
				Reason:    reason,
				Success:   false,
				LatencyMS: telemetry.Millis(o.now().Sub(start)),
				Error:     err.Error(),
			})
			return nil, &ActivationError{Server: name, Diagnostic: err.Error()}
		}
		latency := o.now().Sub(start)

		tools, terr := o.gateway.ListTools(ctx, name)
		if terr != nil {
			logging.Warn(subsystem, "Listing tools for %s failed: %v", name, terr)
			tools = nil
		}

		now := o.now()
		rec := ActivationRecord{
			Server:      name,
			ActivatedAt: now,
			LastUsed:    now,
			Reason:      reason,
			Tools:       tools,
		}
		o.ledger.Commit(rec)
		o.telemetry.Record(telemetry.Event{
			Server:    name,
			Reason:    reason,
			Success:   true,
			LatencyMS: telemetry.Millis(latency),
		})
		logging.Info(subsystem, "Activated %s (%d tools): %s", name, len(tools), reason)
		return flightResult{rec: rec, fresh: true}, nil
	})
	if err != nil {
		logging.Warn(subsystem, "Activating %s failed: %v", name, err)
		return ServerOutcome{Server: name, Status: StatusFailed, Error: err.Error(), Reason: reason}
	}

	res := v.(flightResult)
	status := StatusActivated
	if !res.fresh {
		status = StatusAlreadyActive
	}
	return ServerOutcome{
		Server:    name,
		Status:    status,
		ToolCount: len(res.rec.Tools),
		Reason:    res.rec.Reason,
	}
}

// Deactivate disables the named servers. A nil or empty list means every
// active server. Inactive servers are no-op successes. With force, the
// record is dropped even when the gateway refuses; the failure is still
// reported and recorded in telemetry.
func (o *Orchestrator) Deactivate(ctx context.Context, servers []string, force bool) *DeactivationReport {
	if len(servers) == 0 {
		servers = o.ledger.Active()
	}

	report := &DeactivationReport{Deactivated: []string{}}
	visited := make(map[string]bool, len(servers))
	for _, name := range servers {
		if visited[name] {
			continue
		}
		visited[name] = true
		report.add(o.deactivateOne(ctx, name, force, "deactivation requested"))
	}
	return report
}

func (o *Orchestrator) deactivateOne(ctx context.Context, name string, force bool, reason string) ServerOutcome {
	if !o.ledger.Has(name) {
		return ServerOutcome{Server: name, Status: StatusNotActive}
	}

	start := o.now()
	err := o.gateway.Disable(ctx, name)
	latency := telemetry.Millis(o.now().Sub(start))

	if err != nil {
		o.telemetry.Record(telemetry.Event{
			Server:    name,
			Reason:    reason,
			Success:   false,
			LatencyMS: latency,
			Error:     err.Error(),
		})
		if force {
			o.ledger.Remove(name)
			logging.Warn(subsystem, "Disable of %s failed (%v), dropping the record anyway", name, err)
		}
		derr := &DeactivationError{Server: name, Diagnostic: err.Error()}
		return ServerOutcome{Server: name, Status: StatusFailed, Error: derr.Error(), Reason: reason}
	}

	o.ledger.Remove(name)
	o.telemetry.Record(telemetry.Event{
		Server:    name,
		Reason:    reason,
		Success:   true,
		LatencyMS: latency,
	})
	logging.Info(subsystem, "Deactivated %s: %s", name, reason)
	return ServerOutcome{Server: name, Status: StatusDeactivated, Reason: reason}
}

// RecordUse marks live traffic for server. Signals for inactive servers
// are dropped; a use signal never resurrects a removed record.
func (o *Orchestrator) RecordUse(server string) bool {
	return o.ledger.RecordUse(server, o.now())
}

// Record returns a copy of the ledger record for server.
func (o *Orchestrator) Record(server string) (ActivationRecord, bool) {
	return o.ledger.Get(server)
}

// Active returns the sorted names of all active servers.
func (o *Orchestrator) Active() []string {
	return o.ledger.Active()
}

// UseCounts returns per-server use counts for the active set.
func (o *Orchestrator) UseCounts() map[string]int64 {
	counts := make(map[string]int64)
	for _, rec := range o.ledger.Snapshot() {
		counts[rec.Server] = rec.UseCount
	}
	return counts
}

// Status reports the active set without touching the gateway.
func (o *Orchestrator) Status() *StatusReport {
	now := o.now()
	report := &StatusReport{
		Active:         []ServerStatus{},
		AvailableCount: o.registry.Len(),
	}
	for _, rec := range o.ledger.Snapshot() {
		st := ServerStatus{
			Server:      rec.Server,
			ActivatedAt: rec.ActivatedAt,
			LastUsed:    rec.LastUsed,
			UseCount:    rec.UseCount,
			ToolCount:   len(rec.Tools),
			ActiveFor:   now.Sub(rec.ActivatedAt).Round(time.Second).String(),
			IdleFor:     now.Sub(rec.LastUsed).Round(time.Second).String(),
			Reason:      rec.Reason,
		}
		report.Active = append(report.Active, st)
		report.TotalTools += st.ToolCount
	}
	report.ActiveCount = len(report.Active)
	return report
}

// Sync reconciles the ledger against gateway ground truth. Servers enabled
// out of band gain records; records whose server vanished are dropped
// without a disable call. Enabled servers the registry does not know are
// reported but not tracked.
func (o *Orchestrator) Sync(ctx context.Context) (*SyncReport, error) {
	enabled, err := o.gateway.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled servers: %w", err)
	}

	report := &SyncReport{}
	enabledKnown := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		if _, known := o.registry.Get(name); !known {
			report.Unknown = append(report.Unknown, name)
			continue
		}
		enabledKnown[name] = true
		if o.ledger.Has(name) {
			continue
		}

		tools, terr := o.gateway.ListTools(ctx, name)
		if terr != nil {
			logging.Warn(subsystem, "Listing tools for %s during sync failed: %v", name, terr)
			tools = nil
		}
		now := o.now()
		o.ledger.Commit(ActivationRecord{
			Server:      name,
			ActivatedAt: now,
			LastUsed:    now,
			Reason:      "sync",
			Tools:       tools,
		})
		report.Added = append(report.Added, name)
	}

	for _, name := range o.ledger.Active() {
		if !enabledKnown[name] {
			o.ledger.Remove(name)
			report.Removed = append(report.Removed, name)
		}
	}

	report.Active = o.ledger.Active()
	sort.Strings(report.Added)
	sort.Strings(report.Removed)
	sort.Strings(report.Unknown)
	logging.Info(subsystem, "Synced with gateway: %d active, %d added, %d removed",
		len(report.Active), len(report.Added), len(report.Removed))
	return report, nil
}

// Suggest ranks servers for the task and applies the confidence floor.
// Non-positive topK and minConfidence select the configured defaults; the
// matcher itself never filters.
func (o *Orchestrator) Suggest(ctx context.Context, task string, topK int, minConfidence float64) []matcher.MatchResult {
	if topK <= 0 {
		topK = o.topK
	}
	if minConfidence <= 0 {
		minConfidence = o.minConfidence
	}

	results := o.matcher.Match(ctx, task, topK)
	filtered := results[:0]
	for _, r := range results {
		if r.Confidence >= minConfidence {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ActivateProfile activates every server in the named profile bundle, with
// dependency resolution on.
func (o *Orchestrator) ActivateProfile(ctx context.Context, name string) (*ProfileActivationReport, error) {
	p, ok := profile.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q, available: %s", name, strings.Join(profile.Names(), ", "))
	}

	logging.Info(subsystem, "Activating profile %s (%d servers)", p.Name, len(p.Servers))
	report := o.Activate(ctx, p.Servers, "profile: "+p.Name, true)
	return &ProfileActivationReport{Profile: p, Activation: report}, nil
}

// ActivateForTask picks servers for the task and activates them. When
// useProfiles is set and a profile keyword matches, the profile bundle is
// used, unless that profile opts out of auto activation. Otherwise
// suggestions at or above the confidence floor are activated, with related
// servers ordered first.
func (o *Orchestrator) ActivateForTask(ctx context.Context, task string, autoResolveDeps, useProfiles bool) (*TaskActivationReport, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, errors.New("task must not be empty")
	}
	taskLabel := pkgstrings.TruncateTask(task)
	report := &TaskActivationReport{Task: taskLabel}

	if useProfiles {
		if p, ok := profile.MatchTask(task); ok && p.AutoActivate {
			logging.Info(subsystem, "Task matched profile %s", p.Name)
			report.ViaProfile = p.Name
			report.Activation = o.Activate(ctx, p.Servers, "profile: "+p.Name, autoResolveDeps)
			return report, nil
		}
	}

	suggestions := o.Suggest(ctx, task, o.topK, o.minConfidence)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("no servers matched task %q", taskLabel)
	}
	report.Suggestions = suggestions

	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		names = append(names, s.Server)
	}
	report.Activation = o.Activate(ctx, o.activationOrder(names), "task: "+taskLabel, autoResolveDeps)
	return report, nil
}

// activationOrder rebuilds the related-server graph from the current
// registry snapshot and orders the batch so shared support servers come up
// first.
func (o *Orchestrator) activationOrder(names []string) []string {
	g := dependency.New()
	for _, d := range o.registry.All() {
		g.Add(d.Name, d.RelatedServers...)
	}
	return g.ActivationOrder(names)
}

// ReclaimIdle force-deactivates every server idle beyond the threshold.
// Non-positive threshold selects the configured default. Activation counts
// as first use, so an untouched server becomes reclaimable one full
// threshold after activating.
func (o *Orchestrator) ReclaimIdle(ctx context.Context, threshold time.Duration) *ReclaimReport {
	if threshold <= 0 {
		threshold = o.idleThreshold
	}

	now := o.now()
	report := &ReclaimReport{Reclaimed: []string{}, Threshold: threshold.String()}
	for _, rec := range o.ledger.Snapshot() {
		report.Checked++
		idle := now.Sub(rec.LastUsed)
		if idle <= threshold {
			continue
		}

		outcome := o.deactivateOne(ctx, rec.Server, true, fmt.Sprintf("idle for %s", idle.Round(time.Second)))
		report.Outcomes = append(report.Outcomes, outcome)
		switch outcome.Status {
		case StatusDeactivated:
			report.Reclaimed = append(report.Reclaimed, rec.Server)
			logging.Info(subsystem, "Reclaimed %s after %s idle", rec.Server, idle.Round(time.Second))
		case StatusFailed:
			report.Failed = append(report.Failed, rec.Server)
			logging.Warn(subsystem, "Reclaiming %s failed: %s", rec.Server, outcome.Error)
		}
	}
	return report
}
