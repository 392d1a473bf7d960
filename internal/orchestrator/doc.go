// Package orchestrator provides the activation lifecycle core of conductor.
//
// The orchestrator is the single writer to the activation ledger and the
// only component that issues lifecycle commands to the gateway. Everything
// the MCP surface exposes (activate, deactivate, status, sync, reclaim)
// funnels through it.
//
// # State model
//
// A backend server is in exactly one of two states:
//
//   - Inactive: no ledger record exists
//   - Active: a ledger record exists, carrying activation time, last use,
//     use count, the activation reason and the cached tool listing
//
// There are no intermediate states. A record is committed only after the
// gateway reports a successful enable, so a failed or timed-out activation
// leaves no trace beyond a telemetry event. The gateway remains the ground
// truth for what actually runs; Sync reconciles the ledger against it at
// startup and on demand.
//
// # Concurrency
//
// One mutex guards the ledger. Gateway calls never run under it: an
// activation checks the ledger, performs the enable and tool listing on
// its own, then commits. Concurrent activations of the same server are
// collapsed by a singleflight group into one enable; activations of
// different servers proceed in parallel.
//
// # Failure semantics
//
// Mutating operations return per-server outcome reports instead of a
// single error. Partial success is the normal case: a batch of five
// servers with one gateway refusal activates four and reports the fifth
// with its diagnostic. Dependency activations behave the same way and are
// never rolled back when the dependent fails.
//
// The Reaper runs the same reclaim logic on a timer, force-deactivating
// servers idle beyond the configured threshold.
package orchestrator
