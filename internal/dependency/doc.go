// Package dependency models the related-server relationships declared in
// capability descriptors and answers ordering queries over them.
//
// A descriptor may name servers it wants running alongside it. Those edges
// form a small directed graph the orchestrator consults in two places:
// suggestion-time closure (a surfaced server pulls its related servers into
// the result) and activation ordering (a related server activates before
// the server that declared it, so task-driven batches bring up shared
// support servers like documentation lookups first).
//
// Graphs are cheap to build and are reconstructed from a registry snapshot
// on demand rather than kept in sync with reloads.
package dependency
