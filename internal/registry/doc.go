// Package registry serves capability descriptors for the backend servers
// conductor can orchestrate.
//
// Descriptors come from a capabilities YAML file when one exists and from a
// built-in default set otherwise. The set is immutable between reloads, and
// a reload swaps the whole snapshot at once so concurrent lookups never see
// a partially updated registry. An optional Watcher reloads the set when the
// capabilities file changes on disk.
package registry
