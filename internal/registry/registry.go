package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"conductor/pkg/logging"
)

// ConfigError reports a capabilities source that exists but cannot be used.
// It is never fatal: the registry keeps serving a valid descriptor set.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid capabilities source %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// snapshot is one immutable view of the descriptor set. Every lookup
// resolves against exactly one snapshot, so readers never see a
// half-replaced registry.
type snapshot struct {
	servers    map[string]ServerDescriptor
	names      []string
	generation uint64
}

// Registry serves server capability descriptors. It is safe for concurrent
// use: reads resolve against the current snapshot while Reload swaps in a
// new one under the lock.
type Registry struct {
	mu      sync.RWMutex
	current *snapshot
	source  string
}

// Load builds a Registry from the capabilities file at path. A missing file
// falls back to the built-in defaults silently; a file that exists but
// cannot be parsed also falls back, with a ConfigError returned so the
// caller can log it. The returned Registry is always usable.
func Load(path string) (*Registry, error) {
	r := &Registry{source: path}

	servers, err := readCapabilities(path)
	if err != nil {
		r.swap(defaultDescriptors())
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Registry", "No capabilities file at %s, using built-in defaults", path)
			return r, nil
		}
		return r, &ConfigError{Source: path, Err: err}
	}

	r.swap(servers)
	logging.Info("Registry", "Loaded %d server descriptors from %s", len(servers), path)
	return r, nil
}

// Reload re-reads the capabilities source and atomically replaces the
// descriptor set. A missing file swaps the defaults back in; a malformed
// file keeps the current set serving and returns a ConfigError.
func (r *Registry) Reload() error {
	servers, err := readCapabilities(r.source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.swap(defaultDescriptors())
			logging.Info("Registry", "Capabilities file %s removed, restored built-in defaults", r.source)
			return nil
		}
		return &ConfigError{Source: r.source, Err: err}
	}

	r.swap(servers)
	return nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (ServerDescriptor, bool) {
	s := r.snap()
	desc, ok := s.servers[id]
	return desc, ok
}

// Names returns all known server identifiers in sorted order.
func (r *Registry) Names() []string {
	s := r.snap()
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of known servers.
func (r *Registry) Len() int {
	return len(r.snap().servers)
}

// Generation identifies the current descriptor set. It increases every time
// the set is replaced, letting callers invalidate anything derived from an
// older set.
func (r *Registry) Generation() uint64 {
	return r.snap().generation
}

// FindByTechnology returns the identifiers of all servers covering the given
// technology tag. Matching is case-insensitive exact tag comparison, and the
// result order is deterministic (sorted by identifier).
func (r *Registry) FindByTechnology(technology string) []string {
	s := r.snap()
	lower := strings.ToLower(technology)

	var matching []string
	for _, name := range s.names {
		for _, tech := range s.servers[name].CoversTechnologies {
			if strings.ToLower(tech) == lower {
				matching = append(matching, name)
				break
			}
		}
	}
	return matching
}

// RelatedOf returns the declared related servers of id, de-duplicated and
// with self-references dropped. Unknown ids yield nil.
func (r *Registry) RelatedOf(id string) []string {
	s := r.snap()
	desc, ok := s.servers[id]
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(desc.RelatedServers))
	var related []string
	for _, rel := range desc.RelatedServers {
		if rel == id || seen[rel] {
			continue
		}
		seen[rel] = true
		related = append(related, rel)
	}
	return related
}

// All returns every descriptor ordered by identifier.
func (r *Registry) All() []ServerDescriptor {
	s := r.snap()
	out := make([]ServerDescriptor, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.servers[name])
	}
	return out
}

func (r *Registry) snap() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Registry) swap(servers map[string]ServerDescriptor) {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	r.mu.Lock()
	defer r.mu.Unlock()

	generation := uint64(1)
	if r.current != nil {
		generation = r.current.generation + 1
	}
	r.current = &snapshot{servers: servers, names: names, generation: generation}
}

func readCapabilities(path string) (map[string]ServerDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file capabilitiesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing capabilities file %s: %w", path, err)
	}
	if len(file.Servers) == 0 {
		return nil, fmt.Errorf("capabilities file %s declares no servers", path)
	}

	servers := make(map[string]ServerDescriptor, len(file.Servers))
	for name, desc := range file.Servers {
		desc.Name = name
		if desc.EstimatedTools == 0 {
			desc.EstimatedTools = len(desc.ToolsPreview)
		}
		servers[name] = desc
	}
	return servers, nil
}
