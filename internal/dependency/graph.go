package dependency

import "sort"

// Graph holds related-server edges. An edge from A to B means A declares B
// as a server it wants running alongside it, so B should activate first.
//
// The graph is rebuilt from a registry snapshot when needed. It is not safe
// for concurrent mutation; callers must not Add while querying.
type Graph struct {
	related map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{related: make(map[string][]string)}
}

// Add records server with its declared related servers, replacing any
// earlier entry. Self references and duplicates are dropped.
func (g *Graph) Add(server string, related ...string) {
	if g.related == nil {
		g.related = make(map[string][]string)
	}
	seen := make(map[string]bool, len(related))
	deps := make([]string, 0, len(related))
	for _, r := range related {
		if r == server || r == "" || seen[r] {
			continue
		}
		seen[r] = true
		deps = append(deps, r)
	}
	g.related[server] = deps
}

// Has reports whether server was added to the graph.
func (g *Graph) Has(server string) bool {
	_, ok := g.related[server]
	return ok
}

// Related returns a copy of the immediate related servers of server.
func (g *Graph) Related(server string) []string {
	deps, ok := g.related[server]
	if !ok || len(deps) == 0 {
		return nil
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Dependents returns all servers that declare server as related, sorted by
// name. This is an O(n) walk, but the graph is tiny.
func (g *Graph) Dependents(server string) []string {
	var out []string
	for name, deps := range g.related {
		for _, d := range deps {
			if d == server {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// ActivationOrder reorders the given servers so that any server another one
// declares as related activates first. The relative order of unrelated
// servers is preserved. Duplicates collapse to their first occurrence and a
// cycle keeps its incoming order rather than failing.
func (g *Graph) ActivationOrder(servers []string) []string {
	ordered := make([]string, 0, len(servers))
	seen := make(map[string]bool, len(servers))
	for _, s := range servers {
		if seen[s] {
			continue
		}
		seen[s] = true
		ordered = append(ordered, s)
	}

	// In-degree within the requested set: an edge dep -> s for every
	// requested dep of a requested s.
	indeg := make(map[string]int, len(ordered))
	for _, s := range ordered {
		indeg[s] = 0
	}
	for _, s := range ordered {
		for _, d := range g.related[s] {
			if _, ok := indeg[d]; ok && d != s {
				indeg[s]++
			}
		}
	}

	out := make([]string, 0, len(ordered))
	emitted := make(map[string]bool, len(ordered))
	for len(out) < len(ordered) {
		progressed := false
		for _, s := range ordered {
			if emitted[s] || indeg[s] != 0 {
				continue
			}
			emitted[s] = true
			out = append(out, s)
			progressed = true
			for _, dependent := range ordered {
				if emitted[dependent] {
					continue
				}
				for _, d := range g.related[dependent] {
					if d == s {
						indeg[dependent]--
						break
					}
				}
			}
		}
		if !progressed {
			// Cycle: emit the rest in incoming order.
			for _, s := range ordered {
				if !emitted[s] {
					emitted[s] = true
					out = append(out, s)
				}
			}
		}
	}
	return out
}
