// Package matcher ranks backend servers against a free-text task
// description. Matching is deterministic, bounded and side-effect free so
// callers can run it speculatively; confidence thresholds are the caller's
// concern, not the matcher's.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"conductor/internal/registry"
	"conductor/pkg/logging"
)

const subsystem = "Matcher"

// Source tags where a suggestion came from.
type Source string

const (
	// SourceKeyword marks results from technology tag and purpose matching.
	SourceKeyword Source = "keyword"
	// SourceSemantic marks results from vector similarity.
	SourceSemantic Source = "semantic"
	// SourceDependency marks related servers pulled in alongside a match.
	SourceDependency Source = "dependency-injected"
)

// Confidence assigned to related servers injected alongside a match. High
// enough to survive usual thresholds, below a direct full match.
const relatedConfidence = 0.9

const defaultTopK = 5

// MatchResult is one ranked suggestion.
type MatchResult struct {
	Server     string  `json:"server"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Source     Source  `json:"source"`
}

// Matcher scores registry descriptors against task text. Descriptor vectors
// are cached per registry generation, so a reload invalidates them without
// any coordination beyond the generation counter.
type Matcher struct {
	registry *registry.Registry
	scorer   Scorer

	mu      sync.Mutex
	vectors map[string][]float64
	vecGen  uint64
}

// New builds a matcher over reg. scorer may be nil to disable the semantic
// pass.
func New(reg *registry.Registry, scorer Scorer) *Matcher {
	return &Matcher{registry: reg, scorer: scorer}
}

// Match ranks servers for the task, returning at most topK results sorted
// by descending confidence with the server name as tie-break. A blank task
// and a task nothing matches both return an empty result.
func (m *Matcher) Match(ctx context.Context, task string, topK int) []MatchResult {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	descriptors := m.registry.All()
	taskLower := strings.ToLower(task)

	results := keywordScores(descriptors, taskLower)
	if m.scorer != nil {
		if semantic, ok := m.semanticScores(ctx, descriptors, task); ok {
			results = fuse(semantic, results)
		}
	}

	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return m.injectRelated(results, topK)
}

// Refresh recomputes descriptor vectors for the current registry snapshot.
// Called after a registry reload; Match also refreshes lazily when it sees
// a stale generation.
func (m *Matcher) Refresh(ctx context.Context) {
	if m.scorer == nil {
		return
	}
	m.mu.Lock()
	m.vectors = nil
	m.mu.Unlock()
	m.vectorsFor(ctx, m.registry.All())
}

// keywordScores applies the tag and purpose heuristics: each covered
// technology found in the task adds 0.5, a purpose word longer than three
// characters found in the task adds 0.3, capped at 1.0.
func keywordScores(descriptors []registry.ServerDescriptor, taskLower string) []MatchResult {
	var out []MatchResult
	for _, d := range descriptors {
		var score float64
		var hits []string
		for _, tech := range d.CoversTechnologies {
			if tech == "" {
				continue
			}
			if strings.Contains(taskLower, strings.ToLower(tech)) {
				score += 0.5
				hits = append(hits, tech)
			}
		}
		for _, word := range strings.Fields(strings.ToLower(d.Purpose)) {
			if len(word) > 3 && strings.Contains(taskLower, word) {
				score += 0.3
				break
			}
		}
		if score == 0 {
			continue
		}
		if score > 1.0 {
			score = 1.0
		}
		out = append(out, MatchResult{
			Server:     d.Name,
			Confidence: score,
			Reason:     keywordReason(hits),
			Source:     SourceKeyword,
		})
	}
	return out
}

func keywordReason(hits []string) string {
	if len(hits) == 0 {
		return "purpose matches the task"
	}
	return "handles " + strings.Join(hits, ", ")
}

// semanticScores ranks descriptors by cosine similarity between the task
// vector and cached descriptor vectors. The second return value is false
// when the pass produced nothing usable and keyword results should stand
// alone.
func (m *Matcher) semanticScores(ctx context.Context, descriptors []registry.ServerDescriptor, task string) ([]MatchResult, bool) {
	vectors := m.vectorsFor(ctx, descriptors)
	if len(vectors) == 0 {
		return nil, false
	}

	taskVec, err := m.scorer.Encode(ctx, task)
	if err != nil {
		logging.Warn(subsystem, "Task encoding failed, keyword scoring only: %v", err)
		return nil, false
	}

	var out []MatchResult
	for _, d := range descriptors {
		vec, ok := vectors[d.Name]
		if !ok {
			continue
		}
		sim := cosine(taskVec, vec)
		if sim <= 0 {
			continue
		}
		if sim > 1.0 {
			sim = 1.0
		}
		out = append(out, MatchResult{
			Server:     d.Name,
			Confidence: sim,
			Reason:     fmt.Sprintf("semantically similar (%.2f)", sim),
			Source:     SourceSemantic,
		})
	}
	return out, true
}

// vectorsFor returns the descriptor vector cache, rebuilding it when the
// registry generation moved. Descriptors that fail to encode are skipped
// and scored by keywords only.
func (m *Matcher) vectorsFor(ctx context.Context, descriptors []registry.ServerDescriptor) map[string][]float64 {
	gen := m.registry.Generation()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vectors != nil && m.vecGen == gen {
		return m.vectors
	}

	vectors := make(map[string][]float64, len(descriptors))
	for _, d := range descriptors {
		vec, err := m.scorer.Encode(ctx, descriptorText(d))
		if err != nil {
			logging.Warn(subsystem, "Encoding descriptor %s failed: %v", d.Name, err)
			continue
		}
		vectors[d.Name] = vec
	}
	m.vectors = vectors
	m.vecGen = gen
	logging.Debug(subsystem, "Encoded %d descriptor vectors for generation %d", len(vectors), gen)
	return vectors
}

// descriptorText synthesizes the text a descriptor is embedded from.
func descriptorText(d registry.ServerDescriptor) string {
	return strings.TrimSpace(d.Purpose + " " + strings.Join(d.CoversTechnologies, " "))
}

// fuse merges the two passes. Semantic results are authoritative for the
// servers they cover; keyword results only add servers the semantic pass
// missed.
func fuse(semantic, keyword []MatchResult) []MatchResult {
	out := make([]MatchResult, 0, len(semantic)+len(keyword))
	seen := make(map[string]bool, len(semantic))
	for _, r := range semantic {
		out = append(out, r)
		seen[r.Server] = true
	}
	for _, r := range keyword {
		if !seen[r.Server] {
			out = append(out, r)
		}
	}
	return out
}

// injectRelated appends, once per server, the related servers of every
// surfaced result. Injection is single level: related servers of injected
// entries are not chased. The combined list is re-ranked and bounded.
func (m *Matcher) injectRelated(results []MatchResult, topK int) []MatchResult {
	if len(results) == 0 {
		return results
	}

	present := make(map[string]bool, len(results))
	for _, r := range results {
		present[r.Server] = true
	}

	injected := results
	for _, r := range results {
		for _, rel := range m.registry.RelatedOf(r.Server) {
			if present[rel] {
				continue
			}
			if _, known := m.registry.Get(rel); !known {
				continue
			}
			present[rel] = true
			injected = append(injected, MatchResult{
				Server:     rel,
				Confidence: relatedConfidence,
				Reason:     "works alongside " + r.Server,
				Source:     SourceDependency,
			})
		}
	}

	sortResults(injected)
	if len(injected) > topK {
		injected = injected[:topK]
	}
	return injected
}

func sortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Server < results[j].Server
	})
}
