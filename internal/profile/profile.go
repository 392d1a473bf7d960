// Package profile provides built-in server bundles for common kinds of
// work, so a whole working set can be activated in one call instead of
// server by server.
package profile

import (
	"sort"
	"strings"
)

// Profile bundles servers that are usually wanted together.
type Profile struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Servers         []string `json:"servers"`
	AutoActivate    bool     `json:"auto_activate"`
	EstimatedTokens int      `json:"estimated_tokens"`
}

// matchOrder fixes the precedence MatchTask applies; earlier profiles win
// when several keyword sets hit the same task.
var matchOrder = []string{
	"web-development",
	"data-science",
	"documentation",
	"full-stack",
	"database",
	"browser-automation",
}

var profiles = map[string]Profile{
	"web-development": {
		Name:            "web-development",
		Description:     "Frontend and web application development",
		Servers:         []string{"playwright", "github", "context7", "fetch"},
		AutoActivate:    true,
		EstimatedTokens: 4000,
	},
	"data-science": {
		Name:            "data-science",
		Description:     "Data analysis and exploration",
		Servers:         []string{"postgres", "redis", "context7"},
		AutoActivate:    true,
		EstimatedTokens: 3000,
	},
	"documentation": {
		Name:            "documentation",
		Description:     "Library and API documentation lookup",
		Servers:         []string{"context7"},
		AutoActivate:    true,
		EstimatedTokens: 500,
	},
	"full-stack": {
		Name:            "full-stack",
		Description:     "Complete development environment",
		Servers:         []string{"playwright", "github", "postgres", "redis", "context7", "fetch", "desktop-commander"},
		AutoActivate:    false,
		EstimatedTokens: 8000,
	},
	"database": {
		Name:            "database",
		Description:     "Database operations and administration",
		Servers:         []string{"postgres", "redis", "context7"},
		AutoActivate:    true,
		EstimatedTokens: 3000,
	},
	"browser-automation": {
		Name:            "browser-automation",
		Description:     "Browser automation and web scraping",
		Servers:         []string{"playwright", "context7"},
		AutoActivate:    true,
		EstimatedTokens: 2000,
	},
}

var taskKeywords = map[string][]string{
	"web-development":    {"web", "website", "browser", "frontend", "ui", "html", "css"},
	"data-science":       {"data", "analysis", "database", "sql", "query", "analytics"},
	"documentation":      {"documentation", "docs", "api", "reference", "library"},
	"full-stack":         {"full stack", "fullstack", "complete", "all", "everything"},
	"database":           {"database", "db", "sql", "postgres", "redis", "mysql"},
	"browser-automation": {"browser", "scraping", "screenshot", "automation", "selenium"},
}

// All returns the built-in profiles sorted by name.
func All() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, name := range Names() {
		out = append(out, copyProfile(profiles[name]))
	}
	return out
}

// Names returns the profile names sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named profile.
func Get(name string) (Profile, bool) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	return copyProfile(p), true
}

// MatchTask returns the first profile, in fixed precedence order, with a
// keyword contained in the task text. Matching is plain substring
// containment on the lowercased task.
func MatchTask(task string) (Profile, bool) {
	taskLower := strings.ToLower(task)
	if strings.TrimSpace(taskLower) == "" {
		return Profile{}, false
	}
	for _, name := range matchOrder {
		for _, kw := range taskKeywords[name] {
			if strings.Contains(taskLower, kw) {
				return copyProfile(profiles[name]), true
			}
		}
	}
	return Profile{}, false
}

// copyProfile protects the built-in server lists from caller mutation.
func copyProfile(p Profile) Profile {
	servers := make([]string, len(p.Servers))
	copy(servers, p.Servers)
	p.Servers = servers
	return p
}
