package registry

// defaultDescriptors returns the built-in capability set served when no
// capabilities file is available. It covers the servers shipped with the
// standard gateway catalog.
func defaultDescriptors() map[string]ServerDescriptor {
	defaults := []ServerDescriptor{
		{
			Name:    "context7",
			Purpose: "Up-to-date library documentation",
			CoversTechnologies: []string{
				"redis", "postgres", "fastapi", "django", "react", "vue",
				"kubernetes", "sqlalchemy", "pytest", "celery", "docker",
				"nginx", "python", "javascript", "typescript", "node",
				"express", "flask", "tornado", "aiohttp", "requests",
				"pandas", "numpy", "tensorflow", "pytorch", "opencv",
			},
			WhenToUse:        "BEFORE writing code - get current API docs",
			ToolsPreview:     []string{"resolve-library-id", "get-library-docs"},
			AutoActivateWith: []string{"redis", "postgres", "playwright", "github"},
			EstimatedTools:   2,
		},
		{
			Name:               "redis",
			Purpose:            "Redis database operations",
			CoversTechnologies: []string{"caching", "sessions", "pub/sub", "queues", "locks"},
			WhenToUse:          "Direct Redis commands and data management",
			ToolsPreview:       []string{"redis_get", "redis_set", "redis_del", "redis_keys"},
			RelatedServers:     []string{"context7"},
			EstimatedTools:     4,
		},
		{
			Name:               "postgres",
			Purpose:            "PostgreSQL database access",
			CoversTechnologies: []string{"sql", "database", "queries", "postgresql"},
			WhenToUse:          "Database queries and schema operations",
			ToolsPreview:       []string{"query"},
			RelatedServers:     []string{"context7"},
			EstimatedTools:     1,
		},
		{
			Name:               "playwright",
			Purpose:            "Browser automation",
			CoversTechnologies: []string{"browser", "screenshots", "scraping", "testing", "e2e"},
			WhenToUse:          "Web interaction, JS-heavy sites, E2E testing",
			ToolsPreview:       []string{"browser_navigate", "browser_screenshot", "browser_click"},
			RelatedServers:     []string{"context7"},
			EstimatedTools:     3,
		},
		{
			Name:               "github",
			Purpose:            "GitHub integration",
			CoversTechnologies: []string{"git", "github", "repository", "issues", "prs"},
			WhenToUse:          "GitHub API operations, issues, PRs, code search",
			ToolsPreview:       []string{"create_issue", "create_pull_request", "search_repositories"},
			RelatedServers:     []string{"context7"},
			EstimatedTools:     3,
		},
		{
			Name:               "fetch",
			Purpose:            "HTTP client for web requests",
			CoversTechnologies: []string{"http", "api", "fetch", "download", "requests"},
			WhenToUse:          "Simple HTTP requests, API calls",
			ToolsPreview:       []string{"fetch"},
			RelatedServers:     []string{"context7"},
			EstimatedTools:     1,
		},
		{
			Name:               "desktop-commander",
			Purpose:            "Desktop automation and file system",
			CoversTechnologies: []string{"file", "folder", "directory", "command", "shell"},
			WhenToUse:          "File management, command execution, process control",
			ToolsPreview:       []string{"read_file", "write_file", "execute_command"},
			EstimatedTools:     3,
		},
		{
			Name:               "sequential-thinking",
			Purpose:            "Structured problem-solving through sequential reasoning",
			CoversTechnologies: []string{"reasoning", "planning", "analysis", "thinking"},
			WhenToUse:          "Complex multi-step analysis and planning",
			ToolsPreview:       []string{"think", "analyze", "plan"},
			EstimatedTools:     3,
		},
	}

	servers := make(map[string]ServerDescriptor, len(defaults))
	for _, desc := range defaults {
		servers[desc.Name] = desc
	}
	return servers
}
