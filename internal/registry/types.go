package registry

// ServerDescriptor describes what a backend MCP server is for: its purpose,
// the technologies it covers, and which other servers it works well with.
// Descriptors are immutable once loaded; reloads replace the whole set.
type ServerDescriptor struct {
	// Name is the unique, stable identifier the gateway knows the server by.
	Name string `yaml:"name,omitempty" json:"name"`

	// Purpose is a one-line human-readable description.
	Purpose string `yaml:"purpose,omitempty" json:"purpose,omitempty"`

	// CoversTechnologies lists the technology tags this server handles.
	CoversTechnologies []string `yaml:"coversTechnologies,omitempty" json:"covers_technologies,omitempty"`

	// WhenToUse is a free-text hint about when the server is worth enabling.
	WhenToUse string `yaml:"whenToUse,omitempty" json:"when_to_use,omitempty"`

	// ToolsPreview lists representative tool names without activating.
	ToolsPreview []string `yaml:"toolsPreview,omitempty" json:"tools_preview,omitempty"`

	// RelatedServers declares dependency edges: servers that should be
	// considered for co-activation. Edges are directed and may be cyclic
	// in the source data.
	RelatedServers []string `yaml:"relatedServers,omitempty" json:"related_servers,omitempty"`

	// AutoActivateWith is the reverse declaration: servers whose activation
	// should pull this one in.
	AutoActivateWith []string `yaml:"autoActivateWith,omitempty" json:"auto_activate_with,omitempty"`

	// EstimatedTools approximates how many tools the server exposes.
	// Defaults to len(ToolsPreview) when the source omits it.
	EstimatedTools int `yaml:"estimatedTools,omitempty" json:"estimated_tools,omitempty"`
}

// capabilitiesFile is the on-disk shape of the capabilities document.
type capabilitiesFile struct {
	Servers map[string]ServerDescriptor `yaml:"servers"`
}
