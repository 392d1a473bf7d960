package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools declares the conductor control surface. Names and argument
// shapes are part of the public contract; assistants script against them.
func (s *Server) registerTools() {
	suggestTool := mcp.NewTool("suggest_servers",
		mcp.WithDescription("Suggest backend MCP servers for a task without activating anything"),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("Free-text description of the task at hand"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum number of suggestions to return (default: configured, usually 5)"),
		),
		mcp.WithNumber("min_confidence",
			mcp.Description("Drop suggestions below this confidence (default: configured, usually 0.3)"),
		),
	)
	s.mcpServer.AddTool(suggestTool, s.handleSuggestServers)

	activateTool := mcp.NewTool("activate_servers",
		mcp.WithDescription("Activate the named backend servers through the gateway"),
		mcp.WithArray("servers",
			mcp.Required(),
			mcp.Description("Names of the servers to activate"),
		),
		mcp.WithString("reason",
			mcp.Description("Why the servers are being activated (recorded and reported)"),
		),
		mcp.WithBoolean("auto_resolve_deps",
			mcp.Description("Also activate declared related servers (default: true)"),
		),
	)
	s.mcpServer.AddTool(activateTool, s.handleActivateServers)

	activateProfileTool := mcp.NewTool("activate_profile",
		mcp.WithDescription("Activate a predefined bundle of servers for a workflow"),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Profile name, see list_profiles"),
		),
	)
	s.mcpServer.AddTool(activateProfileTool, s.handleActivateProfile)

	activateForTaskTool := mcp.NewTool("activate_for_task",
		mcp.WithDescription("Pick and activate the right servers for a task in one step"),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("Free-text description of the task at hand"),
		),
		mcp.WithBoolean("auto_resolve_deps",
			mcp.Description("Also activate declared related servers (default: true)"),
		),
		mcp.WithBoolean("use_profiles",
			mcp.Description("Prefer a matching auto-activate profile over individual suggestions (default: true)"),
		),
	)
	s.mcpServer.AddTool(activateForTaskTool, s.handleActivateForTask)

	deactivateTool := mcp.NewTool("deactivate_servers",
		mcp.WithDescription("Deactivate backend servers; with no names, deactivates everything active"),
		mcp.WithArray("servers",
			mcp.Description("Names of the servers to deactivate (empty: all active servers)"),
		),
	)
	s.mcpServer.AddTool(deactivateTool, s.handleDeactivateServers)

	statusTool := mcp.NewTool("get_status",
		mcp.WithDescription("Show the currently active servers with usage and idle times"),
	)
	s.mcpServer.AddTool(statusTool, s.handleGetStatus)

	usageTool := mcp.NewTool("usage_stats",
		mcp.WithDescription("Show activation telemetry and per-server use counts"),
	)
	s.mcpServer.AddTool(usageTool, s.handleUsageStats)

	reclaimTool := mcp.NewTool("reclaim_idle",
		mcp.WithDescription("Deactivate servers that have been idle beyond a threshold"),
		mcp.WithNumber("threshold_minutes",
			mcp.Description("Idle threshold in minutes (default: configured, usually 10)"),
		),
	)
	s.mcpServer.AddTool(reclaimTool, s.handleReclaimIdle)

	syncTool := mcp.NewTool("sync_state",
		mcp.WithDescription("Reconcile tracked state with what the gateway reports as enabled"),
	)
	s.mcpServer.AddTool(syncTool, s.handleSyncState)

	capabilitiesTool := mcp.NewTool("get_capabilities",
		mcp.WithDescription("Browse the server capability catalog without activating anything"),
		mcp.WithString("technology",
			mcp.Description("Only return servers covering this technology tag"),
		),
	)
	s.mcpServer.AddTool(capabilitiesTool, s.handleGetCapabilities)

	serverInfoTool := mcp.NewTool("server_info",
		mcp.WithDescription("Show a server's capability descriptor and, if active, its live record"),
		mcp.WithString("server",
			mcp.Required(),
			mcp.Description("Name of the server to inspect"),
		),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)

	listProfilesTool := mcp.NewTool("list_profiles",
		mcp.WithDescription("List the predefined server bundles"),
	)
	s.mcpServer.AddTool(listProfilesTool, s.handleListProfiles)
}
