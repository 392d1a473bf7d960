package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"conductor/internal/matcher"
	"conductor/internal/orchestrator"
	"conductor/internal/profile"
	"conductor/internal/registry"
	"conductor/internal/telemetry"
)

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format response: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

type suggestResponse struct {
	Task        string                `json:"task"`
	Suggestions []matcher.MatchResult `json:"suggestions"`
	Count       int                   `json:"count"`
}

func (s *Server) handleSuggestServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError("task argument is required"), nil
	}

	topK := request.GetInt("top_k", 0)
	minConfidence := request.GetFloat("min_confidence", 0)

	suggestions := s.orch.Suggest(ctx, task, topK, minConfidence)
	return jsonResult(suggestResponse{
		Task:        task,
		Suggestions: suggestions,
		Count:       len(suggestions),
	}), nil
}

func (s *Server) handleActivateServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	servers := request.GetStringSlice("servers", nil)
	if len(servers) == 0 {
		return mcp.NewToolResultError("servers argument is required and must not be empty"), nil
	}

	reason := request.GetString("reason", "")
	autoResolveDeps := request.GetBool("auto_resolve_deps", true)

	report := s.orch.Activate(ctx, servers, reason, autoResolveDeps)
	return jsonResult(report), nil
}

func (s *Server) handleActivateProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("profile")
	if err != nil {
		return mcp.NewToolResultError("profile argument is required"), nil
	}

	report, err := s.orch.ActivateProfile(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report), nil
}

func (s *Server) handleActivateForTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError("task argument is required"), nil
	}

	autoResolveDeps := request.GetBool("auto_resolve_deps", true)
	useProfiles := request.GetBool("use_profiles", true)

	report, err := s.orch.ActivateForTask(ctx, task, autoResolveDeps, useProfiles)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report), nil
}

func (s *Server) handleDeactivateServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	servers := request.GetStringSlice("servers", nil)

	report := s.orch.Deactivate(ctx, servers, false)
	return jsonResult(report), nil
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.orch.Status()), nil
}

type usageStatsResponse struct {
	Stats     telemetry.Stats   `json:"stats"`
	UseCounts map[string]int64  `json:"use_counts"`
	Recent    []telemetry.Event `json:"recent,omitempty"`
}

func (s *Server) handleUsageStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(usageStatsResponse{
		Stats:     s.telemetry.Stats(),
		UseCounts: s.orch.UseCounts(),
		Recent:    s.telemetry.Recent(10),
	}), nil
}

func (s *Server) handleReclaimIdle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes := request.GetFloat("threshold_minutes", 0)
	if minutes < 0 {
		return mcp.NewToolResultError("threshold_minutes must not be negative"), nil
	}
	threshold := time.Duration(minutes * float64(time.Minute))

	report := s.orch.ReclaimIdle(ctx, threshold)
	return jsonResult(report), nil
}

func (s *Server) handleSyncState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.orch.Sync(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Sync failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

type capabilitiesResponse struct {
	Technology string                      `json:"technology,omitempty"`
	Servers    []registry.ServerDescriptor `json:"servers"`
	Count      int                         `json:"count"`
}

func (s *Server) handleGetCapabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	technology := request.GetString("technology", "")

	var servers []registry.ServerDescriptor
	if technology == "" {
		servers = s.registry.All()
	} else {
		for _, name := range s.registry.FindByTechnology(technology) {
			if desc, ok := s.registry.Get(name); ok {
				servers = append(servers, desc)
			}
		}
	}

	return jsonResult(capabilitiesResponse{
		Technology: technology,
		Servers:    servers,
		Count:      len(servers),
	}), nil
}

type serverInfoResponse struct {
	Descriptor registry.ServerDescriptor      `json:"descriptor"`
	Active     bool                           `json:"active"`
	Record     *orchestrator.ActivationRecord `json:"record,omitempty"`
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("server")
	if err != nil {
		return mcp.NewToolResultError("server argument is required"), nil
	}

	desc, ok := s.registry.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown server: %s", name)), nil
	}

	resp := serverInfoResponse{Descriptor: desc}
	if rec, active := s.orch.Record(name); active {
		resp.Active = true
		resp.Record = &rec
	}
	return jsonResult(resp), nil
}

type profilesResponse struct {
	Profiles []profile.Profile `json:"profiles"`
	Count    int               `json:"count"`
}

func (s *Server) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles := profile.All()
	return jsonResult(profilesResponse{
		Profiles: profiles,
		Count:    len(profiles),
	}), nil
}
