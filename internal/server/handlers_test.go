package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conductor/internal/config"
	"conductor/internal/gateway"
	"conductor/internal/matcher"
	"conductor/internal/orchestrator"
	"conductor/internal/registry"
	"conductor/internal/telemetry"
)

const serverYAML = `servers:
  redis:
    purpose: Redis database operations
    coversTechnologies: [redis, caching]
    relatedServers: [context7]
  postgres:
    purpose: PostgreSQL database operations
    coversTechnologies: [postgres, sql]
    relatedServers: [context7]
  context7:
    purpose: Up-to-date library documentation
    coversTechnologies: [docs, documentation]
  github:
    purpose: GitHub repository operations
    coversTechnologies: [github, git]
`

func newTestServer(t *testing.T) (*Server, *gateway.Fake) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capabilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(serverYAML), 0644))
	reg, err := registry.Load(path)
	require.NoError(t, err)

	gw := gateway.NewFake()
	gw.SetTools("redis", []gateway.ToolDef{{Name: "get"}, {Name: "set"}})
	gw.SetTools("context7", []gateway.ToolDef{{Name: "get-library-docs"}})
	sink := telemetry.NewSink(100, "")

	orch := orchestrator.New(orchestrator.Config{
		Registry:  reg,
		Gateway:   gw,
		Telemetry: sink,
		Matcher:   matcher.New(reg, nil),
	})

	s := New(Config{
		Server:    config.ServerConfig{Transport: config.TransportStdio},
		Version:   "test",
		Orch:      orch,
		Registry:  reg,
		Telemetry: sink,
	})
	return s, gw
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestHandleSuggestServers(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleSuggestServers(context.Background(), makeReq(map[string]interface{}{
		"task": "set up a redis cache",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp suggestResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, len(resp.Suggestions), resp.Count)
	require.NotEmpty(t, resp.Suggestions)

	names := make([]string, 0, len(resp.Suggestions))
	for _, sug := range resp.Suggestions {
		names = append(names, sug.Server)
	}
	assert.Contains(t, names, "redis")
	assert.Contains(t, names, "context7", "related servers ride along")
}

func TestHandleSuggestServersMissingTask(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleSuggestServers(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleSuggestServersRespectsTopK(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleSuggestServers(context.Background(), makeReq(map[string]interface{}{
		"task":  "set up a redis cache",
		"top_k": float64(1),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp suggestResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Len(t, resp.Suggestions, 1)
}

func TestHandleActivateServers(t *testing.T) {
	s, gw := newTestServer(t)

	result, err := s.handleActivateServers(context.Background(), makeReq(map[string]interface{}{
		"servers": []string{"redis"},
		"reason":  "handler test",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.ActivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Contains(t, report.Activated, "redis")
	assert.Contains(t, report.Activated, "context7", "deps resolve by default")
	assert.True(t, gw.IsEnabled("redis"))
}

func TestHandleActivateServersMissingArgument(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleActivateServers(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleActivateServers(context.Background(), makeReq(map[string]interface{}{
		"servers": []string{},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleActivateServersPartialFailure(t *testing.T) {
	s, gw := newTestServer(t)
	gw.FailEnable("github", "unauthorized: authentication required")

	result, err := s.handleActivateServers(context.Background(), makeReq(map[string]interface{}{
		"servers":           []string{"redis", "github"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	// Partial failure is a normal report, not a tool error.
	require.False(t, result.IsError)

	var report orchestrator.ActivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, []string{"redis"}, report.Activated)
	assert.Equal(t, []string{"github"}, report.Failed)

	var diagnostic string
	for _, o := range report.Outcomes {
		if o.Server == "github" {
			diagnostic = o.Error
		}
	}
	assert.Contains(t, diagnostic, "unauthorized: authentication required")
}

func TestHandleActivateProfile(t *testing.T) {
	s, gw := newTestServer(t)

	result, err := s.handleActivateProfile(context.Background(), makeReq(map[string]interface{}{
		"profile": "documentation",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.ProfileActivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, "documentation", report.Profile.Name)
	assert.True(t, gw.IsEnabled("context7"))
}

func TestHandleActivateProfileUnknown(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleActivateProfile(context.Background(), makeReq(map[string]interface{}{
		"profile": "nonsense",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown profile")
}

func TestHandleActivateForTask(t *testing.T) {
	s, gw := newTestServer(t)

	result, err := s.handleActivateForTask(context.Background(), makeReq(map[string]interface{}{
		"task":         "set up a redis cache",
		"use_profiles": false,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.TaskActivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.NotEmpty(t, report.Suggestions)
	assert.Contains(t, report.Activation.Activated, "redis")
	assert.True(t, gw.IsEnabled("redis"))
}

func TestHandleActivateForTaskNoMatch(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleActivateForTask(context.Background(), makeReq(map[string]interface{}{
		"task":         "fold proteins",
		"use_profiles": false,
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no servers matched")
}

func TestHandleDeactivateServers(t *testing.T) {
	s, gw := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis", "postgres"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	result, err := s.handleDeactivateServers(ctx, makeReq(map[string]interface{}{
		"servers": []string{"redis"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.DeactivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, []string{"redis"}, report.Deactivated)
	assert.False(t, gw.IsEnabled("redis"))
	assert.True(t, gw.IsEnabled("postgres"))
}

func TestHandleDeactivateServersEmptyMeansAll(t *testing.T) {
	s, gw := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis", "postgres"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	result, err := s.handleDeactivateServers(ctx, makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.DeactivationReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.ElementsMatch(t, []string{"redis", "postgres"}, report.Deactivated)
	assert.False(t, gw.IsEnabled("redis"))
	assert.False(t, gw.IsEnabled("postgres"))
}

func TestHandleGetStatus(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	result, err := s.handleGetStatus(ctx, makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.StatusReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, 1, report.ActiveCount)
	assert.Equal(t, 4, report.AvailableCount)
	require.Len(t, report.Active, 1)
	assert.Equal(t, "redis", report.Active[0].Server)
	assert.Equal(t, 2, report.Active[0].ToolCount)
}

func TestHandleUsageStats(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)
	s.orch.RecordUse("redis")

	result, err := s.handleUsageStats(ctx, makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp usageStatsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, 1, resp.Stats.TotalEvents)
	assert.Equal(t, 1, resp.Stats.Successful)
	assert.EqualValues(t, 1, resp.UseCounts["redis"])
	assert.NotEmpty(t, resp.Recent)
}

func TestHandleReclaimIdle(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	// Freshly activated servers are within any sane threshold.
	result, err := s.handleReclaimIdle(ctx, makeReq(map[string]interface{}{
		"threshold_minutes": float64(10),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.ReclaimReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Empty(t, report.Reclaimed)
	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, "10m0s", report.Threshold)
}

func TestHandleReclaimIdleNegativeThreshold(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleReclaimIdle(context.Background(), makeReq(map[string]interface{}{
		"threshold_minutes": float64(-3),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleSyncState(t *testing.T) {
	s, gw := newTestServer(t)
	gw.MarkEnabled("postgres")

	result, err := s.handleSyncState(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var report orchestrator.SyncReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, []string{"postgres"}, report.Added)
	assert.Equal(t, []string{"postgres"}, report.Active)
}

func TestHandleSyncStateGatewayFailure(t *testing.T) {
	s, gw := newTestServer(t)
	gw.FailListEnabled(assert.AnError)

	result, err := s.handleSyncState(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Sync failed")
}

func TestHandleGetCapabilities(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetCapabilities(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp capabilitiesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, 4, resp.Count)
	assert.Empty(t, resp.Technology)
}

func TestHandleGetCapabilitiesFiltered(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetCapabilities(context.Background(), makeReq(map[string]interface{}{
		"technology": "caching",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp capabilitiesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "redis", resp.Servers[0].Name)

	result, err = s.handleGetCapabilities(context.Background(), makeReq(map[string]interface{}{
		"technology": "cobol",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var empty capabilitiesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &empty))
	assert.Zero(t, empty.Count)
}

func TestHandleServerInfo(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleServerInfo(ctx, makeReq(map[string]interface{}{
		"server": "redis",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp serverInfoResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, "redis", resp.Descriptor.Name)
	assert.False(t, resp.Active)
	assert.Nil(t, resp.Record)

	_, err = s.handleActivateServers(ctx, makeReq(map[string]interface{}{
		"servers":           []string{"redis"},
		"auto_resolve_deps": false,
	}))
	require.NoError(t, err)

	result, err = s.handleServerInfo(ctx, makeReq(map[string]interface{}{
		"server": "redis",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Record)
	assert.Len(t, resp.Record.Tools, 2)
}

func TestHandleServerInfoUnknown(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleServerInfo(context.Background(), makeReq(map[string]interface{}{
		"server": "ghost",
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown server")
}

func TestHandleListProfiles(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleListProfiles(context.Background(), makeReq(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp profilesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, 6, resp.Count)

	names := make([]string, 0, resp.Count)
	for _, p := range resp.Profiles {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "web-development")
	assert.Contains(t, names, "documentation")
}
