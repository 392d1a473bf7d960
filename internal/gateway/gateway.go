package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"conductor/internal/config"
	"conductor/pkg/logging"
)

// ToolDef describes one tool a backend server exposes, as reported by the
// gateway's tool listing.
type ToolDef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Gateway is the control boundary for backend MCP servers. The gateway is
// the ground truth for which servers actually run; the orchestrator's ledger
// only mirrors it.
type Gateway interface {
	// Enable starts the named server. The returned error carries the
	// gateway's diagnostic when the start fails.
	Enable(ctx context.Context, server string) error

	// Disable stops the named server.
	Disable(ctx context.Context, server string) error

	// ListTools reports the tools the named server exposes.
	ListTools(ctx context.Context, server string) ([]ToolDef, error)

	// ListEnabled reports the names of all currently enabled servers.
	ListEnabled(ctx context.Context) ([]string, error)
}

// CLI drives backend servers through an external command line, by default
// the docker mcp plugin. Every invocation is bounded by a timeout derived
// from configuration; a timeout is reported as a failure with a definite
// diagnostic, never as an indefinite hang.
type CLI struct {
	command         []string
	timeout         time.Duration
	toolListTimeout time.Duration
	runner          CommandRunner
}

// NewCLI builds a CLI gateway from configuration. A nil runner selects
// ExecRunner; tests inject a FakeRunner instead.
func NewCLI(cfg config.GatewayConfig, runner CommandRunner) *CLI {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CLI{
		command:         cfg.Command,
		timeout:         cfg.Timeout(),
		toolListTimeout: cfg.ToolListTimeout(),
		runner:          runner,
	}
}

// Enable starts the named backend server.
func (c *CLI) Enable(ctx context.Context, server string) error {
	_, err := c.run(ctx, c.timeout, "server", "enable", server)
	return err
}

// Disable stops the named backend server.
func (c *CLI) Disable(ctx context.Context, server string) error {
	_, err := c.run(ctx, c.timeout, "server", "disable", server)
	return err
}

// ListEnabled reports which servers the gateway currently runs.
func (c *CLI) ListEnabled(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, c.timeout, "server", "ls")
	if err != nil {
		return nil, err
	}
	return parseServerList(out), nil
}

// ListTools reports the tools the named server exposes. Listing uses its
// own, shorter timeout because it runs on the activation hot path.
func (c *CLI) ListTools(ctx context.Context, server string) ([]ToolDef, error) {
	out, err := c.run(ctx, c.toolListTimeout, "tools", "list", "--server", server)
	if err != nil {
		return nil, err
	}
	return parseToolList(out), nil
}

// run invokes the gateway CLI with the configured command prefix under a
// bounded context. It returns trimmed stdout on success. On failure the
// error carries the most specific diagnostic available: the timeout, a
// missing binary, trimmed stderr, or trimmed stdout as a last resort.
func (c *CLI) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	if len(c.command) == 0 {
		return "", errors.New("gateway command is not configured")
	}
	argv := append(append([]string{}, c.command...), args...)

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logging.Debug("Gateway", "Running %s", strings.Join(argv, " "))
	stdout, stderr, err := c.runner.Run(runCtx, argv[0], argv[1:]...)
	if err == nil {
		return strings.TrimSpace(stdout), nil
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return "", fmt.Errorf("%s timed out after %s", strings.Join(argv, " "), timeout)
	case runCtx.Err() != nil:
		return "", runCtx.Err()
	case errors.Is(err, exec.ErrNotFound):
		return "", fmt.Errorf("%s not found, is the gateway CLI installed?", argv[0])
	}

	diagnostic := strings.TrimSpace(stderr)
	if diagnostic == "" {
		diagnostic = strings.TrimSpace(stdout)
	}
	if diagnostic == "" {
		diagnostic = err.Error()
	}
	return "", errors.New(diagnostic)
}

// parseServerList extracts server names from tabular `server ls` output.
// Header and separator lines are skipped; the name is the first column.
func parseServerList(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "NAME") || strings.HasPrefix(line, "-") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

// parseToolList accepts the three output shapes gateway CLI versions emit:
// a JSON array of tool objects, a JSON array of tool names, an object with
// a "tools" field, or a plain text table with one tool per line.
func parseToolList(out string) []ToolDef {
	if out == "" {
		return nil
	}

	var defs []ToolDef
	if err := json.Unmarshal([]byte(out), &defs); err == nil {
		return defs
	}

	var names []string
	if err := json.Unmarshal([]byte(out), &names); err == nil {
		for _, name := range names {
			defs = append(defs, ToolDef{Name: name})
		}
		return defs
	}

	var wrapped struct {
		Tools []ToolDef `json:"tools"`
	}
	if err := json.Unmarshal([]byte(out), &wrapped); err == nil && wrapped.Tools != nil {
		return wrapped.Tools
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "TOOL") || strings.HasPrefix(line, "-") {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		def := ToolDef{Name: parts[0]}
		if len(parts) == 2 {
			def.Description = strings.TrimSpace(parts[1])
		}
		defs = append(defs, def)
	}
	return defs
}
