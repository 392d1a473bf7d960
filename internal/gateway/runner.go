package gateway

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes one gateway CLI invocation and returns the output
// of both streams. Implementations must honor context cancellation so the
// caller's timeout bounds the invocation.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner runs commands through os/exec. This is the production runner.
type ExecRunner struct{}

// Run executes the command and captures stdout and stderr separately.
// A non-zero exit status is returned as the error from exec.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// FakeResult is one scripted outcome for a FakeRunner invocation.
type FakeResult struct {
	Stdout string
	Stderr string
	Err    error
}

// FakeRunner is a CommandRunner for tests. Outcomes are keyed by the full
// command line (name and arguments joined by spaces); invocations without a
// scripted outcome return empty output and no error.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string]FakeResult
	calls   []string
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: make(map[string]FakeResult)}
}

// Script registers the outcome returned when commandLine is invoked.
func (f *FakeRunner) Script(commandLine string, result FakeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[commandLine] = result
}

// Run records the invocation and replays the scripted outcome, if any.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	res := f.results[line]
	return res.Stdout, res.Stderr, res.Err
}

// Calls returns every recorded command line in invocation order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
