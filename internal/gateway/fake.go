package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Fake is an in-memory Gateway for tests. It tracks which servers are
// enabled, replays scripted failures and records every call so tests can
// assert on boundary traffic.
type Fake struct {
	mu           sync.Mutex
	enabled      map[string]bool
	tools        map[string][]ToolDef
	enableErrs   map[string]string
	disableErrs  map[string]string
	toolsErrs    map[string]string
	listErr      error
	calls        []string
	enableCount  map[string]int
	disableCount map[string]int
}

// NewFake returns an empty Fake with no servers enabled.
func NewFake() *Fake {
	return &Fake{
		enabled:      make(map[string]bool),
		tools:        make(map[string][]ToolDef),
		enableErrs:   make(map[string]string),
		disableErrs:  make(map[string]string),
		toolsErrs:    make(map[string]string),
		enableCount:  make(map[string]int),
		disableCount: make(map[string]int),
	}
}

// SetTools scripts the tool listing returned for server.
func (f *Fake) SetTools(server string, tools []ToolDef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tools[server] = tools
}

// FailEnable makes Enable for server fail with the given diagnostic.
func (f *Fake) FailEnable(server, diagnostic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enableErrs[server] = diagnostic
}

// FailDisable makes Disable for server fail with the given diagnostic.
func (f *Fake) FailDisable(server, diagnostic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disableErrs[server] = diagnostic
}

// FailListTools makes ListTools for server fail with the given diagnostic.
func (f *Fake) FailListTools(server, diagnostic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toolsErrs[server] = diagnostic
}

// FailListEnabled makes ListEnabled fail with err.
func (f *Fake) FailListEnabled(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// MarkEnabled pre-seeds servers as already running at the gateway, without
// going through Enable. Used to simulate out-of-band state for sync tests.
func (f *Fake) MarkEnabled(servers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range servers {
		f.enabled[s] = true
	}
}

// MarkDisabled removes servers at the gateway without going through Disable,
// simulating servers stopped behind the orchestrator's back.
func (f *Fake) MarkDisabled(servers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range servers {
		delete(f.enabled, s)
	}
}

// Enable implements Gateway.
func (f *Fake) Enable(ctx context.Context, server string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "enable "+server)
	f.enableCount[server]++
	if diag, ok := f.enableErrs[server]; ok {
		return errors.New(diag)
	}
	f.enabled[server] = true
	return nil
}

// Disable implements Gateway. A scripted failure leaves the server enabled,
// mirroring a real gateway that refused to stop it.
func (f *Fake) Disable(ctx context.Context, server string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disable "+server)
	f.disableCount[server]++
	if diag, ok := f.disableErrs[server]; ok {
		return errors.New(diag)
	}
	delete(f.enabled, server)
	return nil
}

// ListTools implements Gateway.
func (f *Fake) ListTools(ctx context.Context, server string) ([]ToolDef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "tools "+server)
	if diag, ok := f.toolsErrs[server]; ok {
		return nil, errors.New(diag)
	}
	out := make([]ToolDef, len(f.tools[server]))
	copy(out, f.tools[server])
	return out, nil
}

// ListEnabled implements Gateway, returning enabled servers sorted by name.
func (f *Fake) ListEnabled(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ls")
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, 0, len(f.enabled))
	for name := range f.enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// IsEnabled reports whether server is currently enabled at the fake.
func (f *Fake) IsEnabled(server string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled[server]
}

// EnableCalls returns how many times Enable was invoked for server.
func (f *Fake) EnableCalls(server string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enableCount[server]
}

// DisableCalls returns how many times Disable was invoked for server.
func (f *Fake) DisableCalls(server string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disableCount[server]
}

// Calls returns every recorded gateway call in order, formatted as
// "<verb> <server>".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// String renders the fake state for test failure messages. It does not
// count as a recorded call.
func (f *Fake) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.enabled))
	for name := range f.enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("fake gateway, enabled: %v", names)
}

var (
	_ Gateway = (*CLI)(nil)
	_ Gateway = (*Fake)(nil)
)
