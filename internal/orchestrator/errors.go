package orchestrator

import (
	"errors"
	"fmt"
)

// ErrUnknownServer marks requests naming a server the registry does not
// know. These are caller errors: the ledger is never touched and no
// gateway call is made.
var ErrUnknownServer = errors.New("unknown server")

// ActivationError reports a gateway refusal or timeout while enabling a
// server. Diagnostic carries the gateway's message verbatim.
type ActivationError struct {
	Server     string
	Diagnostic string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activating %s: %s", e.Server, e.Diagnostic)
}

// DeactivationError reports a gateway refusal while disabling a server.
type DeactivationError struct {
	Server     string
	Diagnostic string
}

func (e *DeactivationError) Error() string {
	return fmt.Sprintf("deactivating %s: %s", e.Server, e.Diagnostic)
}
