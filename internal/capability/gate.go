// Package capability evaluates declared capability requirements against the
// set of capability tokens granted for one compilation run.
//
// Tokens are opaque strings (e.g. "network:fetch"); their semantics live
// outside the compiler. The gate is two-mode: warn lets a missing capability
// through with a recorded reason so exploratory authoring is never blocked
// by default, block turns it into a compilation error.
package capability

import "fmt"

// Mode selects the gate policy for missing capabilities.
type Mode string

const (
	// ModeWarn allows steps with missing capabilities and records a reason.
	ModeWarn Mode = "warn"
	// ModeBlock refuses steps with missing capabilities.
	ModeBlock Mode = "block"
)

// Decision is the gate's verdict for one step.
type Decision struct {
	Allowed bool
	Reason  string
}

// Gate checks step capability requirements against a fixed grant set.
// The grant set is supplied wholesale per run; the gate never consults or
// mutates any external store.
type Gate struct {
	granted map[string]struct{}
	mode    Mode
}

// NewGate builds a gate from the granted tokens and policy mode. An empty
// or unrecognized mode falls back to warn.
func NewGate(granted []string, mode Mode) Gate {
	if mode != ModeBlock {
		mode = ModeWarn
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	return Gate{granted: set, mode: mode}
}

// Mode returns the gate's policy mode.
func (g Gate) Mode() Mode {
	return g.mode
}

// Check evaluates one step's declared capability. Steps without a declared
// capability are always allowed. A granted capability is allowed without a
// reason. A missing capability is allowed with a reason under warn and
// refused with a reason under block.
func (g Gate) Check(capability string) Decision {
	if capability == "" {
		return Decision{Allowed: true}
	}
	if _, ok := g.granted[capability]; ok {
		return Decision{Allowed: true}
	}
	reason := fmt.Sprintf("capability %q not granted", capability)
	if g.mode == ModeBlock {
		return Decision{Allowed: false, Reason: reason}
	}
	return Decision{Allowed: true, Reason: reason}
}
