package compile

import "github.com/loomweaver/loomc/internal/capability"

// Options is the run configuration supplied by the command surface.
type Options struct {
	// RejectUnknownVerbs escalates unresolved verbs from warnings to
	// node-blocking errors.
	RejectUnknownVerbs bool

	// CapabilityMode switches the gate from warn (fail open) to block.
	CapabilityMode capability.Mode

	// Grants is the set of capability tokens granted for this run.
	Grants []string

	// PassThroughCanonical lets a raw verb that is itself canonical and has
	// no mapping expand to a single instruction of that verb instead of
	// being treated as unknown.
	PassThroughCanonical bool
}
