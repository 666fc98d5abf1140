// Package receipt builds the lineage receipts that tie every emitted
// canonical instruction back to the author verb and vocabulary document
// that produced it.
//
// The receipt stream is the audit trail of a compilation: append-only,
// ordered, and reproducible byte-for-byte given identical inputs. The outer
// shape is frozen: rawVerb, mappedVerb, overlayDomain, overlayVersion,
// capabilityCheck and details must always be present with their documented
// semantics. New fields may be added; existing ones are never removed or
// repurposed.
package receipt

import (
	"github.com/loomweaver/loomc/internal/capability"
	"github.com/loomweaver/loomc/internal/vocab"
)

// CapabilityCheck records the gate's verdict for one step.
type CapabilityCheck struct {
	Mode       string `json:"mode"`
	Capability string `json:"capability,omitempty"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason,omitempty"`
}

// Details carries the per-step expansion facts.
type Details struct {
	StepIndex   int             `json:"stepIndex"`
	To          string          `json:"to"`
	Op          string          `json:"op,omitempty"`
	Sink        string          `json:"sink,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	DefaultInto string          `json:"defaultInto,omitempty"`
	Args        map[string]any  `json:"args"`
	Location    *vocab.Location `json:"location,omitempty"`
}

// Receipt is one audit record per expanded step, in step order.
type Receipt struct {
	RawVerb         string          `json:"rawVerb"`
	MappedVerb      string          `json:"mappedVerb"`
	OverlayDomain   string          `json:"overlayDomain"`
	OverlayVersion  string          `json:"overlayVersion"`
	CapabilityCheck CapabilityCheck `json:"capabilityCheck"`
	Details         Details         `json:"details"`
}

// Emit constructs the receipt for one expanded step. Pure construction: the
// orchestrator appends it to the run's receipt sequence in order, and no
// prior record is ever mutated. Args are deep-copied so later argument
// rewriting (nested expansion) cannot reach back into an emitted receipt.
func Emit(rawVerb, mappedVerb string, p vocab.Provider, stepIndex int, step vocab.VerbStep, args map[string]any, dec capability.Decision, mode capability.Mode, loc *vocab.Location) Receipt {
	return Receipt{
		RawVerb:        rawVerb,
		MappedVerb:     mappedVerb,
		OverlayDomain:  p.Domain,
		OverlayVersion: p.Version,
		CapabilityCheck: CapabilityCheck{
			Mode:       string(mode),
			Capability: step.Capability,
			Allowed:    dec.Allowed,
			Reason:     dec.Reason,
		},
		Details: Details{
			StepIndex:   stepIndex,
			To:          string(step.To),
			Op:          step.Op,
			Sink:        step.Sink,
			Kind:        step.Kind,
			DefaultInto: step.DefaultInto,
			Args:        cloneArgs(args),
			Location:    loc,
		},
	}
}

// cloneArgs deep-copies maps and slices; scalars are shared.
func cloneArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneArgs(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
