package vocab

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CanonicalVerb is one of the fixed, executor-level primitive instructions
// a vocabulary mapping is allowed to produce.
type CanonicalVerb string

const (
	VerbMake   CanonicalVerb = "Make"
	VerbShow   CanonicalVerb = "Show"
	VerbAsk    CanonicalVerb = "Ask"
	VerbChoose CanonicalVerb = "Choose"
	VerbRepeat CanonicalVerb = "Repeat"
	VerbCall   CanonicalVerb = "Call"
	VerbReturn CanonicalVerb = "Return"
)

var canonicalVerbs = map[CanonicalVerb]struct{}{
	VerbMake:   {},
	VerbShow:   {},
	VerbAsk:    {},
	VerbChoose: {},
	VerbRepeat: {},
	VerbCall:   {},
	VerbReturn: {},
}

// Valid reports whether v belongs to the closed canonical set.
func (v CanonicalVerb) Valid() bool {
	_, ok := canonicalVerbs[v]
	return ok
}

// CanonicalVerbs returns the closed set in stable order.
func CanonicalVerbs() []CanonicalVerb {
	return []CanonicalVerb{VerbMake, VerbShow, VerbAsk, VerbChoose, VerbRepeat, VerbCall, VerbReturn}
}

// Location is a source position in the author outline.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// VerbStep is one canonical expansion step of a verb mapping.
type VerbStep struct {
	To          CanonicalVerb `json:"to"`
	Op          string        `json:"op,omitempty"`
	Sink        string        `json:"sink,omitempty"`
	Kind        string        `json:"kind,omitempty"`
	DefaultInto string        `json:"defaultInto,omitempty"`
	Capability  string        `json:"capability,omitempty"`
}

// VerbMapping is a tagged variant: either a simple single-step mapping
// (the "to" form) or a composed ordered step list (the "steps" form).
// Exactly one of Simple and Steps is set after a successful decode of a
// well-formed document; Validate rejects everything else.
type VerbMapping struct {
	Simple *VerbStep
	Steps  []VerbStep
}

// IsSimple reports whether the mapping is the single-step form.
func (m *VerbMapping) IsSimple() bool { return m != nil && m.Simple != nil }

// IsComposed reports whether the mapping is the multi-step form.
func (m *VerbMapping) IsComposed() bool { return m != nil && m.Simple == nil && m.Steps != nil }

// Label returns the "+"-joined canonical verbs of the mapping, the value
// stamped on receipts as mappedVerb.
func (m *VerbMapping) Label() string {
	if m.IsSimple() {
		return string(m.Simple.To)
	}
	parts := make([]string, 0, len(m.Steps))
	for _, s := range m.Steps {
		parts = append(parts, string(s.To))
	}
	return strings.Join(parts, "+")
}

// UnmarshalJSON decodes the tagged variant. Shape errors are deferred to
// Validate so they can be reported with the document path and verb name.
func (m *VerbMapping) UnmarshalJSON(data []byte) error {
	var raw struct {
		To          *CanonicalVerb `json:"to"`
		Op          string         `json:"op"`
		Sink        string         `json:"sink"`
		Kind        string         `json:"kind"`
		DefaultInto string         `json:"defaultInto"`
		Capability  string         `json:"capability"`
		Steps       []VerbStep     `json:"steps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = VerbMapping{}
	if raw.To != nil {
		m.Simple = &VerbStep{
			To:          *raw.To,
			Op:          raw.Op,
			Sink:        raw.Sink,
			Kind:        raw.Kind,
			DefaultInto: raw.DefaultInto,
			Capability:  raw.Capability,
		}
	}
	if raw.Steps != nil {
		m.Steps = raw.Steps
	}
	return nil
}

// MarshalJSON emits the form the mapping was declared in.
func (m VerbMapping) MarshalJSON() ([]byte, error) {
	if m.Simple != nil {
		return json.Marshal(m.Simple)
	}
	return json.Marshal(struct {
		Steps []VerbStep `json:"steps"`
	}{Steps: m.Steps})
}

// Validate checks the tagged-variant shape and canonical-verb membership.
// The at argument qualifies errors with the document path and verb key.
func (m *VerbMapping) Validate(at string) error {
	switch {
	case m == nil:
		return fmt.Errorf("%s: %w", at, ErrInvalidMapping)
	case m.Simple != nil && m.Steps != nil:
		return fmt.Errorf("%s: %w", at, ErrAmbiguousMapping)
	case m.Simple != nil:
		if !m.Simple.To.Valid() {
			return fmt.Errorf("%s.to: %q: %w", at, m.Simple.To, ErrNotCanonical)
		}
		return nil
	case m.Steps != nil:
		if len(m.Steps) == 0 {
			return fmt.Errorf("%s.steps: %w", at, ErrEmptySteps)
		}
		for i, s := range m.Steps {
			if !s.To.Valid() {
				return fmt.Errorf("%s.steps[%d].to: %q: %w", at, i, s.To, ErrNotCanonical)
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: %w", at, ErrInvalidMapping)
	}
}
