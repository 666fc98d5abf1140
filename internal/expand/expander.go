package expand

import (
	"fmt"

	"github.com/loomweaver/loomc/internal/vocab"
)

// Expand produces the ordered canonical step sequence for one resolved
// mapping. A simple mapping yields a one-step sequence; a composed mapping
// yields its step list unchanged. Pure function, no I/O.
//
// Load-time validation already rejects malformed mappings, but the expander
// defends against them anyway rather than assuming them away.
func Expand(m *vocab.VerbMapping) ([]vocab.VerbStep, error) {
	switch {
	case m == nil:
		return nil, vocab.ErrInvalidMapping
	case m.Simple != nil && m.Steps != nil:
		return nil, vocab.ErrAmbiguousMapping
	case m.Simple != nil:
		return []vocab.VerbStep{*m.Simple}, nil
	case m.Steps != nil:
		if len(m.Steps) == 0 {
			return nil, vocab.ErrEmptySteps
		}
		return append([]vocab.VerbStep(nil), m.Steps...), nil
	default:
		return nil, vocab.ErrInvalidMapping
	}
}

// Label returns the "+"-joined canonical verbs of an expanded step sequence.
func Label(steps []vocab.VerbStep) string {
	if len(steps) == 0 {
		return ""
	}
	label := string(steps[0].To)
	for _, s := range steps[1:] {
		label = fmt.Sprintf("%s+%s", label, s.To)
	}
	return label
}
