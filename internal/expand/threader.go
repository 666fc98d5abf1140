package expand

import (
	"fmt"

	"github.com/loomweaver/loomc/internal/vocab"
)

// ValueArgKey is the merged-argument key an implicit value is injected
// under when a consuming step was not given one explicitly.
const ValueArgKey = "value"

// Threader propagates the implicit "produced value" of one step to the next
// step in the same composed chain that needs a value. It is scoped to one
// orchestration run: the slot counter starts at zero for every run and slot
// names are never reused within a run, even across author nodes.
type Threader struct {
	counter int
}

// NewThreader returns a run-local threader with a fresh slot counter.
func NewThreader() *Threader {
	return &Threader{}
}

// Thread applies value threading to one step. It injects a reference to
// last into args when the step consumes a value and the author supplied
// none, and allocates a fresh slot when the step produces one. It returns
// the slot the step produces (empty for non-producing steps) and the "last
// produced slot" the next step in the chain should see.
//
// args is mutated in place; the caller owns it.
func (t *Threader) Thread(step vocab.VerbStep, args map[string]any, last string) (produced, next string) {
	if consumesValue(step.To) && last != "" {
		if _, ok := args[ValueArgKey]; !ok {
			args[ValueArgKey] = map[string]any{"ref": last}
		}
	}
	if producesValue(step.To) {
		produced = t.alloc()
		return produced, produced
	}
	return "", last
}

// alloc returns the next unique slot name for this run.
func (t *Threader) alloc() string {
	name := fmt.Sprintf("slot%d", t.counter)
	t.counter++
	return name
}

// producesValue classifies steps whose execution yields a value: object
// construction or assignment, calls, and prompts.
func producesValue(v vocab.CanonicalVerb) bool {
	switch v {
	case vocab.VerbMake, vocab.VerbCall, vocab.VerbAsk:
		return true
	}
	return false
}

// consumesValue classifies display/sink steps that take an implicit value
// when the author did not name one.
func consumesValue(v vocab.CanonicalVerb) bool {
	switch v {
	case vocab.VerbShow, vocab.VerbReturn:
		return true
	}
	return false
}
