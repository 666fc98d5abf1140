package compile

import (
	"github.com/loomweaver/loomc/internal/receipt"
	"github.com/loomweaver/loomc/internal/vocab"
)

// AuthorNode is one author-verb invocation from the outline parser.
type AuthorNode struct {
	Verb     string          `json:"verb"`
	Args     map[string]any  `json:"args,omitempty"`
	Location *vocab.Location `json:"location,omitempty"`
}

// Instruction is one canonical IR unit handed to the external executor.
type Instruction struct {
	To                string         `json:"to"`
	Op                string         `json:"op,omitempty"`
	Sink              string         `json:"sink,omitempty"`
	Kind              string         `json:"kind,omitempty"`
	DefaultInto       string         `json:"defaultInto,omitempty"`
	Args              map[string]any `json:"args"`
	ProducedValueSlot string         `json:"producedValueSlot,omitempty"`
}

// Result is everything one orchestration run produced. The instruction
// sequence goes to the executor, the receipt sequence to the audit sink;
// warnings and errors are ordered and never raised as failures for
// recoverable conditions.
type Result struct {
	RunID        string            `json:"runId"`
	Instructions []Instruction     `json:"instructions"`
	Receipts     []receipt.Receipt `json:"receipts"`
	Warnings     []string          `json:"warnings"`
	Errors       []string          `json:"errors"`
}
