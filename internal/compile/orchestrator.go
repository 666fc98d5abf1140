package compile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomweaver/loomc/internal/capability"
	"github.com/loomweaver/loomc/internal/expand"
	"github.com/loomweaver/loomc/internal/logging"
	"github.com/loomweaver/loomc/internal/metrics"
	"github.com/loomweaver/loomc/internal/receipt"
	"github.com/loomweaver/loomc/internal/vocab"
)

// Orchestrator expands author nodes against one immutable registry. It is
// safe to reuse across runs: every run owns its own slot counter and output
// sequences.
type Orchestrator struct {
	reg     *vocab.Registry
	opts    Options
	gate    capability.Gate
	log     *logging.Logger
	metrics *metrics.Metrics
}

// New builds an orchestrator. log and m may be nil.
func New(reg *vocab.Registry, opts Options, log *logging.Logger, m *metrics.Metrics) *Orchestrator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Orchestrator{
		reg:     reg,
		opts:    opts,
		gate:    capability.NewGate(opts.Grants, opts.CapabilityMode),
		log:     log.Named("compile"),
		metrics: m,
	}
}

// Run expands nodes in input order and returns the run's instruction,
// receipt, warning and error sequences. Recoverable conditions (unknown
// verbs, missing capabilities, invalid mappings) are recorded in the
// sequences; nothing is raised.
func (o *Orchestrator) Run(ctx context.Context, nodes []AuthorNode) *Result {
	res := &Result{
		RunID:        uuid.NewString(),
		Instructions: []Instruction{},
		Receipts:     []receipt.Receipt{},
		Warnings:     []string{},
		Errors:       []string{},
	}
	ctx = logging.WithRunID(ctx, res.RunID)

	th := expand.NewThreader()
	res.Instructions = o.expandNodes(ctx, nodes, th, res)

	o.log.Info(ctx, "run complete",
		zap.Int("nodes", len(nodes)),
		zap.Int("instructions", len(res.Instructions)),
		zap.Int("receipts", len(res.Receipts)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

// expandNodes expands a node sequence, returning its instructions. Receipts,
// warnings and errors accumulate on res so nested sequences stay in
// encounter order. The threader is shared across the whole run for slot
// uniqueness, but the implicit-value chain restarts at every node.
func (o *Orchestrator) expandNodes(ctx context.Context, nodes []AuthorNode, th *expand.Threader, res *Result) []Instruction {
	out := make([]Instruction, 0, len(nodes))
	for _, node := range nodes {
		provider, ok := o.reg.Lookup(node.Verb)
		if !ok {
			if o.opts.PassThroughCanonical && vocab.CanonicalVerb(node.Verb).Valid() {
				step := vocab.VerbStep{To: vocab.CanonicalVerb(node.Verb)}
				out = append(out, o.emitSteps(ctx, node, vocab.Provider{}, node.Verb, []vocab.VerbStep{step}, th, res)...)
				continue
			}
			o.recordUnknown(ctx, node, res)
			continue
		}

		steps, err := expand.Expand(provider.Mapping)
		if err != nil {
			msg := fmt.Sprintf("invalid mapping for verb %q: %v", node.Verb, err)
			res.Errors = append(res.Errors, msg)
			o.log.Error(ctx, "invalid mapping", zap.String("verb", node.Verb), zap.Error(err))
			continue
		}

		out = append(out, o.emitSteps(ctx, node, provider, expand.Label(steps), steps, th, res)...)
	}
	return out
}

// emitSteps runs the per-step pipeline for one resolved node: merge args,
// thread values, gate capabilities, emit the receipt, then the instruction.
func (o *Orchestrator) emitSteps(ctx context.Context, node AuthorNode, provider vocab.Provider, label string, steps []vocab.VerbStep, th *expand.Threader, res *Result) []Instruction {
	if o.metrics != nil {
		o.metrics.NodesExpandedTotal.Inc()
	}

	out := make([]Instruction, 0, len(steps))
	last := ""
	for i, step := range steps {
		args := cloneAuthorArgs(node.Args)

		var produced string
		produced, last = th.Thread(step, args, last)

		dec := o.gate.Check(step.Capability)
		o.recordDecision(ctx, node, i, step, dec, res)

		// Receipt first: it captures the step's arguments as authored,
		// before any nested expansion rewrites them.
		res.Receipts = append(res.Receipts, receipt.Emit(
			node.Verb, label, provider, i, step, args, dec, o.gate.Mode(), node.Location,
		))

		o.expandNested(ctx, step, args, th, res)

		out = append(out, Instruction{
			To:                string(step.To),
			Op:                step.Op,
			Sink:              step.Sink,
			Kind:              step.Kind,
			DefaultInto:       step.DefaultInto,
			Args:              args,
			ProducedValueSlot: produced,
		})
		if o.metrics != nil {
			o.metrics.StepsEmittedTotal.Inc()
		}
	}
	return out
}

// recordUnknown books an unresolved verb: one warning, or one error when
// the run rejects unknown verbs. The node contributes nothing else.
func (o *Orchestrator) recordUnknown(ctx context.Context, node AuthorNode, res *Result) {
	msg := fmt.Sprintf("unknown verb %q", node.Verb)
	if node.Location != nil {
		msg = fmt.Sprintf("unknown verb %q at line %d, column %d", node.Verb, node.Location.Line, node.Location.Column)
	}
	policy := "warn"
	if o.opts.RejectUnknownVerbs {
		policy = "error"
		res.Errors = append(res.Errors, msg)
		o.log.Error(ctx, "unknown verb", zap.String("verb", node.Verb))
	} else {
		res.Warnings = append(res.Warnings, msg)
		o.log.Warn(ctx, "unknown verb", zap.String("verb", node.Verb))
	}
	if o.metrics != nil {
		o.metrics.UnknownVerbsTotal.WithLabelValues(policy).Inc()
	}
}

// recordDecision books the gate verdict for one step. The step's
// instruction and receipt are still emitted either way; block mode only
// adds the compilation error.
func (o *Orchestrator) recordDecision(ctx context.Context, node AuthorNode, stepIndex int, step vocab.VerbStep, dec capability.Decision, res *Result) {
	if dec.Reason == "" {
		return
	}
	msg := fmt.Sprintf("verb %q step %d: %s", node.Verb, stepIndex, dec.Reason)
	if dec.Allowed {
		res.Warnings = append(res.Warnings, msg)
		o.log.Warn(ctx, "capability missing",
			zap.String("verb", node.Verb),
			zap.String("capability", step.Capability),
		)
	} else {
		res.Errors = append(res.Errors, msg)
		o.log.Error(ctx, "capability denied",
			zap.String("verb", node.Verb),
			zap.String("capability", step.Capability),
		)
	}
	if o.metrics != nil {
		o.metrics.CapabilityDenialsTotal.WithLabelValues(string(o.gate.Mode())).Inc()
	}
}

// cloneAuthorArgs copies the author argument map so each step owns its
// merged arguments. Nested maps and slices are copied too: nested expansion
// rewrites them in place.
func cloneAuthorArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneAuthorArgs(tv)
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
