package compile

import (
	"context"
	"fmt"

	"github.com/loomweaver/loomc/internal/expand"
	"github.com/loomweaver/loomc/internal/vocab"
)

// expandNested recursively expands author steps embedded in a step's
// arguments: Choose branches, Repeat blocks, and generic args.steps lists.
// The rewritten argument maps replace author nodes with canonical
// instructions; receipts for nested steps land on res in encounter order.
func (o *Orchestrator) expandNested(ctx context.Context, step vocab.VerbStep, args map[string]any, th *expand.Threader, res *Result) {
	switch step.To {
	case vocab.VerbChoose:
		branches, ok := args["branches"].([]any)
		if !ok {
			break
		}
		for _, b := range branches {
			branch, ok := b.(map[string]any)
			if !ok {
				continue
			}
			if raw, ok := branch["steps"].([]any); ok {
				branch["steps"] = o.expandNestedList(ctx, raw, th, res)
			}
		}
	case vocab.VerbRepeat:
		switch block := args["block"].(type) {
		case map[string]any:
			if raw, ok := block["steps"].([]any); ok {
				block["steps"] = o.expandNestedList(ctx, raw, th, res)
			}
		case []any:
			args["block"] = map[string]any{"steps": o.expandNestedList(ctx, block, th, res)}
		}
	}

	// Any verb may embed sub-steps directly under args.steps.
	if raw, ok := args["steps"].([]any); ok {
		args["steps"] = o.expandNestedList(ctx, raw, th, res)
	}
}

// expandNestedList converts raw JSON author steps into nodes and expands
// them with the run's shared threader. Entries that are not author-step
// objects are skipped with a warning.
func (o *Orchestrator) expandNestedList(ctx context.Context, raw []any, th *expand.Threader, res *Result) []Instruction {
	nodes := make([]AuthorNode, 0, len(raw))
	for i, entry := range raw {
		node, ok := nodeFromValue(entry)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("nested step %d is not an author step object; skipped", i))
			continue
		}
		nodes = append(nodes, node)
	}
	return o.expandNodes(ctx, nodes, th, res)
}

// nodeFromValue decodes a {verb, args?, location?} object.
func nodeFromValue(v any) (AuthorNode, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return AuthorNode{}, false
	}
	verb, ok := m["verb"].(string)
	if !ok || verb == "" {
		return AuthorNode{}, false
	}
	node := AuthorNode{Verb: verb}
	if args, ok := m["args"].(map[string]any); ok {
		node.Args = args
	}
	if loc, ok := m["location"].(map[string]any); ok {
		node.Location = locationFromValue(loc)
	}
	return node, true
}

func locationFromValue(m map[string]any) *vocab.Location {
	loc := &vocab.Location{}
	if line, ok := m["line"].(float64); ok {
		loc.Line = int(line)
	}
	if col, ok := m["column"].(float64); ok {
		loc.Column = int(col)
	}
	if loc.Line == 0 && loc.Column == 0 {
		return nil
	}
	return loc
}
