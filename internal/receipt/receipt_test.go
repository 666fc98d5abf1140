package receipt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomweaver/loomc/internal/capability"
	"github.com/loomweaver/loomc/internal/vocab"
)

func sampleReceipt() Receipt {
	return Emit(
		"Report",
		"Make+Show",
		vocab.Provider{Domain: "core", Version: "1.0"},
		1,
		vocab.VerbStep{To: vocab.VerbShow, Sink: "stdout", Capability: "network:fetch"},
		map[string]any{"text": "hi", "value": map[string]any{"ref": "slot0"}},
		capability.Decision{Allowed: true, Reason: `capability "network:fetch" not granted`},
		capability.ModeWarn,
		&vocab.Location{Line: 3, Column: 7},
	)
}

func TestEmit_Fields(t *testing.T) {
	r := sampleReceipt()

	assert.Equal(t, "Report", r.RawVerb)
	assert.Equal(t, "Make+Show", r.MappedVerb)
	assert.Equal(t, "core", r.OverlayDomain)
	assert.Equal(t, "1.0", r.OverlayVersion)

	assert.Equal(t, "warn", r.CapabilityCheck.Mode)
	assert.Equal(t, "network:fetch", r.CapabilityCheck.Capability)
	assert.True(t, r.CapabilityCheck.Allowed)
	assert.NotEmpty(t, r.CapabilityCheck.Reason)

	assert.Equal(t, 1, r.Details.StepIndex)
	assert.Equal(t, "Show", r.Details.To)
	assert.Equal(t, "stdout", r.Details.Sink)
	require.NotNil(t, r.Details.Location)
	assert.Equal(t, 3, r.Details.Location.Line)
}

// The outer receipt shape is additive-only: these keys are frozen and must
// always be present in the serialized form.
func TestReceipt_FrozenOuterShape(t *testing.T) {
	data, err := json.Marshal(sampleReceipt())
	require.NoError(t, err)

	var outer map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &outer))
	for _, key := range []string{"rawVerb", "mappedVerb", "overlayDomain", "overlayVersion", "capabilityCheck", "details"} {
		assert.Contains(t, outer, key)
	}

	var check map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(outer["capabilityCheck"], &check))
	assert.Contains(t, check, "mode")
	assert.Contains(t, check, "allowed")

	var details map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(outer["details"], &details))
	assert.Contains(t, details, "stepIndex")
	assert.Contains(t, details, "to")
	assert.Contains(t, details, "args")
}

func TestEmit_ArgsDeepCopied(t *testing.T) {
	args := map[string]any{
		"text":     "hi",
		"branches": []any{map[string]any{"steps": []any{"placeholder"}}},
	}
	r := Emit("Report", "Show", vocab.Provider{}, 0, vocab.VerbStep{To: vocab.VerbShow}, args, capability.Decision{Allowed: true}, capability.ModeWarn, nil)

	args["text"] = "rewritten"
	args["branches"].([]any)[0].(map[string]any)["steps"] = "rewritten"

	assert.Equal(t, "hi", r.Details.Args["text"])
	branch := r.Details.Args["branches"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"placeholder"}, branch["steps"], "nested rewrites must not reach emitted receipts")
}

func TestEmit_NilArgs(t *testing.T) {
	r := Emit("Say", "Show", vocab.Provider{}, 0, vocab.VerbStep{To: vocab.VerbShow}, nil, capability.Decision{Allowed: true}, capability.ModeWarn, nil)
	require.NotNil(t, r.Details.Args)
	assert.Empty(t, r.Details.Args)
}
