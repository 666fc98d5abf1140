package vocab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbMapping_UnmarshalSimple(t *testing.T) {
	var m VerbMapping
	err := json.Unmarshal([]byte(`{"to":"Make","op":"format.compose","defaultInto":"draft","capability":"audio:tts"}`), &m)
	require.NoError(t, err)

	require.True(t, m.IsSimple())
	assert.False(t, m.IsComposed())
	assert.Equal(t, VerbMake, m.Simple.To)
	assert.Equal(t, "format.compose", m.Simple.Op)
	assert.Equal(t, "draft", m.Simple.DefaultInto)
	assert.Equal(t, "audio:tts", m.Simple.Capability)
	assert.Equal(t, "Make", m.Label())
}

func TestVerbMapping_UnmarshalComposed(t *testing.T) {
	var m VerbMapping
	err := json.Unmarshal([]byte(`{"steps":[{"to":"Make","op":"format.compose"},{"to":"Show","sink":"stdout"}]}`), &m)
	require.NoError(t, err)

	require.True(t, m.IsComposed())
	assert.False(t, m.IsSimple())
	require.Len(t, m.Steps, 2)
	assert.Equal(t, VerbShow, m.Steps[1].To)
	assert.Equal(t, "stdout", m.Steps[1].Sink)
	assert.Equal(t, "Make+Show", m.Label())
}

func TestVerbMapping_Validate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"simple ok", `{"to":"Show"}`, nil},
		{"composed ok", `{"steps":[{"to":"Call"}]}`, nil},
		{"neither form", `{"op":"format.compose"}`, ErrInvalidMapping},
		{"both forms", `{"to":"Make","steps":[{"to":"Show"}]}`, ErrAmbiguousMapping},
		{"zero steps", `{"steps":[]}`, ErrEmptySteps},
		{"non-canonical simple", `{"to":"Teleport"}`, ErrNotCanonical},
		{"non-canonical in steps", `{"steps":[{"to":"Make"},{"to":"Zap"}]}`, ErrNotCanonical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m VerbMapping
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			err := m.Validate("doc.json: verbs.X")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "doc.json: verbs.X")
		})
	}
}

func TestCanonicalVerb_Valid(t *testing.T) {
	for _, v := range CanonicalVerbs() {
		assert.True(t, v.Valid(), "%s should be canonical", v)
	}
	assert.False(t, CanonicalVerb("Summarize").Valid())
	assert.False(t, CanonicalVerb("make").Valid(), "canonical verbs are case-sensitive")
}
