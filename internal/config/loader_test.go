package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFile_Defaults(t *testing.T) {
	cfg, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "explicit config path must exist")

	// The default path is allowed to be absent.
	t.Setenv("HOME", t.TempDir())
	cfg, err = LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, "overlays", cfg.Vocabulary.Dir)
	assert.Equal(t, "verbs.core.json", cfg.Vocabulary.Core)
	assert.False(t, cfg.Policy.BlockCapabilities)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadWithFile_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vocabulary:
  dir: /etc/loom/overlays
  overlays: [research, audio]
policy:
  block_capabilities: true
  grants: ["network:fetch"]
logging:
  level: debug
`), 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/loom/overlays", cfg.Vocabulary.Dir)
	assert.Equal(t, []string{"research", "audio"}, cfg.Vocabulary.Overlays)
	assert.True(t, cfg.Policy.BlockCapabilities)
	assert.Equal(t, []string{"network:fetch"}, cfg.Policy.Grants)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "verbs.core.json", cfg.Vocabulary.Core, "unset keys keep defaults")
}

func TestLoadWithFile_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  block_capabilities: false\n"), 0o600))

	t.Setenv("LOOMC_POLICY_BLOCK_CAPABILITIES", "true")
	t.Setenv("LOOMC_VOCABULARY_DIR", "/opt/overlays")
	t.Setenv("LOOMC_LOGGING_LEVEL", "warn")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Policy.BlockCapabilities, "env beats file")
	assert.Equal(t, "/opt/overlays", cfg.Vocabulary.Dir)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vocabulary: ["), 0o600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
}

func TestLoadWithFile_InvalidLoggingLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: shouty\n"), 0o600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestResolveOverlayPath(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		in   string
		want string
	}{
		{"name resolves under dir", "overlays", "research", filepath.Join("overlays", "verbs.research.json")},
		{"json file resolves under dir", "overlays", "custom.json", filepath.Join("overlays", "custom.json")},
		{"relative path resolves under dir", "overlays", filepath.Join("sub", "verbs.x.json"), filepath.Join("overlays", "sub", "verbs.x.json")},
		{"absolute path untouched", "overlays", "/abs/verbs.x.json", "/abs/verbs.x.json"},
		{"empty dir keeps json path", "", "custom.json", "custom.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOverlayPath(tt.dir, tt.in))
		})
	}
}
