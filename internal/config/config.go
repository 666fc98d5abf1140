// Package config provides configuration loading for loomc.
package config

import (
	"fmt"

	"github.com/loomweaver/loomc/internal/logging"
)

// Config is the full loomc configuration.
type Config struct {
	Vocabulary VocabularyConfig `koanf:"vocabulary"`
	Policy     PolicyConfig     `koanf:"policy"`
	Logging    logging.Config   `koanf:"logging"`
}

// VocabularyConfig controls which documents are loaded and from where.
type VocabularyConfig struct {
	// Dir is the directory overlay names resolve against
	// (name "research" -> <dir>/verbs.research.json).
	Dir string `koanf:"dir"`

	// Core is the core document path, resolved against Dir when relative.
	Core string `koanf:"core"`

	// Overlays are domain documents loaded after core, in order.
	// Entries may be overlay names or explicit paths.
	Overlays []string `koanf:"overlays"`
}

// PolicyConfig holds the default run policies; CLI flags override them.
type PolicyConfig struct {
	RejectUnknownVerbs   bool     `koanf:"reject_unknown_verbs"`
	BlockCapabilities    bool     `koanf:"block_capabilities"`
	PassthroughCanonical bool     `koanf:"passthrough_canonical"`
	Grants               []string `koanf:"grants"`
}

// NewDefaultConfig returns the hardcoded defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Vocabulary: VocabularyConfig{
			Dir:  "overlays",
			Core: "verbs.core.json",
		},
		Logging: *logging.NewDefaultConfig(),
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Vocabulary.Core == "" {
		return fmt.Errorf("vocabulary.core must not be empty")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
