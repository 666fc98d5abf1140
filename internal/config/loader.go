package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// defaultYAML seeds the koanf tree so file and env layers only override.
var defaultYAML = []byte(`
vocabulary:
  dir: overlays
  core: verbs.core.json
policy:
  reject_unknown_verbs: false
  block_capabilities: false
  passthrough_canonical: false
logging:
  level: info
  format: json
`)

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (LOOMC_POLICY_BLOCK_CAPABILITIES, ...)
//  2. YAML config file (~/.config/loomc/config.yaml by default)
//  3. Hardcoded defaults
//
// Environment variables are prefixed with LOOMC_, lowercased and split on
// the first underscore after the prefix:
//
//	LOOMC_VOCABULARY_DIR            -> vocabulary.dir
//	LOOMC_POLICY_REJECT_UNKNOWN_VERBS -> policy.reject_unknown_verbs
//	LOOMC_LOGGING_LEVEL             -> logging.level
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := configPath != ""
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "loomc", "config.yaml")
	}

	if info, err := os.Stat(configPath); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	// Environment overrides. Split on the first underscore only: section,
	// then field name with its underscores intact.
	if err := k.Load(env.Provider("LOOMC_", ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, "LOOMC_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults fills values the koanf layers left empty.
func applyDefaults(cfg *Config) {
	def := NewDefaultConfig()
	if cfg.Vocabulary.Dir == "" {
		cfg.Vocabulary.Dir = def.Vocabulary.Dir
	}
	if cfg.Vocabulary.Core == "" {
		cfg.Vocabulary.Core = def.Vocabulary.Core
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Fields == nil {
		cfg.Logging.Fields = def.Logging.Fields
	}
}

// ResolveOverlayPath turns an overlay name into a document path under dir.
// Anything that already looks like a path (contains a separator or a .json
// suffix) passes through, resolved against dir when relative.
func ResolveOverlayPath(dir, nameOrPath string) string {
	if strings.ContainsRune(nameOrPath, os.PathSeparator) || strings.HasSuffix(nameOrPath, ".json") {
		if filepath.IsAbs(nameOrPath) || dir == "" {
			return nameOrPath
		}
		return filepath.Join(dir, nameOrPath)
	}
	return filepath.Join(dir, fmt.Sprintf("verbs.%s.json", nameOrPath))
}
