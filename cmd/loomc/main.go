// Package main implements the loomc CLI: compile-time expansion of author
// vocabulary into canonical instructions with lineage receipts.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/loomweaver/loomc/internal/config"
	"github.com/loomweaver/loomc/internal/logging"
)

var (
	// configPath is the optional config file location
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loomc",
	Short: "Verb-expansion compiler for author outlines",
	Long: `loomc resolves author-facing vocabulary ("Report", "Summarize", ...) into
canonical instructions, enforces capability requirements, and emits lineage
receipts tying every instruction back to the verb and vocabulary document
that produced it.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/loomc/config.yaml)")
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(tableCmd)
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
