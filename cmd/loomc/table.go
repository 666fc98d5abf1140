package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loomweaver/loomc/internal/config"
	"github.com/loomweaver/loomc/internal/vocab"
)

var tableFlags struct {
	overlays []string
	pretty   bool
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the effective verb table and conflicts",
	Long: `Table loads the core document and the requested overlays, merges them, and
prints the effective verb table plus every verb defined by more than one
domain. Diagnostics only; conflicts never block compilation.

Examples:
  # Who provides each verb once the research overlay is applied?
  loomc table --overlay research --pretty`,
	RunE: runTable,
}

func init() {
	f := tableCmd.Flags()
	f.StringArrayVar(&tableFlags.overlays, "overlay", nil, "overlay pack to include, a name or path (may repeat)")
	f.BoolVar(&tableFlags.pretty, "pretty", true, "pretty-print output JSON")
}

func runTable(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	names := cfg.Vocabulary.Overlays
	if len(tableFlags.overlays) > 0 {
		names = tableFlags.overlays
	}
	overlayPaths := make([]string, 0, len(names))
	for _, name := range names {
		overlayPaths = append(overlayPaths, config.ResolveOverlayPath(cfg.Vocabulary.Dir, name))
	}
	corePath := config.ResolveOverlayPath(cfg.Vocabulary.Dir, cfg.Vocabulary.Core)

	reg, err := vocab.Load(cmd.Context(), vocab.FileLoader{}, corePath, overlayPaths, log)
	if err != nil {
		return err
	}

	out := struct {
		Domains   []string                  `json:"domains"`
		Table     map[string]vocab.Provider `json:"table"`
		Conflicts map[string][]string       `json:"conflicts"`
	}{
		Domains:   reg.Domains(),
		Table:     reg.EffectiveTable(),
		Conflicts: reg.Conflicts(),
	}

	var data []byte
	if tableFlags.pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
