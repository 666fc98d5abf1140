package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loomweaver/loomc/internal/capability"
	"github.com/loomweaver/loomc/internal/compile"
	"github.com/loomweaver/loomc/internal/config"
	"github.com/loomweaver/loomc/internal/logging"
	"github.com/loomweaver/loomc/internal/metrics"
	"github.com/loomweaver/loomc/internal/vocab"
)

var expandFlags struct {
	overlays             []string
	grants               []string
	inFile               string
	outFile              string
	pretty               bool
	rejectUnknownVerbs   bool
	blockCapabilities    bool
	passthroughCanonical bool
	watch                bool
	metricsListen        string
}

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Expand author steps into canonical instructions with receipts",
	Long: `Expand reads author steps (a JSON list of {verb, args} objects), resolves
each verb against the merged vocabulary table (core document first, then the
requested overlays in order), and writes the canonical instruction and
receipt sequences.

Examples:
  # Expand steps with the research overlay, granting network access
  loomc expand --overlay research --grant network:fetch --in steps.json

  # Treat unknown verbs and missing capabilities as errors
  loomc expand --reject-unknown-verbs --block-capabilities --in steps.json

  # Recompile on changes, exposing Prometheus metrics
  loomc expand --in steps.json --out out.json --watch --metrics-listen :9100`,
	RunE: runExpand,
}

func init() {
	f := expandCmd.Flags()
	f.StringArrayVar(&expandFlags.overlays, "overlay", nil, "overlay pack to include, a name or path (may repeat)")
	f.StringArrayVar(&expandFlags.grants, "grant", nil, "grant a capability token (may repeat)")
	f.StringVar(&expandFlags.inFile, "in", "", "input steps JSON file, or - for stdin")
	f.StringVar(&expandFlags.outFile, "out", "", "output JSON file (default stdout)")
	f.BoolVar(&expandFlags.pretty, "pretty", false, "pretty-print output JSON")
	f.BoolVar(&expandFlags.rejectUnknownVerbs, "reject-unknown-verbs", false, "error on verbs without any mapping")
	f.BoolVar(&expandFlags.blockCapabilities, "block-capabilities", false, "block steps with missing capabilities instead of warning")
	f.BoolVar(&expandFlags.passthroughCanonical, "passthrough-canonical", false, "pass unmapped canonical verbs through unchanged")
	f.BoolVar(&expandFlags.watch, "watch", false, "recompile when the input or a vocabulary document changes")
	f.StringVar(&expandFlags.metricsListen, "metrics-listen", "", "address to serve Prometheus metrics on (watch mode)")
	_ = expandCmd.MarkFlagRequired("in")
}

// expandOutput wraps a run result with the loaded document list.
type expandOutput struct {
	*compile.Result
	OverlaysLoaded []string `json:"overlaysLoaded"`
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts := optionsFromFlags(cfg)
	corePath, overlayPaths := documentPaths(cfg)
	m := metrics.NewMetrics()

	ctx := cmd.Context()
	if !expandFlags.watch {
		res, err := compileOnce(ctx, corePath, overlayPaths, opts, log, m)
		if err != nil {
			return err
		}
		if err := writeOutput(expandFlags.outFile, res, expandFlags.pretty); err != nil {
			return err
		}
		if len(res.Errors) > 0 {
			return fmt.Errorf("compilation finished with %d error(s)", len(res.Errors))
		}
		return nil
	}
	return watchLoop(ctx, corePath, overlayPaths, opts, log, m)
}

// optionsFromFlags merges config defaults with explicit flags; flags win.
func optionsFromFlags(cfg *config.Config) compile.Options {
	opts := compile.Options{
		RejectUnknownVerbs:   cfg.Policy.RejectUnknownVerbs || expandFlags.rejectUnknownVerbs,
		PassThroughCanonical: cfg.Policy.PassthroughCanonical || expandFlags.passthroughCanonical,
		CapabilityMode:       capability.ModeWarn,
		Grants:               append(append([]string(nil), cfg.Policy.Grants...), expandFlags.grants...),
	}
	if cfg.Policy.BlockCapabilities || expandFlags.blockCapabilities {
		opts.CapabilityMode = capability.ModeBlock
	}
	return opts
}

// documentPaths resolves the core path and the ordered overlay paths.
func documentPaths(cfg *config.Config) (string, []string) {
	core := config.ResolveOverlayPath(cfg.Vocabulary.Dir, cfg.Vocabulary.Core)
	names := cfg.Vocabulary.Overlays
	if len(expandFlags.overlays) > 0 {
		names = expandFlags.overlays
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, config.ResolveOverlayPath(cfg.Vocabulary.Dir, name))
	}
	return core, paths
}

// compileOnce builds a fresh registry and runs one expansion over the input.
func compileOnce(ctx context.Context, corePath string, overlayPaths []string, opts compile.Options, log *logging.Logger, m *metrics.Metrics) (*expandOutput, error) {
	reg, err := vocab.Load(ctx, vocab.FileLoader{}, corePath, overlayPaths, log)
	if err != nil {
		return nil, err
	}
	m.DocumentsLoadedTotal.Add(float64(len(reg.Domains())))
	m.VerbConflictsTotal.Add(float64(len(reg.Conflicts())))

	nodes, err := readNodes(expandFlags.inFile)
	if err != nil {
		return nil, err
	}

	res := compile.New(reg, opts, log, m).Run(ctx, nodes)
	return &expandOutput{
		Result:         res,
		OverlaysLoaded: reg.Domains(),
	}, nil
}

// readNodes parses the author steps file: a JSON list of {verb, args}.
func readNodes(path string) ([]compile.AuthorNode, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input steps: %w", err)
	}
	var nodes []compile.AuthorNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("input must be a JSON list of {verb, args} steps: %w", err)
	}
	return nodes, nil
}

// writeOutput marshals the run output to a file or stdout.
func writeOutput(path string, out *expandOutput, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// watchLoop recompiles whenever the input file or a vocabulary document
// changes. Every recompile builds a fresh registry; a running compilation
// is never mutated.
func watchLoop(ctx context.Context, corePath string, overlayPaths []string, opts compile.Options, log *logging.Logger, m *metrics.Metrics) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if expandFlags.metricsListen != "" {
		go serveMetrics(ctx, expandFlags.metricsListen, log)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{}
	for _, p := range append([]string{corePath, expandFlags.inFile}, overlayPaths...) {
		if p == "" || p == "-" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
	}

	recompile := func() {
		res, err := compileOnce(ctx, corePath, overlayPaths, opts, log, m)
		if err != nil {
			log.Error(ctx, "compilation failed", zap.Error(err))
			return
		}
		if err := writeOutput(expandFlags.outFile, res, expandFlags.pretty); err != nil {
			log.Error(ctx, "write output failed", zap.Error(err))
		}
	}
	recompile()

	// Editors fire bursts of events per save; debounce them.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "watch error", zap.Error(err))
		case <-pending:
			pending = nil
			recompile()
		}
	}
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, addr string, log *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info(ctx, "serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", zap.Error(err))
	}
}
