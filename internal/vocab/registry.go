package vocab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/loomweaver/loomc/internal/logging"
)

// Provider identifies the document whose mapping currently wins for an
// author verb after merging all loaded documents in order.
type Provider struct {
	Domain  string       `json:"domain"`
	Version string       `json:"version"`
	Mapping *VerbMapping `json:"mapping"`
}

// Registry is the merged verb table for one compilation unit. It is built
// once by Load and never mutated afterwards.
type Registry struct {
	table    map[string]Provider
	definers map[string][]string
	domains  []string
}

// Load reads the core document first and then each domain document in
// caller order, folding them left to right into one verb table. Later
// documents win conflicts; every verb defined by more than one domain is
// recorded in the conflict set. Any structural problem aborts construction;
// no partial registry is ever returned.
func Load(ctx context.Context, loader Loader, corePath string, domainPaths []string, log *logging.Logger) (*Registry, error) {
	if log == nil {
		log = logging.NewNop()
	}
	r := &Registry{
		table:    make(map[string]Provider),
		definers: make(map[string][]string),
	}

	paths := make([]string, 0, len(domainPaths)+1)
	paths = append(paths, corePath)
	paths = append(paths, domainPaths...)

	for _, path := range paths {
		data, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		doc, err := ParseDocument(path, data)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		r.merge(doc)
		log.Debug(logging.WithDocument(ctx, path), "vocabulary document loaded",
			zap.String("domain", doc.Domain),
			zap.String("version", doc.Version),
			zap.Int("verbs", len(doc.Verbs)),
		)
	}

	for verb, domains := range r.Conflicts() {
		log.Warn(ctx, "verb overwritten by later document",
			zap.String("verb", verb),
			zap.Strings("domains", domains),
		)
	}
	return r, nil
}

// merge folds one document into the table. Each fold step only appends to
// the definer bookkeeping and overwrites winning providers; last-loaded wins.
func (r *Registry) merge(doc *Document) {
	r.domains = append(r.domains, doc.Domain)
	for verb, mapping := range doc.Verbs {
		if !containsString(r.definers[verb], doc.Domain) {
			r.definers[verb] = append(r.definers[verb], doc.Domain)
		}
		r.table[verb] = Provider{
			Domain:  doc.Domain,
			Version: doc.Version,
			Mapping: mapping,
		}
	}
}

// Lookup resolves an author verb to its winning provider.
func (r *Registry) Lookup(verb string) (Provider, bool) {
	p, ok := r.table[verb]
	return p, ok
}

// Conflicts returns every verb defined by more than one domain, with the
// defining domains in load order. Conflicts warn; they never block.
func (r *Registry) Conflicts() map[string][]string {
	out := make(map[string][]string)
	for verb, domains := range r.definers {
		if len(domains) > 1 {
			out[verb] = append([]string(nil), domains...)
		}
	}
	return out
}

// EffectiveTable returns a copy of the merged verb table for diagnostics.
func (r *Registry) EffectiveTable() map[string]Provider {
	out := make(map[string]Provider, len(r.table))
	for verb, p := range r.table {
		out[verb] = p
	}
	return out
}

// Domains returns the loaded domains in load order, core first.
func (r *Registry) Domains() []string {
	return append([]string(nil), r.domains...)
}

// Len returns the number of verbs in the effective table.
func (r *Registry) Len() int {
	return len(r.table)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
