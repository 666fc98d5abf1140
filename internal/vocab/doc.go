// Package vocab loads versioned vocabulary documents and merges them into
// the verb table used by the expansion engine.
//
// A vocabulary document is a JSON object {version, domain, verbs} mapping
// author-facing verbs to canonical expansion steps for one domain. The core
// domain's document is always loaded first; later documents win conflicts
// ("last-loaded wins") and every conflict is recorded for diagnostics.
//
// The Registry built here is immutable after Load. Structural problems in
// any document abort construction entirely; a partial registry is never
// returned.
package vocab
