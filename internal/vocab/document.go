package vocab

import (
	"encoding/json"
	"fmt"
)

// Document is one vocabulary document: a versioned mapping of author verbs
// to canonical expansion steps for a single domain.
type Document struct {
	Version string                  `json:"version"`
	Domain  string                  `json:"domain"`
	Verbs   map[string]*VerbMapping `json:"verbs"`
}

// ParseDocument decodes and structurally validates one vocabulary document.
// Errors name the offending path so a misconfigured overlay is identifiable
// from the message alone. Full schema validation happens upstream; this is
// the backstop the engine keeps for itself.
func ParseDocument(path string, data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: parse vocabulary document: %w", path, err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("%s: version: %w", path, ErrMissingField)
	}
	if doc.Domain == "" {
		return nil, fmt.Errorf("%s: domain: %w", path, ErrMissingField)
	}
	if doc.Verbs == nil {
		return nil, fmt.Errorf("%s: verbs: %w", path, ErrMissingField)
	}
	for verb, m := range doc.Verbs {
		if err := m.Validate(fmt.Sprintf("%s: verbs.%s", path, verb)); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
