package vocab

import "errors"

// Errors for document loading and mapping validation.
var (
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidMapping   = errors.New("invalid verb mapping: must be simple (to) or composed (steps)")
	ErrAmbiguousMapping = errors.New("ambiguous verb mapping: both to and steps present")
	ErrEmptySteps       = errors.New("composed mapping has no steps")
	ErrNotCanonical     = errors.New("not a canonical verb")
	ErrDocumentNotFound = errors.New("vocabulary document not found")
)
