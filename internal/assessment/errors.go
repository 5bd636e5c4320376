package assessment

import "errors"

var (
	// ErrMissingInput means required questionnaire or demographic data is
	// absent or malformed. No prediction is attempted, by either path.
	ErrMissingInput = errors.New("missing assessment data")

	// ErrModelUnavailable wraps any recoverable model-path failure: artifact
	// load errors, load timeouts, and inference failures. It triggers the
	// traditional scoring fallback.
	ErrModelUnavailable = errors.New("prediction model unavailable")

	// ErrSchemaMismatch means the model artifact and the code disagree on the
	// feature or label contract. This is a programming/deployment error and is
	// never masked by the fallback.
	ErrSchemaMismatch = errors.New("model schema mismatch")
)
