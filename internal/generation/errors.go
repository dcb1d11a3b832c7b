package generation

import "errors"

var (
	// ErrParse means the completion could not be read as the requested JSON object.
	ErrParse = errors.New("AI returned invalid JSON")
	// ErrUpstream wraps completion service failures.
	ErrUpstream            = errors.New("completion service error")
	ErrInsufficientCredits = errors.New("insufficient AI credits")
	ErrUnsupportedKind     = errors.New("unsupported activity type")
	ErrEmptyPrompt         = errors.New("prompt is required")
)
