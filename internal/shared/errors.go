package shared

import "errors"

var (
	// Input validation errors
	ErrMissingInput = errors.New("missing required input")
	ErrInvalidColor = errors.New("invalid color")

	// Model errors
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
	ErrNoChoices           = errors.New("no choices returned")
)
