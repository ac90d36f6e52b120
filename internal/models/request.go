package models

import (
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/folio/internal/shared"
)

// DefaultAccentColor is used when a request leaves the color blank.
const DefaultAccentColor = "#4CAF50"

// Request carries the per-run inputs a user supplies.
type Request struct {
	APIKey      string
	Handle      string
	Interests   string
	Resume      []byte
	AccentColor string
}

// Normalize trims whitespace and applies the default accent color.
func (r Request) Normalize() Request {
	r.APIKey = strings.TrimSpace(r.APIKey)
	r.Handle = strings.TrimSpace(r.Handle)
	r.Interests = strings.TrimSpace(r.Interests)
	r.AccentColor = strings.TrimSpace(r.AccentColor)
	if r.AccentColor == "" {
		r.AccentColor = DefaultAccentColor
	}
	return r
}

// Validate reports the first missing input, in the order the form asks for them.
func (r Request) Validate() error {
	switch {
	case strings.TrimSpace(r.APIKey) == "":
		return fmt.Errorf("%w: please provide an LLM API key", shared.ErrMissingInput)
	case strings.TrimSpace(r.Handle) == "":
		return fmt.Errorf("%w: please provide a GitHub username", shared.ErrMissingInput)
	case strings.TrimSpace(r.Interests) == "":
		return fmt.Errorf("%w: please provide your interests", shared.ErrMissingInput)
	case len(r.Resume) == 0:
		return fmt.Errorf("%w: please upload your resume", shared.ErrMissingInput)
	}
	return nil
}
