package validation

import (
	"net/url"
	"strings"

	"github.com/abdusco/shortly/internal"
)

var recognizedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// ValidateURL accepts only absolute URLs with a recognized scheme. Relative
// paths and malformed strings are rejected.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return internal.ErrInvalidURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return internal.ErrInvalidURL
	}

	if !recognizedSchemes[strings.ToLower(parsed.Scheme)] {
		return internal.ErrInvalidURL
	}

	if parsed.Host == "" {
		return internal.ErrInvalidURL
	}

	return nil
}
