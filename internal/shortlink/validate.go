package shortlink

import (
	"net/url"
	"strings"

	"github.com/abdusco/shortlink/internal"
)

const maxURLLength = 2048

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// ValidateURL accepts an absolute http(s) URL with a host, or a path starting
// with "/" which is later resolved against the default redirect domain.
// The trimmed input is returned unchanged otherwise.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxURLLength {
		return "", errInvalidURL()
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", errInvalidURL()
	}

	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		if parsed.Scheme != "" || parsed.Host != "" {
			return "", errInvalidURL()
		}
		return raw, nil
	}

	if !allowedSchemes[strings.ToLower(parsed.Scheme)] || parsed.Host == "" {
		return "", errInvalidURL()
	}
	return raw, nil
}

func errInvalidURL() error {
	return internal.NewValidationError("Valid URL is required")
}
