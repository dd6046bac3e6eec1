package params

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sibylline/llmbridge/llmtypes"
)

// ValidateBaseURL enforces the URL shape from spec §4.8: must start with
// http:// or https://, contain no whitespace, and carry a port in
// 1..=65535 when one is specified.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "base_url must not be empty")
	}
	if strings.ContainsAny(raw, " \t\n\r") {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "base_url must not contain whitespace")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "base_url must start with http:// or https://")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return llmtypes.WrapError(llmtypes.ErrConfiguration, "base_url is not a valid URL", err)
	}
	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return llmtypes.NewError(llmtypes.ErrConfiguration, "base_url port must be within 1..=65535")
		}
	}
	return nil
}

// ValidateAPIKey enforces the key shape from spec §4.8: non-empty, no
// newlines, minimum length of 8.
func ValidateAPIKey(key string) error {
	if key == "" {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "api_key must not be empty")
	}
	if strings.ContainsAny(key, "\n\r") {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "api_key must not contain newlines")
	}
	if len(key) < 8 {
		return llmtypes.NewError(llmtypes.ErrConfiguration, "api_key must be at least 8 characters")
	}
	return nil
}
