package logger

import (
	"net/url"
	"strings"
)

var sensitiveParams = []string{
	"key",
	"api_key",
	"apikey",
	"token",
	"secret",
	"signature",
}

// MaskLocator masks credential-bearing query parameters in a provider
// locator so the URL can be logged safely.
func MaskLocator(locator string) string {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return ""
	}
	parsed, err := url.Parse(locator)
	if err != nil {
		return maskLast4(locator)
	}
	query := parsed.Query()
	changed := false
	for param, values := range query {
		if !isSensitiveParam(param) {
			continue
		}
		for i, value := range values {
			values[i] = maskLast4(value)
		}
		query[param] = values
		changed = true
	}
	if changed {
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// MaskAPIKey masks API keys, preserving only the last 4 characters.
func MaskAPIKey(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return maskLast4(value)
}

func isSensitiveParam(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, candidate := range sensitiveParams {
		if name == candidate {
			return true
		}
	}
	return false
}

func maskLast4(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****" + value
	}
	return "****" + value[len(value)-4:]
}
