package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Attribute keys whose value is stored user data.
var payloadKeys = map[string]bool{
	"value":     true,
	"old_value": true,
	"blob":      true,
	"fragment":  true,
}

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
	"cookie",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive replaces payload attributes with their size and fully
// redacts attributes whose key looks like a secret.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	strVal := a.Value.String()

	if payloadKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, RedactString(strVal))
	}
	if strVal != "" && IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// RedactString replaces a payload with a size marker.
func RedactString(value string) string {
	return fmt.Sprintf("<%d bytes>", len(value))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
