package logger

import (
	"log/slog"
	"strings"
)

// sensitiveValuePrefixes mark plaintext secrets. A value containing one is
// masked from the prefix onwards, which also covers "<id>:<secret>" bearer
// credentials.
var sensitiveValuePrefixes = []string{
	"hubat_", // access token secret
}

// sensitiveKeyPatterns mark attribute keys whose string values are fully
// redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"authorization",
	"bearer",
	"cookie",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		// prefix masking keeps a hint and wins over key matching
		if masked, ok := maskEmbedded(v); ok {
			return slog.String(a.Key, masked)
		}
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func maskEmbedded(value string) (string, bool) {
	for _, prefix := range sensitiveValuePrefixes {
		if idx := strings.Index(value, prefix); idx >= 0 {
			return value[:idx] + maskValue(value[idx:], prefix), true
		}
	}
	return value, false
}

// maskValue keeps the prefix plus the first and last three characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString masks any access token secret contained in value.
func RedactString(value string) string {
	masked, _ := maskEmbedded(value)
	return masked
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

// IsSensitiveValue checks if a value contains an access token secret.
func IsSensitiveValue(value string) bool {
	_, ok := maskEmbedded(value)
	return ok
}
