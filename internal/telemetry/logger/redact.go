package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// valueKeys name attributes that carry stored values. Keys are logged as
// is; values only by length.
var valueKeys = map[string]bool{
	"value": true,
	"val":   true,
	"data":  true,
}

// secretKeyPatterns mark attributes whose content is never logged.
var secretKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if s == "" {
		return a
	}

	key := strings.ToLower(a.Key)
	if valueKeys[key] {
		return slog.String(a.Key, MaskValue(s))
	}
	if IsSensitiveKey(key) {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

// MaskValue replaces a stored value with its length.
func MaskValue(v string) string {
	return fmt.Sprintf("***(%d bytes)", len(v))
}

// IsSensitiveKey reports whether an attribute name suggests a secret.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, p := range secretKeyPatterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}
