package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveParams = []string{"password", "token", "secret", "email", "auth"}

// SanitizedEmail masks an email address for logging: demo@shootingsports.com
// becomes "d***@**************.com".
func SanitizedEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return "[invalid-email]"
	}

	if n := len([]rune(local)); n > 1 {
		local = string([]rune(local)[:1]) + strings.Repeat("*", n-1)
	}

	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = strings.Repeat("*", len(labels[i]))
	}

	return local + "@" + strings.Join(labels, ".")
}

// RedactedAttr hides value in production.
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, redacted)
	}
	return slog.String(key, value)
}

// RedactQuery replaces the values of sensitive query parameters. A query that
// cannot be parsed is dropped entirely.
func RedactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redacted
	}
	for key := range values {
		if isSensitive(key) {
			values[key] = []string{redacted}
		}
	}
	return values.Encode()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, p := range sensitiveParams {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}
