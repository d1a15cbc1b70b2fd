package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks sensitive material in log attributes. Trade documents
// carry bank account numbers and the comparator carries provider
// credentials; neither belongs in a log line.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// Keys whose values are masked wholesale, matched case-insensitively
// as substrings.
var sensitiveKeys = []string{
	"api_key", "apikey", "token", "secret",
	"password", "authorization",
	"account_number", "iban",
}

// NewRedactor creates a Redactor with the built-in pattern set.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			// Provider API keys.
			{regexp.MustCompile(`\bsk-[a-zA-Z0-9_-]{8,}`), "sk-***"},
			// Bearer tokens in forwarded headers.
			{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`), "Bearer ***"},
			// IBANs: country code, check digits, BBAN.
			{regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`), "****"},
		},
	}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(r.RedactString(a.Value.String()))
	}
	return a
}

// RedactString applies every pattern to a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps a short prefix for identification.
func maskValue(v string) string {
	if len(v) <= 4 {
		return "***"
	}
	return v[:4] + "***"
}
