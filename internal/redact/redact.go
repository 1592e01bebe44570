// Package redact masks personal data in text destined for logs.
package redact

import (
	"regexp"
	"strings"
)

var (
	emailRe   = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	aadhaarRe = regexp.MustCompile(`\b\d{4}[ \-]?\d{4}[ \-]?\d{4}\b`)
	phoneRe   = regexp.MustCompile(`\+?\d[\d\s\-]{7,}\d`)
)

// Redactor masks emails, Aadhaar-style ids and phone numbers when enabled.
type Redactor struct {
	enabled bool
}

// New returns a Redactor. A disabled Redactor passes text through.
func New(enabled bool) Redactor {
	return Redactor{enabled: enabled}
}

// Enabled reports whether masking is active.
func (r Redactor) Enabled() bool { return r.enabled }

// Text masks personal data in s.
func (r Redactor) Text(s string) string {
	if !r.enabled || strings.TrimSpace(s) == "" {
		return s
	}
	out := emailRe.ReplaceAllString(s, "[REDACTED_EMAIL]")
	out = aadhaarRe.ReplaceAllString(out, "[REDACTED_ID]")
	return phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
}

// Preview masks s and shortens it to at most n characters for log lines.
func (r Redactor) Preview(s string, n int) string {
	out := []rune(r.Text(s))
	if n <= 0 || len(out) <= n {
		return string(out)
	}
	return string(out[:n]) + "…"
}
