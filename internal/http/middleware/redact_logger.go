// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the scrubbing applied to request metadata before Logger
// writes it. Bodies are never logged. Query strings and header values are
// pattern-redacted (JWTs, private keys, wallet addresses, emails, UUIDs,
// phone numbers) and credential headers are masked entirely.
//
// Redaction reduces, but does not remove, the chance of secrets reaching the
// logs. Clients should still keep keys out of query strings.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// Redactor scrubs sensitive values from strings and headers.
type Redactor struct {
	rules       []redactRule
	maskHeaders map[string]struct{}
}

type redactRule struct {
	re   *regexp.Regexp
	repl string
}

// NewRedactor returns a Redactor masking the built-in credential headers
// (Authorization, Cookie, Set-Cookie, X-Admin-Key) plus extraHeaders.
// Header matching is case-insensitive.
//
// Rules run longest-token first: a 64 hex digit private key must be replaced
// before the 40 digit wallet rule can match its prefix, and UUIDs before the
// phone rule can match their digit groups.
func NewRedactor(extraHeaders []string) *Redactor {
	r := &Redactor{
		rules: []redactRule{
			{regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]*`), "[REDACTED:jwt]"},
			{regexp.MustCompile(`\b(?:0x)?[0-9a-fA-F]{64}\b`), "[REDACTED:key]"},
			{regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`), "[REDACTED:wallet]"},
			{regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`), "[REDACTED:id]"},
			{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
			// Digits only, so hex ids never look like phone numbers.
			{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
		},
		maskHeaders: map[string]struct{}{
			"authorization": {},
			"cookie":        {},
			"set-cookie":    {},
			"x-admin-key":   {},
		},
	}
	for _, h := range extraHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.maskHeaders[h] = struct{}{}
		}
	}
	return r
}

// String applies every pattern rule to s.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	for _, rule := range r.rules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}

// Headers flattens h into a map with masked credentials and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}

var defaultRedactor = NewRedactor(nil)
