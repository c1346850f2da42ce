// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. It keeps credentials,
// connection strings, tokens and file system paths out of logs and client payloads.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; earlier rules see the raw input.
var rules = []rule{
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		RedactedStackPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|mongodb(?:\+srv)?|rediss?)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+['"]?`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}['"]?`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(
			`\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\w,*()."$]+\b(FROM|INTO|SET)\b[\s\w,*()='"$.<>]*`,
		),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\\s]+)+`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
