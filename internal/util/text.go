package util

import "strings"

// SanitizeText strips invalid UTF-8 and NUL bytes from model output before
// it is persisted. Postgres rejects NUL in text columns.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
