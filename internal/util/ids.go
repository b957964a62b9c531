package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidLen = 21

// NewID returns a fresh nanoid, the primary key format for every stored
// record. Panics only if the system entropy source is broken.
func NewID() string {
	return gonanoid.Must(nanoidLen)
}

// IsNanoid reports whether s looks like an identifier produced by NewID.
// Handlers use it to reject malformed ids in request payloads before
// touching the database.
func IsNanoid(s string) bool {
	if len(s) != nanoidLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
