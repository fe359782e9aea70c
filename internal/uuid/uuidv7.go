// Package uuid generates the time-ordered identifiers used for request tracing.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Identifiers sort by creation time, so log
// lines of one desk session can be ordered by request id alone.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	_, err := googleuuid.Parse(s)
	return err == nil
}

// FromHeader keeps a caller-supplied request id when it is a UUID and mints
// a fresh v7 id otherwise. The result is always in canonical lower-case form.
func FromHeader(h string) string {
	if id, err := googleuuid.Parse(h); err == nil && h != "" {
		return id.String()
	}
	return New()
}
