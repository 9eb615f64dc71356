// Package idkit generates the time-ordered 128-bit identifiers used
// throughout the domain. Every aggregate package wraps the raw uuid.UUID
// in its own named type (key.ID, certificate.ID, person.ID, ...) so that
// identifiers from different contexts cannot be passed to each other by
// accident; idkit only supplies the underlying generation and parsing.
package idkit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh time-ordered identifier (UUIDv7). UUIDv7 embeds a
// millisecond Unix timestamp in its high bits, so values generated later
// sort after values generated earlier — this is what spec.md means by
// "time-ordered, unique 128-bit id".
func New() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the process cannot read crypto/rand;
		// that is unrecoverable for a system that hands out identities.
		panic(fmt.Sprintf("idkit: generating UUIDv7: %v", err))
	}
	return id
}

// Parse parses a textual UUID into its raw form.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Time extracts the creation timestamp embedded in a UUIDv7 value. It
// returns the zero Time for identifiers that are not version 7.
func Time(id uuid.UUID) time.Time {
	if id.Version() != 7 {
		return time.Time{}
	}
	ms := int64(id[0])<<40 | int64(id[1])<<32 | int64(id[2])<<24 | int64(id[3])<<16 | int64(id[4])<<8 | int64(id[5])
	return time.UnixMilli(ms).UTC()
}
