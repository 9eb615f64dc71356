// Package relationship implements the lifecycle state machine for
// relationships between entities: Proposed -> Active <-> Modified,
// Active <-> Suspended, {Active,Modified,Suspended} -> Terminated -> Archived.
package relationship

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a relationship aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered relationship id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// Metadata carries the relationship's domain-specific parameters
// (delegation scope, trust level, etc.) opaque to the state machine.
type Metadata map[string]string

// Change records one field-level modification applied by Modify.
type Change struct {
	Field    string
	OldValue string
	NewValue string
	At       time.Time
}
