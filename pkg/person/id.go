// Package person implements the lifecycle state machine for person
// identities: Created -> Active <-> Suspended -> Deactivated -> Archived.
package person

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a person aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered person id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }
