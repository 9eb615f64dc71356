// Package organization implements the lifecycle state machine for
// organizations: Draft -> Active <-> Suspended -> Dissolved.
package organization

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies an organization aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered organization id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }
