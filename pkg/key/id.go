// Package key implements the lifecycle state machine for cryptographic
// keys: Generated/Imported -> Active -> {RotationPending -> Rotated | Revoked
// | Expired} -> Archived.
package key

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a key aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered key id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }
