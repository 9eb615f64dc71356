// Package certificate implements the lifecycle state machine for PKI
// certificates: Pending -> Issued -> Active -> {RenewalPending -> Renewed |
// Revoked | Expired} -> Archived.
package certificate

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a certificate aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered certificate id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }
