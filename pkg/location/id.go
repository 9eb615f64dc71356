// Package location implements the lifecycle state machine for storage
// locations: Planned -> Active -> Decommissioned -> Archived.
package location

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a location aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered location id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// Type classifies the physical or logical nature of a location.
type Type string

const (
	TypeDataCenter  Type = "data-center"
	TypeOfficeSafe  Type = "office-safe"
	TypeCloudVault  Type = "cloud-vault"
	TypeHSMCluster  Type = "hsm-cluster"
)

// AccessGrant records that a person has been granted access to a location.
type AccessGrant struct {
	PersonID  string
	GrantedAt time.Time
}
