// Package policy implements the lifecycle state machine for authorization
// policies: Draft -> Active <-> Modified, Active <-> Suspended, any
// non-terminal -> Revoked.
package policy

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a policy aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered policy id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// ReviewStatus tracks a Draft policy's approval workflow.
type ReviewStatus string

const (
	ReviewStatusPendingReview ReviewStatus = "pending-review"
	ReviewStatusApproved      ReviewStatus = "approved"
	ReviewStatusRejected      ReviewStatus = "rejected"
)

// Claim is one authorization grant a policy confers, e.g. "sign:certificate".
type Claim struct {
	Action   string
	Resource string
}

// Validate reports whether the claim is well-formed.
func (c Claim) Validate() error {
	if c.Action == "" || c.Resource == "" {
		return errEmptyClaim
	}
	return nil
}

// Condition further restricts when a Claim applies, e.g. a time window or
// a required relationship.
type Condition struct {
	Kind  string
	Value string
}

// Validate reports whether the condition is well-formed.
func (c Condition) Validate() error {
	if c.Kind == "" {
		return errEmptyCondition
	}
	return nil
}

// Change records one field-level modification applied while Modified.
type Change struct {
	Field    string
	OldValue string
	NewValue string
}
