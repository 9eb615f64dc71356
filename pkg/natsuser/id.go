// Package natsuser implements the lifecycle state machine for NATS users:
// Created -> Active -> Suspended -> Reactivated -> Active, with Deleted
// reachable from Active, Suspended, or Reactivated.
package natsuser

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a NATS user aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered user id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// Permissions carries a NATS user's publish/subscribe authorization.
type Permissions struct {
	PublishAllow   []string
	PublishDeny    []string
	SubscribeAllow []string
	SubscribeDeny  []string
}
