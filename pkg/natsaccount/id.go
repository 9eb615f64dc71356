// Package natsaccount implements the lifecycle state machine for NATS
// accounts: Created -> Active -> Suspended -> Reactivated -> Active, with
// Deleted reachable from Active, Suspended, or Reactivated.
//
// Reactivation from Suspended does NOT restore the account's prior
// permissions, imports, or exports — Reactivated always starts from an
// empty/caller-supplied permission set, matching the upstream state shape
// where Suspended carries no permissions snapshot at all.
package natsaccount

import (
	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a NATS account aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered account id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// Permissions carries a NATS account's publish/subscribe authorization
// template: subjects it may publish/subscribe to, and the imports/exports
// that connect it to other accounts.
type Permissions struct {
	PublishAllow   []string
	PublishDeny    []string
	SubscribeAllow []string
	SubscribeDeny  []string
	Imports        []string
	Exports        []string
}
