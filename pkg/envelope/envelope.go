// Package envelope wraps domain events with correlation/causation metadata
// and routing, and builds chains of envelopes that share one workflow.
package envelope

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// Event is anything an aggregate emits. Aggregate event taxonomies
// (key.Event, certificate.Event, ...) implement this.
type Event interface {
	// AggregateID returns the id of the aggregate instance that produced
	// the event, rendered as a string so the envelope package does not
	// need to depend on every aggregate's id type.
	AggregateID() string
	// EventType returns the discriminator used on the wire and for
	// subject composition, e.g. "KeyActivated".
	EventType() string
}

// Envelope wraps a single domain event with routing and correlation data.
type Envelope struct {
	EventID       uuid.UUID
	CorrelationID uuid.UUID
	CausationID   *uuid.UUID
	Subject       string
	Timestamp     time.Time
	Aggregate     string
	Event         Event
}

// Builder produces a sequence of envelopes that share one correlation id,
// stamping each envelope's causation id with the previous envelope's event
// id. The zero value is not usable; construct with NewChain or ContinueChain.
type Builder struct {
	correlationID uuid.UUID
	org           string
	lastEventID   *uuid.UUID
}

// NewChain starts a fresh workflow with a new correlation id.
func NewChain() *Builder {
	return &Builder{correlationID: idkit.New()}
}

// ContinueChain attaches a builder to an existing workflow's correlation
// id. Use this when a later step in a saga needs to keep emitting
// envelopes under the same correlation id as an earlier step.
func ContinueChain(correlationID uuid.UUID) *Builder {
	return &Builder{correlationID: correlationID}
}

// ScopedToOrganization returns a copy of the builder that composes subject
// strings as "{org}.{aggregate}.{action}" instead of "{aggregate}.{action}".
func (b *Builder) ScopedToOrganization(org string) *Builder {
	cp := *b
	cp.org = org
	return &cp
}

// CorrelationID returns the workflow-wide correlation id this builder stamps.
func (b *Builder) CorrelationID() uuid.UUID {
	return b.correlationID
}

// Envelope wraps event in a fresh envelope: a new event id, a causation id
// pointing at the previous envelope emitted by this builder (nil for the
// first), the shared correlation id, and a subject derived from the event's
// aggregate name and type.
func (b *Builder) Envelope(aggregate string, event Event) Envelope {
	eventID := idkit.New()

	var causation *uuid.UUID
	if b.lastEventID != nil {
		prev := *b.lastEventID
		causation = &prev
	}
	b.lastEventID = &eventID

	subject := aggregate + "." + event.EventType()
	if b.org != "" {
		subject = b.org + "." + subject
	}

	return Envelope{
		EventID:       eventID,
		CorrelationID: b.correlationID,
		CausationID:   causation,
		Subject:       subject,
		Timestamp:     time.Now().UTC(),
		Aggregate:     aggregate,
		Event:         event,
	}
}
