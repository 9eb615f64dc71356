// Package eventbus implements drivers.EnvelopePublisher on top of
// github.com/redis/go-redis/v9, publishing each envelope's event as JSON
// on a subject-derived Redis channel for local subscribers such as the
// graph projection.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
)

// wireEnvelope is the JSON-serializable form published on the bus; Event
// is carried as a raw payload since the concrete event type is not known
// to this package.
type wireEnvelope struct {
	EventID       string          `json:"event_id"`
	CorrelationID string          `json:"correlation_id"`
	CausationID   *string         `json:"causation_id,omitempty"`
	Subject       string          `json:"subject"`
	Aggregate     string          `json:"aggregate"`
	Timestamp     string          `json:"timestamp"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
}

// Bus publishes envelopes to Redis pub/sub channels named after their
// subject.
type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

// New constructs a Bus.
func New(client *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

// Publish marshals env and publishes it on the channel named by
// env.Subject.
func (b *Bus) Publish(ctx context.Context, env envelope.Envelope) error {
	payload, err := json.Marshal(env.Event)
	if err != nil {
		return cimerrors.DriverError{Driver: "eventbus", Message: "marshaling event payload", Err: err}
	}

	var causationID *string
	if env.CausationID != nil {
		id := env.CausationID.String()
		causationID = &id
	}

	wire := wireEnvelope{
		EventID:       env.EventID.String(),
		CorrelationID: env.CorrelationID.String(),
		CausationID:   causationID,
		Subject:       env.Subject,
		Aggregate:     env.Aggregate,
		Timestamp:     env.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		EventType:     env.Event.EventType(),
		Payload:       payload,
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return cimerrors.DriverError{Driver: "eventbus", Message: "marshaling envelope", Err: err}
	}

	if err := b.client.Publish(ctx, env.Subject, body).Err(); err != nil {
		return cimerrors.DriverError{Driver: "eventbus", Message: "publishing to redis", Err: err}
	}
	b.logger.Debug("published envelope", "subject", env.Subject, "event_id", env.EventID)
	return nil
}
