// Package eventstore implements drivers.EventStore on top of
// github.com/jackc/pgx/v5, buffering appends through a background
// goroutine and replaying a correlation id's envelopes back out in
// append order.
package eventstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

const (
	bufferSize    = 256
	flushInterval = 2 * time.Second
	flushBatch    = 32
)

// Store is an async, buffered envelope log backed by Postgres.
type Store struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	entries chan storedEnvelope
	wg      sync.WaitGroup
}

type storedEnvelope struct {
	env     envelope.Envelope
	eventJSON json.RawMessage
}

// New constructs a Store. Call Start to begin the background flush loop.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger, entries: make(chan storedEnvelope, bufferSize)}
}

// Start launches the background goroutine that flushes envelopes to the
// database and returns immediately. The goroutine exits once ctx is
// cancelled (after flushing the entries already buffered) or Close is
// called.
func (s *Store) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Close waits for all pending entries to be flushed.
func (s *Store) Close() {
	close(s.entries)
	s.wg.Wait()
}

// Append enqueues env for async writing. The event payload is serialized eagerly
// since the concrete Event type is not known to this package.
func (s *Store) Append(ctx context.Context, env envelope.Envelope) error {
	payload, err := json.Marshal(env.Event)
	if err != nil {
		return cimerrors.DriverError{Driver: "eventstore", Message: "marshaling event payload", Err: err}
	}
	select {
	case s.entries <- storedEnvelope{env: env, eventJSON: payload}:
	default:
		s.logger.Warn("eventstore buffer full, dropping envelope", "event_id", env.EventID, "subject", env.Subject)
	}
	return nil
}

func (s *Store) run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]storedEnvelope, 0, flushBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-s.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= flushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for {
				select {
				case entry, ok := <-s.entries:
					if !ok {
						flush()
						return
					}
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *Store) flush(batch []storedEnvelope) {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.logger.Error("eventstore: beginning transaction", "error", err)
		return
	}
	defer tx.Rollback(ctx)

	for _, entry := range batch {
		var causationID *string
		if entry.env.CausationID != nil {
			id := entry.env.CausationID.String()
			causationID = &id
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO envelopes (event_id, correlation_id, causation_id, subject, aggregate, occurred_at, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.env.EventID.String(), entry.env.CorrelationID.String(), causationID,
			entry.env.Subject, entry.env.Aggregate, entry.env.Timestamp, entry.eventJSON,
		)
		if err != nil {
			s.logger.Error("eventstore: inserting envelope", "error", err, "event_id", entry.env.EventID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("eventstore: committing transaction", "error", err)
	}
}

// Replay streams every envelope recorded under correlationID, in append
// order, to fn. It stops and returns fn's error if fn returns one.
func (s *Store) Replay(ctx context.Context, correlationID string, fn func(envelope.Envelope) error) error {
	rows, err := s.pool.Query(ctx,
		`SELECT event_id, correlation_id, causation_id, subject, aggregate, occurred_at
		 FROM envelopes WHERE correlation_id = $1 ORDER BY occurred_at ASC`,
		correlationID,
	)
	if err != nil {
		return cimerrors.DriverError{Driver: "eventstore", Message: "querying envelopes", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, corrID, subject, aggregate string
		var causationID *string
		var occurredAt time.Time
		if err := rows.Scan(&eventID, &corrID, &causationID, &subject, &aggregate, &occurredAt); err != nil {
			return cimerrors.DriverError{Driver: "eventstore", Message: "scanning envelope row", Err: err}
		}

		parsedEventID, err := idkit.Parse(eventID)
		if err != nil {
			return cimerrors.DriverError{Driver: "eventstore", Message: "parsing event id", Err: err}
		}
		parsedCorrID, err := idkit.Parse(corrID)
		if err != nil {
			return cimerrors.DriverError{Driver: "eventstore", Message: "parsing correlation id", Err: err}
		}
		var parsedCausationID *uuid.UUID
		if causationID != nil {
			id, err := idkit.Parse(*causationID)
			if err != nil {
				return cimerrors.DriverError{Driver: "eventstore", Message: "parsing causation id", Err: err}
			}
			parsedCausationID = &id
		}

		env := envelope.Envelope{
			EventID:       parsedEventID,
			CorrelationID: parsedCorrID,
			CausationID:   parsedCausationID,
			Subject:       subject,
			Aggregate:     aggregate,
			Timestamp:     occurredAt,
		}
		if err := fn(env); err != nil {
			return err
		}
	}
	return rows.Err()
}
