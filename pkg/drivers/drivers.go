// Package drivers defines the provider-agnostic interfaces that sagas and
// aggregate orchestration depend on for side effects: generating keys,
// signing certificates, provisioning YubiKeys, issuing NATS JWTs, and
// publishing envelopes. Concrete implementations live under
// internal/drivers and are wired in by internal/app.
package drivers

import (
	"context"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/envelope"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
)

// KeyGenerator creates asymmetric key pairs for a purpose.
type KeyGenerator interface {
	// GenerateKey creates a new key pair and returns an opaque handle
	// (e.g. a storage path or HSM slot reference) plus the public key
	// bytes. Private key material never leaves the driver boundary.
	GenerateKey(ctx context.Context, purpose projection.KeyPurpose) (handle string, publicKey []byte, err error)

	// RevokeKey marks a previously generated key as no longer usable.
	RevokeKey(ctx context.Context, handle string) error
}

// CertificateSigner turns CSR parameters into a signed certificate.
type CertificateSigner interface {
	// Sign issues a certificate for params, signed by the CA identified
	// by issuerHandle ("" for a self-signed root).
	Sign(ctx context.Context, issuerHandle string, params projection.CSRParams, publicKey []byte) (certHandle string, der []byte, err error)

	// Revoke adds certHandle to the issuing CA's revocation list.
	Revoke(ctx context.Context, certHandle string) error
}

// YubikeyProvisioner writes key material onto a physical or emulated
// YubiKey PIV slot and verifies the write afterward.
type YubikeyProvisioner interface {
	// Provision writes der (a certificate, DER-encoded) and its
	// associated private key handle into the slot described by plan.
	Provision(ctx context.Context, serial string, plan projection.PIVPlan, keyHandle string, der []byte) error

	// VerifySlot re-reads the slot and reports whether its certificate's
	// fingerprint matches expectedFingerprint.
	VerifySlot(ctx context.Context, serial string, slot string, expectedFingerprint []byte) (verified bool, err error)

	// ClearSlot erases a previously provisioned slot, used by
	// compensation.
	ClearSlot(ctx context.Context, serial string, slot string) error
}

// JWTIssuer turns NATS claim projections into signed JWTs for the NSC
// filesystem layout.
type JWTIssuer interface {
	// RegisterSigningKey associates a signing-key handle (minted by a
	// KeyGenerator) with the secret the issuer should sign under it with.
	// Callers must register a handle before issuing a JWT under it.
	RegisterSigningKey(handle string, secret []byte) error

	IssueOperatorJWT(ctx context.Context, params projection.NATSOperatorParams, signingKeyHandle string) (string, error)
	IssueAccountJWT(ctx context.Context, claims projection.NATSAccountClaims, signingKeyHandle string) (string, error)
	IssueUserJWT(ctx context.Context, claims projection.NATSUserClaims, signingKeyHandle string) (string, error)
}

// EnvelopePublisher publishes an envelope for downstream subscribers
// (e.g. the graph projection, audit log) to consume.
type EnvelopePublisher interface {
	Publish(ctx context.Context, env envelope.Envelope) error
}

// EventStore appends envelopes to a durable, replayable log.
type EventStore interface {
	Append(ctx context.Context, env envelope.Envelope) error
	// Replay streams every envelope with the given correlation id, in
	// the order they were appended, to fn.
	Replay(ctx context.Context, correlationID string, fn func(envelope.Envelope) error) error
}

// Clock abstracts wall-clock time so sagas and aggregates can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
