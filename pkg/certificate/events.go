package certificate

import "time"

// EventType discriminates the certificate event taxonomy on the wire.
type EventType string

const (
	EventTypeRequested        EventType = "CertificateRequested"
	EventTypeSigned           EventType = "CertificateSigned"
	EventTypeActivated        EventType = "CertificateActivated"
	EventTypeRenewalInitiated EventType = "CertificateRenewalInitiated"
	EventTypeRenewed          EventType = "CertificateRenewed"
	EventTypeRevoked          EventType = "CertificateRevoked"
	EventTypeExpired          EventType = "CertificateExpired"
	EventTypeArchived         EventType = "CertificateArchived"
)

// Event is the sealed taxonomy of events a certificate aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isCertificateEvent()
}

type baseEvent struct {
	CertificateID ID
}

func (b baseEvent) AggregateID() string { return b.CertificateID.String() }
func (baseEvent) isCertificateEvent()   {}

// Requested is emitted when a CSR is created and submitted for signing.
type Requested struct {
	baseEvent
	CSRID         *string
	PendingSince  time.Time
	RequestedBy   string
}

func (Requested) EventType() string { return string(EventTypeRequested) }

// Signed is emitted when the CA signs the certificate.
type Signed struct {
	baseEvent
	IssuedAt time.Time
	IssuerID string
	IssuedBy string
}

func (Signed) EventType() string { return string(EventTypeSigned) }

// Activated is emitted when the certificate's not_before is reached.
type Activated struct {
	baseEvent
	NotBefore time.Time
	NotAfter  time.Time
}

func (Activated) EventType() string { return string(EventTypeActivated) }

// RenewalInitiated is emitted when an Active certificate begins renewal.
type RenewalInitiated struct {
	baseEvent
	NewCertificateID ID
	InitiatedAt      time.Time
	InitiatedBy      string
}

func (RenewalInitiated) EventType() string { return string(EventTypeRenewalInitiated) }

// Renewed is emitted when renewal finishes and the successor cert is active.
type Renewed struct {
	baseEvent
	NewCertificateID ID
	RenewedAt        time.Time
	RenewedBy        string
}

func (Renewed) EventType() string { return string(EventTypeRenewed) }

// Revoked is emitted when a certificate is revoked from any non-terminal state.
type Revoked struct {
	baseEvent
	Reason       RevocationReason
	RevokedAt    time.Time
	RevokedBy    string
	CRLPublished bool
	OCSPUpdated  bool
}

func (Revoked) EventType() string { return string(EventTypeRevoked) }

// Expired is emitted when an Active certificate's not_after elapses.
type Expired struct {
	baseEvent
	ExpiredAt time.Time
	NotAfter  time.Time
}

func (Expired) EventType() string { return string(EventTypeExpired) }

// Archived is emitted when a Renewed, Revoked, or Expired certificate is archived.
type Archived struct {
	baseEvent
	ArchivedAt    time.Time
	ArchivedBy    string
	PreviousState ArchivedFromState
}

func (Archived) EventType() string { return string(EventTypeArchived) }
