package manifest

import "time"

// EventType discriminates the manifest event taxonomy on the wire.
type EventType string

const (
	EventTypePlanned            EventType = "ManifestPlanned"
	EventTypeGenerationStarted  EventType = "ManifestGenerationStarted"
	EventTypeArtifactCompleted  EventType = "ManifestArtifactCompleted"
	EventTypeReady              EventType = "ManifestReady"
	EventTypeExported           EventType = "ManifestExported"
	EventTypeVerified           EventType = "ManifestVerified"
	EventTypeFailed             EventType = "ManifestFailed"
)

// Event is the sealed taxonomy of events a manifest aggregate emits.
type Event interface {
	AggregateID() string
	EventType() string
	isManifestEvent()
}

type baseEvent struct {
	ManifestID ID
}

func (b baseEvent) AggregateID() string { return b.ManifestID.String() }
func (baseEvent) isManifestEvent()      {}

// Planned is emitted when a manifest's artifact selection is first made.
type Planned struct {
	baseEvent
	Artifacts []ArtifactType
	PlannedAt time.Time
	PlannedBy string
}

func (Planned) EventType() string { return string(EventTypePlanned) }

// GenerationStarted is emitted when artifact generation begins.
type GenerationStarted struct {
	baseEvent
	StartedAt time.Time
}

func (GenerationStarted) EventType() string { return string(EventTypeGenerationStarted) }

// ArtifactCompleted is emitted when one artifact in a Generating manifest finishes.
type ArtifactCompleted struct {
	baseEvent
	ArtifactType ArtifactType
	ArtifactID   string
	CompletedAt  time.Time
}

func (ArtifactCompleted) EventType() string { return string(EventTypeArtifactCompleted) }

// Ready is emitted when every artifact has completed generation.
type Ready struct {
	baseEvent
	Checksum       string
	ArtifactCount  uint32
	TotalSizeBytes uint64
	ReadyAt        time.Time
}

func (Ready) EventType() string { return string(EventTypeReady) }

// Exported is emitted when a Ready manifest is written to its target location.
type Exported struct {
	baseEvent
	ExportPath string
	ExportedAt time.Time
	ExportedBy string
}

func (Exported) EventType() string { return string(EventTypeExported) }

// Verified is emitted when an export's checksum is validated.
type Verified struct {
	baseEvent
	VerificationChecksum string
	VerifiedAt           time.Time
	VerifiedBy           string
}

func (Verified) EventType() string { return string(EventTypeVerified) }

// Failed is emitted when a manifest's generation, export, or verification fails.
type Failed struct {
	baseEvent
	Error       string
	FailedAt    time.Time
	FailedStage FailedStage
}

func (Failed) EventType() string { return string(EventTypeFailed) }
