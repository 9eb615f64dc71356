// Package manifest implements the lifecycle state machine for export
// manifests: Planning -> Generating -> Ready -> Exported -> Verified,
// with Failed reachable from any non-terminal state.
package manifest

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/idkit"
)

// ID identifies a manifest aggregate instance.
type ID uuid.UUID

// NewID returns a fresh time-ordered manifest id.
func NewID() ID { return ID(idkit.New()) }

// ParseID parses a textual id into an ID.
func ParseID(s string) (ID, error) {
	u, err := idkit.Parse(s)
	return ID(u), err
}

func (id ID) String() string { return uuid.UUID(id).String() }

// ArtifactType identifies a kind of exportable artifact in a manifest.
type ArtifactType string

const (
	ArtifactTypeCertificate ArtifactType = "certificate"
	ArtifactTypeKey         ArtifactType = "key"
	ArtifactTypeNATSCreds   ArtifactType = "nats-creds"
	ArtifactTypeCRL         ArtifactType = "crl"
	ArtifactTypeDIDDocument ArtifactType = "did-document"
)

// GenerationProgress tracks one artifact's completion state within Generating.
type GenerationProgress string

const (
	GenerationPending   GenerationProgress = "pending"
	GenerationCompleted GenerationProgress = "completed"
)

// FailedStage records which lifecycle stage a manifest failed in.
type FailedStage string

const (
	FailedStagePlanning   FailedStage = "planning"
	FailedStageGenerating FailedStage = "generating"
	FailedStageExporting  FailedStage = "exporting"
	FailedStageVerifying  FailedStage = "verifying"
)

// ArtifactProgress pairs an artifact's type with its generated id once complete.
type ArtifactProgress struct {
	Type       ArtifactType
	Status     GenerationProgress
	ArtifactID *string
	CompletedAt *time.Time
}
