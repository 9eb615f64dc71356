package manifest

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindPlanning   Kind = "planning"
	KindGenerating Kind = "generating"
	KindReady      Kind = "ready"
	KindExported   Kind = "exported"
	KindVerified   Kind = "verified"
	KindFailed     Kind = "failed"
)

// State is the sealed lifecycle state of a manifest aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindPlanning:   {KindGenerating: true},
	KindGenerating: {KindReady: true},
	KindReady:      {KindExported: true},
	KindExported:   {KindVerified: true},
	KindVerified:   {},
	KindFailed:     {},
}

// CanTransitionTo reports whether target is a legal successor of from. Any
// non-terminal Kind may additionally transition to Failed; that special
// case is applied on top of this table, mirroring the upstream match guard.
func CanTransitionTo(from, target Kind) bool {
	if target == KindFailed {
		return from != KindVerified && from != KindFailed
	}
	return transitions[from][target]
}

// PlanningState: artifact selection in progress.
type PlanningState struct {
	Artifacts []ArtifactType
	PlannedAt time.Time
	PlannedBy string
}

func (PlanningState) Kind() Kind          { return KindPlanning }
func (PlanningState) IsTerminal() bool    { return false }
func (PlanningState) Description() string { return "Planning (selecting artifacts)" }

// GeneratingState: artifacts being produced.
type GeneratingState struct {
	Progress  map[ArtifactType]ArtifactProgress
	StartedAt time.Time
}

func (GeneratingState) Kind() Kind          { return KindGenerating }
func (GeneratingState) IsTerminal() bool    { return false }
func (GeneratingState) Description() string { return "Generating (artifacts in progress)" }

// ReadyState: all artifacts generated, awaiting export.
type ReadyState struct {
	Checksum       string
	ArtifactCount  uint32
	TotalSizeBytes uint64
	ReadyAt        time.Time
}

func (ReadyState) Kind() Kind          { return KindReady }
func (ReadyState) IsTerminal() bool    { return false }
func (ReadyState) Description() string { return "Ready (awaiting export)" }

// ExportedState: written to its target location, awaiting verification.
type ExportedState struct {
	ExportPath string
	ExportedAt time.Time
	ExportedBy string
}

func (ExportedState) Kind() Kind          { return KindExported }
func (ExportedState) IsTerminal() bool    { return false }
func (ExportedState) Description() string { return "Exported (awaiting verification)" }

// VerifiedState: checksums validated. Terminal.
type VerifiedState struct {
	VerificationChecksum string
	VerifiedAt            time.Time
	VerifiedBy             string
}

func (VerifiedState) Kind() Kind          { return KindVerified }
func (VerifiedState) IsTerminal() bool    { return true }
func (VerifiedState) Description() string { return "Verified (TERMINAL)" }

// FailedState: an error occurred. Terminal.
type FailedState struct {
	Error       string
	FailedAt    time.Time
	FailedStage FailedStage
}

func (FailedState) Kind() Kind          { return KindFailed }
func (FailedState) IsTerminal() bool    { return true }
func (FailedState) Description() string { return "Failed (TERMINAL)" }

func IsReady(s State) bool      { return s.Kind() == KindReady }
func IsExported(s State) bool   { return s.Kind() == KindExported }
func IsVerified(s State) bool   { return s.Kind() == KindVerified }
func HasFailed(s State) bool    { return s.Kind() == KindFailed }
func IsGenerating(s State) bool { return s.Kind() == KindGenerating }
func CanExport(s State) bool    { return s.Kind() == KindReady }
func CanVerify(s State) bool    { return s.Kind() == KindExported }

// StartGenerating transitions a Planning manifest into Generating, seeding
// a Pending progress entry for every selected artifact.
func StartGenerating(s State, at time.Time) (State, error) {
	planning, ok := s.(PlanningState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "manifest", Current: s.Description(), Event: "start_generating",
			Reason: "can only start generation from Planning state",
		}
	}
	if len(planning.Artifacts) == 0 {
		return nil, cimerrors.ValidationFailed{EntityType: "manifest", Reason: "cannot start generation without artifacts"}
	}
	progress := make(map[ArtifactType]ArtifactProgress, len(planning.Artifacts))
	for _, a := range planning.Artifacts {
		progress[a] = ArtifactProgress{Type: a, Status: GenerationPending}
	}
	return GeneratingState{Progress: progress, StartedAt: at}, nil
}

// CompleteArtifact marks one artifact as completed within a Generating manifest.
func CompleteArtifact(s State, artifactType ArtifactType, artifactID string, at time.Time) (State, error) {
	generating, ok := s.(GeneratingState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "manifest", Current: s.Description(), Event: "complete_artifact",
			Reason: "can only complete artifacts while Generating",
		}
	}
	if _, exists := generating.Progress[artifactType]; !exists {
		return nil, cimerrors.ValidationFailed{EntityType: "manifest", Reason: "artifact type not in manifest"}
	}
	newProgress := make(map[ArtifactType]ArtifactProgress, len(generating.Progress))
	for k, v := range generating.Progress {
		newProgress[k] = v
	}
	id := artifactID
	completedAt := at
	newProgress[artifactType] = ArtifactProgress{Type: artifactType, Status: GenerationCompleted, ArtifactID: &id, CompletedAt: &completedAt}
	return GeneratingState{Progress: newProgress, StartedAt: generating.StartedAt}, nil
}

// AllArtifactsCompleted reports whether every artifact in a Generating
// manifest's progress map has finished.
func AllArtifactsCompleted(s GeneratingState) bool {
	for _, p := range s.Progress {
		if p.Status != GenerationCompleted {
			return false
		}
	}
	return true
}

// FinishGenerating transitions a Generating manifest into Ready once every
// artifact has completed.
func FinishGenerating(s State, checksum string, totalSizeBytes uint64, at time.Time) (State, error) {
	generating, ok := s.(GeneratingState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "manifest", Current: s.Description(), Event: "finish_generating",
			Reason: "can only finish generation from Generating state",
		}
	}
	if !AllArtifactsCompleted(generating) {
		return nil, cimerrors.GuardFailed{EntityType: "manifest", Reason: "not all artifacts have completed generation"}
	}
	return ReadyState{Checksum: checksum, ArtifactCount: uint32(len(generating.Progress)), TotalSizeBytes: totalSizeBytes, ReadyAt: at}, nil
}

// Export transitions a Ready manifest into Exported.
func Export(s State, exportPath string, at time.Time, exportedBy string) (State, error) {
	if s.Kind() != KindReady {
		return nil, cimerrors.InvalidTransition{
			EntityType: "manifest", Current: s.Description(), Event: "export",
			Reason: "can only export a Ready manifest",
		}
	}
	return ExportedState{ExportPath: exportPath, ExportedAt: at, ExportedBy: exportedBy}, nil
}

// Verify transitions an Exported manifest into Verified, terminally.
func Verify(s State, verificationChecksum string, at time.Time, verifiedBy string) (State, error) {
	exported, ok := s.(ExportedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "manifest", Current: s.Description(), Event: "verify",
			Reason: "can only verify an Exported manifest",
		}
	}
	_ = exported
	return VerifiedState{VerificationChecksum: verificationChecksum, VerifiedAt: at, VerifiedBy: verifiedBy}, nil
}

// Fail transitions any non-terminal manifest into Failed.
func Fail(s State, errMsg string, at time.Time, stage FailedStage) (State, error) {
	if s.IsTerminal() {
		return nil, cimerrors.TerminalState{EntityType: "manifest", Current: s.Description(), Reason: "terminal manifests cannot fail again"}
	}
	return FailedState{Error: errMsg, FailedAt: at, FailedStage: stage}, nil
}
