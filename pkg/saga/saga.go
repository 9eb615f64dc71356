// Package saga holds the types shared by the three composite workflow
// state machines (pkg/saga/bootstrap, pkg/saga/onboarding,
// pkg/saga/certprovisioning): failure capture, compensation step
// reporting, and status description. Each saga subpackage follows the
// same tagged-union-plus-guarded-constructor idiom as the aggregate state
// machines in pkg/key, pkg/certificate, etc. — a saga is simply a state
// machine whose states are phases instead of lifecycle states.
package saga

import "time"

// FailureInfo is the structured error a saga records when it fails.
type FailureInfo struct {
	Message     string
	FailedStep  string
	OccurredAt  time.Time
}

// Status is the human-readable summary every saga can report.
type Status struct {
	StepName     string
	Description  string
	IsTerminal   bool
	IsCompleted  bool
	IsFailed     bool
}
