package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sitepulse/backend/internal/domain/shared"
)

// Type selects the scoring strategy for an audit run
type Type string

const (
	// TypePageSpeed runs the full multi-category scoring strategy
	TypePageSpeed Type = "pagespeed"

	// TypeSEO runs the SEO-category-only strategy
	TypeSEO Type = "seo"

	// TypeLighthouse runs the full multi-category strategy
	TypeLighthouse Type = "lighthouse"
)

// IsValid returns true if the audit type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypePageSpeed, TypeSEO, TypeLighthouse:
		return true
	}
	return false
}

// String returns the string representation of the audit type
func (t Type) String() string {
	return string(t)
}

// Status represents the audit state machine position
type Status string

const (
	// StatusPending means the audit is persisted but not yet executing
	StatusPending Status = "pending"

	// StatusQueued is reserved for a future durable queue and is never
	// produced by any current transition
	StatusQueued Status = "queued"

	// StatusRunning means execution is in flight
	StatusRunning Status = "running"

	// StatusCompleted is the successful terminal state
	StatusCompleted Status = "completed"

	// StatusFailed is the unsuccessful terminal state
	StatusFailed Status = "failed"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusQueued, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true for completed or failed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Trigger records what initiated an audit run
type Trigger string

const (
	// TriggerManual is a user-initiated run
	TriggerManual Trigger = "manual"

	// TriggerScheduled is initiated by the scheduler
	TriggerScheduled Trigger = "scheduled"

	// TriggerAutoRegression is initiated by a detected score regression
	TriggerAutoRegression Trigger = "auto_regression"
)

// IsValid returns true if the trigger is valid
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerManual, TriggerScheduled, TriggerAutoRegression:
		return true
	}
	return false
}

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// Runner records whether the scores came from a live provider or the
// deterministic mock fallback
type Runner string

const (
	// RunnerMock produced synthetic results
	RunnerMock Runner = "mock"

	// RunnerLive called the external scoring API
	RunnerLive Runner = "live"
)

// String returns the string representation of the runner
func (r Runner) String() string {
	return string(r)
}

// Audit is one scoring run against a project's primary approved domain.
// Lifecycle: pending -> running -> completed | failed. State is persisted
// before network calls are dispatched so concurrent readers never observe
// a torn intermediate write.
type Audit struct {
	shared.BaseAggregateRoot
	ProjectID   uuid.UUID
	PageID      *uuid.UUID // Optional page target; must belong to the project
	Type        Type
	Status      Status
	Trigger     Trigger
	Runner      Runner
	Score       *int // 0-100, set on completion
	Summary     string
	Error       *string
	RawResult   json.RawMessage // Opaque provider report blob
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewAudit creates an audit in pending with the mock runner
func NewAudit(projectID uuid.UUID, auditType Type, pageID *uuid.UUID, trigger Trigger) (*Audit, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Project ID cannot be empty")
	}
	if !auditType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid audit type")
	}
	if trigger == "" {
		trigger = TriggerManual
	}
	if !trigger.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid audit trigger")
	}

	return &Audit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		PageID:            pageID,
		Type:              auditType,
		Status:            StatusPending,
		Trigger:           trigger,
		Runner:            RunnerMock,
	}, nil
}

// Start transitions the audit to running and stamps StartedAt
func (a *Audit) Start() error {
	if a.Status.IsTerminal() || a.Status == StatusRunning {
		return shared.NewConflictError("Audit is not in a startable state")
	}
	now := time.Now()
	a.Status = StatusRunning
	a.StartedAt = &now
	a.UpdatedAt = now
	return nil
}

// Complete records the scoring outcome and transitions to completed
func (a *Audit) Complete(score int, summary string, raw json.RawMessage, runner Runner) error {
	if a.Status != StatusRunning {
		return shared.NewConflictError("Only a running audit can complete")
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.Score = &score
	a.Summary = summary
	a.RawResult = raw
	a.Runner = runner
	a.CompletedAt = &now
	a.UpdatedAt = now
	return nil
}

// Fail records the error text and transitions to failed
func (a *Audit) Fail(message string) {
	now := time.Now()
	a.Status = StatusFailed
	a.Error = &message
	a.CompletedAt = &now
	a.UpdatedAt = now
}
