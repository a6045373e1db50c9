package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Execution errors
var (
	ErrExecutionAlreadyStarted  = errors.New("execution has already been started")
	ErrExecutionNotInProgress   = errors.New("execution is not in progress")
	ErrExecutionNotFailed       = errors.New("execution is not in failed status")
	ErrExecutionNotCompleted    = errors.New("execution is not completed")
	ErrExecutionAlreadyApproved = errors.New("execution is already approved")
	ErrSkipNotAllowed           = errors.New("stage does not allow skipping")
	ErrOperatorMismatch         = errors.New("execution belongs to a different operator")
)

// ExecutionStatus represents the status of a stage execution
type ExecutionStatus string

const (
	ExecutionStatusNotStarted ExecutionStatus = "not_started"
	ExecutionStatusInProgress ExecutionStatus = "in_progress"
	ExecutionStatusCompleted  ExecutionStatus = "completed"
	ExecutionStatusSkipped    ExecutionStatus = "skipped"
	ExecutionStatusFailed     ExecutionStatus = "failed"
)

// IsValid checks if the status is valid
func (s ExecutionStatus) IsValid() bool {
	switch s {
	case ExecutionStatusNotStarted, ExecutionStatusInProgress,
		ExecutionStatusCompleted, ExecutionStatusSkipped, ExecutionStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the execution's lifecycle.
// Failed is terminal for normal flow; only an administrative reset leaves it.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusSkipped, ExecutionStatusFailed:
		return true
	default:
		return false
	}
}

// Satisfies reports whether the status counts as a satisfied prerequisite
// for downstream stages. Skipped unlocks successors exactly like Completed.
func (s ExecutionStatus) Satisfies() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusSkipped
}

// Approval is the sign-off record for an approval-gated stage. Completed
// status alone does not unlock successors of a gated stage; this record must
// also exist.
type Approval struct {
	ApprovedBy string    `bson:"approvedBy" json:"approvedBy"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ApprovedAt time.Time `bson:"approvedAt" json:"approvedAt"`
}

// StageExecution is one job's timed pass through one stage. Created lazily at
// punch-in, transitioned by punch-out, approval, skip, or administrative
// reset, and never deleted: it is the immutable audit trail for that pass.
type StageExecution struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ExecutionID    string             `bson:"executionId" json:"executionId"`
	JobID          string             `bson:"jobId" json:"jobId"`
	StageID        string             `bson:"stageId" json:"stageId"`
	OperatorID     string             `bson:"operatorId,omitempty" json:"operatorId,omitempty"`
	Status         ExecutionStatus    `bson:"status" json:"status"`
	ScheduledStart *time.Time         `bson:"scheduledStart,omitempty" json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time         `bson:"scheduledEnd,omitempty" json:"scheduledEnd,omitempty"`
	StartedAt      *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	EstimatedHours float64            `bson:"estimatedHours" json:"estimatedHours"`
	ActualHours    float64            `bson:"actualHours" json:"actualHours"`
	HourlyRate     float64            `bson:"hourlyRate" json:"hourlyRate"`
	EstimatedCost  float64            `bson:"estimatedCost" json:"estimatedCost"`
	ActualCost     float64            `bson:"actualCost" json:"actualCost"`
	FailureReason  string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	Approval       *Approval          `bson:"approval,omitempty" json:"approval,omitempty"`
	PoolID         string             `bson:"poolId,omitempty" json:"poolId,omitempty"`
	MachinePoolID  string             `bson:"machinePoolId,omitempty" json:"machinePoolId,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents   []DomainEvent      `bson:"-" json:"-"`
}

// NewStageExecution creates a fresh execution record in NotStarted status
func NewStageExecution(jobID, stageID string, estimatedHours, hourlyRate float64, createdBy string) *StageExecution {
	now := time.Now()
	return &StageExecution{
		ExecutionID:    "EXE-" + uuid.New().String()[:8],
		JobID:          jobID,
		StageID:        stageID,
		Status:         ExecutionStatusNotStarted,
		EstimatedHours: estimatedHours,
		HourlyRate:     hourlyRate,
		EstimatedCost:  estimatedHours * hourlyRate,
		IsActive:       true,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		DomainEvents:   make([]DomainEvent, 0),
	}
}

// Start punches the operator into the stage. Only valid from NotStarted;
// concurrency invariants (one active execution per operator, one active
// executor per job-stage) are enforced by the application layer inside the
// same transaction.
func (e *StageExecution) Start(operatorID string) error {
	if e.Status != ExecutionStatusNotStarted {
		return ErrExecutionAlreadyStarted
	}

	now := time.Now()
	e.Status = ExecutionStatusInProgress
	e.OperatorID = operatorID
	e.StartedAt = &now
	e.LastModifiedBy = operatorID
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionStartedEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		OperatorID:  operatorID,
		StartedAt:   now,
	})

	return nil
}

// Complete punches the operator out. Actual hours are the unrounded
// wall-clock delta from punch-in; rounding is a presentation concern.
func (e *StageExecution) Complete(operatorID string) error {
	if e.Status != ExecutionStatusInProgress {
		return ErrExecutionNotInProgress
	}
	if e.OperatorID != operatorID {
		return ErrOperatorMismatch
	}

	now := time.Now()
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &now
	e.ActualHours = now.Sub(*e.StartedAt).Hours()
	e.ActualCost = e.ActualHours * e.HourlyRate
	e.LastModifiedBy = operatorID
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionCompletedEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		OperatorID:  operatorID,
		ActualHours: e.ActualHours,
		CompletedAt: now,
	})

	return nil
}

// Skip marks a never-started execution as skipped. Only stages flagged
// allowSkip may be skipped; a skipped stage satisfies prerequisites exactly
// like a completed one.
func (e *StageExecution) Skip(skippedBy string, allowSkip bool) error {
	if !allowSkip {
		return ErrSkipNotAllowed
	}
	if e.Status != ExecutionStatusNotStarted {
		return ErrExecutionAlreadyStarted
	}

	now := time.Now()
	e.Status = ExecutionStatusSkipped
	e.CompletedAt = &now
	e.LastModifiedBy = skippedBy
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionSkippedEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		SkippedBy:   skippedBy,
		SkippedAt:   now,
	})

	return nil
}

// Fail marks an in-progress execution as failed
func (e *StageExecution) Fail(failedBy, reason string) error {
	if e.Status != ExecutionStatusInProgress {
		return ErrExecutionNotInProgress
	}

	now := time.Now()
	e.Status = ExecutionStatusFailed
	e.FailureReason = reason
	e.CompletedAt = &now
	e.LastModifiedBy = failedBy
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionFailedEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		Reason:      reason,
		FailedAt:    now,
	})

	return nil
}

// ResetFailed returns a failed execution to NotStarted. This is an explicit
// administrative action and is always recorded as a domain event.
func (e *StageExecution) ResetFailed(resetBy string) error {
	if e.Status != ExecutionStatusFailed {
		return ErrExecutionNotFailed
	}

	now := time.Now()
	e.Status = ExecutionStatusNotStarted
	e.OperatorID = ""
	e.StartedAt = nil
	e.CompletedAt = nil
	e.ActualHours = 0
	e.ActualCost = 0
	e.FailureReason = ""
	e.LastModifiedBy = resetBy
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionResetEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		ResetBy:     resetBy,
		ResetAt:     now,
	})

	return nil
}

// Approve records the sign-off on a completed gated stage. Authorization of
// the approver is the caller's concern.
func (e *StageExecution) Approve(approvedBy, notes string) error {
	if e.Status != ExecutionStatusCompleted {
		return ErrExecutionNotCompleted
	}
	if e.Approval != nil {
		return ErrExecutionAlreadyApproved
	}

	now := time.Now()
	e.Approval = &Approval{
		ApprovedBy: approvedBy,
		Notes:      notes,
		ApprovedAt: now,
	}
	e.LastModifiedBy = approvedBy
	e.UpdatedAt = now

	e.AddDomainEvent(&ExecutionApprovedEvent{
		ExecutionID: e.ExecutionID,
		JobID:       e.JobID,
		StageID:     e.StageID,
		ApprovedBy:  approvedBy,
		Notes:       notes,
		ApprovedAt:  now,
	})

	return nil
}

// IsApproved reports whether the execution carries an approval record
func (e *StageExecution) IsApproved() bool {
	return e.Approval != nil
}

// SatisfiesPrerequisite reports whether this execution unlocks dependents of
// its stage. A completed approval-gated stage needs its approval record; a
// skipped gated stage needs none (there is nothing to sign off).
func (e *StageExecution) SatisfiesPrerequisite(requiresApproval bool) bool {
	if !e.Status.Satisfies() {
		return false
	}
	if requiresApproval && e.Status == ExecutionStatusCompleted {
		return e.IsApproved()
	}
	return true
}

// AddDomainEvent adds a domain event
func (e *StageExecution) AddDomainEvent(event DomainEvent) {
	e.DomainEvents = append(e.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (e *StageExecution) ClearDomainEvents() {
	e.DomainEvents = make([]DomainEvent, 0)
}
