package domain

import "time"

// DomainEvent interface for domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// StageCreatedEvent is emitted when a production stage is defined
type StageCreatedEvent struct {
	StageID      string    `json:"stageId"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (e *StageCreatedEvent) EventType() string     { return "stage.created" }
func (e *StageCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// StageDeactivatedEvent is emitted when a stage is soft-deleted
type StageDeactivatedEvent struct {
	StageID       string    `json:"stageId"`
	DeactivatedBy string    `json:"deactivatedBy"`
	DeactivatedAt time.Time `json:"deactivatedAt"`
}

func (e *StageDeactivatedEvent) EventType() string     { return "stage.deactivated" }
func (e *StageDeactivatedEvent) OccurredAt() time.Time { return e.DeactivatedAt }

// ExecutionStartedEvent is emitted when an operator punches into a stage
type ExecutionStartedEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	OperatorID  string    `json:"operatorId"`
	StartedAt   time.Time `json:"startedAt"`
}

func (e *ExecutionStartedEvent) EventType() string     { return "execution.started" }
func (e *ExecutionStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// ExecutionCompletedEvent is emitted when an operator punches out of a stage
type ExecutionCompletedEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	OperatorID  string    `json:"operatorId"`
	ActualHours float64   `json:"actualHours"`
	CompletedAt time.Time `json:"completedAt"`
}

func (e *ExecutionCompletedEvent) EventType() string     { return "execution.completed" }
func (e *ExecutionCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// ExecutionSkippedEvent is emitted when a skippable stage is skipped
type ExecutionSkippedEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	SkippedBy   string    `json:"skippedBy"`
	SkippedAt   time.Time `json:"skippedAt"`
}

func (e *ExecutionSkippedEvent) EventType() string     { return "execution.skipped" }
func (e *ExecutionSkippedEvent) OccurredAt() time.Time { return e.SkippedAt }

// ExecutionFailedEvent is emitted when an in-progress execution is failed
type ExecutionFailedEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	Reason      string    `json:"reason"`
	FailedAt    time.Time `json:"failedAt"`
}

func (e *ExecutionFailedEvent) EventType() string     { return "execution.failed" }
func (e *ExecutionFailedEvent) OccurredAt() time.Time { return e.FailedAt }

// ExecutionResetEvent records the administrative reset of a failed execution.
// This is an explicit audited action, not part of normal flow.
type ExecutionResetEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	ResetBy     string    `json:"resetBy"`
	ResetAt     time.Time `json:"resetAt"`
}

func (e *ExecutionResetEvent) EventType() string     { return "execution.reset" }
func (e *ExecutionResetEvent) OccurredAt() time.Time { return e.ResetAt }

// ExecutionApprovedEvent is emitted when a completed gated stage is signed off
type ExecutionApprovedEvent struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	ApprovedBy  string    `json:"approvedBy"`
	Notes       string    `json:"notes,omitempty"`
	ApprovedAt  time.Time `json:"approvedAt"`
}

func (e *ExecutionApprovedEvent) EventType() string     { return "execution.approved" }
func (e *ExecutionApprovedEvent) OccurredAt() time.Time { return e.ApprovedAt }

// JobScheduledEvent is emitted when a job is created
type JobScheduledEvent struct {
	JobID       string    `json:"jobId"`
	PartID      string    `json:"partId"`
	Quantity    int       `json:"quantity"`
	CohortID    string    `json:"cohortId,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (e *JobScheduledEvent) EventType() string     { return "job.scheduled" }
func (e *JobScheduledEvent) OccurredAt() time.Time { return e.ScheduledAt }

// CohortCompletedEvent is emitted exactly once when every member job of a
// build cohort has finished all required stages
type CohortCompletedEvent struct {
	CohortID    string    `json:"cohortId"`
	JobIDs      []string  `json:"jobIds"`
	CompletedAt time.Time `json:"completedAt"`
}

func (e *CohortCompletedEvent) EventType() string     { return "cohort.completed" }
func (e *CohortCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// DownstreamJobsCreatedEvent is emitted alongside CohortCompletedEvent when
// cohort completion fans out into per-part downstream jobs
type DownstreamJobsCreatedEvent struct {
	CohortID  string    `json:"cohortId"`
	JobIDs    []string  `json:"jobIds"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *DownstreamJobsCreatedEvent) EventType() string     { return "cohort.downstream-jobs-created" }
func (e *DownstreamJobsCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }
