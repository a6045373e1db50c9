package cloudevents

import (
	"time"
)

// EventType constants for production workflow domain events
const (
	// Stage catalog events
	StageCreated     = "opx.stage.created"
	StageUpdated     = "opx.stage.updated"
	StageDeactivated = "opx.stage.deactivated"

	// Dependency graph events
	DependencyAdded   = "opx.dependency.added"
	DependencyRemoved = "opx.dependency.removed"

	// Execution events
	ExecutionStarted   = "opx.execution.started"
	ExecutionCompleted = "opx.execution.completed"
	ExecutionSkipped   = "opx.execution.skipped"
	ExecutionFailed    = "opx.execution.failed"
	ExecutionReset     = "opx.execution.reset"
	ExecutionApproved  = "opx.execution.approved"

	// Job events
	JobScheduled = "opx.job.scheduled"

	// Cohort events
	CohortCompleted       = "opx.cohort.completed"
	DownstreamJobsCreated = "opx.cohort.downstream-jobs-created"
)

// ProductionCloudEvent represents a CloudEvents v1.0 compliant event for the
// production workflow service
type ProductionCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// OpCentrix-specific extensions
	CorrelationID string `json:"opxcorrelationid,omitempty"`
	JobID         string `json:"opxjobid,omitempty"`
	CohortID      string `json:"opxcohortid,omitempty"`
}

// ExecutionStartedData is the payload for ExecutionStarted events
type ExecutionStartedData struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	OperatorID  string    `json:"operatorId"`
	StartedAt   time.Time `json:"startedAt"`
}

// ExecutionCompletedData is the payload for ExecutionCompleted events
type ExecutionCompletedData struct {
	ExecutionID string    `json:"executionId"`
	JobID       string    `json:"jobId"`
	StageID     string    `json:"stageId"`
	OperatorID  string    `json:"operatorId"`
	ActualHours float64   `json:"actualHours"`
	CompletedAt time.Time `json:"completedAt"`
}

// CohortCompletedData is the payload for CohortCompleted events
type CohortCompletedData struct {
	CohortID    string    `json:"cohortId"`
	JobIDs      []string  `json:"jobIds"`
	CompletedAt time.Time `json:"completedAt"`
}

// DownstreamJobsCreatedData is the payload for DownstreamJobsCreated events
type DownstreamJobsCreatedData struct {
	CohortID  string   `json:"cohortId"`
	JobIDs    []string `json:"jobIds"`
	CreatedBy string   `json:"createdBy"`
}

// DependencyAddedData is the payload for DependencyAdded events
type DependencyAddedData struct {
	EdgeID            string `json:"edgeId"`
	DependentStageID  string `json:"dependentStageId"`
	PrerequisiteStage string `json:"prerequisiteStageId"`
}
