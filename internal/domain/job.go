package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job errors
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrJobAlreadyComplete = errors.New("job is already complete")
)

// WorkflowStage is the coarse state marker for a job. Fine-grained progress
// lives in the job's StageExecution records.
type WorkflowStage string

const (
	WorkflowStageScheduled    WorkflowStage = "scheduled"
	WorkflowStageInProduction WorkflowStage = "in_production"
	WorkflowStageComplete     WorkflowStage = "complete"
)

// IsValid checks if the workflow stage is valid
func (w WorkflowStage) IsValid() bool {
	switch w {
	case WorkflowStageScheduled, WorkflowStageInProduction, WorkflowStageComplete:
		return true
	default:
		return false
	}
}

// Job is a schedulable unit of work for a part and quantity. A job owns at
// most one build-cohort membership.
type Job struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	JobID          string             `bson:"jobId" json:"jobId"`
	PartID         string             `bson:"partId" json:"partId"`
	Quantity       int                `bson:"quantity" json:"quantity"`
	CohortID       string             `bson:"cohortId,omitempty" json:"cohortId,omitempty"`
	WorkflowStage  WorkflowStage      `bson:"workflowStage" json:"workflowStage"`
	DueDate        *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents   []DomainEvent      `bson:"-" json:"-"`
}

// NewJob schedules a new job for a part. cohortID may be empty for jobs
// outside any build cohort.
func NewJob(partID string, quantity int, cohortID, createdBy string) (*Job, error) {
	if partID == "" {
		return nil, ErrPartIDRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	job := &Job{
		JobID:          "JOB-" + uuid.New().String()[:8],
		PartID:         partID,
		Quantity:       quantity,
		CohortID:       cohortID,
		WorkflowStage:  WorkflowStageScheduled,
		IsActive:       true,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		DomainEvents:   make([]DomainEvent, 0),
	}

	job.AddDomainEvent(&JobScheduledEvent{
		JobID:       job.JobID,
		PartID:      partID,
		Quantity:    quantity,
		CohortID:    cohortID,
		ScheduledAt: now,
	})

	return job, nil
}

// MarkInProduction advances the coarse marker when the first stage starts
func (j *Job) MarkInProduction(modifiedBy string) {
	if j.WorkflowStage != WorkflowStageScheduled {
		return
	}
	j.WorkflowStage = WorkflowStageInProduction
	j.LastModifiedBy = modifiedBy
	j.UpdatedAt = time.Now()
}

// MarkComplete advances the coarse marker once every required stage is
// Completed or Skipped
func (j *Job) MarkComplete(modifiedBy string) error {
	if j.WorkflowStage == WorkflowStageComplete {
		return ErrJobAlreadyComplete
	}
	j.WorkflowStage = WorkflowStageComplete
	j.LastModifiedBy = modifiedBy
	j.UpdatedAt = time.Now()
	return nil
}

// AddDomainEvent adds a domain event
func (j *Job) AddDomainEvent(event DomainEvent) {
	j.DomainEvents = append(j.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (j *Job) ClearDomainEvents() {
	j.DomainEvents = make([]DomainEvent, 0)
}
