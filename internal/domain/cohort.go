package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cohort errors
var (
	ErrCohortAlreadyComplete = errors.New("cohort is already complete")
	ErrCohortNameRequired    = errors.New("cohort name is required")
)

// CohortStatus represents the lifecycle of a build cohort
type CohortStatus string

const (
	CohortStatusOpen     CohortStatus = "open"
	CohortStatusComplete CohortStatus = "complete"
)

// IsValid checks if the status is valid
func (s CohortStatus) IsValid() bool {
	switch s {
	case CohortStatusOpen, CohortStatusComplete:
		return true
	default:
		return false
	}
}

// BuildCohort is a batch of jobs produced together (one print build holding
// several parts) that share downstream routing. Its status doubles as the
// latch that makes downstream fan-out fire exactly once.
type BuildCohort struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CohortID       string             `bson:"cohortId" json:"cohortId"`
	Name           string             `bson:"name" json:"name"`
	Status         CohortStatus       `bson:"status" json:"status"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents   []DomainEvent      `bson:"-" json:"-"`
}

// NewBuildCohort creates an open cohort. Membership lives on the jobs
// (Job.CohortID), not here.
func NewBuildCohort(name, createdBy string) (*BuildCohort, error) {
	if name == "" {
		return nil, ErrCohortNameRequired
	}

	now := time.Now()
	return &BuildCohort{
		CohortID:       "BC-" + uuid.New().String()[:8],
		Name:           name,
		Status:         CohortStatusOpen,
		IsActive:       true,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		DomainEvents:   make([]DomainEvent, 0),
	}, nil
}

// IsComplete reports whether the cohort has latched complete
func (c *BuildCohort) IsComplete() bool {
	return c.Status == CohortStatusComplete
}

// MarkComplete latches the cohort complete. Returns ErrCohortAlreadyComplete
// when the latch is already set, which callers treat as "someone else won" —
// a no-op, not a failure.
func (c *BuildCohort) MarkComplete(jobIDs []string, modifiedBy string) error {
	if c.Status == CohortStatusComplete {
		return ErrCohortAlreadyComplete
	}

	now := time.Now()
	c.Status = CohortStatusComplete
	c.CompletedAt = &now
	c.LastModifiedBy = modifiedBy
	c.UpdatedAt = now

	c.AddDomainEvent(&CohortCompletedEvent{
		CohortID:    c.CohortID,
		JobIDs:      jobIDs,
		CompletedAt: now,
	})

	return nil
}

// AddDomainEvent adds a domain event
func (c *BuildCohort) AddDomainEvent(event DomainEvent) {
	c.DomainEvents = append(c.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (c *BuildCohort) ClearDomainEvents() {
	c.DomainEvents = make([]DomainEvent, 0)
}
