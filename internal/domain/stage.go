package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stage errors
var (
	ErrStageNameRequired     = errors.New("stage name is required")
	ErrStageInactive         = errors.New("stage is not active")
	ErrStageAlreadyInactive  = errors.New("stage is already inactive")
	ErrInvalidDisplayOrder   = errors.New("display order must not be negative")
	ErrInvalidHourlyRate     = errors.New("hourly rate must not be negative")
	ErrInvalidSetupMinutes   = errors.New("setup minutes must not be negative")
)

// Stage is a named step in the manufacturing pipeline (printing, EDM,
// coating, assembly...). Stages are authored by administrators and soft
// deleted once referenced by execution history.
type Stage struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StageID              string             `bson:"stageId" json:"stageId"`
	Name                 string             `bson:"name" json:"name"`
	DisplayOrder         int                `bson:"displayOrder" json:"displayOrder"`
	DefaultSetupMinutes  int                `bson:"defaultSetupMinutes" json:"defaultSetupMinutes"`
	DefaultHourlyRate    float64            `bson:"defaultHourlyRate" json:"defaultHourlyRate"`
	RequiresQualityCheck bool               `bson:"requiresQualityCheck" json:"requiresQualityCheck"`
	RequiresApproval     bool               `bson:"requiresApproval" json:"requiresApproval"`
	AllowSkip            bool               `bson:"allowSkip" json:"allowSkip"`
	IsOptional           bool               `bson:"isOptional" json:"isOptional"`
	RequiredCapability   string             `bson:"requiredCapability,omitempty" json:"requiredCapability,omitempty"`
	IsActive             bool               `bson:"isActive" json:"isActive"`
	CreatedBy            string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy       string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents         []DomainEvent      `bson:"-" json:"-"`
}

// StageAttributes carries the editable fields of a stage
type StageAttributes struct {
	Name                 string
	DisplayOrder         int
	DefaultSetupMinutes  int
	DefaultHourlyRate    float64
	RequiresQualityCheck bool
	RequiresApproval     bool
	AllowSkip            bool
	IsOptional           bool
	RequiredCapability   string
}

func (a StageAttributes) validate() error {
	if a.Name == "" {
		return ErrStageNameRequired
	}
	if a.DisplayOrder < 0 {
		return ErrInvalidDisplayOrder
	}
	if a.DefaultHourlyRate < 0 {
		return ErrInvalidHourlyRate
	}
	if a.DefaultSetupMinutes < 0 {
		return ErrInvalidSetupMinutes
	}
	return nil
}

// NewStage creates a new Stage aggregate
func NewStage(attrs StageAttributes, createdBy string) (*Stage, error) {
	if err := attrs.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	stage := &Stage{
		StageID:              "STG-" + uuid.New().String()[:8],
		Name:                 attrs.Name,
		DisplayOrder:         attrs.DisplayOrder,
		DefaultSetupMinutes:  attrs.DefaultSetupMinutes,
		DefaultHourlyRate:    attrs.DefaultHourlyRate,
		RequiresQualityCheck: attrs.RequiresQualityCheck,
		RequiresApproval:     attrs.RequiresApproval,
		AllowSkip:            attrs.AllowSkip,
		IsOptional:           attrs.IsOptional,
		RequiredCapability:   attrs.RequiredCapability,
		IsActive:             true,
		CreatedBy:            createdBy,
		LastModifiedBy:       createdBy,
		CreatedAt:            now,
		UpdatedAt:            now,
		DomainEvents:         make([]DomainEvent, 0),
	}

	stage.AddDomainEvent(&StageCreatedEvent{
		StageID:      stage.StageID,
		Name:         stage.Name,
		DisplayOrder: stage.DisplayOrder,
		CreatedBy:    createdBy,
		CreatedAt:    now,
	})

	return stage, nil
}

// Update replaces the editable attributes of the stage
func (s *Stage) Update(attrs StageAttributes, modifiedBy string) error {
	if !s.IsActive {
		return ErrStageInactive
	}
	if err := attrs.validate(); err != nil {
		return err
	}

	s.Name = attrs.Name
	s.DisplayOrder = attrs.DisplayOrder
	s.DefaultSetupMinutes = attrs.DefaultSetupMinutes
	s.DefaultHourlyRate = attrs.DefaultHourlyRate
	s.RequiresQualityCheck = attrs.RequiresQualityCheck
	s.RequiresApproval = attrs.RequiresApproval
	s.AllowSkip = attrs.AllowSkip
	s.IsOptional = attrs.IsOptional
	s.RequiredCapability = attrs.RequiredCapability
	s.LastModifiedBy = modifiedBy
	s.UpdatedAt = time.Now()

	return nil
}

// Deactivate soft-deletes the stage. History referencing the stage stays
// intact; queries default to active stages only.
func (s *Stage) Deactivate(deactivatedBy string) error {
	if !s.IsActive {
		return ErrStageAlreadyInactive
	}

	now := time.Now()
	s.IsActive = false
	s.LastModifiedBy = deactivatedBy
	s.UpdatedAt = now

	s.AddDomainEvent(&StageDeactivatedEvent{
		StageID:       s.StageID,
		DeactivatedBy: deactivatedBy,
		DeactivatedAt: now,
	})

	return nil
}

// AddDomainEvent adds a domain event
func (s *Stage) AddDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (s *Stage) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
