package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template errors
var (
	ErrTemplateNameRequired = errors.New("template name is required")
	ErrTemplateEmpty        = errors.New("template must define at least one stage")
)

// TemplateStage is one row of a reusable workflow template
type TemplateStage struct {
	StageID        string  `bson:"stageId" json:"stageId"`
	ExecutionOrder int     `bson:"executionOrder" json:"executionOrder"`
	EstimatedHours float64 `bson:"estimatedHours" json:"estimatedHours"`
	SetupMinutes   int     `bson:"setupMinutes" json:"setupMinutes"`
	MaterialCost   float64 `bson:"materialCost" json:"materialCost"`
	IsRequired     bool    `bson:"isRequired" json:"isRequired"`
}

// WorkflowTemplate is a reusable named stage configuration. Requirement rows
// for a part can be seeded from a template; execution never mutates one.
type WorkflowTemplate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TemplateID     string             `bson:"templateId" json:"templateId"`
	Name           string             `bson:"name" json:"name"`
	Stages         []TemplateStage    `bson:"stages" json:"stages"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewWorkflowTemplate creates a reusable stage configuration
func NewWorkflowTemplate(name string, stages []TemplateStage, createdBy string) (*WorkflowTemplate, error) {
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	if len(stages) == 0 {
		return nil, ErrTemplateEmpty
	}

	now := time.Now()
	return &WorkflowTemplate{
		TemplateID:     "WT-" + uuid.New().String()[:8],
		Name:           name,
		Stages:         stages,
		IsActive:       true,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MaterializeRequirements builds requirement rows for a part from the
// template's stage configuration.
func (t *WorkflowTemplate) MaterializeRequirements(partID, createdBy string) ([]*PartStageRequirement, error) {
	requirements := make([]*PartStageRequirement, 0, len(t.Stages))
	for _, ts := range t.Stages {
		req, err := NewPartStageRequirement(partID, RequirementAttributes{
			StageID:        ts.StageID,
			ExecutionOrder: ts.ExecutionOrder,
			EstimatedHours: ts.EstimatedHours,
			SetupMinutes:   ts.SetupMinutes,
			MaterialCost:   ts.MaterialCost,
			IsRequired:     ts.IsRequired,
		}, createdBy)
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, req)
	}
	return requirements, nil
}
