package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Requirement errors
var (
	ErrPartIDRequired        = errors.New("part id is required")
	ErrStageIDRequired       = errors.New("stage id is required")
	ErrInvalidExecutionOrder = errors.New("execution order must not be negative")
	ErrInvalidEstimatedHours = errors.New("estimated hours must not be negative")
)

// PartStageRequirement defines one step of a part's stage pipeline with its
// per-stage cost and time estimate. ExecutionOrder is the authoritative
// sequencing key; the stage's own DisplayOrder only breaks ties.
type PartStageRequirement struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RequirementID      string             `bson:"requirementId" json:"requirementId"`
	PartID             string             `bson:"partId" json:"partId"`
	StageID            string             `bson:"stageId" json:"stageId"`
	ExecutionOrder     int                `bson:"executionOrder" json:"executionOrder"`
	EstimatedHours     float64            `bson:"estimatedHours" json:"estimatedHours"`
	SetupMinutes       int                `bson:"setupMinutes" json:"setupMinutes"`
	HourlyRateOverride *float64           `bson:"hourlyRateOverride,omitempty" json:"hourlyRateOverride,omitempty"`
	MaterialCost       float64            `bson:"materialCost" json:"materialCost"`
	IsRequired         bool               `bson:"isRequired" json:"isRequired"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	CreatedBy          string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy     string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RequirementAttributes carries the fields of a requirement row
type RequirementAttributes struct {
	StageID            string
	ExecutionOrder     int
	EstimatedHours     float64
	SetupMinutes       int
	HourlyRateOverride *float64
	MaterialCost       float64
	IsRequired         bool
}

// NewPartStageRequirement creates a requirement row for a part
func NewPartStageRequirement(partID string, attrs RequirementAttributes, createdBy string) (*PartStageRequirement, error) {
	if partID == "" {
		return nil, ErrPartIDRequired
	}
	if attrs.StageID == "" {
		return nil, ErrStageIDRequired
	}
	if attrs.ExecutionOrder < 0 {
		return nil, ErrInvalidExecutionOrder
	}
	if attrs.EstimatedHours < 0 {
		return nil, ErrInvalidEstimatedHours
	}

	now := time.Now()
	return &PartStageRequirement{
		RequirementID:      "REQ-" + uuid.New().String()[:8],
		PartID:             partID,
		StageID:            attrs.StageID,
		ExecutionOrder:     attrs.ExecutionOrder,
		EstimatedHours:     attrs.EstimatedHours,
		SetupMinutes:       attrs.SetupMinutes,
		HourlyRateOverride: attrs.HourlyRateOverride,
		MaterialCost:       attrs.MaterialCost,
		IsRequired:         attrs.IsRequired,
		IsActive:           true,
		CreatedBy:          createdBy,
		LastModifiedBy:     createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Deactivate tombstones the requirement row
func (r *PartStageRequirement) Deactivate(removedBy string) {
	r.IsActive = false
	r.LastModifiedBy = removedBy
	r.UpdatedAt = time.Now()
}

// EffectiveHourlyRate returns the rate override when present, otherwise the
// stage default.
func (r *PartStageRequirement) EffectiveHourlyRate(stage *Stage) float64 {
	if r.HourlyRateOverride != nil {
		return *r.HourlyRateOverride
	}
	return stage.DefaultHourlyRate
}

// ResolveRequiredStages returns the ordered stage pipeline for a part:
// active, required requirement rows whose referenced stage is active, sorted
// by ExecutionOrder, with ties broken by Stage.DisplayOrder and then by stage
// identity so the order is total and stable across calls. Side-effect free.
func ResolveRequiredStages(requirements []*PartStageRequirement, stagesByID map[string]*Stage) []*Stage {
	eligible := make([]*PartStageRequirement, 0, len(requirements))
	for _, req := range requirements {
		if !req.IsActive || !req.IsRequired {
			continue
		}
		stage, ok := stagesByID[req.StageID]
		if !ok || !stage.IsActive {
			continue
		}
		eligible = append(eligible, req)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.ExecutionOrder != b.ExecutionOrder {
			return a.ExecutionOrder < b.ExecutionOrder
		}
		sa, sb := stagesByID[a.StageID], stagesByID[b.StageID]
		if sa.DisplayOrder != sb.DisplayOrder {
			return sa.DisplayOrder < sb.DisplayOrder
		}
		return a.StageID < b.StageID
	})

	stages := make([]*Stage, 0, len(eligible))
	seen := make(map[string]bool, len(eligible))
	for _, req := range eligible {
		if seen[req.StageID] {
			continue
		}
		seen[req.StageID] = true
		stages = append(stages, stagesByID[req.StageID])
	}
	return stages
}
