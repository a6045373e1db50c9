package application

import (
	"time"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
)

// CreateStageCommand defines a new production stage
type CreateStageCommand struct {
	Name                 string
	DisplayOrder         int
	DefaultSetupMinutes  int
	DefaultHourlyRate    float64
	RequiresQualityCheck bool
	RequiresApproval     bool
	AllowSkip            bool
	IsOptional           bool
	RequiredCapability   string
	CreatedBy            string
}

// UpdateStageCommand replaces the editable attributes of a stage
type UpdateStageCommand struct {
	StageID              string
	Name                 string
	DisplayOrder         int
	DefaultSetupMinutes  int
	DefaultHourlyRate    float64
	RequiresQualityCheck bool
	RequiresApproval     bool
	AllowSkip            bool
	IsOptional           bool
	RequiredCapability   string
	ModifiedBy           string
}

// DeactivateStageCommand soft-deletes a stage
type DeactivateStageCommand struct {
	StageID       string
	DeactivatedBy string
}

// AddDependencyCommand adds a must-complete-before edge between two stages
type AddDependencyCommand struct {
	DependentStageID    string
	PrerequisiteStageID string
	CreatedBy           string
}

// RemoveDependencyCommand tombstones a dependency edge
type RemoveDependencyCommand struct {
	EdgeID    string
	RemovedBy string
}

// AddRequirementCommand adds a stage requirement row to a part's pipeline
type AddRequirementCommand struct {
	PartID             string
	StageID            string
	ExecutionOrder     int
	EstimatedHours     float64
	SetupMinutes       int
	HourlyRateOverride *float64
	MaterialCost       float64
	IsRequired         bool
	CreatedBy          string
}

// RemoveRequirementCommand tombstones a requirement row
type RemoveRequirementCommand struct {
	RequirementID string
	RemovedBy     string
}

// CreateTemplateCommand defines a reusable workflow template
type CreateTemplateCommand struct {
	Name      string
	Stages    []domain.TemplateStage
	CreatedBy string
}

// ApplyTemplateCommand seeds a part's requirement rows from a template
type ApplyTemplateCommand struct {
	TemplateID string
	PartID     string
	CreatedBy  string
}

// CreateJobCommand schedules a new job for a part
type CreateJobCommand struct {
	PartID    string
	Quantity  int
	CohortID  string
	DueDate   *time.Time
	CreatedBy string
}

// CreateCohortCommand opens a new build cohort
type CreateCohortCommand struct {
	Name      string
	CreatedBy string
}

// ScheduleCohortCommand opens a cohort and schedules its member jobs in one
// transaction
type ScheduleCohortCommand struct {
	Name      string
	Jobs      []CohortJobSpec
	CreatedBy string
}

// CohortJobSpec describes one member job of a cohort being scheduled
type CohortJobSpec struct {
	PartID   string
	Quantity int
}

// CreatePoolCommand defines a capacity pool for a stage or machine
type CreatePoolCommand struct {
	Name      string
	Scope     domain.PoolScope
	TargetID  string
	Capacity  int
	CreatedBy string
}

// PunchInCommand starts a stage execution for an operator
type PunchInCommand struct {
	JobID      string
	StageID    string
	OperatorID string
	MachineID  string
}

// PunchOutCommand completes the operator's in-progress execution
type PunchOutCommand struct {
	JobID      string
	StageID    string
	OperatorID string
}

// ApproveExecutionCommand records sign-off on a completed gated stage
type ApproveExecutionCommand struct {
	JobID      string
	StageID    string
	ApprovedBy string
	Notes      string
}

// SkipStageCommand skips a never-started stage for a job
type SkipStageCommand struct {
	JobID     string
	StageID   string
	SkippedBy string
}

// FailExecutionCommand fails the in-progress execution for a job stage
type FailExecutionCommand struct {
	JobID    string
	StageID  string
	FailedBy string
	Reason   string
}

// ResetExecutionCommand returns a failed execution to its initial state
type ResetExecutionCommand struct {
	JobID   string
	StageID string
	ResetBy string
}

// CanStartQuery asks whether an operator could punch into a job stage now
type CanStartQuery struct {
	JobID   string
	StageID string
}

// RequiredStagesQuery resolves the ordered stage pipeline for a part
type RequiredStagesQuery struct {
	PartID string
}
