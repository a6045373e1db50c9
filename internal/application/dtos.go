package application

import "time"

// StageDTO represents a production stage in responses
type StageDTO struct {
	StageID              string    `json:"stageId"`
	Name                 string    `json:"name"`
	DisplayOrder         int       `json:"displayOrder"`
	DefaultSetupMinutes  int       `json:"defaultSetupMinutes"`
	DefaultHourlyRate    float64   `json:"defaultHourlyRate"`
	RequiresQualityCheck bool      `json:"requiresQualityCheck"`
	RequiresApproval     bool      `json:"requiresApproval"`
	AllowSkip            bool      `json:"allowSkip"`
	IsOptional           bool      `json:"isOptional"`
	RequiredCapability   string    `json:"requiredCapability,omitempty"`
	IsActive             bool      `json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DependencyEdgeDTO represents a dependency edge in responses
type DependencyEdgeDTO struct {
	EdgeID              string    `json:"edgeId"`
	DependentStageID    string    `json:"dependentStageId"`
	PrerequisiteStageID string    `json:"prerequisiteStageId"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
}

// RequirementDTO represents a part stage requirement row in responses
type RequirementDTO struct {
	RequirementID      string    `json:"requirementId"`
	PartID             string    `json:"partId"`
	StageID            string    `json:"stageId"`
	ExecutionOrder     int       `json:"executionOrder"`
	EstimatedHours     float64   `json:"estimatedHours"`
	SetupMinutes       int       `json:"setupMinutes"`
	HourlyRateOverride *float64  `json:"hourlyRateOverride,omitempty"`
	MaterialCost       float64   `json:"materialCost"`
	IsRequired         bool      `json:"isRequired"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ApprovalDTO represents an approval record in responses
type ApprovalDTO struct {
	ApprovedBy string    `json:"approvedBy"`
	Notes      string    `json:"notes,omitempty"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// ExecutionDTO represents a stage execution in responses
type ExecutionDTO struct {
	ExecutionID    string       `json:"executionId"`
	JobID          string       `json:"jobId"`
	StageID        string       `json:"stageId"`
	OperatorID     string       `json:"operatorId,omitempty"`
	Status         string       `json:"status"`
	StartedAt      *time.Time   `json:"startedAt,omitempty"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
	EstimatedHours float64      `json:"estimatedHours"`
	ActualHours    float64      `json:"actualHours"`
	HourlyRate     float64      `json:"hourlyRate"`
	EstimatedCost  float64      `json:"estimatedCost"`
	ActualCost     float64      `json:"actualCost"`
	FailureReason  string       `json:"failureReason,omitempty"`
	Approval       *ApprovalDTO `json:"approval,omitempty"`
	PoolID         string       `json:"poolId,omitempty"`
	MachinePoolID  string       `json:"machinePoolId,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// JobDTO represents a job in responses
type JobDTO struct {
	JobID         string     `json:"jobId"`
	PartID        string     `json:"partId"`
	Quantity      int        `json:"quantity"`
	CohortID      string     `json:"cohortId,omitempty"`
	WorkflowStage string     `json:"workflowStage"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CohortDTO represents a build cohort in responses
type CohortDTO struct {
	CohortID    string     `json:"cohortId"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// PoolDTO represents a resource pool in responses
type PoolDTO struct {
	PoolID    string    `json:"poolId"`
	Name      string    `json:"name"`
	Scope     string    `json:"scope"`
	TargetID  string    `json:"targetId"`
	Capacity  int       `json:"capacity"`
	InUse     int       `json:"inUse"`
	Available int       `json:"available"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// TemplateDTO represents a workflow template in responses
type TemplateDTO struct {
	TemplateID string             `json:"templateId"`
	Name       string             `json:"name"`
	Stages     []TemplateStageDTO `json:"stages"`
	IsActive   bool               `json:"isActive"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// TemplateStageDTO represents one template stage row
type TemplateStageDTO struct {
	StageID        string  `json:"stageId"`
	ExecutionOrder int     `json:"executionOrder"`
	EstimatedHours float64 `json:"estimatedHours"`
	SetupMinutes   int     `json:"setupMinutes"`
	MaterialCost   float64 `json:"materialCost"`
	IsRequired     bool    `json:"isRequired"`
}

// CanStartDTO answers a punch-in eligibility query. When CanStart is false,
// the blocking prerequisite stages are listed.
type CanStartDTO struct {
	JobID                string   `json:"jobId"`
	StageID              string   `json:"stageId"`
	CanStart             bool     `json:"canStart"`
	MissingPrerequisites []string `json:"missingPrerequisites,omitempty"`
	Reason               string   `json:"reason,omitempty"`
}
