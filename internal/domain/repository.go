package domain

import "context"

// StageRepository handles stage catalog persistence
type StageRepository interface {
	Save(ctx context.Context, stage *Stage) error
	Update(ctx context.Context, stage *Stage) error
	FindByID(ctx context.Context, stageID string) (*Stage, error)
	FindByName(ctx context.Context, name string) (*Stage, error)
	FindAllActive(ctx context.Context) ([]*Stage, error)
	FindByIDs(ctx context.Context, stageIDs []string) ([]*Stage, error)
}

// DependencyEdgeRepository handles dependency edge persistence. Find methods
// return active edges only; tombstoned edges stay in the collection for audit.
type DependencyEdgeRepository interface {
	Save(ctx context.Context, edge *StageDependencyEdge) error
	Update(ctx context.Context, edge *StageDependencyEdge) error
	FindByID(ctx context.Context, edgeID string) (*StageDependencyEdge, error)
	FindActiveEdge(ctx context.Context, dependentStageID, prerequisiteStageID string) (*StageDependencyEdge, error)
	FindAllActive(ctx context.Context) ([]*StageDependencyEdge, error)
}

// RequirementRepository handles part stage requirement persistence
type RequirementRepository interface {
	Save(ctx context.Context, requirement *PartStageRequirement) error
	Update(ctx context.Context, requirement *PartStageRequirement) error
	FindByID(ctx context.Context, requirementID string) (*PartStageRequirement, error)
	FindActiveByPart(ctx context.Context, partID string) ([]*PartStageRequirement, error)
}

// ExecutionRepository handles stage execution persistence
type ExecutionRepository interface {
	Save(ctx context.Context, execution *StageExecution) error
	Update(ctx context.Context, execution *StageExecution) error
	FindByID(ctx context.Context, executionID string) (*StageExecution, error)
	FindByJobAndStage(ctx context.Context, jobID, stageID string) (*StageExecution, error)
	FindByJob(ctx context.Context, jobID string) ([]*StageExecution, error)
	FindInProgressByOperator(ctx context.Context, operatorID string) (*StageExecution, error)
	FindInProgressByJobAndStage(ctx context.Context, jobID, stageID string) (*StageExecution, error)
}

// JobRepository handles job persistence
type JobRepository interface {
	Save(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, jobID string) (*Job, error)
	FindActiveByCohort(ctx context.Context, cohortID string) ([]*Job, error)
	FindAllActive(ctx context.Context) ([]*Job, error)
}

// CohortRepository handles build cohort persistence
type CohortRepository interface {
	Save(ctx context.Context, cohort *BuildCohort) error
	Update(ctx context.Context, cohort *BuildCohort) error
	FindByID(ctx context.Context, cohortID string) (*BuildCohort, error)
	FindAllActive(ctx context.Context) ([]*BuildCohort, error)
}

// ResourcePoolRepository handles resource pool persistence
type ResourcePoolRepository interface {
	Save(ctx context.Context, pool *ResourcePool) error
	Update(ctx context.Context, pool *ResourcePool) error
	FindByID(ctx context.Context, poolID string) (*ResourcePool, error)
	FindActiveByTarget(ctx context.Context, scope PoolScope, targetID string) (*ResourcePool, error)
	FindAllActive(ctx context.Context) ([]*ResourcePool, error)
}

// TemplateRepository handles workflow template persistence
type TemplateRepository interface {
	Save(ctx context.Context, template *WorkflowTemplate) error
	FindByID(ctx context.Context, templateID string) (*WorkflowTemplate, error)
	FindAllActive(ctx context.Context) ([]*WorkflowTemplate, error)
}
