package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/metrics"
)

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("workflow-service-test")
	cfg.Level = logging.LevelError
	return logging.New(cfg)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("workflow-service-test"))
}

type mockStageRepo struct {
	saveFn          func(context.Context, *domain.Stage) error
	updateFn        func(context.Context, *domain.Stage) error
	findByIDFn      func(context.Context, string) (*domain.Stage, error)
	findByNameFn    func(context.Context, string) (*domain.Stage, error)
	findAllActiveFn func(context.Context) ([]*domain.Stage, error)
	findByIDsFn     func(context.Context, []string) ([]*domain.Stage, error)
}

func (m *mockStageRepo) Save(ctx context.Context, stage *domain.Stage) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, stage)
	}
	return nil
}

func (m *mockStageRepo) Update(ctx context.Context, stage *domain.Stage) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, stage)
	}
	return nil
}

func (m *mockStageRepo) FindByID(ctx context.Context, stageID string) (*domain.Stage, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, stageID)
	}
	return nil, nil
}

func (m *mockStageRepo) FindByName(ctx context.Context, name string) (*domain.Stage, error) {
	if m.findByNameFn != nil {
		return m.findByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockStageRepo) FindAllActive(ctx context.Context) ([]*domain.Stage, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockStageRepo) FindByIDs(ctx context.Context, stageIDs []string) ([]*domain.Stage, error) {
	if m.findByIDsFn != nil {
		return m.findByIDsFn(ctx, stageIDs)
	}
	return nil, nil
}

type mockEdgeRepo struct {
	saveFn           func(context.Context, *domain.StageDependencyEdge) error
	updateFn         func(context.Context, *domain.StageDependencyEdge) error
	findByIDFn       func(context.Context, string) (*domain.StageDependencyEdge, error)
	findActiveEdgeFn func(context.Context, string, string) (*domain.StageDependencyEdge, error)
	findAllActiveFn  func(context.Context) ([]*domain.StageDependencyEdge, error)

	lastSaved *domain.StageDependencyEdge
}

func (m *mockEdgeRepo) Save(ctx context.Context, edge *domain.StageDependencyEdge) error {
	m.lastSaved = edge
	if m.saveFn != nil {
		return m.saveFn(ctx, edge)
	}
	return nil
}

func (m *mockEdgeRepo) Update(ctx context.Context, edge *domain.StageDependencyEdge) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, edge)
	}
	return nil
}

func (m *mockEdgeRepo) FindByID(ctx context.Context, edgeID string) (*domain.StageDependencyEdge, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, edgeID)
	}
	return nil, nil
}

func (m *mockEdgeRepo) FindActiveEdge(ctx context.Context, dependentStageID, prerequisiteStageID string) (*domain.StageDependencyEdge, error) {
	if m.findActiveEdgeFn != nil {
		return m.findActiveEdgeFn(ctx, dependentStageID, prerequisiteStageID)
	}
	return nil, nil
}

func (m *mockEdgeRepo) FindAllActive(ctx context.Context) ([]*domain.StageDependencyEdge, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

type mockRequirementRepo struct {
	saveFn             func(context.Context, *domain.PartStageRequirement) error
	updateFn           func(context.Context, *domain.PartStageRequirement) error
	findByIDFn         func(context.Context, string) (*domain.PartStageRequirement, error)
	findActiveByPartFn func(context.Context, string) ([]*domain.PartStageRequirement, error)
}

func (m *mockRequirementRepo) Save(ctx context.Context, req *domain.PartStageRequirement) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, req)
	}
	return nil
}

func (m *mockRequirementRepo) Update(ctx context.Context, req *domain.PartStageRequirement) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, req)
	}
	return nil
}

func (m *mockRequirementRepo) FindByID(ctx context.Context, requirementID string) (*domain.PartStageRequirement, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, requirementID)
	}
	return nil, nil
}

func (m *mockRequirementRepo) FindActiveByPart(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
	if m.findActiveByPartFn != nil {
		return m.findActiveByPartFn(ctx, partID)
	}
	return nil, nil
}

type mockExecutionRepo struct {
	saveFn                        func(context.Context, *domain.StageExecution) error
	updateFn                      func(context.Context, *domain.StageExecution) error
	findByIDFn                    func(context.Context, string) (*domain.StageExecution, error)
	findByJobAndStageFn           func(context.Context, string, string) (*domain.StageExecution, error)
	findByJobFn                   func(context.Context, string) ([]*domain.StageExecution, error)
	findInProgressByOperatorFn    func(context.Context, string) (*domain.StageExecution, error)
	findInProgressByJobAndStageFn func(context.Context, string, string) (*domain.StageExecution, error)

	saved   []*domain.StageExecution
	updated []*domain.StageExecution
}

func (m *mockExecutionRepo) Save(ctx context.Context, exe *domain.StageExecution) error {
	m.saved = append(m.saved, exe)
	if m.saveFn != nil {
		return m.saveFn(ctx, exe)
	}
	return nil
}

func (m *mockExecutionRepo) Update(ctx context.Context, exe *domain.StageExecution) error {
	m.updated = append(m.updated, exe)
	if m.updateFn != nil {
		return m.updateFn(ctx, exe)
	}
	return nil
}

func (m *mockExecutionRepo) FindByID(ctx context.Context, executionID string) (*domain.StageExecution, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, executionID)
	}
	return nil, nil
}

func (m *mockExecutionRepo) FindByJobAndStage(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
	if m.findByJobAndStageFn != nil {
		return m.findByJobAndStageFn(ctx, jobID, stageID)
	}
	return nil, nil
}

func (m *mockExecutionRepo) FindByJob(ctx context.Context, jobID string) ([]*domain.StageExecution, error) {
	if m.findByJobFn != nil {
		return m.findByJobFn(ctx, jobID)
	}
	return nil, nil
}

func (m *mockExecutionRepo) FindInProgressByOperator(ctx context.Context, operatorID string) (*domain.StageExecution, error) {
	if m.findInProgressByOperatorFn != nil {
		return m.findInProgressByOperatorFn(ctx, operatorID)
	}
	return nil, nil
}

func (m *mockExecutionRepo) FindInProgressByJobAndStage(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
	if m.findInProgressByJobAndStageFn != nil {
		return m.findInProgressByJobAndStageFn(ctx, jobID, stageID)
	}
	return nil, nil
}

type mockJobRepo struct {
	saveFn             func(context.Context, *domain.Job) error
	updateFn           func(context.Context, *domain.Job) error
	findByIDFn         func(context.Context, string) (*domain.Job, error)
	findActiveByCohort func(context.Context, string) ([]*domain.Job, error)
	findAllActiveFn    func(context.Context) ([]*domain.Job, error)

	saved   []*domain.Job
	updated []*domain.Job
}

func (m *mockJobRepo) Save(ctx context.Context, job *domain.Job) error {
	m.saved = append(m.saved, job)
	if m.saveFn != nil {
		return m.saveFn(ctx, job)
	}
	return nil
}

func (m *mockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	m.updated = append(m.updated, job)
	if m.updateFn != nil {
		return m.updateFn(ctx, job)
	}
	return nil
}

func (m *mockJobRepo) FindByID(ctx context.Context, jobID string) (*domain.Job, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, jobID)
	}
	return nil, nil
}

func (m *mockJobRepo) FindActiveByCohort(ctx context.Context, cohortID string) ([]*domain.Job, error) {
	if m.findActiveByCohort != nil {
		return m.findActiveByCohort(ctx, cohortID)
	}
	return nil, nil
}

func (m *mockJobRepo) FindAllActive(ctx context.Context) ([]*domain.Job, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

type mockCohortRepo struct {
	saveFn          func(context.Context, *domain.BuildCohort) error
	updateFn        func(context.Context, *domain.BuildCohort) error
	findByIDFn      func(context.Context, string) (*domain.BuildCohort, error)
	findAllActiveFn func(context.Context) ([]*domain.BuildCohort, error)

	updated []*domain.BuildCohort
}

func (m *mockCohortRepo) Save(ctx context.Context, cohort *domain.BuildCohort) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, cohort)
	}
	return nil
}

func (m *mockCohortRepo) Update(ctx context.Context, cohort *domain.BuildCohort) error {
	m.updated = append(m.updated, cohort)
	if m.updateFn != nil {
		return m.updateFn(ctx, cohort)
	}
	return nil
}

func (m *mockCohortRepo) FindByID(ctx context.Context, cohortID string) (*domain.BuildCohort, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, cohortID)
	}
	return nil, nil
}

func (m *mockCohortRepo) FindAllActive(ctx context.Context) ([]*domain.BuildCohort, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

type mockPoolRepo struct {
	saveFn             func(context.Context, *domain.ResourcePool) error
	updateFn           func(context.Context, *domain.ResourcePool) error
	findByIDFn         func(context.Context, string) (*domain.ResourcePool, error)
	findActiveByTarget func(context.Context, domain.PoolScope, string) (*domain.ResourcePool, error)
	findAllActiveFn    func(context.Context) ([]*domain.ResourcePool, error)

	updated []*domain.ResourcePool
}

func (m *mockPoolRepo) Save(ctx context.Context, pool *domain.ResourcePool) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, pool)
	}
	return nil
}

func (m *mockPoolRepo) Update(ctx context.Context, pool *domain.ResourcePool) error {
	m.updated = append(m.updated, pool)
	if m.updateFn != nil {
		return m.updateFn(ctx, pool)
	}
	return nil
}

func (m *mockPoolRepo) FindByID(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, poolID)
	}
	return nil, nil
}

func (m *mockPoolRepo) FindActiveByTarget(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
	if m.findActiveByTarget != nil {
		return m.findActiveByTarget(ctx, scope, targetID)
	}
	return nil, nil
}

func (m *mockPoolRepo) FindAllActive(ctx context.Context) ([]*domain.ResourcePool, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

type mockTemplateRepo struct {
	saveFn          func(context.Context, *domain.WorkflowTemplate) error
	findByIDFn      func(context.Context, string) (*domain.WorkflowTemplate, error)
	findAllActiveFn func(context.Context) ([]*domain.WorkflowTemplate, error)
}

func (m *mockTemplateRepo) Save(ctx context.Context, template *domain.WorkflowTemplate) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, template)
	}
	return nil
}

func (m *mockTemplateRepo) FindByID(ctx context.Context, templateID string) (*domain.WorkflowTemplate, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, templateID)
	}
	return nil, nil
}

func (m *mockTemplateRepo) FindAllActive(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	if m.findAllActiveFn != nil {
		return m.findAllActiveFn(ctx)
	}
	return nil, nil
}

func newTestStage(t *testing.T, id, name string) *domain.Stage {
	t.Helper()
	stage, err := domain.NewStage(domain.StageAttributes{Name: name, DefaultHourlyRate: 85}, "admin")
	require.NoError(t, err)
	stage.StageID = id
	stage.ClearDomainEvents()
	return stage
}

func newTestJob(t *testing.T, id, partID, cohortID string) *domain.Job {
	t.Helper()
	job, err := domain.NewJob(partID, 1, cohortID, "planner")
	require.NoError(t, err)
	job.JobID = id
	job.ClearDomainEvents()
	return job
}

func newTestRequirement(t *testing.T, partID, stageID string, order int) *domain.PartStageRequirement {
	t.Helper()
	req, err := domain.NewPartStageRequirement(partID, domain.RequirementAttributes{
		StageID:        stageID,
		ExecutionOrder: order,
		EstimatedHours: 2,
		IsRequired:     true,
	}, "admin")
	require.NoError(t, err)
	return req
}
