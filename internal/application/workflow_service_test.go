package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/auth"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
)

type workflowFixture struct {
	executions   *mockExecutionRepo
	jobs         *mockJobRepo
	stages       *mockStageRepo
	requirements *mockRequirementRepo
	edges        *mockEdgeRepo
	pools        *mockPoolRepo
	cohorts      *mockCohortRepo
	service      *WorkflowApplicationService
}

func newWorkflowFixture(t *testing.T, checker auth.CapabilityChecker) *workflowFixture {
	t.Helper()
	f := &workflowFixture{
		executions:   &mockExecutionRepo{},
		jobs:         &mockJobRepo{},
		stages:       &mockStageRepo{},
		requirements: &mockRequirementRepo{},
		edges:        &mockEdgeRepo{},
		pools:        &mockPoolRepo{},
		cohorts:      &mockCohortRepo{},
	}
	if checker == nil {
		checker = auth.AllowAll
	}
	m := testMetrics()
	logger := testLogger()
	progression := NewCohortProgressionEngine(
		f.jobs, f.cohorts, f.executions, f.requirements, f.stages,
		PassthroughRouter{}, m, logger,
	)
	f.service = NewWorkflowApplicationService(
		f.executions, f.jobs, f.stages, f.requirements, f.edges, f.pools,
		progression, NoTransaction{}, checker, m, logger,
	)
	return f
}

// withJobAndStage wires the happy-path lookups: one active job and stage,
// and a single-stage required pipeline for the part.
func (f *workflowFixture) withJobAndStage(t *testing.T, job *domain.Job, stage *domain.Stage) {
	t.Helper()
	f.jobs.findByIDFn = func(ctx context.Context, id string) (*domain.Job, error) {
		if id == job.JobID {
			return job, nil
		}
		return nil, nil
	}
	f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) {
		if id == stage.StageID {
			return stage, nil
		}
		return nil, nil
	}
	f.stages.findByIDsFn = func(ctx context.Context, ids []string) ([]*domain.Stage, error) {
		return []*domain.Stage{stage}, nil
	}
	f.requirements.findActiveByPartFn = func(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
		return []*domain.PartStageRequirement{newTestRequirement(t, job.PartID, stage.StageID, 10)}, nil
	}
}

func assertInvariantCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := errors.FromError(err)
	assert.Equal(t, code, appErr.Code)
}

// TestPunchIn tests the punch-in transition and its concurrency guards
func TestPunchIn(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates and starts an execution", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		dto, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ExecutionStatusInProgress), dto.Status)
		assert.Equal(t, "OP-001", dto.OperatorID)

		require.Len(t, f.executions.saved, 1)
		assert.Equal(t, domain.WorkflowStageInProduction, job.WorkflowStage)
		require.Len(t, f.jobs.updated, 1)
	})

	t.Run("Operator id is required", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print"})
		assertInvariantCode(t, err, errors.CodeValidationError)
	})

	t.Run("Operator already busy elsewhere", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		other := domain.NewStageExecution("JOB-999", "STG-edm", 1, 85, "OP-001")
		require.NoError(t, other.Start("OP-001"))
		f.executions.findInProgressByOperatorFn = func(ctx context.Context, operatorID string) (*domain.StageExecution, error) {
			return other, nil
		}

		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeOperatorBusy)
		assert.Empty(t, f.executions.saved)
	})

	t.Run("Stage already worked by another operator", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		inProgress := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-002")
		require.NoError(t, inProgress.Start("OP-002"))
		f.executions.findInProgressByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return inProgress, nil
		}

		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeStageBusy)
	})

	t.Run("Prerequisites not met", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		printing := newTestStage(t, "STG-print", "SLS Printing")
		coating := newTestStage(t, "STG-coat", "Coating")

		f.jobs.findByIDFn = func(ctx context.Context, id string) (*domain.Job, error) { return job, nil }
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) {
			if id == "STG-coat" {
				return coating, nil
			}
			return printing, nil
		}
		f.stages.findByIDsFn = func(ctx context.Context, ids []string) ([]*domain.Stage, error) {
			return []*domain.Stage{printing, coating}, nil
		}
		f.requirements.findActiveByPartFn = func(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
			return []*domain.PartStageRequirement{
				newTestRequirement(t, "PART-001", "STG-print", 10),
				newTestRequirement(t, "PART-001", "STG-coat", 20),
			}, nil
		}
		coatEdge, err := domain.NewStageDependencyEdge("STG-coat", "STG-print", "admin")
		require.NoError(t, err)
		f.edges.findAllActiveFn = func(ctx context.Context) ([]*domain.StageDependencyEdge, error) {
			return []*domain.StageDependencyEdge{coatEdge}, nil
		}

		_, err = f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-coat", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodePrerequisitesNotMet)
	})

	t.Run("Earlier pipeline stage gates punch-in without dependency edges", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		printing := newTestStage(t, "STG-print", "SLS Printing")
		coating := newTestStage(t, "STG-coat", "Coating")

		f.jobs.findByIDFn = func(ctx context.Context, id string) (*domain.Job, error) { return job, nil }
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) {
			if id == "STG-coat" {
				return coating, nil
			}
			return printing, nil
		}
		f.stages.findByIDsFn = func(ctx context.Context, ids []string) ([]*domain.Stage, error) {
			return []*domain.Stage{printing, coating}, nil
		}
		// No edges authored; the execution order alone sequences the pipeline
		f.requirements.findActiveByPartFn = func(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
			return []*domain.PartStageRequirement{
				newTestRequirement(t, "PART-001", "STG-print", 10),
				newTestRequirement(t, "PART-001", "STG-coat", 20),
			}, nil
		}

		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-coat", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodePrerequisitesNotMet)
		assert.Empty(t, f.executions.saved)

		done := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, done.Start("OP-001"))
		require.NoError(t, done.Complete("OP-001"))
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			if stageID == "STG-print" {
				return done, nil
			}
			return nil, nil
		}

		dto, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-coat", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ExecutionStatusInProgress), dto.Status)
	})

	t.Run("Prerequisite outside the part pipeline is vacuously satisfied", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		coating := newTestStage(t, "STG-coat", "Coating")
		f.withJobAndStage(t, job, coating)

		// STG-print is a prerequisite of coating, but PART-001's pipeline
		// only contains coating.
		coatEdge, err := domain.NewStageDependencyEdge("STG-coat", "STG-print", "admin")
		require.NoError(t, err)
		f.edges.findAllActiveFn = func(ctx context.Context) ([]*domain.StageDependencyEdge, error) {
			return []*domain.StageDependencyEdge{coatEdge}, nil
		}

		_, err = f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-coat", OperatorID: "OP-001"})
		require.NoError(t, err)
	})

	t.Run("Capacity pool exhausted", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-edm", "Wire EDM")
		f.withJobAndStage(t, job, stage)

		pool, err := domain.NewResourcePool("EDM bay", domain.PoolScopeStage, "STG-edm", 1, "admin")
		require.NoError(t, err)
		require.NoError(t, pool.Reserve())
		f.pools.findActiveByTarget = func(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
			return pool, nil
		}

		_, err = f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-edm", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeCapacityExceeded)
	})

	t.Run("Pool slot reserved and recorded on the execution", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-edm", "Wire EDM")
		f.withJobAndStage(t, job, stage)

		pool, err := domain.NewResourcePool("EDM bay", domain.PoolScopeStage, "STG-edm", 2, "admin")
		require.NoError(t, err)
		f.pools.findActiveByTarget = func(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
			return pool, nil
		}

		dto, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-edm", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Equal(t, pool.PoolID, dto.PoolID)
		assert.Equal(t, 1, pool.InUse)
		require.Len(t, f.pools.updated, 1)
	})

	t.Run("Machine pool exhausted", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		machinePool, err := domain.NewResourcePool("Printer TI1", domain.PoolScopeMachine, "TI1", 1, "admin")
		require.NoError(t, err)
		require.NoError(t, machinePool.Reserve())
		f.pools.findActiveByTarget = func(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
			if scope == domain.PoolScopeMachine && targetID == "TI1" {
				return machinePool, nil
			}
			return nil, nil
		}

		_, err = f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001", MachineID: "TI1"})
		assertInvariantCode(t, err, errors.CodeCapacityExceeded)
		assert.Empty(t, f.executions.saved)
	})

	t.Run("Stage and machine slots reserved together", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		stagePool, err := domain.NewResourcePool("Print floor", domain.PoolScopeStage, "STG-print", 2, "admin")
		require.NoError(t, err)
		machinePool, err := domain.NewResourcePool("Printer TI1", domain.PoolScopeMachine, "TI1", 1, "admin")
		require.NoError(t, err)
		f.pools.findActiveByTarget = func(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
			if scope == domain.PoolScopeMachine {
				return machinePool, nil
			}
			return stagePool, nil
		}

		dto, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001", MachineID: "TI1"})
		require.NoError(t, err)
		assert.Equal(t, stagePool.PoolID, dto.PoolID)
		assert.Equal(t, machinePool.PoolID, dto.MachinePoolID)
		assert.Equal(t, 1, stagePool.InUse)
		assert.Equal(t, 1, machinePool.InUse)
		require.Len(t, f.pools.updated, 2)
	})

	t.Run("Operator lacks the stage capability", func(t *testing.T) {
		denyAll := func(ctx context.Context, operatorID string, capability auth.Capability) (bool, error) {
			return false, nil
		}
		f := newWorkflowFixture(t, denyAll)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-edm", "Wire EDM")
		stage.RequiredCapability = "edm"
		f.withJobAndStage(t, job, stage)

		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-edm", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeForbidden)
	})

	t.Run("Failed execution must be reset first", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		failed := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, failed.Start("OP-001"))
		require.NoError(t, failed.Fail("OP-001", "bad build"))
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return failed, nil
		}

		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-002"})
		assertInvariantCode(t, err, errors.CodeConflict)
	})

	t.Run("Unknown job", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		_, err := f.service.PunchIn(ctx, PunchInCommand{JobID: "JOB-missing", StageID: "STG-print", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeNotFound)
	})
}

// TestPunchOut tests the punch-out transition
func TestPunchOut(t *testing.T) {
	ctx := context.Background()

	t.Run("Completes the in-progress execution", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, exe.Start("OP-001"))
		f.executions.findInProgressByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			if exe.Status == domain.ExecutionStatusInProgress {
				return exe, nil
			}
			return nil, nil
		}
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		dto, err := f.service.PunchOut(ctx, PunchOutCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ExecutionStatusCompleted), dto.Status)

		// Single-stage pipeline satisfied, so progression completed the job
		assert.Equal(t, domain.WorkflowStageComplete, job.WorkflowStage)
	})

	t.Run("No active execution", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		_, err := f.service.PunchOut(ctx, PunchOutCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		assertInvariantCode(t, err, errors.CodeNoActiveExecution)
	})

	t.Run("Different operator cannot punch out", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, exe.Start("OP-001"))
		f.executions.findInProgressByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		_, err := f.service.PunchOut(ctx, PunchOutCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-002"})
		assertInvariantCode(t, err, errors.CodeForbidden)
		assert.Equal(t, domain.ExecutionStatusInProgress, exe.Status)
	})

	t.Run("Releases the capacity slot", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-edm", "Wire EDM")
		f.withJobAndStage(t, job, stage)

		pool, err := domain.NewResourcePool("EDM bay", domain.PoolScopeStage, "STG-edm", 1, "admin")
		require.NoError(t, err)
		require.NoError(t, pool.Reserve())
		f.pools.findByIDFn = func(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
			return pool, nil
		}

		exe := domain.NewStageExecution("JOB-001", "STG-edm", 1, 85, "OP-001")
		exe.PoolID = pool.PoolID
		require.NoError(t, exe.Start("OP-001"))
		f.executions.findInProgressByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			if exe.Status == domain.ExecutionStatusInProgress {
				return exe, nil
			}
			return nil, nil
		}
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		_, err = f.service.PunchOut(ctx, PunchOutCommand{JobID: "JOB-001", StageID: "STG-edm", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Zero(t, pool.InUse)
	})

	t.Run("Releases the stage and machine slots", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		stagePool, err := domain.NewResourcePool("Print floor", domain.PoolScopeStage, "STG-print", 2, "admin")
		require.NoError(t, err)
		require.NoError(t, stagePool.Reserve())
		machinePool, err := domain.NewResourcePool("Printer TI1", domain.PoolScopeMachine, "TI1", 1, "admin")
		require.NoError(t, err)
		require.NoError(t, machinePool.Reserve())
		f.pools.findByIDFn = func(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
			if poolID == machinePool.PoolID {
				return machinePool, nil
			}
			return stagePool, nil
		}

		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		exe.PoolID = stagePool.PoolID
		exe.MachinePoolID = machinePool.PoolID
		require.NoError(t, exe.Start("OP-001"))
		f.executions.findInProgressByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			if exe.Status == domain.ExecutionStatusInProgress {
				return exe, nil
			}
			return nil, nil
		}
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		_, err = f.service.PunchOut(ctx, PunchOutCommand{JobID: "JOB-001", StageID: "STG-print", OperatorID: "OP-001"})
		require.NoError(t, err)
		assert.Zero(t, stagePool.InUse)
		assert.Zero(t, machinePool.InUse)
	})
}

// TestApprove tests the approval gate
func TestApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("Approval completes the job pipeline", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		stage.RequiresApproval = true
		f.withJobAndStage(t, job, stage)

		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, exe.Start("OP-001"))
		require.NoError(t, exe.Complete("OP-001"))
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		dto, err := f.service.Approve(ctx, ApproveExecutionCommand{
			JobID: "JOB-001", StageID: "STG-print", ApprovedBy: "inspector", Notes: "in tolerance",
		})
		require.NoError(t, err)
		require.NotNil(t, dto.Approval)
		assert.Equal(t, "inspector", dto.Approval.ApprovedBy)

		// The approval was the last missing piece
		assert.Equal(t, domain.WorkflowStageComplete, job.WorkflowStage)
	})

	t.Run("Stage does not require approval", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) { return stage, nil }

		_, err := f.service.Approve(ctx, ApproveExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ApprovedBy: "inspector"})
		assertInvariantCode(t, err, errors.CodeValidationError)
	})

	t.Run("Double approval rejected", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		stage.RequiresApproval = true
		f.withJobAndStage(t, job, stage)

		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, exe.Start("OP-001"))
		require.NoError(t, exe.Complete("OP-001"))
		require.NoError(t, exe.Approve("inspector", ""))
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		_, err := f.service.Approve(ctx, ApproveExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ApprovedBy: "inspector2"})
		assertInvariantCode(t, err, errors.CodeConflict)
	})

	t.Run("Approver lacks the approve capability", func(t *testing.T) {
		denyAll := func(ctx context.Context, operatorID string, capability auth.Capability) (bool, error) {
			return false, nil
		}
		f := newWorkflowFixture(t, denyAll)
		stage := newTestStage(t, "STG-print", "SLS Printing")
		stage.RequiresApproval = true
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) { return stage, nil }

		_, err := f.service.Approve(ctx, ApproveExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ApprovedBy: "OP-001"})
		assertInvariantCode(t, err, errors.CodeForbidden)
	})
}

// TestSkip tests skipping a stage
func TestSkip(t *testing.T) {
	ctx := context.Background()

	t.Run("Skippable stage is skipped and progression runs", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-coat", "Coating")
		stage.AllowSkip = true
		f.withJobAndStage(t, job, stage)

		var created *domain.StageExecution
		f.executions.saveFn = func(ctx context.Context, exe *domain.StageExecution) error {
			created = exe
			return nil
		}
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return created, nil
		}

		dto, err := f.service.Skip(ctx, SkipStageCommand{JobID: "JOB-001", StageID: "STG-coat", SkippedBy: "supervisor"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ExecutionStatusSkipped), dto.Status)
		assert.Equal(t, domain.WorkflowStageComplete, job.WorkflowStage)
	})

	t.Run("Stage does not allow skipping", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		_, err := f.service.Skip(ctx, SkipStageCommand{JobID: "JOB-001", StageID: "STG-print", SkippedBy: "supervisor"})
		assertInvariantCode(t, err, errors.CodeValidationError)
	})
}

// TestResetFailed tests the administrative reset
func TestResetFailed(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin resets a failed execution", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		require.NoError(t, exe.Start("OP-001"))
		require.NoError(t, exe.Fail("OP-001", "bad build"))
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		dto, err := f.service.ResetFailed(ctx, ResetExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ResetBy: "admin"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.ExecutionStatusNotStarted), dto.Status)
	})

	t.Run("Non-admin cannot reset", func(t *testing.T) {
		denyAll := func(ctx context.Context, operatorID string, capability auth.Capability) (bool, error) {
			return false, nil
		}
		f := newWorkflowFixture(t, denyAll)

		_, err := f.service.ResetFailed(ctx, ResetExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ResetBy: "OP-001"})
		assertInvariantCode(t, err, errors.CodeForbidden)
	})

	t.Run("Only failed executions reset", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		exe := domain.NewStageExecution("JOB-001", "STG-print", 1, 85, "OP-001")
		f.executions.findByJobAndStageFn = func(ctx context.Context, jobID, stageID string) (*domain.StageExecution, error) {
			return exe, nil
		}

		_, err := f.service.ResetFailed(ctx, ResetExecutionCommand{JobID: "JOB-001", StageID: "STG-print", ResetBy: "admin"})
		assertInvariantCode(t, err, errors.CodeValidationError)
	})
}

// TestCanStart tests the punch-in eligibility query
func TestCanStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Eligible stage", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		result, err := f.service.CanStart(ctx, CanStartQuery{JobID: "JOB-001", StageID: "STG-print"})
		require.NoError(t, err)
		assert.True(t, result.CanStart)
		assert.Empty(t, result.Reason)
	})

	t.Run("Missing prerequisites reported without acquiring anything", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		printing := newTestStage(t, "STG-print", "SLS Printing")
		coating := newTestStage(t, "STG-coat", "Coating")

		f.jobs.findByIDFn = func(ctx context.Context, id string) (*domain.Job, error) { return job, nil }
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) {
			if id == "STG-coat" {
				return coating, nil
			}
			return printing, nil
		}
		f.stages.findByIDsFn = func(ctx context.Context, ids []string) ([]*domain.Stage, error) {
			return []*domain.Stage{printing, coating}, nil
		}
		f.requirements.findActiveByPartFn = func(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
			return []*domain.PartStageRequirement{
				newTestRequirement(t, "PART-001", "STG-print", 10),
				newTestRequirement(t, "PART-001", "STG-coat", 20),
			}, nil
		}
		coatEdge, err := domain.NewStageDependencyEdge("STG-coat", "STG-print", "admin")
		require.NoError(t, err)
		f.edges.findAllActiveFn = func(ctx context.Context) ([]*domain.StageDependencyEdge, error) {
			return []*domain.StageDependencyEdge{coatEdge}, nil
		}

		result, err := f.service.CanStart(ctx, CanStartQuery{JobID: "JOB-001", StageID: "STG-coat"})
		require.NoError(t, err)
		assert.False(t, result.CanStart)
		assert.Equal(t, []string{"STG-print"}, result.MissingPrerequisites)
	})

	t.Run("Execution order reported missing without dependency edges", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		printing := newTestStage(t, "STG-print", "SLS Printing")
		coating := newTestStage(t, "STG-coat", "Coating")

		f.jobs.findByIDFn = func(ctx context.Context, id string) (*domain.Job, error) { return job, nil }
		f.stages.findByIDFn = func(ctx context.Context, id string) (*domain.Stage, error) {
			if id == "STG-coat" {
				return coating, nil
			}
			return printing, nil
		}
		f.stages.findByIDsFn = func(ctx context.Context, ids []string) ([]*domain.Stage, error) {
			return []*domain.Stage{printing, coating}, nil
		}
		f.requirements.findActiveByPartFn = func(ctx context.Context, partID string) ([]*domain.PartStageRequirement, error) {
			return []*domain.PartStageRequirement{
				newTestRequirement(t, "PART-001", "STG-print", 10),
				newTestRequirement(t, "PART-001", "STG-coat", 20),
			}, nil
		}

		result, err := f.service.CanStart(ctx, CanStartQuery{JobID: "JOB-001", StageID: "STG-coat"})
		require.NoError(t, err)
		assert.False(t, result.CanStart)
		assert.Equal(t, []string{"STG-print"}, result.MissingPrerequisites)
	})

	t.Run("Completed job", func(t *testing.T) {
		f := newWorkflowFixture(t, nil)
		job := newTestJob(t, "JOB-001", "PART-001", "")
		require.NoError(t, job.MarkComplete("OP-001"))
		stage := newTestStage(t, "STG-print", "SLS Printing")
		f.withJobAndStage(t, job, stage)

		result, err := f.service.CanStart(ctx, CanStartQuery{JobID: "JOB-001", StageID: "STG-print"})
		require.NoError(t, err)
		assert.False(t, result.CanStart)
		assert.Equal(t, "job is already complete", result.Reason)
	})
}
