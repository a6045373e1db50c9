package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/auth"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/metrics"
)

// WorkflowApplicationService drives stage execution transitions: punch-in,
// punch-out, approval, skip, fail, and reset. Every transition runs inside
// one transaction so invariant checks and the status write commit atomically.
type WorkflowApplicationService struct {
	executions   domain.ExecutionRepository
	jobs         domain.JobRepository
	stages       domain.StageRepository
	requirements domain.RequirementRepository
	edges        domain.DependencyEdgeRepository
	pools        domain.ResourcePoolRepository
	progression  *CohortProgressionEngine
	txn          TransactionRunner
	capabilities auth.CapabilityChecker
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewWorkflowApplicationService creates a new WorkflowApplicationService
func NewWorkflowApplicationService(
	executions domain.ExecutionRepository,
	jobs domain.JobRepository,
	stages domain.StageRepository,
	requirements domain.RequirementRepository,
	edges domain.DependencyEdgeRepository,
	pools domain.ResourcePoolRepository,
	progression *CohortProgressionEngine,
	txn TransactionRunner,
	capabilities auth.CapabilityChecker,
	m *metrics.Metrics,
	logger *logging.Logger,
) *WorkflowApplicationService {
	return &WorkflowApplicationService{
		executions:   executions,
		jobs:         jobs,
		stages:       stages,
		requirements: requirements,
		edges:        edges,
		pools:        pools,
		progression:  progression,
		txn:          txn,
		capabilities: capabilities,
		metrics:      m,
		logger:       logger,
	}
}

// PunchIn starts a stage execution for an operator. The operator-busy,
// stage-busy, prerequisite, and capacity checks all run against the state
// inside the transaction, so two racing punch-ins cannot both succeed.
func (s *WorkflowApplicationService) PunchIn(ctx context.Context, cmd PunchInCommand) (*ExecutionDTO, error) {
	if cmd.OperatorID == "" {
		return nil, errors.ErrValidation("operator id is required")
	}

	var exe *domain.StageExecution

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		job, stage, err := s.loadJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return err
		}
		if job.WorkflowStage == domain.WorkflowStageComplete {
			return errors.ErrValidation("job is already complete")
		}

		if stage.RequiredCapability != "" {
			ok, err := s.capabilities(ctx, cmd.OperatorID, auth.Capability(stage.RequiredCapability))
			if err != nil {
				return fmt.Errorf("failed to check capability: %w", err)
			}
			if !ok {
				return errors.ErrForbidden(fmt.Sprintf("operator lacks capability %q", stage.RequiredCapability))
			}
		}

		busy, err := s.executions.FindInProgressByOperator(ctx, cmd.OperatorID)
		if err != nil {
			return fmt.Errorf("failed to check operator executions: %w", err)
		}
		if busy != nil {
			s.metrics.RecordInvariantRejection(errors.CodeOperatorBusy)
			return errors.ErrInvariant(errors.CodeOperatorBusy,
				"operator already has an execution in progress").
				WithDetail("executionId", busy.ExecutionID)
		}

		inProgress, err := s.executions.FindInProgressByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to check stage executions: %w", err)
		}
		if inProgress != nil {
			s.metrics.RecordInvariantRejection(errors.CodeStageBusy)
			return errors.ErrInvariant(errors.CodeStageBusy,
				"stage already has an execution in progress for this job").
				WithDetail("operatorId", inProgress.OperatorID)
		}

		missing, err := s.missingPrerequisites(ctx, job, cmd.StageID)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			s.metrics.RecordInvariantRejection(errors.CodePrerequisitesNotMet)
			return errors.ErrInvariant(errors.CodePrerequisitesNotMet,
				"prerequisite stages are not satisfied").
				WithDetail("missingStages", strings.Join(missing, ","))
		}

		exe, err = s.executions.FindByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		created := exe == nil
		if exe != nil && exe.Status != domain.ExecutionStatusNotStarted {
			if exe.Status == domain.ExecutionStatusFailed {
				return errors.ErrConflict("execution is failed; reset it before restarting")
			}
			return errors.ErrConflict(fmt.Sprintf("stage is already %s for this job", exe.Status))
		}
		if created {
			exe = s.newExecution(ctx, job, stage, cmd.OperatorID)
		}

		pool, err := s.reservePool(ctx, domain.PoolScopeStage, cmd.StageID)
		if err != nil {
			return err
		}
		if pool != nil {
			exe.PoolID = pool.PoolID
		}

		if cmd.MachineID != "" {
			machinePool, err := s.reservePool(ctx, domain.PoolScopeMachine, cmd.MachineID)
			if err != nil {
				return err
			}
			if machinePool != nil {
				exe.MachinePoolID = machinePool.PoolID
			}
		}

		if err := exe.Start(cmd.OperatorID); err != nil {
			return errors.ErrConflict(err.Error())
		}

		if created {
			if err := s.executions.Save(ctx, exe); err != nil {
				return fmt.Errorf("failed to save execution: %w", err)
			}
		} else {
			if err := s.executions.Update(ctx, exe); err != nil {
				return fmt.Errorf("failed to update execution: %w", err)
			}
		}

		job.MarkInProduction(cmd.OperatorID)
		if err := s.jobs.Update(ctx, job); err != nil {
			return fmt.Errorf("failed to update job: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PunchInsTotal.WithLabelValues(cmd.StageID).Inc()
	s.logger.Info("Punched in", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "operatorId", cmd.OperatorID)
	return ToExecutionDTO(exe), nil
}

// PunchOut completes the operator's in-progress execution for a job stage.
// Actual hours are derived from wall-clock time between punch-in and now.
func (s *WorkflowApplicationService) PunchOut(ctx context.Context, cmd PunchOutCommand) (*ExecutionDTO, error) {
	if cmd.OperatorID == "" {
		return nil, errors.ErrValidation("operator id is required")
	}

	var exe *domain.StageExecution

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		var err error
		exe, err = s.executions.FindInProgressByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil {
			s.metrics.RecordInvariantRejection(errors.CodeNoActiveExecution)
			return errors.ErrInvariant(errors.CodeNoActiveExecution,
				"no execution is in progress for this job stage")
		}

		if err := exe.Complete(cmd.OperatorID); err != nil {
			if stderrors.Is(err, domain.ErrOperatorMismatch) {
				return errors.ErrForbidden(err.Error())
			}
			return errors.ErrConflict(err.Error())
		}

		if err := s.releasePools(ctx, exe); err != nil {
			return err
		}

		if err := s.executions.Update(ctx, exe); err != nil {
			return fmt.Errorf("failed to update execution: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runProgression(ctx, cmd.JobID, cmd.StageID, cmd.OperatorID)

	s.metrics.PunchOutsTotal.WithLabelValues(cmd.StageID).Inc()
	s.metrics.StageExecutionHours.WithLabelValues(cmd.StageID).Observe(exe.ActualHours)
	s.logger.Info("Punched out", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "actualHours", exe.ActualHours)
	return ToExecutionDTO(exe), nil
}

// Approve records sign-off on a completed approval-gated stage. Approval may
// be the last missing piece of the job's pipeline, so progression re-runs.
func (s *WorkflowApplicationService) Approve(ctx context.Context, cmd ApproveExecutionCommand) (*ExecutionDTO, error) {
	if cmd.ApprovedBy == "" {
		return nil, errors.ErrValidation("approver id is required")
	}

	var exe *domain.StageExecution

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		stage, err := s.stages.FindByID(ctx, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get stage: %w", err)
		}
		if stage == nil {
			return errors.ErrNotFoundWithID("stage", cmd.StageID)
		}
		if !stage.RequiresApproval {
			return errors.ErrValidation("stage does not require approval")
		}

		ok, err := s.capabilities(ctx, cmd.ApprovedBy, auth.CapabilityApprove)
		if err != nil {
			return fmt.Errorf("failed to check capability: %w", err)
		}
		if !ok {
			return errors.ErrForbidden("operator lacks approval capability")
		}

		exe, err = s.executions.FindByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil {
			return errors.ErrNotFound("execution")
		}

		if err := exe.Approve(cmd.ApprovedBy, cmd.Notes); err != nil {
			if stderrors.Is(err, domain.ErrExecutionAlreadyApproved) {
				return errors.ErrConflict(err.Error())
			}
			return errors.ErrValidation(err.Error())
		}

		if err := s.executions.Update(ctx, exe); err != nil {
			return fmt.Errorf("failed to update execution: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runProgression(ctx, cmd.JobID, cmd.StageID, cmd.ApprovedBy)

	s.logger.Info("Approved execution", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "approvedBy", cmd.ApprovedBy)
	return ToExecutionDTO(exe), nil
}

// Skip marks a never-started stage as skipped for a job. A skipped stage
// satisfies prerequisites like a completed one and never waits for approval.
func (s *WorkflowApplicationService) Skip(ctx context.Context, cmd SkipStageCommand) (*ExecutionDTO, error) {
	if cmd.SkippedBy == "" {
		return nil, errors.ErrValidation("operator id is required")
	}

	var exe *domain.StageExecution

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		job, stage, err := s.loadJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return err
		}
		if job.WorkflowStage == domain.WorkflowStageComplete {
			return errors.ErrValidation("job is already complete")
		}

		exe, err = s.executions.FindByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		created := exe == nil
		if created {
			exe = s.newExecution(ctx, job, stage, cmd.SkippedBy)
		}

		if err := exe.Skip(cmd.SkippedBy, stage.AllowSkip); err != nil {
			if stderrors.Is(err, domain.ErrSkipNotAllowed) {
				return errors.ErrValidation(err.Error())
			}
			return errors.ErrConflict(err.Error())
		}

		if created {
			if err := s.executions.Save(ctx, exe); err != nil {
				return fmt.Errorf("failed to save execution: %w", err)
			}
		} else {
			if err := s.executions.Update(ctx, exe); err != nil {
				return fmt.Errorf("failed to update execution: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.runProgression(ctx, cmd.JobID, cmd.StageID, cmd.SkippedBy)

	s.logger.Info("Skipped stage", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "skippedBy", cmd.SkippedBy)
	return ToExecutionDTO(exe), nil
}

// Fail marks the in-progress execution for a job stage as failed and releases
// its capacity slot
func (s *WorkflowApplicationService) Fail(ctx context.Context, cmd FailExecutionCommand) (*ExecutionDTO, error) {
	var exe *domain.StageExecution

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		var err error
		exe, err = s.executions.FindInProgressByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil {
			s.metrics.RecordInvariantRejection(errors.CodeNoActiveExecution)
			return errors.ErrInvariant(errors.CodeNoActiveExecution,
				"no execution is in progress for this job stage")
		}

		if err := exe.Fail(cmd.FailedBy, cmd.Reason); err != nil {
			return errors.ErrConflict(err.Error())
		}

		if err := s.releasePools(ctx, exe); err != nil {
			return err
		}

		if err := s.executions.Update(ctx, exe); err != nil {
			return fmt.Errorf("failed to update execution: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Failed execution", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "reason", cmd.Reason)
	return ToExecutionDTO(exe), nil
}

// ResetFailed returns a failed execution to its initial state. This is an
// administrative action gated on the admin capability.
func (s *WorkflowApplicationService) ResetFailed(ctx context.Context, cmd ResetExecutionCommand) (*ExecutionDTO, error) {
	if cmd.ResetBy == "" {
		return nil, errors.ErrValidation("operator id is required")
	}

	ok, err := s.capabilities(ctx, cmd.ResetBy, auth.CapabilityAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check capability: %w", err)
	}
	if !ok {
		return nil, errors.ErrForbidden("operator lacks admin capability")
	}

	var exe *domain.StageExecution

	err = s.txn.Execute(ctx, func(ctx context.Context) error {
		var err error
		exe, err = s.executions.FindByJobAndStage(ctx, cmd.JobID, cmd.StageID)
		if err != nil {
			return fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil {
			return errors.ErrNotFound("execution")
		}

		if err := exe.ResetFailed(cmd.ResetBy); err != nil {
			return errors.ErrValidation(err.Error())
		}

		if err := s.executions.Update(ctx, exe); err != nil {
			return fmt.Errorf("failed to update execution: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reset failed execution", "executionId", exe.ExecutionID,
		"jobId", cmd.JobID, "stageId", cmd.StageID, "resetBy", cmd.ResetBy)
	return ToExecutionDTO(exe), nil
}

// CanStart answers whether a punch-in to the given job stage would be
// accepted right now, without acquiring anything
func (s *WorkflowApplicationService) CanStart(ctx context.Context, query CanStartQuery) (*CanStartDTO, error) {
	job, stage, err := s.loadJobAndStage(ctx, query.JobID, query.StageID)
	if err != nil {
		return nil, err
	}

	result := &CanStartDTO{JobID: query.JobID, StageID: stage.StageID}

	if job.WorkflowStage == domain.WorkflowStageComplete {
		result.Reason = "job is already complete"
		return result, nil
	}

	exe, err := s.executions.FindByJobAndStage(ctx, query.JobID, query.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if exe != nil && exe.Status != domain.ExecutionStatusNotStarted {
		result.Reason = fmt.Sprintf("execution is %s", exe.Status)
		return result, nil
	}

	missing, err := s.missingPrerequisites(ctx, job, query.StageID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		result.MissingPrerequisites = missing
		result.Reason = "prerequisite stages are not satisfied"
		return result, nil
	}

	result.CanStart = true
	return result, nil
}

// GetExecution retrieves the execution record for a job stage
func (s *WorkflowApplicationService) GetExecution(ctx context.Context, jobID, stageID string) (*ExecutionDTO, error) {
	exe, err := s.executions.FindByJobAndStage(ctx, jobID, stageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get execution", "jobId", jobID, "stageId", stageID)
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}
	if exe == nil {
		return nil, errors.ErrNotFound("execution")
	}

	return ToExecutionDTO(exe), nil
}

// GetJobExecutions retrieves all execution records for a job
func (s *WorkflowApplicationService) GetJobExecutions(ctx context.Context, jobID string) ([]ExecutionDTO, error) {
	exes, err := s.executions.FindByJob(ctx, jobID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get job executions", "jobId", jobID)
		return nil, fmt.Errorf("failed to get job executions: %w", err)
	}

	return ToExecutionDTOs(exes), nil
}

// ReevaluateCohort re-runs the cohort completion check. It retries downstream
// fan-out after a routing failure; the cohort latch guarantees at most one
// downstream batch regardless of how often it is called.
func (s *WorkflowApplicationService) ReevaluateCohort(ctx context.Context, cohortID, actor string) error {
	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		return s.progression.ReevaluateCohort(ctx, cohortID, actor)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Reevaluated cohort", "cohortId", cohortID)
	return nil
}

// loadJobAndStage fetches an active job and stage or returns not-found
func (s *WorkflowApplicationService) loadJobAndStage(ctx context.Context, jobID, stageID string) (*domain.Job, *domain.Stage, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil || !job.IsActive {
		return nil, nil, errors.ErrNotFoundWithID("job", jobID)
	}

	stage, err := s.stages.FindByID(ctx, stageID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if stage == nil || !stage.IsActive {
		return nil, nil, errors.ErrNotFoundWithID("stage", stageID)
	}

	return job, stage, nil
}

// missingPrerequisites returns the prerequisite stages of stageID that lack a
// satisfying execution for the job. A stage's prerequisites are every earlier
// stage in the part's resolved pipeline plus its active dependency-edge
// predecessors. Prerequisites outside the part's required pipeline are
// vacuously satisfied.
func (s *WorkflowApplicationService) missingPrerequisites(ctx context.Context, job *domain.Job, stageID string) ([]string, error) {
	reqs, err := s.requirements.FindActiveByPart(ctx, job.PartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	stageIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		stageIDs = append(stageIDs, req.StageID)
	}
	stages, err := s.stages.FindByIDs(ctx, stageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}
	stagesByID := make(map[string]*domain.Stage, len(stages))
	for _, stage := range stages {
		stagesByID[stage.StageID] = stage
	}

	ordered := domain.ResolveRequiredStages(reqs, stagesByID)
	pipeline := make(map[string]*domain.Stage, len(ordered))
	for _, stage := range ordered {
		pipeline[stage.StageID] = stage
	}

	var prereqs []string
	seen := make(map[string]bool)
	if _, required := pipeline[stageID]; required {
		for _, stage := range ordered {
			if stage.StageID == stageID {
				break
			}
			prereqs = append(prereqs, stage.StageID)
			seen[stage.StageID] = true
		}
	}

	active, err := s.edges.FindAllActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependency edges: %w", err)
	}
	graph := domain.NewDependencyGraph(active)
	for _, prereqID := range graph.PrerequisitesOf(stageID) {
		if _, inPipeline := pipeline[prereqID]; inPipeline && !seen[prereqID] {
			prereqs = append(prereqs, prereqID)
			seen[prereqID] = true
		}
	}

	var missing []string
	for _, prereqID := range prereqs {
		exe, err := s.executions.FindByJobAndStage(ctx, job.JobID, prereqID)
		if err != nil {
			return nil, fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil || !exe.SatisfiesPrerequisite(pipeline[prereqID].RequiresApproval) {
			missing = append(missing, prereqID)
		}
	}
	return missing, nil
}

// newExecution builds an execution seeded from the part's requirement row for
// the stage, falling back to the stage defaults when no row exists
func (s *WorkflowApplicationService) newExecution(ctx context.Context, job *domain.Job, stage *domain.Stage, createdBy string) *domain.StageExecution {
	estimatedHours := 0.0
	hourlyRate := stage.DefaultHourlyRate

	reqs, err := s.requirements.FindActiveByPart(ctx, job.PartID)
	if err == nil {
		for _, req := range reqs {
			if req.StageID == stage.StageID {
				estimatedHours = req.EstimatedHours
				hourlyRate = req.EffectiveHourlyRate(stage)
				break
			}
		}
	}

	return domain.NewStageExecution(job.JobID, stage.StageID, estimatedHours, hourlyRate, createdBy)
}

// runProgression re-evaluates job and cohort completion after a satisfying
// transition has committed. It runs in its own transaction: the cohort latch
// and downstream fan-out commit together, and a failure here never unwinds
// the execution transition. The check reruns on the next satisfying event.
func (s *WorkflowApplicationService) runProgression(ctx context.Context, jobID, stageID, actor string) {
	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		return s.progression.OnExecutionSatisfied(ctx, jobID, actor)
	})
	if err != nil {
		s.logger.WithError(err).Error("Progression check failed",
			"jobId", jobID, "stageId", stageID)
	}
}

// reservePool takes a slot in the active pool for the target, if one exists
func (s *WorkflowApplicationService) reservePool(ctx context.Context, scope domain.PoolScope, targetID string) (*domain.ResourcePool, error) {
	pool, err := s.pools.FindActiveByTarget(ctx, scope, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource pool: %w", err)
	}
	if pool == nil {
		return nil, nil
	}

	if err := pool.Reserve(); err != nil {
		s.metrics.RecordInvariantRejection(errors.CodeCapacityExceeded)
		return nil, errors.ErrInvariant(errors.CodeCapacityExceeded,
			"resource pool has no remaining capacity").
			WithDetail("poolId", pool.PoolID)
	}
	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to update resource pool: %w", err)
	}
	return pool, nil
}

// releasePools returns the execution's capacity slots, if any. An execution
// can hold one stage-scoped slot and one machine-scoped slot.
func (s *WorkflowApplicationService) releasePools(ctx context.Context, exe *domain.StageExecution) error {
	for _, poolID := range []string{exe.PoolID, exe.MachinePoolID} {
		if poolID == "" {
			continue
		}

		pool, err := s.pools.FindByID(ctx, poolID)
		if err != nil {
			return fmt.Errorf("failed to get resource pool: %w", err)
		}
		if pool == nil {
			continue
		}

		pool.Release()
		if err := s.pools.Update(ctx, pool); err != nil {
			return fmt.Errorf("failed to update resource pool: %w", err)
		}
	}
	return nil
}
