package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/metrics"
)

// DownstreamJobSpec describes one job to materialize when a cohort completes
type DownstreamJobSpec struct {
	PartID   string
	Quantity int
}

// DownstreamRouter decides which jobs a completed cohort fans out into. The
// routing policy is a deployment concern; the engine only guarantees it runs
// exactly once per cohort.
type DownstreamRouter interface {
	Route(cohort *domain.BuildCohort, jobs []*domain.Job) []DownstreamJobSpec
}

// PassthroughRouter fans each member job out into one downstream job for the
// same part and quantity. This matches the shop's default flow, where every
// part on a completed build plate continues into its own finishing job.
type PassthroughRouter struct{}

// Route returns one downstream spec per member job
func (PassthroughRouter) Route(cohort *domain.BuildCohort, jobs []*domain.Job) []DownstreamJobSpec {
	specs := make([]DownstreamJobSpec, 0, len(jobs))
	for _, job := range jobs {
		specs = append(specs, DownstreamJobSpec{PartID: job.PartID, Quantity: job.Quantity})
	}
	return specs
}

// CohortProgressionEngine advances jobs and cohorts after a stage execution
// reaches a satisfying state. Callers run it in its own transaction, after the
// execution transition commits, so the cohort latch and the fan-out commit
// atomically without holding the completed execution hostage to routing
// failures.
type CohortProgressionEngine struct {
	jobs         domain.JobRepository
	cohorts      domain.CohortRepository
	executions   domain.ExecutionRepository
	requirements domain.RequirementRepository
	stages       domain.StageRepository
	router       DownstreamRouter
	metrics      *metrics.Metrics
	logger       *logging.Logger
}

// NewCohortProgressionEngine creates a new CohortProgressionEngine
func NewCohortProgressionEngine(
	jobs domain.JobRepository,
	cohorts domain.CohortRepository,
	executions domain.ExecutionRepository,
	requirements domain.RequirementRepository,
	stages domain.StageRepository,
	router DownstreamRouter,
	m *metrics.Metrics,
	logger *logging.Logger,
) *CohortProgressionEngine {
	return &CohortProgressionEngine{
		jobs:         jobs,
		cohorts:      cohorts,
		executions:   executions,
		requirements: requirements,
		stages:       stages,
		router:       router,
		metrics:      m,
		logger:       logger,
	}
}

// OnExecutionSatisfied checks whether the job, and then its cohort, reached
// completion after one of the job's executions became satisfying. No-op when
// anything is still outstanding. Idempotent: the cohort latch makes concurrent
// final completions fan out only once.
func (e *CohortProgressionEngine) OnExecutionSatisfied(ctx context.Context, jobID, actor string) error {
	job, err := e.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil || !job.IsActive || job.WorkflowStage == domain.WorkflowStageComplete {
		return nil
	}

	done, err := e.jobPipelineSatisfied(ctx, job)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	if err := job.MarkComplete(actor); err != nil {
		if stderrors.Is(err, domain.ErrJobAlreadyComplete) {
			return nil
		}
		return err
	}
	if err := e.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	e.logger.Info("Job completed all required stages", "jobId", job.JobID, "partId", job.PartID)

	if job.CohortID == "" {
		return nil
	}
	return e.tryCompleteCohort(ctx, job.CohortID, actor)
}

// ReevaluateCohort re-runs the cohort completion check on demand. The latch
// makes it safe to call any number of times, so a caller can retry downstream
// fan-out after a routing failure without risking a second batch.
func (e *CohortProgressionEngine) ReevaluateCohort(ctx context.Context, cohortID, actor string) error {
	cohort, err := e.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		return fmt.Errorf("failed to get cohort: %w", err)
	}
	if cohort == nil || !cohort.IsActive {
		return errors.ErrNotFoundWithID("cohort", cohortID)
	}
	return e.tryCompleteCohort(ctx, cohortID, actor)
}

// jobPipelineSatisfied reports whether every required stage of the job's part
// has a satisfying execution
func (e *CohortProgressionEngine) jobPipelineSatisfied(ctx context.Context, job *domain.Job) (bool, error) {
	reqs, err := e.requirements.FindActiveByPart(ctx, job.PartID)
	if err != nil {
		return false, fmt.Errorf("failed to load requirements: %w", err)
	}

	stageIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		stageIDs = append(stageIDs, req.StageID)
	}
	stages, err := e.stages.FindByIDs(ctx, stageIDs)
	if err != nil {
		return false, fmt.Errorf("failed to load stages: %w", err)
	}
	stagesByID := make(map[string]*domain.Stage, len(stages))
	for _, stage := range stages {
		stagesByID[stage.StageID] = stage
	}

	required := domain.ResolveRequiredStages(reqs, stagesByID)
	if len(required) == 0 {
		// A part with no authored pipeline never auto-completes.
		return false, nil
	}

	for _, stage := range required {
		exe, err := e.executions.FindByJobAndStage(ctx, job.JobID, stage.StageID)
		if err != nil {
			return false, fmt.Errorf("failed to get execution: %w", err)
		}
		if exe == nil || !exe.SatisfiesPrerequisite(stage.RequiresApproval) {
			return false, nil
		}
	}
	return true, nil
}

// tryCompleteCohort latches the cohort complete once every member job is
// complete, then fans out downstream jobs
func (e *CohortProgressionEngine) tryCompleteCohort(ctx context.Context, cohortID, actor string) error {
	members, err := e.jobs.FindActiveByCohort(ctx, cohortID)
	if err != nil {
		return fmt.Errorf("failed to load cohort jobs: %w", err)
	}

	jobIDs := make([]string, 0, len(members))
	for _, member := range members {
		if member.WorkflowStage != domain.WorkflowStageComplete {
			// The completion marker lags its pipeline when a previous
			// progression run failed after the execution committed. Re-derive
			// it here so a retry can still latch the cohort.
			done, err := e.jobPipelineSatisfied(ctx, member)
			if err != nil {
				return err
			}
			if !done {
				return nil
			}
			if err := member.MarkComplete(actor); err != nil {
				return err
			}
			if err := e.jobs.Update(ctx, member); err != nil {
				return fmt.Errorf("failed to update job: %w", err)
			}
			e.logger.Info("Job completed all required stages", "jobId", member.JobID, "partId", member.PartID)
		}
		jobIDs = append(jobIDs, member.JobID)
	}

	cohort, err := e.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		return fmt.Errorf("failed to get cohort: %w", err)
	}
	if cohort == nil || !cohort.IsActive {
		return nil
	}

	if err := cohort.MarkComplete(jobIDs, actor); err != nil {
		if stderrors.Is(err, domain.ErrCohortAlreadyComplete) {
			return nil
		}
		return err
	}

	downstream := e.router.Route(cohort, members)
	downstreamIDs := make([]string, 0, len(downstream))
	for _, spec := range downstream {
		next, err := domain.NewJob(spec.PartID, spec.Quantity, "", actor)
		if err != nil {
			return fmt.Errorf("failed to create downstream job: %w", err)
		}
		if err := e.jobs.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save downstream job: %w", err)
		}
		downstreamIDs = append(downstreamIDs, next.JobID)
	}

	if len(downstreamIDs) > 0 {
		cohort.AddDomainEvent(&domain.DownstreamJobsCreatedEvent{
			CohortID:  cohort.CohortID,
			JobIDs:    downstreamIDs,
			CreatedAt: *cohort.CompletedAt,
		})
	}

	if err := e.cohorts.Update(ctx, cohort); err != nil {
		return fmt.Errorf("failed to update cohort: %w", err)
	}

	e.metrics.CohortsCompleted.Inc()
	e.metrics.DownstreamJobsTotal.Add(float64(len(downstreamIDs)))
	e.logger.Info("Cohort completed", "cohortId", cohort.CohortID,
		"memberJobs", len(jobIDs), "downstreamJobs", len(downstreamIDs))

	return nil
}
