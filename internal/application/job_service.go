package application

import (
	"context"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// JobApplicationService handles job and build cohort scheduling use cases
type JobApplicationService struct {
	jobs    domain.JobRepository
	cohorts domain.CohortRepository
	txn     TransactionRunner
	logger  *logging.Logger
}

// NewJobApplicationService creates a new JobApplicationService
func NewJobApplicationService(
	jobs domain.JobRepository,
	cohorts domain.CohortRepository,
	txn TransactionRunner,
	logger *logging.Logger,
) *JobApplicationService {
	return &JobApplicationService{
		jobs:    jobs,
		cohorts: cohorts,
		txn:     txn,
		logger:  logger,
	}
}

// CreateJob schedules a new job. When a cohort is given it must exist and
// still be open; jobs cannot join a completed cohort.
func (s *JobApplicationService) CreateJob(ctx context.Context, cmd CreateJobCommand) (*JobDTO, error) {
	if cmd.CohortID != "" {
		cohort, err := s.cohorts.FindByID(ctx, cmd.CohortID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to get cohort", "cohortId", cmd.CohortID)
			return nil, fmt.Errorf("failed to get cohort: %w", err)
		}
		if cohort == nil || !cohort.IsActive {
			return nil, errors.ErrNotFoundWithID("cohort", cmd.CohortID)
		}
		if cohort.IsComplete() {
			return nil, errors.ErrConflict("cohort is already complete")
		}
	}

	job, err := domain.NewJob(cmd.PartID, cmd.Quantity, cmd.CohortID, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	job.DueDate = cmd.DueDate

	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.WithError(err).Error("Failed to save job", "jobId", job.JobID)
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	s.logger.Info("Created job", "jobId", job.JobID, "partId", job.PartID, "cohortId", job.CohortID)
	return ToJobDTO(job), nil
}

// GetJob retrieves a job by ID
func (s *JobApplicationService) GetJob(ctx context.Context, jobID string) (*JobDTO, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get job", "jobId", jobID)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, errors.ErrNotFoundWithID("job", jobID)
	}

	return ToJobDTO(job), nil
}

// ListJobs retrieves all active jobs
func (s *JobApplicationService) ListJobs(ctx context.Context) ([]JobDTO, error) {
	jobs, err := s.jobs.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list jobs")
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return ToJobDTOs(jobs), nil
}

// CreateCohort opens a new empty build cohort
func (s *JobApplicationService) CreateCohort(ctx context.Context, cmd CreateCohortCommand) (*CohortDTO, error) {
	cohort, err := domain.NewBuildCohort(cmd.Name, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.cohorts.Save(ctx, cohort); err != nil {
		s.logger.WithError(err).Error("Failed to save cohort", "cohortId", cohort.CohortID)
		return nil, fmt.Errorf("failed to save cohort: %w", err)
	}

	s.logger.Info("Created cohort", "cohortId", cohort.CohortID, "name", cohort.Name)
	return ToCohortDTO(cohort), nil
}

// ScheduleCohort opens a cohort and schedules its member jobs in one
// transaction, so the cohort never appears with a partial membership
func (s *JobApplicationService) ScheduleCohort(ctx context.Context, cmd ScheduleCohortCommand) (*CohortDTO, []JobDTO, error) {
	if len(cmd.Jobs) == 0 {
		return nil, nil, errors.ErrValidation("cohort must contain at least one job")
	}

	cohort, err := domain.NewBuildCohort(cmd.Name, cmd.CreatedBy)
	if err != nil {
		return nil, nil, errors.ErrValidation(err.Error())
	}

	jobs := make([]*domain.Job, 0, len(cmd.Jobs))
	for _, spec := range cmd.Jobs {
		job, err := domain.NewJob(spec.PartID, spec.Quantity, cohort.CohortID, cmd.CreatedBy)
		if err != nil {
			return nil, nil, errors.ErrValidation(err.Error())
		}
		jobs = append(jobs, job)
	}

	err = s.txn.Execute(ctx, func(ctx context.Context) error {
		if err := s.cohorts.Save(ctx, cohort); err != nil {
			return fmt.Errorf("failed to save cohort: %w", err)
		}
		for _, job := range jobs {
			if err := s.jobs.Save(ctx, job); err != nil {
				return fmt.Errorf("failed to save job: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to schedule cohort", "name", cmd.Name)
		return nil, nil, err
	}

	s.logger.Info("Scheduled cohort", "cohortId", cohort.CohortID, "jobs", len(jobs))
	return ToCohortDTO(cohort), ToJobDTOs(jobs), nil
}

// GetCohort retrieves a cohort by ID
func (s *JobApplicationService) GetCohort(ctx context.Context, cohortID string) (*CohortDTO, error) {
	cohort, err := s.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get cohort", "cohortId", cohortID)
		return nil, fmt.Errorf("failed to get cohort: %w", err)
	}
	if cohort == nil {
		return nil, errors.ErrNotFoundWithID("cohort", cohortID)
	}

	return ToCohortDTO(cohort), nil
}

// ListCohorts retrieves all active cohorts
func (s *JobApplicationService) ListCohorts(ctx context.Context) ([]CohortDTO, error) {
	cohorts, err := s.cohorts.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list cohorts")
		return nil, fmt.Errorf("failed to list cohorts: %w", err)
	}

	return ToCohortDTOs(cohorts), nil
}

// GetCohortJobs retrieves the active member jobs of a cohort
func (s *JobApplicationService) GetCohortJobs(ctx context.Context, cohortID string) ([]JobDTO, error) {
	cohort, err := s.cohorts.FindByID(ctx, cohortID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get cohort", "cohortId", cohortID)
		return nil, fmt.Errorf("failed to get cohort: %w", err)
	}
	if cohort == nil {
		return nil, errors.ErrNotFoundWithID("cohort", cohortID)
	}

	jobs, err := s.jobs.FindActiveByCohort(ctx, cohortID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get cohort jobs", "cohortId", cohortID)
		return nil, fmt.Errorf("failed to get cohort jobs: %w", err)
	}

	return ToJobDTOs(jobs), nil
}
