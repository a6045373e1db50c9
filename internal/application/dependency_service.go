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

// DependencyApplicationService handles the stage dependency graph use cases.
// Edge insertion validates against the full active edge set inside one
// transaction so the graph stays acyclic under concurrent authoring.
type DependencyApplicationService struct {
	edges   domain.DependencyEdgeRepository
	stages  domain.StageRepository
	txn     TransactionRunner
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewDependencyApplicationService creates a new DependencyApplicationService
func NewDependencyApplicationService(
	edges domain.DependencyEdgeRepository,
	stages domain.StageRepository,
	txn TransactionRunner,
	m *metrics.Metrics,
	logger *logging.Logger,
) *DependencyApplicationService {
	return &DependencyApplicationService{
		edges:   edges,
		stages:  stages,
		txn:     txn,
		metrics: m,
		logger:  logger,
	}
}

// AddDependency adds a must-complete-before edge between two stages. The
// cycle check runs against a snapshot of active edges in the same transaction
// that inserts the new edge.
func (s *DependencyApplicationService) AddDependency(ctx context.Context, cmd AddDependencyCommand) (*DependencyEdgeDTO, error) {
	var edge *domain.StageDependencyEdge

	err := s.txn.Execute(ctx, func(ctx context.Context) error {
		for _, stageID := range []string{cmd.DependentStageID, cmd.PrerequisiteStageID} {
			stage, err := s.stages.FindByID(ctx, stageID)
			if err != nil {
				return fmt.Errorf("failed to get stage: %w", err)
			}
			if stage == nil || !stage.IsActive {
				return errors.ErrNotFoundWithID("stage", stageID)
			}
		}

		active, err := s.edges.FindAllActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dependency edges: %w", err)
		}

		graph := domain.NewDependencyGraph(active)
		if err := graph.ValidateNewEdge(cmd.DependentStageID, cmd.PrerequisiteStageID); err != nil {
			return s.rejectEdge(err)
		}

		edge, err = domain.NewStageDependencyEdge(cmd.DependentStageID, cmd.PrerequisiteStageID, cmd.CreatedBy)
		if err != nil {
			return s.rejectEdge(err)
		}

		if err := s.edges.Save(ctx, edge); err != nil {
			return fmt.Errorf("failed to save dependency edge: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.DependencyEdgesTotal.WithLabelValues("add", "rejected").Inc()
		if !errors.IsAppError(err) {
			s.logger.WithError(err).Error("Failed to add dependency edge",
				"dependentStageId", cmd.DependentStageID, "prerequisiteStageId", cmd.PrerequisiteStageID)
		}
		return nil, err
	}

	s.metrics.DependencyEdgesTotal.WithLabelValues("add", "accepted").Inc()
	s.logger.Info("Added dependency edge", "edgeId", edge.EdgeID,
		"dependentStageId", edge.DependentStageID, "prerequisiteStageId", edge.PrerequisiteStageID)
	return ToDependencyEdgeDTO(edge), nil
}

// rejectEdge maps domain validation errors onto invariant error codes
func (s *DependencyApplicationService) rejectEdge(err error) error {
	switch {
	case stderrors.Is(err, domain.ErrSelfDependency):
		s.metrics.RecordInvariantRejection(errors.CodeSelfDependency)
		return errors.ErrInvariant(errors.CodeSelfDependency, err.Error())
	case stderrors.Is(err, domain.ErrDuplicateEdge):
		s.metrics.RecordInvariantRejection(errors.CodeDuplicateEdge)
		return errors.ErrInvariant(errors.CodeDuplicateEdge, err.Error())
	case stderrors.Is(err, domain.ErrCircularDependency):
		s.metrics.RecordInvariantRejection(errors.CodeCircularDependency)
		return errors.ErrInvariant(errors.CodeCircularDependency, err.Error())
	default:
		return errors.ErrValidation(err.Error())
	}
}

// RemoveDependency tombstones a dependency edge. Removal cannot introduce a
// cycle so no graph validation runs.
func (s *DependencyApplicationService) RemoveDependency(ctx context.Context, cmd RemoveDependencyCommand) (*DependencyEdgeDTO, error) {
	edge, err := s.edges.FindByID(ctx, cmd.EdgeID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get dependency edge", "edgeId", cmd.EdgeID)
		return nil, fmt.Errorf("failed to get dependency edge: %w", err)
	}
	if edge == nil {
		return nil, errors.ErrNotFoundWithID("dependency edge", cmd.EdgeID)
	}

	if err := edge.Remove(cmd.RemovedBy); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.edges.Update(ctx, edge); err != nil {
		s.logger.WithError(err).Error("Failed to remove dependency edge", "edgeId", cmd.EdgeID)
		return nil, fmt.Errorf("failed to remove dependency edge: %w", err)
	}

	s.metrics.DependencyEdgesTotal.WithLabelValues("remove", "accepted").Inc()
	s.logger.Info("Removed dependency edge", "edgeId", edge.EdgeID)
	return ToDependencyEdgeDTO(edge), nil
}

// ListDependencies retrieves all active dependency edges
func (s *DependencyApplicationService) ListDependencies(ctx context.Context) ([]DependencyEdgeDTO, error) {
	active, err := s.edges.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list dependency edges")
		return nil, fmt.Errorf("failed to list dependency edges: %w", err)
	}

	return ToDependencyEdgeDTOs(active), nil
}

// GetPrerequisites returns the stage IDs that must complete before the given
// stage
func (s *DependencyApplicationService) GetPrerequisites(ctx context.Context, stageID string) ([]string, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	prereqs := graph.PrerequisitesOf(stageID)
	if prereqs == nil {
		prereqs = []string{}
	}
	return prereqs, nil
}

// GetDependents returns the stage IDs blocked on the given stage
func (s *DependencyApplicationService) GetDependents(ctx context.Context, stageID string) ([]string, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	dependents := graph.DependentsOf(stageID)
	if dependents == nil {
		dependents = []string{}
	}
	return dependents, nil
}

func (s *DependencyApplicationService) loadGraph(ctx context.Context) (*domain.DependencyGraph, error) {
	active, err := s.edges.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load dependency edges")
		return nil, fmt.Errorf("failed to load dependency edges: %w", err)
	}
	return domain.NewDependencyGraph(active), nil
}
