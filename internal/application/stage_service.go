package application

import (
	"context"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// StageApplicationService handles stage catalog use cases
type StageApplicationService struct {
	stages domain.StageRepository
	logger *logging.Logger
}

// NewStageApplicationService creates a new StageApplicationService
func NewStageApplicationService(stages domain.StageRepository, logger *logging.Logger) *StageApplicationService {
	return &StageApplicationService{
		stages: stages,
		logger: logger,
	}
}

// CreateStage defines a new production stage
func (s *StageApplicationService) CreateStage(ctx context.Context, cmd CreateStageCommand) (*StageDTO, error) {
	existing, err := s.stages.FindByName(ctx, cmd.Name)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check stage name", "name", cmd.Name)
		return nil, fmt.Errorf("failed to check stage name: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("stage %q already exists", cmd.Name))
	}

	stage, err := domain.NewStage(domain.StageAttributes{
		Name:                 cmd.Name,
		DisplayOrder:         cmd.DisplayOrder,
		DefaultSetupMinutes:  cmd.DefaultSetupMinutes,
		DefaultHourlyRate:    cmd.DefaultHourlyRate,
		RequiresQualityCheck: cmd.RequiresQualityCheck,
		RequiresApproval:     cmd.RequiresApproval,
		AllowSkip:            cmd.AllowSkip,
		IsOptional:           cmd.IsOptional,
		RequiredCapability:   cmd.RequiredCapability,
	}, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.stages.Save(ctx, stage); err != nil {
		s.logger.WithError(err).Error("Failed to save stage", "stageId", stage.StageID)
		return nil, fmt.Errorf("failed to save stage: %w", err)
	}

	s.logger.Info("Created stage", "stageId", stage.StageID, "name", stage.Name)
	return ToStageDTO(stage), nil
}

// UpdateStage replaces the editable attributes of a stage
func (s *StageApplicationService) UpdateStage(ctx context.Context, cmd UpdateStageCommand) (*StageDTO, error) {
	stage, err := s.stages.FindByID(ctx, cmd.StageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get stage", "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if stage == nil {
		return nil, errors.ErrNotFoundWithID("stage", cmd.StageID)
	}

	err = stage.Update(domain.StageAttributes{
		Name:                 cmd.Name,
		DisplayOrder:         cmd.DisplayOrder,
		DefaultSetupMinutes:  cmd.DefaultSetupMinutes,
		DefaultHourlyRate:    cmd.DefaultHourlyRate,
		RequiresQualityCheck: cmd.RequiresQualityCheck,
		RequiresApproval:     cmd.RequiresApproval,
		AllowSkip:            cmd.AllowSkip,
		IsOptional:           cmd.IsOptional,
		RequiredCapability:   cmd.RequiredCapability,
	}, cmd.ModifiedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.stages.Update(ctx, stage); err != nil {
		s.logger.WithError(err).Error("Failed to update stage", "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	s.logger.Info("Updated stage", "stageId", stage.StageID)
	return ToStageDTO(stage), nil
}

// DeactivateStage soft-deletes a stage. Historical executions and requirement
// rows referencing it are untouched.
func (s *StageApplicationService) DeactivateStage(ctx context.Context, cmd DeactivateStageCommand) (*StageDTO, error) {
	stage, err := s.stages.FindByID(ctx, cmd.StageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get stage", "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if stage == nil {
		return nil, errors.ErrNotFoundWithID("stage", cmd.StageID)
	}

	if err := stage.Deactivate(cmd.DeactivatedBy); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.stages.Update(ctx, stage); err != nil {
		s.logger.WithError(err).Error("Failed to deactivate stage", "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to deactivate stage: %w", err)
	}

	s.logger.Info("Deactivated stage", "stageId", stage.StageID)
	return ToStageDTO(stage), nil
}

// GetStage retrieves a stage by ID
func (s *StageApplicationService) GetStage(ctx context.Context, stageID string) (*StageDTO, error) {
	stage, err := s.stages.FindByID(ctx, stageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get stage", "stageId", stageID)
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if stage == nil {
		return nil, errors.ErrNotFoundWithID("stage", stageID)
	}

	return ToStageDTO(stage), nil
}

// ListStages retrieves all active stages
func (s *StageApplicationService) ListStages(ctx context.Context) ([]StageDTO, error) {
	stages, err := s.stages.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list stages")
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	return ToStageDTOs(stages), nil
}
