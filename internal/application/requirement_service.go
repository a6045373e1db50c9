package application

import (
	"context"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// RequirementApplicationService handles part pipeline authoring and the
// required-stage resolver
type RequirementApplicationService struct {
	requirements domain.RequirementRepository
	stages       domain.StageRepository
	templates    domain.TemplateRepository
	txn          TransactionRunner
	logger       *logging.Logger
}

// NewRequirementApplicationService creates a new RequirementApplicationService
func NewRequirementApplicationService(
	requirements domain.RequirementRepository,
	stages domain.StageRepository,
	templates domain.TemplateRepository,
	txn TransactionRunner,
	logger *logging.Logger,
) *RequirementApplicationService {
	return &RequirementApplicationService{
		requirements: requirements,
		stages:       stages,
		templates:    templates,
		txn:          txn,
		logger:       logger,
	}
}

// AddRequirement adds a stage requirement row to a part's pipeline
func (s *RequirementApplicationService) AddRequirement(ctx context.Context, cmd AddRequirementCommand) (*RequirementDTO, error) {
	stage, err := s.stages.FindByID(ctx, cmd.StageID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get stage", "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	if stage == nil || !stage.IsActive {
		return nil, errors.ErrNotFoundWithID("stage", cmd.StageID)
	}

	req, err := domain.NewPartStageRequirement(cmd.PartID, domain.RequirementAttributes{
		StageID:            cmd.StageID,
		ExecutionOrder:     cmd.ExecutionOrder,
		EstimatedHours:     cmd.EstimatedHours,
		SetupMinutes:       cmd.SetupMinutes,
		HourlyRateOverride: cmd.HourlyRateOverride,
		MaterialCost:       cmd.MaterialCost,
		IsRequired:         cmd.IsRequired,
	}, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.requirements.Save(ctx, req); err != nil {
		s.logger.WithError(err).Error("Failed to save requirement", "partId", cmd.PartID, "stageId", cmd.StageID)
		return nil, fmt.Errorf("failed to save requirement: %w", err)
	}

	s.logger.Info("Added requirement", "requirementId", req.RequirementID, "partId", cmd.PartID, "stageId", cmd.StageID)
	return ToRequirementDTO(req), nil
}

// RemoveRequirement tombstones a requirement row
func (s *RequirementApplicationService) RemoveRequirement(ctx context.Context, cmd RemoveRequirementCommand) (*RequirementDTO, error) {
	req, err := s.requirements.FindByID(ctx, cmd.RequirementID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get requirement", "requirementId", cmd.RequirementID)
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	if req == nil {
		return nil, errors.ErrNotFoundWithID("requirement", cmd.RequirementID)
	}

	req.Deactivate(cmd.RemovedBy)

	if err := s.requirements.Update(ctx, req); err != nil {
		s.logger.WithError(err).Error("Failed to remove requirement", "requirementId", cmd.RequirementID)
		return nil, fmt.Errorf("failed to remove requirement: %w", err)
	}

	s.logger.Info("Removed requirement", "requirementId", req.RequirementID)
	return ToRequirementDTO(req), nil
}

// ListRequirements retrieves the active requirement rows for a part
func (s *RequirementApplicationService) ListRequirements(ctx context.Context, partID string) ([]RequirementDTO, error) {
	reqs, err := s.requirements.FindActiveByPart(ctx, partID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list requirements", "partId", partID)
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}

	return ToRequirementDTOs(reqs), nil
}

// GetRequiredStages resolves the ordered stage pipeline for a part. The
// result is deterministic for a fixed catalog and requirement set.
func (s *RequirementApplicationService) GetRequiredStages(ctx context.Context, query RequiredStagesQuery) ([]StageDTO, error) {
	if query.PartID == "" {
		return nil, errors.ErrValidation("part id is required")
	}

	reqs, err := s.requirements.FindActiveByPart(ctx, query.PartID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load requirements", "partId", query.PartID)
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}

	stagesByID, err := s.loadStages(ctx, reqs)
	if err != nil {
		return nil, err
	}

	return ToStageDTOs(domain.ResolveRequiredStages(reqs, stagesByID)), nil
}

// CreateTemplate defines a reusable workflow template
func (s *RequirementApplicationService) CreateTemplate(ctx context.Context, cmd CreateTemplateCommand) (*TemplateDTO, error) {
	for _, ts := range cmd.Stages {
		stage, err := s.stages.FindByID(ctx, ts.StageID)
		if err != nil {
			return nil, fmt.Errorf("failed to get stage: %w", err)
		}
		if stage == nil || !stage.IsActive {
			return nil, errors.ErrNotFoundWithID("stage", ts.StageID)
		}
	}

	tmpl, err := domain.NewWorkflowTemplate(cmd.Name, cmd.Stages, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.templates.Save(ctx, tmpl); err != nil {
		s.logger.WithError(err).Error("Failed to save template", "name", cmd.Name)
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("Created template", "templateId", tmpl.TemplateID, "name", tmpl.Name)
	return ToTemplateDTO(tmpl), nil
}

// GetTemplate retrieves a template by ID
func (s *RequirementApplicationService) GetTemplate(ctx context.Context, templateID string) (*TemplateDTO, error) {
	tmpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get template", "templateId", templateID)
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tmpl == nil {
		return nil, errors.ErrNotFoundWithID("template", templateID)
	}

	return ToTemplateDTO(tmpl), nil
}

// ListTemplates retrieves all active templates
func (s *RequirementApplicationService) ListTemplates(ctx context.Context) ([]TemplateDTO, error) {
	tmpls, err := s.templates.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list templates")
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return ToTemplateDTOs(tmpls), nil
}

// ApplyTemplate seeds a part's requirement rows from a template. All rows are
// written in one transaction so the pipeline never appears half-seeded.
func (s *RequirementApplicationService) ApplyTemplate(ctx context.Context, cmd ApplyTemplateCommand) ([]RequirementDTO, error) {
	tmpl, err := s.templates.FindByID(ctx, cmd.TemplateID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get template", "templateId", cmd.TemplateID)
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tmpl == nil || !tmpl.IsActive {
		return nil, errors.ErrNotFoundWithID("template", cmd.TemplateID)
	}

	reqs, err := tmpl.MaterializeRequirements(cmd.PartID, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	err = s.txn.Execute(ctx, func(ctx context.Context) error {
		for _, req := range reqs {
			if err := s.requirements.Save(ctx, req); err != nil {
				return fmt.Errorf("failed to save requirement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to apply template", "templateId", cmd.TemplateID, "partId", cmd.PartID)
		return nil, err
	}

	s.logger.Info("Applied template", "templateId", cmd.TemplateID, "partId", cmd.PartID, "stages", len(reqs))
	return ToRequirementDTOs(reqs), nil
}

func (s *RequirementApplicationService) loadStages(ctx context.Context, reqs []*domain.PartStageRequirement) (map[string]*domain.Stage, error) {
	stageIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		stageIDs = append(stageIDs, req.StageID)
	}

	stages, err := s.stages.FindByIDs(ctx, stageIDs)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load stages")
		return nil, fmt.Errorf("failed to load stages: %w", err)
	}

	byID := make(map[string]*domain.Stage, len(stages))
	for _, stage := range stages {
		byID[stage.StageID] = stage
	}
	return byID, nil
}
