package application

import "github.com/HenryGill4/OpCentrix-sub007/internal/domain"

// ToStageDTO converts a domain Stage to StageDTO
func ToStageDTO(stage *domain.Stage) *StageDTO {
	if stage == nil {
		return nil
	}

	return &StageDTO{
		StageID:              stage.StageID,
		Name:                 stage.Name,
		DisplayOrder:         stage.DisplayOrder,
		DefaultSetupMinutes:  stage.DefaultSetupMinutes,
		DefaultHourlyRate:    stage.DefaultHourlyRate,
		RequiresQualityCheck: stage.RequiresQualityCheck,
		RequiresApproval:     stage.RequiresApproval,
		AllowSkip:            stage.AllowSkip,
		IsOptional:           stage.IsOptional,
		RequiredCapability:   stage.RequiredCapability,
		IsActive:             stage.IsActive,
		CreatedAt:            stage.CreatedAt,
		UpdatedAt:            stage.UpdatedAt,
	}
}

// ToStageDTOs converts a slice of domain Stages to StageDTOs
func ToStageDTOs(stages []*domain.Stage) []StageDTO {
	dtos := make([]StageDTO, 0, len(stages))
	for _, stage := range stages {
		if dto := ToStageDTO(stage); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToDependencyEdgeDTO converts a domain StageDependencyEdge to DependencyEdgeDTO
func ToDependencyEdgeDTO(edge *domain.StageDependencyEdge) *DependencyEdgeDTO {
	if edge == nil {
		return nil
	}

	return &DependencyEdgeDTO{
		EdgeID:              edge.EdgeID,
		DependentStageID:    edge.DependentStageID,
		PrerequisiteStageID: edge.PrerequisiteStageID,
		IsActive:            edge.IsActive,
		CreatedAt:           edge.CreatedAt,
	}
}

// ToDependencyEdgeDTOs converts a slice of edges to DTOs
func ToDependencyEdgeDTOs(edges []*domain.StageDependencyEdge) []DependencyEdgeDTO {
	dtos := make([]DependencyEdgeDTO, 0, len(edges))
	for _, edge := range edges {
		if dto := ToDependencyEdgeDTO(edge); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToRequirementDTO converts a domain PartStageRequirement to RequirementDTO
func ToRequirementDTO(req *domain.PartStageRequirement) *RequirementDTO {
	if req == nil {
		return nil
	}

	return &RequirementDTO{
		RequirementID:      req.RequirementID,
		PartID:             req.PartID,
		StageID:            req.StageID,
		ExecutionOrder:     req.ExecutionOrder,
		EstimatedHours:     req.EstimatedHours,
		SetupMinutes:       req.SetupMinutes,
		HourlyRateOverride: req.HourlyRateOverride,
		MaterialCost:       req.MaterialCost,
		IsRequired:         req.IsRequired,
		IsActive:           req.IsActive,
		CreatedAt:          req.CreatedAt,
	}
}

// ToRequirementDTOs converts a slice of requirements to DTOs
func ToRequirementDTOs(reqs []*domain.PartStageRequirement) []RequirementDTO {
	dtos := make([]RequirementDTO, 0, len(reqs))
	for _, req := range reqs {
		if dto := ToRequirementDTO(req); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToExecutionDTO converts a domain StageExecution to ExecutionDTO
func ToExecutionDTO(exe *domain.StageExecution) *ExecutionDTO {
	if exe == nil {
		return nil
	}

	dto := &ExecutionDTO{
		ExecutionID:    exe.ExecutionID,
		JobID:          exe.JobID,
		StageID:        exe.StageID,
		OperatorID:     exe.OperatorID,
		Status:         string(exe.Status),
		StartedAt:      exe.StartedAt,
		CompletedAt:    exe.CompletedAt,
		EstimatedHours: exe.EstimatedHours,
		ActualHours:    exe.ActualHours,
		HourlyRate:     exe.HourlyRate,
		EstimatedCost:  exe.EstimatedCost,
		ActualCost:     exe.ActualCost,
		FailureReason:  exe.FailureReason,
		PoolID:         exe.PoolID,
		MachinePoolID:  exe.MachinePoolID,
		CreatedAt:      exe.CreatedAt,
		UpdatedAt:      exe.UpdatedAt,
	}

	if exe.Approval != nil {
		dto.Approval = &ApprovalDTO{
			ApprovedBy: exe.Approval.ApprovedBy,
			Notes:      exe.Approval.Notes,
			ApprovedAt: exe.Approval.ApprovedAt,
		}
	}

	return dto
}

// ToExecutionDTOs converts a slice of executions to DTOs
func ToExecutionDTOs(exes []*domain.StageExecution) []ExecutionDTO {
	dtos := make([]ExecutionDTO, 0, len(exes))
	for _, exe := range exes {
		if dto := ToExecutionDTO(exe); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToJobDTO converts a domain Job to JobDTO
func ToJobDTO(job *domain.Job) *JobDTO {
	if job == nil {
		return nil
	}

	return &JobDTO{
		JobID:         job.JobID,
		PartID:        job.PartID,
		Quantity:      job.Quantity,
		CohortID:      job.CohortID,
		WorkflowStage: string(job.WorkflowStage),
		DueDate:       job.DueDate,
		IsActive:      job.IsActive,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

// ToJobDTOs converts a slice of jobs to DTOs
func ToJobDTOs(jobs []*domain.Job) []JobDTO {
	dtos := make([]JobDTO, 0, len(jobs))
	for _, job := range jobs {
		if dto := ToJobDTO(job); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToCohortDTO converts a domain BuildCohort to CohortDTO
func ToCohortDTO(cohort *domain.BuildCohort) *CohortDTO {
	if cohort == nil {
		return nil
	}

	return &CohortDTO{
		CohortID:    cohort.CohortID,
		Name:        cohort.Name,
		Status:      string(cohort.Status),
		CompletedAt: cohort.CompletedAt,
		IsActive:    cohort.IsActive,
		CreatedAt:   cohort.CreatedAt,
	}
}

// ToCohortDTOs converts a slice of cohorts to DTOs
func ToCohortDTOs(cohorts []*domain.BuildCohort) []CohortDTO {
	dtos := make([]CohortDTO, 0, len(cohorts))
	for _, cohort := range cohorts {
		if dto := ToCohortDTO(cohort); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToPoolDTO converts a domain ResourcePool to PoolDTO
func ToPoolDTO(pool *domain.ResourcePool) *PoolDTO {
	if pool == nil {
		return nil
	}

	return &PoolDTO{
		PoolID:    pool.PoolID,
		Name:      pool.Name,
		Scope:     string(pool.Scope),
		TargetID:  pool.TargetID,
		Capacity:  pool.Capacity,
		InUse:     pool.InUse,
		Available: pool.Available(),
		IsActive:  pool.IsActive,
		CreatedAt: pool.CreatedAt,
	}
}

// ToPoolDTOs converts a slice of pools to DTOs
func ToPoolDTOs(pools []*domain.ResourcePool) []PoolDTO {
	dtos := make([]PoolDTO, 0, len(pools))
	for _, pool := range pools {
		if dto := ToPoolDTO(pool); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToTemplateDTO converts a domain WorkflowTemplate to TemplateDTO
func ToTemplateDTO(tmpl *domain.WorkflowTemplate) *TemplateDTO {
	if tmpl == nil {
		return nil
	}

	stages := make([]TemplateStageDTO, 0, len(tmpl.Stages))
	for _, ts := range tmpl.Stages {
		stages = append(stages, TemplateStageDTO{
			StageID:        ts.StageID,
			ExecutionOrder: ts.ExecutionOrder,
			EstimatedHours: ts.EstimatedHours,
			SetupMinutes:   ts.SetupMinutes,
			MaterialCost:   ts.MaterialCost,
			IsRequired:     ts.IsRequired,
		})
	}

	return &TemplateDTO{
		TemplateID: tmpl.TemplateID,
		Name:       tmpl.Name,
		Stages:     stages,
		IsActive:   tmpl.IsActive,
		CreatedAt:  tmpl.CreatedAt,
	}
}

// ToTemplateDTOs converts a slice of templates to DTOs
func ToTemplateDTOs(tmpls []*domain.WorkflowTemplate) []TemplateDTO {
	dtos := make([]TemplateDTO, 0, len(tmpls))
	for _, tmpl := range tmpls {
		if dto := ToTemplateDTO(tmpl); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}
