package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewWorkflowTemplate tests template creation
func TestNewWorkflowTemplate(t *testing.T) {
	stages := []TemplateStage{
		{StageID: "STG-print", ExecutionOrder: 10, EstimatedHours: 8, IsRequired: true},
		{StageID: "STG-edm", ExecutionOrder: 20, EstimatedHours: 2, IsRequired: true},
	}

	template, err := NewWorkflowTemplate("Standard SLS flow", stages, "admin")
	require.NoError(t, err)
	assert.Contains(t, template.TemplateID, "WT-")
	assert.Len(t, template.Stages, 2)
	assert.True(t, template.IsActive)

	_, err = NewWorkflowTemplate("", stages, "admin")
	assert.ErrorIs(t, err, ErrTemplateNameRequired)

	_, err = NewWorkflowTemplate("Empty", nil, "admin")
	assert.ErrorIs(t, err, ErrTemplateEmpty)
}

// TestMaterializeRequirements tests seeding a part pipeline from a template
func TestMaterializeRequirements(t *testing.T) {
	template, err := NewWorkflowTemplate("Standard SLS flow", []TemplateStage{
		{StageID: "STG-print", ExecutionOrder: 10, EstimatedHours: 8, SetupMinutes: 30, MaterialCost: 120, IsRequired: true},
		{StageID: "STG-coat", ExecutionOrder: 20, EstimatedHours: 1.5, IsRequired: false},
	}, "admin")
	require.NoError(t, err)

	reqs, err := template.MaterializeRequirements("PART-001", "planner")
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "PART-001", reqs[0].PartID)
	assert.Equal(t, "STG-print", reqs[0].StageID)
	assert.Equal(t, 10, reqs[0].ExecutionOrder)
	assert.Equal(t, 8.0, reqs[0].EstimatedHours)
	assert.Equal(t, 30, reqs[0].SetupMinutes)
	assert.Equal(t, 120.0, reqs[0].MaterialCost)
	assert.True(t, reqs[0].IsRequired)
	assert.Equal(t, "planner", reqs[0].CreatedBy)

	assert.False(t, reqs[1].IsRequired)

	// Part id validation bubbles up from the requirement constructor
	_, err = template.MaterializeRequirements("", "planner")
	assert.ErrorIs(t, err, ErrPartIDRequired)
}
