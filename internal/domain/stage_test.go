package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewStage tests stage creation and validation
func TestNewStage(t *testing.T) {
	tests := []struct {
		name    string
		attrs   StageAttributes
		wantErr error
	}{
		{
			name: "Valid stage",
			attrs: StageAttributes{
				Name:               "SLS Printing",
				DisplayOrder:       1,
				DefaultHourlyRate:  85,
				RequiresApproval:   true,
				RequiredCapability: "printing",
			},
		},
		{
			name:    "Missing name",
			attrs:   StageAttributes{DisplayOrder: 1},
			wantErr: ErrStageNameRequired,
		},
		{
			name:    "Negative display order",
			attrs:   StageAttributes{Name: "EDM", DisplayOrder: -1},
			wantErr: ErrInvalidDisplayOrder,
		},
		{
			name:    "Negative hourly rate",
			attrs:   StageAttributes{Name: "EDM", DefaultHourlyRate: -10},
			wantErr: ErrInvalidHourlyRate,
		},
		{
			name:    "Negative setup minutes",
			attrs:   StageAttributes{Name: "EDM", DefaultSetupMinutes: -5},
			wantErr: ErrInvalidSetupMinutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := NewStage(tt.attrs, "admin")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stage)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, stage)
			assert.Contains(t, stage.StageID, "STG-")
			assert.Equal(t, tt.attrs.Name, stage.Name)
			assert.True(t, stage.IsActive)
			assert.Equal(t, "admin", stage.CreatedBy)

			events := stage.DomainEvents
			require.Len(t, events, 1)
			created, ok := events[0].(*StageCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, stage.StageID, created.StageID)
		})
	}
}

// TestStageUpdate tests attribute replacement
func TestStageUpdate(t *testing.T) {
	stage, err := NewStage(StageAttributes{Name: "Coating", DefaultHourlyRate: 60}, "admin")
	require.NoError(t, err)

	require.NoError(t, stage.Update(StageAttributes{Name: "Ceramic Coating", DefaultHourlyRate: 75, AllowSkip: true}, "admin2"))
	assert.Equal(t, "Ceramic Coating", stage.Name)
	assert.Equal(t, 75.0, stage.DefaultHourlyRate)
	assert.True(t, stage.AllowSkip)
	assert.Equal(t, "admin2", stage.LastModifiedBy)

	assert.ErrorIs(t, stage.Update(StageAttributes{DefaultHourlyRate: 75}, "admin2"), ErrStageNameRequired)

	require.NoError(t, stage.Deactivate("admin"))
	assert.ErrorIs(t, stage.Update(StageAttributes{Name: "X"}, "admin2"), ErrStageInactive)
}

// TestStageDeactivate tests soft deletion
func TestStageDeactivate(t *testing.T) {
	stage, err := NewStage(StageAttributes{Name: "Assembly"}, "admin")
	require.NoError(t, err)
	stage.ClearDomainEvents()

	require.NoError(t, stage.Deactivate("admin"))
	assert.False(t, stage.IsActive)

	events := stage.DomainEvents
	require.Len(t, events, 1)
	_, ok := events[0].(*StageDeactivatedEvent)
	assert.True(t, ok)

	assert.ErrorIs(t, stage.Deactivate("admin"), ErrStageAlreadyInactive)
}
