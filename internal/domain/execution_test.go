package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecution(t *testing.T) *StageExecution {
	t.Helper()
	return NewStageExecution("JOB-001", "STG-001", 2.5, 85, "OP-001")
}

// TestNewStageExecution tests execution creation
func TestNewStageExecution(t *testing.T) {
	exe := testExecution(t)

	assert.Contains(t, exe.ExecutionID, "EXE-")
	assert.Equal(t, "JOB-001", exe.JobID)
	assert.Equal(t, "STG-001", exe.StageID)
	assert.Equal(t, ExecutionStatusNotStarted, exe.Status)
	assert.Equal(t, 2.5, exe.EstimatedHours)
	assert.Equal(t, 2.5*85, exe.EstimatedCost)
	assert.Empty(t, exe.OperatorID)
	assert.Nil(t, exe.StartedAt)
	assert.True(t, exe.IsActive)
}

// TestStageExecutionStart tests punch-in
func TestStageExecutionStart(t *testing.T) {
	exe := testExecution(t)

	require.NoError(t, exe.Start("OP-001"))
	assert.Equal(t, ExecutionStatusInProgress, exe.Status)
	assert.Equal(t, "OP-001", exe.OperatorID)
	require.NotNil(t, exe.StartedAt)

	events := exe.DomainEvents
	require.Len(t, events, 1)
	started, ok := events[0].(*ExecutionStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "OP-001", started.OperatorID)

	assert.ErrorIs(t, exe.Start("OP-002"), ErrExecutionAlreadyStarted)
}

// TestStageExecutionComplete tests punch-out
func TestStageExecutionComplete(t *testing.T) {
	t.Run("Completes and derives actuals", func(t *testing.T) {
		exe := testExecution(t)
		require.NoError(t, exe.Start("OP-001"))

		require.NoError(t, exe.Complete("OP-001"))
		assert.Equal(t, ExecutionStatusCompleted, exe.Status)
		require.NotNil(t, exe.CompletedAt)
		assert.GreaterOrEqual(t, exe.ActualHours, 0.0)
		assert.Equal(t, exe.ActualHours*exe.HourlyRate, exe.ActualCost)
	})

	t.Run("Only the punched-in operator may complete", func(t *testing.T) {
		exe := testExecution(t)
		require.NoError(t, exe.Start("OP-001"))

		assert.ErrorIs(t, exe.Complete("OP-002"), ErrOperatorMismatch)
		assert.Equal(t, ExecutionStatusInProgress, exe.Status)
	})

	t.Run("Cannot complete before starting", func(t *testing.T) {
		exe := testExecution(t)
		assert.ErrorIs(t, exe.Complete("OP-001"), ErrExecutionNotInProgress)
	})
}

// TestStageExecutionSkip tests the skip transition
func TestStageExecutionSkip(t *testing.T) {
	t.Run("Skippable stage", func(t *testing.T) {
		exe := testExecution(t)
		require.NoError(t, exe.Skip("supervisor", true))
		assert.Equal(t, ExecutionStatusSkipped, exe.Status)
		require.NotNil(t, exe.CompletedAt)
		assert.Empty(t, exe.OperatorID)
	})

	t.Run("Stage does not allow skipping", func(t *testing.T) {
		exe := testExecution(t)
		assert.ErrorIs(t, exe.Skip("supervisor", false), ErrSkipNotAllowed)
	})

	t.Run("Cannot skip an in-progress execution", func(t *testing.T) {
		exe := testExecution(t)
		require.NoError(t, exe.Start("OP-001"))
		assert.ErrorIs(t, exe.Skip("supervisor", true), ErrExecutionAlreadyStarted)
	})
}

// TestStageExecutionFailAndReset tests the failure path and administrative reset
func TestStageExecutionFailAndReset(t *testing.T) {
	exe := testExecution(t)
	require.NoError(t, exe.Start("OP-001"))
	require.NoError(t, exe.Fail("OP-001", "powder contamination"))

	assert.Equal(t, ExecutionStatusFailed, exe.Status)
	assert.Equal(t, "powder contamination", exe.FailureReason)
	assert.True(t, exe.Status.IsTerminal())

	// Only an administrative reset leaves Failed
	assert.ErrorIs(t, exe.Start("OP-001"), ErrExecutionAlreadyStarted)

	require.NoError(t, exe.ResetFailed("admin"))
	assert.Equal(t, ExecutionStatusNotStarted, exe.Status)
	assert.Empty(t, exe.OperatorID)
	assert.Nil(t, exe.StartedAt)
	assert.Nil(t, exe.CompletedAt)
	assert.Zero(t, exe.ActualHours)
	assert.Empty(t, exe.FailureReason)

	// Fresh start after reset works
	require.NoError(t, exe.Start("OP-002"))
	assert.Equal(t, "OP-002", exe.OperatorID)
}

// TestStageExecutionResetRequiresFailed tests reset preconditions
func TestStageExecutionResetRequiresFailed(t *testing.T) {
	exe := testExecution(t)
	assert.ErrorIs(t, exe.ResetFailed("admin"), ErrExecutionNotFailed)

	require.NoError(t, exe.Start("OP-001"))
	require.NoError(t, exe.Complete("OP-001"))
	assert.ErrorIs(t, exe.ResetFailed("admin"), ErrExecutionNotFailed)
}

// TestStageExecutionApprove tests the approval record
func TestStageExecutionApprove(t *testing.T) {
	exe := testExecution(t)

	assert.ErrorIs(t, exe.Approve("inspector", ""), ErrExecutionNotCompleted)

	require.NoError(t, exe.Start("OP-001"))
	require.NoError(t, exe.Complete("OP-001"))

	require.NoError(t, exe.Approve("inspector", "dimensions in tolerance"))
	require.NotNil(t, exe.Approval)
	assert.Equal(t, "inspector", exe.Approval.ApprovedBy)
	assert.Equal(t, "dimensions in tolerance", exe.Approval.Notes)
	assert.True(t, exe.IsApproved())

	assert.ErrorIs(t, exe.Approve("inspector2", ""), ErrExecutionAlreadyApproved)
}

// TestSatisfiesPrerequisite tests prerequisite satisfaction across states
func TestSatisfiesPrerequisite(t *testing.T) {
	tests := []struct {
		name             string
		setup            func(t *testing.T) *StageExecution
		requiresApproval bool
		want             bool
	}{
		{
			name:  "Not started never satisfies",
			setup: func(t *testing.T) *StageExecution { return testExecution(t) },
			want:  false,
		},
		{
			name: "In progress never satisfies",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Start("OP-001"))
				return exe
			},
			want: false,
		},
		{
			name: "Completed satisfies an ungated stage",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Start("OP-001"))
				require.NoError(t, exe.Complete("OP-001"))
				return exe
			},
			want: true,
		},
		{
			name: "Completed gated stage waits for approval",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Start("OP-001"))
				require.NoError(t, exe.Complete("OP-001"))
				return exe
			},
			requiresApproval: true,
			want:             false,
		},
		{
			name: "Approved gated stage satisfies",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Start("OP-001"))
				require.NoError(t, exe.Complete("OP-001"))
				require.NoError(t, exe.Approve("inspector", ""))
				return exe
			},
			requiresApproval: true,
			want:             true,
		},
		{
			name: "Skipped gated stage needs no approval",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Skip("supervisor", true))
				return exe
			},
			requiresApproval: true,
			want:             true,
		},
		{
			name: "Failed never satisfies",
			setup: func(t *testing.T) *StageExecution {
				exe := testExecution(t)
				require.NoError(t, exe.Start("OP-001"))
				require.NoError(t, exe.Fail("OP-001", "scrapped"))
				return exe
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exe := tt.setup(t)
			assert.Equal(t, tt.want, exe.SatisfiesPrerequisite(tt.requiresApproval))
		})
	}
}
