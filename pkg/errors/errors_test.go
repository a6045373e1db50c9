package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"Validation", ErrValidation("bad input"), CodeValidationError, http.StatusBadRequest},
		{"NotFound", ErrNotFound("stage"), CodeNotFound, http.StatusNotFound},
		{"Conflict", ErrConflict("already exists"), CodeConflict, http.StatusConflict},
		{"Forbidden", ErrForbidden(""), CodeForbidden, http.StatusForbidden},
		{"Internal", ErrInternal(""), CodeInternalError, http.StatusInternalServerError},
		{"Invariant", ErrInvariant(CodeOperatorBusy, "operator busy"), CodeOperatorBusy, http.StatusConflict},
		{"ConcurrencyConflict", ErrConcurrencyConflict("punch in"), CodeConcurrencyConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestNotFoundWithIDDetail(t *testing.T) {
	err := ErrNotFoundWithID("stage", "STG-001")
	assert.Equal(t, "STG-001", err.Details["id"])
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrInternal("lookup failed").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "lookup failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromError(t *testing.T) {
	t.Run("Nil passes through", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("AppError preserved through wrapping", func(t *testing.T) {
		original := ErrInvariant(CodeStageBusy, "stage busy")
		wrapped := fmt.Errorf("punch in failed: %w", original)

		got := FromError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, CodeStageBusy, got.Code)
		assert.True(t, IsAppError(wrapped))
	})

	t.Run("Plain error becomes internal", func(t *testing.T) {
		got := FromError(errors.New("boom"))
		require.NotNil(t, got)
		assert.Equal(t, CodeInternalError, got.Code)
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus)
	})
}
