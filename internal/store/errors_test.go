package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrPracticeNotFound",
			err:      ErrPracticeNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrDrillNotFound",
			err:      fmt.Errorf("failed to ensure record: %w", ErrDrillNotFound),
			expected: true,
		},
		{
			name:     "StoreError wrapping ErrPracticeNotFound",
			err:      NewStoreError("practice", "update", "no row", ErrPracticeNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrPracticeNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrPracticeNotFound, ErrDrillNotFound))
	assert.False(t, errors.Is(ErrDrillNotFound, ErrPracticeNotFound))
	assert.Equal(t, "entity not found: drill", ErrDrillNotFound.Error())
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewStoreError("practice", "list_due", "query failed", cause)

		assert.Equal(t, "list_due operation on practice failed: query failed: connection reset", err.Error())
		assert.ErrorIs(t, err, cause)

		var storeErr *StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
		assert.Equal(t, "practice", storeErr.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("practice", "update", "no rows affected", nil)
		assert.Equal(t, "update operation on practice failed: no rows affected", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
