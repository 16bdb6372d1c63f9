package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientErrorMatchesKind(t *testing.T) {
	err := fmt.Errorf("purchase: %w", &InsufficientError{EventID: 7, Requested: 3, Remaining: 2})

	assert.True(t, errors.Is(err, ErrInsufficientAvailability))
	assert.False(t, errors.Is(err, ErrBusy))

	remaining, ok := Remaining(err)
	assert.True(t, ok)
	assert.Equal(t, 2, remaining)
}

func TestRemainingWithoutAvailabilityError(t *testing.T) {
	_, ok := Remaining(ErrNotFound)
	assert.False(t, ok)
}

func TestInvalidWrapsKind(t *testing.T) {
	err := Invalid("quantity must be positive, got %d", 0)

	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.Contains(t, err.Error(), "got 0")
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(fmt.Errorf("lock event: %w", ErrBusy)))
	assert.False(t, Retryable(ErrStoreFailure))
	assert.False(t, Retryable(&InsufficientError{}))
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"forbidden", fmt.Errorf("purchase: %w", ErrForbidden), ErrForbidden},
		{"insufficient", &InsufficientError{Remaining: 1}, ErrInsufficientAvailability},
		{"busy", fmt.Errorf("lock: %w", ErrBusy), ErrBusy},
		{"unclassified", errors.New("boom"), ErrStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}
