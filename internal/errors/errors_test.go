package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	err := errFactory.New(errors.ErrReadConfig)
	assert.Equal(t, "Failed to read config file (read_config_failed)", err.Error())

	wrapped := errFactory.Wrap(errors.ErrTimeout, fmt.Errorf("deadline"))
	assert.Equal(t, "Operation timed out (operation_timeout): deadline", wrapped.Error())

	withData := errFactory.WithData(errors.ErrInvalidArgument, "fan index out of range")
	assert.Contains(t, withData.Error(), "fan index out of range")

	custom := errFactory.WithMessage(errors.ErrorCode("custom_code"), "custom message")
	assert.Equal(t, "custom message (custom_code)", custom.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	errFactory := errors.New()

	err := fmt.Errorf("outer: %w", errFactory.Wrap(errors.ErrUnavailable, fmt.Errorf("inner")))

	assert.True(t, errors.Is(err, errFactory.New(errors.ErrUnavailable)))
	assert.False(t, errors.Is(err, errFactory.New(errors.ErrTimeout)))
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()

	inner := errFactory.New(errors.ErrResourceNotFound)
	outer := errFactory.Wrap(errors.ErrOperationFailed, inner)

	assert.True(t, errors.HasCode(outer, errors.ErrOperationFailed))
	assert.True(t, errors.HasCode(outer, errors.ErrResourceNotFound))
	assert.False(t, errors.HasCode(outer, errors.ErrTimeout))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}
