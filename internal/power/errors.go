package power

import "codeberg.org/mutker/hotctl/internal/errors"

const (
	ErrCommandFailed = errors.ErrorCode("power_command_failed")
	ErrEmptyReport   = errors.ErrorCode("power_empty_report")
	ErrReadFailed    = errors.ErrorCode("power_read_failed")
	ErrUnsupported   = errors.ErrorCode("power_unsupported")
)
