package sensor

import "codeberg.org/mutker/hotctl/internal/errors"

const (
	ErrUnavailable = errors.ErrorCode("sensor_unavailable")
	ErrReadFailed  = errors.ErrorCode("sensor_read_failed")
	ErrTimeout     = errors.ErrorCode("sensor_timeout")
	ErrBusy        = errors.ErrorCode("sensor_busy")
)
