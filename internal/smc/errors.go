package smc

import "codeberg.org/mutker/hotctl/internal/errors"

const (
	ErrUnsupported     = errors.ErrorCode("smc_unsupported")
	ErrOpenFailed      = errors.ErrorCode("smc_open_failed")
	ErrClosed          = errors.ErrorCode("smc_closed")
	ErrCallFailed      = errors.ErrorCode("smc_call_failed")
	ErrKeyNotFound     = errors.ErrorCode("smc_key_not_found")
	ErrKeyCountFailed  = errors.ErrorCode("smc_key_count_failed")
	ErrKeyIndexInvalid = errors.ErrorCode("smc_key_index_invalid")
)
