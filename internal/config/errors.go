package config

import "codeberg.org/mutker/hotctl/internal/errors"

const (
	ErrInvalidSelectionMode   = errors.ErrorCode("config_invalid_selection_mode")
	ErrInvalidTemperatureMode = errors.ErrorCode("config_invalid_temperature_mode")
	ErrUnmarshal              = errors.ErrorCode("config_unmarshal_failed")
	ErrNoConfigFile           = errors.ErrorCode("config_no_file")
)
