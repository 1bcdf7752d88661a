//go:build !darwin || !cgo

package smc

import "codeberg.org/mutker/hotctl/internal/errors"

// Open reports ErrUnsupported on platforms without an AppleSMC service.
func Open() (KeyReader, error) {
	return nil, errors.New().New(ErrUnsupported)
}

const openSupported = false
