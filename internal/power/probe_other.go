//go:build !darwin && !linux

package power

import (
	"context"

	"codeberg.org/mutker/hotctl/internal/errors"
)

type unsupportedProbe struct{}

// NewProbe returns a probe that never reports a power budget.
func NewProbe() Probe {
	return unsupportedProbe{}
}

func (unsupportedProbe) Probe(context.Context) (Limits, error) {
	return Limits{}, errors.New().New(ErrUnsupported)
}
