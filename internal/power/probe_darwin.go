//go:build darwin

package power

// NewProbe returns the platform probe: the pmset thermal report.
func NewProbe() Probe {
	return NewTextProbe("/usr/bin/pmset", "-g", "therm")
}
