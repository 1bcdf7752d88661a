//go:build linux

package power

// NewProbe returns the platform probe: sysfs and cgroup records.
func NewProbe() Probe {
	return NewSysfsProbe("/")
}
