//go:build linux

package power

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/tklauser/go-sysconf"
)

const (
	cpufreqDir = "sys/devices/system/cpu/cpu0/cpufreq"
	cgroupMax  = "sys/fs/cgroup/cpu.max"
)

// SysfsProbe reads the power budget from structured kernel records: the
// online processor count, the cpufreq scaling ceiling of cpu0 relative to
// its hardware maximum, and the cgroup v2 CPU quota.
type SysfsProbe struct {
	root   string
	online func() (int64, error)
}

// NewSysfsProbe returns a probe reading files below root.
func NewSysfsProbe(root string) *SysfsProbe {
	return &SysfsProbe{
		root:   root,
		online: func() (int64, error) {
			return sysconf.Sysconf(sysconf.SC_NPROCESSORS_ONLN)
		},
	}
}

func (p *SysfsProbe) Probe(ctx context.Context) (Limits, error) {
	if err := ctx.Err(); err != nil {
		return Limits{}, errors.New().Wrap(ErrReadFailed, err)
	}

	var limits Limits

	cpus, err := p.online()
	if err == nil && cpus > 0 {
		limits.AvailableCPUs = uintPtr(uint(cpus))
	}

	if speed, ok := p.speedLimit(); ok {
		limits.SpeedLimit = uintPtr(speed)
	}

	if cpus > 0 {
		if sched, ok := p.schedulerLimit(uint64(cpus)); ok {
			limits.SchedulerLimit = uintPtr(sched)
		}
	}

	if limits.Empty() {
		return limits, errors.New().WithData(ErrReadFailed, p.root)
	}

	return limits, nil
}

func (p *SysfsProbe) speedLimit() (uint, bool) {
	dir := filepath.Join(p.root, cpufreqDir)

	scaling, err := readUint(filepath.Join(dir, "scaling_max_freq"))
	if err != nil {
		return 0, false
	}
	hardware, err := readUint(filepath.Join(dir, "cpuinfo_max_freq"))
	if err != nil || hardware == 0 {
		return 0, false
	}

	return uint(min(scaling*100/hardware, 100)), true
}

// schedulerLimit converts "quota period" from cpu.max into a share of all
// online processors. An unlimited quota is 100 percent.
func (p *SysfsProbe) schedulerLimit(cpus uint64) (uint, bool) {
	data, err := os.ReadFile(filepath.Join(p.root, cgroupMax))
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return 0, false
	}
	if fields[0] == "max" {
		return 100, true
	}

	quota, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	period, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil || period == 0 {
		return 0, false
	}

	return uint(min(quota*100/(period*cpus), 100)), true
}

func readUint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
}
