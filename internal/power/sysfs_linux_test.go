//go:build linux

package power

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/hotctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestSysfsProbe(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, cpufreqDir+"/scaling_max_freq", "2400000\n")
	writeFile(t, root, cpufreqDir+"/cpuinfo_max_freq", "3000000\n")
	writeFile(t, root, cgroupMax, "200000 100000\n")

	p := NewSysfsProbe(root)
	p.online = func() (int64, error) { return 4, nil }

	limits, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(4), *limits.AvailableCPUs)
	assert.Equal(t, uint(80), *limits.SpeedLimit)
	assert.Equal(t, uint(50), *limits.SchedulerLimit)
}

func TestSysfsProbeUnlimitedQuota(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, cgroupMax, "max 100000\n")

	p := NewSysfsProbe(root)
	p.online = func() (int64, error) { return 8, nil }

	limits, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(100), *limits.SchedulerLimit)
	assert.Nil(t, limits.SpeedLimit)
}

func TestSysfsProbeNothingAvailable(t *testing.T) {
	p := NewSysfsProbe(t.TempDir())
	p.online = func() (int64, error) { return 0, stderrors.New("unsupported") }

	limits, err := p.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrReadFailed))
	assert.True(t, limits.Empty())
}

func TestSysfsProbeUsesSysconf(t *testing.T) {
	limits, _ := NewSysfsProbe(t.TempDir()).Probe(context.Background())
	require.NotNil(t, limits.AvailableCPUs)
	assert.Positive(t, *limits.AvailableCPUs)
}
