package metrics

import (
	"path/filepath"
	"time"

	"codeberg.org/mutker/hotctl/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultDBPath       = "/var/lib/hotctl/metrics.db"
	defaultBatchSize    = 10
	defaultBatchTimeout = 30 * time.Second
	backupDirName       = "backups"
)

type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout time.Duration
	Enabled      bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath,
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Enabled:      false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate when recording is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 1 {
		return errFactory.WithData(ErrInvalidConfig, "batch_size")
	}

	return nil
}

// BackupDir is where databases are copied before a schema change.
func (c Config) BackupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}
