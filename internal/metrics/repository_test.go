package metrics

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/hotctl/internal/aggregate"
	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"codeberg.org/mutker/hotctl/internal/thermal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		DBPath:       filepath.Join(t.TempDir(), "metrics.db"),
		BatchSize:    2,
		BatchTimeout: time.Hour,
		Enabled:      true,
	}
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))
	return n
}

func TestRepositoryBatches(t *testing.T) {
	cfg := testConfig(t)
	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)

	temp := 61.5
	snap := &Snapshot{Timestamp: time.Unix(1700000000, 0), Session: uuid.New(), Temperature: &temp, Readings: 3}

	require.NoError(t, repo.Record(snap))
	assert.Zero(t, countRows(t, cfg.DBPath), "first snapshot stays buffered")

	require.NoError(t, repo.Record(snap))
	assert.Equal(t, 2, countRows(t, cfg.DBPath))

	require.NoError(t, repo.Record(snap))
	require.NoError(t, repo.Close())
	assert.Equal(t, 3, countRows(t, cfg.DBPath), "close flushes the buffer")

	require.NoError(t, repo.Close())
	err = repo.Record(snap)
	assert.True(t, errors.HasCode(err, ErrClosed))
}

func TestRepositoryStoresNulls(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1
	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)

	session := uuid.New()
	speed := uint(87)
	require.NoError(t, repo.Record(&Snapshot{Timestamp: time.Unix(1700000000, 0), Session: session, SpeedLimit: &speed}))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var (
		gotSession string
		temp       sql.NullFloat64
		limit      sql.NullInt64
		pressure   sql.NullInt64
	)
	require.NoError(t, db.QueryRow(
		"SELECT session_id, temperature, speed_limit, thermal_pressure FROM snapshots",
	).Scan(&gotSession, &temp, &limit, &pressure))

	assert.Equal(t, session.String(), gotSession)
	assert.False(t, temp.Valid)
	assert.True(t, limit.Valid)
	assert.Equal(t, int64(87), limit.Int64)
	assert.False(t, pressure.Valid)
}

func seedDatabase(t *testing.T, path, stmts string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(stmts)
	require.NoError(t, err)
}

func assertCurrentSchema(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	exists, err := TableExists(db, snapshotsTable)
	require.NoError(t, err)
	assert.True(t, exists)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(session_id) FROM snapshots").Scan(&n))
	assert.Zero(t, n, "recreated snapshots table starts empty")
}

func TestRepositoryMigratesOldSchema(t *testing.T) {
	cfg := testConfig(t)
	seedDatabase(t, cfg.DBPath, `
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions VALUES (99, datetime('now'));
		CREATE TABLE snapshots (timestamp INTEGER PRIMARY KEY, temp REAL);
		INSERT INTO snapshots VALUES (1700000000, 55.5);`)

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	backups, err := os.ReadDir(cfg.BackupDir())
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, backups[0].Name(), "snapshots_v99_")

	archive, err := sql.Open("sqlite3", filepath.Join(cfg.BackupDir(), backups[0].Name()))
	require.NoError(t, err)
	defer archive.Close()
	var temp float64
	require.NoError(t, archive.QueryRow("SELECT temp FROM snapshots").Scan(&temp))
	assert.InDelta(t, 55.5, temp, 1e-9)

	assertCurrentSchema(t, cfg.DBPath)
}

func TestRepositoryArchivesUnversionedSnapshots(t *testing.T) {
	cfg := testConfig(t)
	seedDatabase(t, cfg.DBPath, `CREATE TABLE snapshots (timestamp INTEGER PRIMARY KEY);`)

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	backups, err := os.ReadDir(cfg.BackupDir())
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, backups[0].Name(), "snapshots_v0_")

	assertCurrentSchema(t, cfg.DBPath)
}

func TestRepositoryFreshDatabaseHasNoBackup(t *testing.T) {
	cfg := testConfig(t)

	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = os.Stat(cfg.BackupDir())
	assert.True(t, os.IsNotExist(err))
	assertCurrentSchema(t, cfg.DBPath)
}

func TestRepositoryBoundsPendingSnapshots(t *testing.T) {
	cfg := testConfig(t)
	repo, err := NewRepository(cfg, logger.Nop())
	require.NoError(t, err)

	r := repo.(*repository)
	require.NoError(t, r.db.Close())

	session := uuid.New()
	for i := range 15 {
		err := repo.Record(&Snapshot{Timestamp: time.Unix(int64(1700000000+i), 0), Session: session, Readings: i})
		if i > 0 {
			assert.True(t, errors.HasCode(err, ErrTransactionFailed))
		}
	}

	r.mu.Lock()
	pending := len(r.buffer)
	first, last := r.buffer[0].Readings, r.buffer[len(r.buffer)-1].Readings
	r.mu.Unlock()

	assert.Equal(t, cfg.BatchSize*pendingBatches, pending)
	assert.Equal(t, 5, first, "oldest snapshots are dropped")
	assert.Equal(t, 14, last)

	_ = repo.Close()
}

func TestServiceDisabled(t *testing.T) {
	rec, err := NewService(DefaultConfig(), logger.Nop())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.Session())
	assert.NoError(t, rec.Record(context.Background(), &Snapshot{}))
	assert.NoError(t, rec.Close())
}

func TestServiceRecord(t *testing.T) {
	cfg := testConfig(t)
	cfg.BatchSize = 1
	rec, err := NewService(cfg, logger.Nop())
	require.NoError(t, err)

	temp := 70.0
	level := thermal.Serious
	snap := FromAggregate(aggregate.Snapshot{
		Time:            time.Unix(1700000000, 0),
		Temperature:     &temp,
		ThermalPressure: &level,
		Readings:        5,
	}, uuid.Nil)
	require.NoError(t, rec.Record(context.Background(), snap))
	assert.Equal(t, rec.Session(), snap.Session)
	require.NotNil(t, snap.ThermalPressure)
	assert.Equal(t, 2, *snap.ThermalPressure)

	err = rec.Record(context.Background(), nil)
	assert.True(t, errors.HasCode(err, ErrInvalidSnapshot))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = rec.Record(ctx, snap)
	assert.True(t, errors.HasCode(err, ErrOperationTimeout))

	require.NoError(t, rec.Close())
	assert.Equal(t, 1, countRows(t, cfg.DBPath))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.True(t, errors.HasCode(Config{Enabled: true}.Validate(), ErrInvalidDBPath))
	assert.True(t, errors.HasCode(Config{Enabled: true, DBPath: "x"}.Validate(), ErrInvalidConfig))
	assert.Equal(t, filepath.Join("/var/lib/hotctl", "backups"), DefaultConfig().BackupDir())
}
