package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
)

type migrationStep struct {
	Phase string
	Path  string
	Table string
	Error string
}

func migrationFailure(step migrationStep, err error) error {
	step.Error = err.Error()
	return errors.New().WithData(ErrSchemaMigrationFailed, step)
}

// migrateSchema brings db to SchemaVersion. A database written by another
// schema version, or a snapshots table without any version, is archived to
// backupDir before the snapshots table is recreated empty.
func migrateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return errors.New().Wrap(ErrSchemaValidationFailed, err)
	}

	if version == SchemaVersion {
		log.Debug().Int("version", version).Msg("Schema version is current")
		return nil
	}

	if version == 0 {
		legacy, err := TableExists(db, snapshotsTable)
		if err != nil {
			return errors.New().Wrap(ErrSchemaValidationFailed, err)
		}
		if !legacy {
			return InitSchema(db, log)
		}
	}

	archived, err := countSnapshots(db)
	if err != nil {
		return migrationFailure(migrationStep{Phase: "count_snapshots", Table: snapshotsTable}, err)
	}

	path, err := archiveDatabase(db, backupDir, version)
	if err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("from_version", version).
		Int("to_version", SchemaVersion).
		Int64("snapshots", archived).
		Msg("Archived snapshots before schema change")

	if err := dropSchema(db, log); err != nil {
		return err
	}

	return InitSchema(db, log)
}

// archiveDatabase copies db to a timestamped file in dir and returns its path.
func archiveDatabase(db *sql.DB, dir string, version int) (string, error) {
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", migrationFailure(migrationStep{Phase: "create_backup_dir", Path: dir}, err)
	}

	name := fmt.Sprintf("%s_v%d_%s.db", snapshotsTable, version, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	// VACUUM INTO must run outside a transaction and takes a string literal.
	if _, err := db.Exec("VACUUM INTO '" + strings.ReplaceAll(path, "'", "''") + "'"); err != nil {
		return "", migrationFailure(migrationStep{Phase: "create_backup", Path: path}, err)
	}

	return path, nil
}

func countSnapshots(db *sql.DB) (int64, error) {
	exists, err := TableExists(db, snapshotsTable)
	if err != nil || !exists {
		return 0, err
	}

	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + snapshotsTable).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

// dropSchema removes every table createTablesSQL defines.
func dropSchema(db *sql.DB, log logger.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return migrationFailure(migrationStep{Phase: "begin"}, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Debug().Err(err).Msg("Failed to roll back schema drop")
		}
	}()

	for _, table := range schemaTables {
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return migrationFailure(migrationStep{Phase: "drop_table", Table: table}, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return migrationFailure(migrationStep{Phase: "commit"}, err)
	}

	return nil
}
