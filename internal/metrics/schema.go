package metrics

import (
	"database/sql"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
)

const (
	SchemaVersion = 1

	snapshotsTable = "snapshots"
	versionsTable  = "schema_versions"

	// SQL statements derived from schema
	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS snapshots (
	       id               INTEGER PRIMARY KEY AUTOINCREMENT,
	       session_id       TEXT NOT NULL CHECK (length(session_id) = 36),
	       timestamp        INTEGER NOT NULL CHECK (typeof(timestamp) = 'integer'),
	       temperature      REAL CHECK (temperature IS NULL OR typeof(temperature) = 'real'),
	       fan_speed        REAL CHECK (fan_speed IS NULL OR typeof(fan_speed) = 'real'),
	       scheduler_limit  INTEGER CHECK (scheduler_limit IS NULL OR typeof(scheduler_limit) = 'integer'),
	       available_cpus   INTEGER CHECK (available_cpus IS NULL OR typeof(available_cpus) = 'integer'),
	       speed_limit      INTEGER CHECK (speed_limit IS NULL OR typeof(speed_limit) = 'integer'),
	       thermal_pressure INTEGER CHECK (thermal_pressure IS NULL OR thermal_pressure BETWEEN 0 AND 3),
	       readings         INTEGER NOT NULL CHECK (readings >= 0)
	   );
	   CREATE INDEX IF NOT EXISTS snapshots_session ON snapshots (session_id, timestamp);`

	insertSnapshotSQL = `
    INSERT INTO snapshots (
        session_id, timestamp,
        temperature, fan_speed,
        scheduler_limit, available_cpus, speed_limit,
        thermal_pressure, readings
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// schemaTables lists the tables createTablesSQL defines.
var schemaTables = []string{snapshotsTable, versionsTable}

// InitSchema creates a new database schema with the current version
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	log.Debug().Msg("Creating database...")

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	// Track transaction state
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				// Only log if it's not the "already committed" error
				if !errors.Is(err, sql.ErrTxDone) {
					log.Debug().Err(err).Msg("Failed to rollback transaction")
				}
			}
		}
	}()

	// Execute schema creation
	log.Debug().Str("sql", createTablesSQL).Msg("Executing SQL statement")
	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			SQL   string
		}{
			Error: err.Error(),
			SQL:   createTablesSQL,
		})
	}

	log.Debug().Msg("Recording schema version...")
	// Record schema version
	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Error string
			Phase string
		}{
			Error: err.Error(),
			Phase: "record_version",
		})
	}

	log.Debug().Msg("Committing transaction...")
	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	log.Info().
		Int("version", SchemaVersion).
		Msg("Schema initialized successfully")

	return nil
}

// GetSchemaVersion returns the current schema version
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := TableExists(db, versionsTable)
	if err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(db *sql.DB, tableName string) (bool, error) {
	errFactory := errors.New()
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errFactory.WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}

// GetInsertSnapshotSQL returns the SQL to insert a snapshot
func GetInsertSnapshotSQL() string {
	return insertSnapshotSQL
}
