package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"lazynote/internal/fault"
)

// migration is one additive schema step. Steps must be idempotent when
// re-applied to an already-migrated store: existence-guarded DDL, or an
// apply func that checks before altering.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, name: "atoms", apply: execBatch(`
		CREATE TABLE IF NOT EXISTS atoms (
			uuid        TEXT PRIMARY KEY,
			kind        TEXT NOT NULL CHECK (kind IN ('note', 'task', 'event')),
			content     TEXT NOT NULL DEFAULT '',
			task_status TEXT CHECK (task_status IN ('todo', 'in_progress', 'done', 'cancelled')),
			start_at    INTEGER,
			end_at      INTEGER,
			hlc_timestamp TEXT,
			is_deleted  INTEGER NOT NULL DEFAULT 0 CHECK (is_deleted IN (0, 1)),
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_atoms_updated ON atoms(updated_at DESC);
		CREATE INDEX IF NOT EXISTS idx_atoms_kind ON atoms(kind) WHERE is_deleted = 0;
		CREATE INDEX IF NOT EXISTS idx_atoms_schedule ON atoms(start_at, end_at) WHERE is_deleted = 0;
	`)},
	{version: 2, name: "tags", apply: execBatch(`
		CREATE TABLE IF NOT EXISTS tags (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE COLLATE NOCASE
		);
		CREATE TABLE IF NOT EXISTS atom_tags (
			atom_uuid TEXT NOT NULL REFERENCES atoms(uuid) ON DELETE CASCADE,
			tag_id    INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (atom_uuid, tag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_atom_tags_tag ON atom_tags(tag_id);
	`)},
	{version: 3, name: "external_mappings", apply: execBatch(`
		CREATE TABLE IF NOT EXISTS external_mappings (
			atom_uuid   TEXT NOT NULL REFERENCES atoms(uuid) ON DELETE CASCADE,
			provider_id TEXT NOT NULL,
			external_id TEXT NOT NULL,
			synced_at   INTEGER,
			PRIMARY KEY (atom_uuid, provider_id)
		);
	`)},
	{version: 4, name: "fts", apply: func(tx *sql.Tx) error {
		if _, err := tx.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS atoms_fts USING fts5(content)"); err != nil {
			return err
		}
		// Backfill every currently non-deleted row that is not indexed
		// yet, so re-running the step never duplicates entries.
		_, err := tx.Exec(`
			INSERT INTO atoms_fts(rowid, content)
			SELECT rowid, content FROM atoms
			WHERE is_deleted = 0
			  AND rowid NOT IN (SELECT rowid FROM atoms_fts)
		`)
		return err
	}},
	{version: 5, name: "previews", apply: func(tx *sql.Tx) error {
		for _, column := range []string{"preview_text", "preview_image"} {
			ok, err := txHasColumn(tx, "atoms", column)
			if err != nil {
				return err
			}
			if ok {
				continue
			}
			if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE atoms ADD COLUMN %s TEXT", column)); err != nil {
				return err
			}
		}
		return nil
	}},
}

// latestVersion returns the newest migration version this binary knows.
func latestVersion() int {
	latest := 0
	for _, m := range migrations {
		if m.version > latest {
			latest = m.version
		}
	}
	return latest
}

// applyMigrations brings PRAGMA user_version up to the latest migration
// in one transaction, stamping the version after each step. A database
// already newer than this binary fails with SCHEMA_MISMATCH.
func applyMigrations(db *sql.DB) error {
	if err := validateRegistry(migrations); err != nil {
		return err
	}

	current, err := currentUserVersion(db)
	if err != nil {
		return err
	}
	latest := latestVersion()

	if current > latest {
		return fault.SchemaMismatch(
			"database schema version %d is newer than supported %d", current, latest)
	}
	if current == latest {
		return nil
	}

	slog.Info("migrating schema", "from", current, "to", latest)

	tx, err := db.Begin()
	if err != nil {
		return fault.DB("begin migration transaction", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(tx); err != nil {
			return fault.DB(fmt.Sprintf("apply migration %04d_%s", m.version, m.name), err)
		}
		// PRAGMA does not accept bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fault.DB(fmt.Sprintf("stamp user_version %d", m.version), err)
		}
		slog.Info("applied migration", "version", m.version, "name", m.name)
	}

	if err := tx.Commit(); err != nil {
		return fault.DB("commit migrations", err)
	}
	return nil
}

func currentUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fault.DB("read user_version", err)
	}
	return version, nil
}

// validateRegistry rejects a malformed registry before any SQL runs.
func validateRegistry(ms []migration) error {
	previous := 0
	for _, m := range ms {
		if m.version <= 0 {
			return fault.SchemaMismatch("migration versions must start from 1")
		}
		if m.version <= previous {
			return fault.SchemaMismatch("migration versions must be strictly increasing")
		}
		previous = m.version
	}
	return nil
}

func execBatch(batch string) func(tx *sql.Tx) error {
	return func(tx *sql.Tx) error {
		_, err := tx.Exec(batch)
		return err
	}
}

func txHasColumn(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
