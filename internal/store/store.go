package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lazynote/internal/fault"
)

// Store owns the single local database file for all atom data.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at the given path, applies
// pragmas and all pending migrations, and verifies the resulting
// schema before returning. A database whose version marker is newer
// than this binary, or whose marker does not match its actual tables,
// fails with SCHEMA_MISMATCH rather than risking writes under an
// unexpected schema.
//
// Safe to call repeatedly on the same path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fault.DB("open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fault.DB("connect to database", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY on the write path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := verifySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fault.DB(fmt.Sprintf("execute %q", pragma), err)
		}
	}

	return nil
}

// requiredSchema lists the tables and columns writes depend on. The
// open-time guard checks these directly so a forged or bypassed
// user_version marker cannot admit a store with missing schema.
var requiredSchema = map[string][]string{
	"atoms": {
		"uuid", "kind", "content", "task_status", "start_at", "end_at",
		"preview_text", "preview_image", "is_deleted", "created_at", "updated_at",
	},
	"tags":              {"id", "name"},
	"atom_tags":         {"atom_uuid", "tag_id"},
	"external_mappings": {"atom_uuid", "provider_id", "external_id"},
}

func verifySchema(db *sql.DB) error {
	for table, columns := range requiredSchema {
		ok, err := tableExists(db, table)
		if err != nil {
			return err
		}
		if !ok {
			return fault.SchemaMismatch("required table %q is missing", table)
		}
		for _, column := range columns {
			ok, err := tableHasColumn(db, table, column)
			if err != nil {
				return err
			}
			if !ok {
				return fault.SchemaMismatch("required column %s.%s is missing", table, column)
			}
		}
	}

	// The FTS index is a virtual table; PRAGMA table_info does not
	// describe it, so presence alone is the check.
	ok, err := tableExists(db, "atoms_fts")
	if err != nil {
		return err
	}
	if !ok {
		return fault.SchemaMismatch("required table %q is missing", "atoms_fts")
	}

	return nil
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var exists int
	err := db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)",
		table,
	).Scan(&exists)
	if err != nil {
		return false, fault.DB("check table existence", err)
	}
	return exists == 1, nil
}

func tableHasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fault.DB("read table info", err)
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
			return false, fault.DB("scan table info", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// nowMillis is the single clock for row timestamps. Variable so tests
// can pin time when asserting updated_at behavior.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
