package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"lazynote/internal/fault"
)

// pinClock replaces the row-timestamp clock with a counter that
// advances 1ms per call, restoring the real clock on cleanup.
func pinClock(t *testing.T, start int64) {
	t.Helper()
	orig := nowMillis
	current := start
	nowMillis = func() int64 {
		current++
		return current
	}
	t.Cleanup(func() { nowMillis = orig })
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"atoms", "tags", "atom_tags", "external_mappings", "atoms_fts"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_StampsLatestVersion(t *testing.T) {
	s := openTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != latestVersion() {
		t.Errorf("user_version = %d, want %d", version, latestVersion())
	}
}

func TestOpen_NewerSchemaRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	futureVersion := latestVersion() + 1
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", futureVersion)); err != nil {
		t.Fatalf("forge user_version: %v", err)
	}
	s.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("expected error opening newer-schema database")
	}
	if !fault.IsSchemaMismatch(err) {
		t.Errorf("expected SCHEMA_MISMATCH, got %v", err)
	}
}

func TestOpen_ForgedVersionWithoutSchemaRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Forge a current version marker onto an empty database so the
	// migration runner believes nothing is pending.
	raw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open raw database: %v", err)
	}
	if _, err := raw.Exec(fmt.Sprintf("PRAGMA user_version = %d", latestVersion())); err != nil {
		t.Fatalf("forge user_version: %v", err)
	}
	raw.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("expected error opening forged-version database")
	}
	if !fault.IsSchemaMismatch(err) {
		t.Errorf("expected SCHEMA_MISMATCH, got %v", err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestValidateRegistry(t *testing.T) {
	noop := func(tx *sql.Tx) error { return nil }

	tests := []struct {
		name    string
		ms      []migration
		wantErr bool
	}{
		{
			name: "increasing versions accepted",
			ms: []migration{
				{version: 1, apply: noop},
				{version: 2, apply: noop},
			},
		},
		{
			name: "duplicate version rejected",
			ms: []migration{
				{version: 1, apply: noop},
				{version: 1, apply: noop},
			},
			wantErr: true,
		},
		{
			name:    "zero version rejected",
			ms:      []migration{{version: 0, apply: noop}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegistry(tt.ms)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegistry_IsValid(t *testing.T) {
	if err := validateRegistry(migrations); err != nil {
		t.Fatalf("shipped migration registry is invalid: %v", err)
	}
}
