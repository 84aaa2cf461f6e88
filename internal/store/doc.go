// Package store provides SQLite-backed durable storage for atoms.
//
// One database file holds everything: the canonical atoms table, the
// tag tables, a provider-mapping table reserved for future sync, the
// FTS5 search index, and a single monotonic schema version marker
// (PRAGMA user_version).
//
// # Write discipline
//
// Every mutating operation validates invariants before touching
// storage and runs inside one transaction. The search index is
// maintained by explicit hooks on that same transaction, never by
// database triggers, so the invariant "search never shows deleted
// rows" holds regardless of the storage engine's trigger support:
//
//   - insert of a non-deleted row: add to index
//   - soft delete of an indexed row: remove from index
//   - any update: remove the old entry, re-add only if still non-deleted
//
// # Read discipline
//
// Default read paths filter is_deleted = 0. Physical deletion never
// happens here. All list/search queries end with a uuid tie-break so
// identical queries against an unchanged store return identical order.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// The FTS5 index requires the sqlite_fts5 build tag on mattn/go-sqlite3
// (go build -tags sqlite_fts5 ./...). Building without the tag fails
// at compile time; see ftsguard.go.
package store
