//go:build !sqlite_fts5

package store

// The schema includes an FTS5 virtual table, and mattn/go-sqlite3
// compiles the FTS5 extension only under the sqlite_fts5 build tag.
// Without it every Open fails at migration time with "no such module:
// fts5". Failing the build here turns that runtime surprise into a
// compile error naming the fix:
//
//	go build -tags sqlite_fts5 ./...
//	go test -tags sqlite_fts5 ./...
var _ = build_with_tags_sqlite_fts5__see_internal_store_ftsguard_go
