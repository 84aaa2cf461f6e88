package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

// SearchQuery drives a full-text search over atom content.
type SearchQuery struct {
	// Text is the user's query. Blank text returns no hits.
	Text string

	// Kind optionally restricts hits to one projection.
	Kind atom.Kind

	// Limit caps the number of hits. Non-positive returns no hits.
	Limit int

	// RawSyntax passes Text as an FTS5 expression verbatim. Off by
	// default so type-as-you-search input cannot hit syntax errors.
	RawSyntax bool
}

// SearchHit is one ranked search result.
type SearchHit struct {
	AtomID  uuid.UUID
	Kind    atom.Kind
	Snippet string
}

// Search runs an FTS5 query over non-deleted atoms. Results are ranked
// by bm25 and tie-broken by (updated_at DESC, uuid ASC), so identical
// queries against an unchanged store return identical order.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]SearchHit, error) {
	match, ok := buildMatchExpression(q)
	if !ok || q.Limit <= 0 {
		return nil, nil
	}

	sqlText := `
		SELECT atoms.uuid, atoms.kind,
		       snippet(atoms_fts, 0, '[', ']', ' ... ', 10)
		FROM atoms_fts
		JOIN atoms ON atoms.rowid = atoms_fts.rowid
		WHERE atoms_fts MATCH ?
		  AND atoms.is_deleted = 0`
	args := []any{match}

	if q.Kind != "" {
		sqlText += " AND atoms.kind = ?"
		args = append(args, string(q.Kind))
	}

	sqlText += " ORDER BY bm25(atoms_fts), atoms.updated_at DESC, atoms.uuid ASC LIMIT ?"
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		if isMatchSyntaxError(err) {
			return nil, fault.Validation("invalid full-text query %q: %v", match, err)
		}
		return nil, fault.DB("search atoms", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var (
			uuidText string
			kindText string
			snippet  string
		)
		if err := rows.Scan(&uuidText, &kindText, &snippet); err != nil {
			return nil, fault.DB("scan search hit", err)
		}
		id, err := uuid.Parse(uuidText)
		if err != nil {
			return nil, fault.DB("parse persisted uuid", err)
		}
		kind, ok := atom.ParseKind(kindText)
		if !ok {
			return nil, fault.New(fault.CodeDB, "invalid persisted kind %q", kindText)
		}
		hits = append(hits, SearchHit{AtomID: id, Kind: kind, Snippet: snippet})
	}
	if err := rows.Err(); err != nil {
		return nil, fault.DB("iterate search hits", err)
	}
	return hits, nil
}

// RebuildSearchIndex drops and re-backfills the index from all
// currently non-deleted rows. Maintenance path for an index that
// drifted (e.g. a database written by an older binary).
func (s *Store) RebuildSearchIndex(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.DB("begin index rebuild", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM atoms_fts"); err != nil {
		return fault.DB("clear search index", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO atoms_fts (rowid, content)
		SELECT rowid, content FROM atoms WHERE is_deleted = 0
	`); err != nil {
		return fault.DB("backfill search index", err)
	}

	if err := tx.Commit(); err != nil {
		return fault.DB("commit index rebuild", err)
	}
	return nil
}

// buildMatchExpression turns user text into a safe FTS5 expression:
// each whitespace-separated term is quoted (embedded quotes doubled)
// and the terms are AND-joined. Returns false for blank input.
func buildMatchExpression(q SearchQuery) (string, bool) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return "", false
	}
	if q.RawSyntax {
		return text, true
	}

	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		escaped := strings.ReplaceAll(field, `"`, `""`)
		terms = append(terms, `"`+escaped+`"`)
	}
	return strings.Join(terms, " AND "), true
}

func isMatchSyntaxError(err error) bool {
	msg := strings.ToLower(err.Error())
	return (strings.Contains(msg, "fts5") && strings.Contains(msg, "syntax")) ||
		strings.Contains(msg, "malformed match expression") ||
		strings.Contains(msg, "unterminated")
}
