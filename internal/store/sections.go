package store

import (
	"context"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
	"lazynote/internal/section"
)

// ListSection returns the atoms for one section view. The SQL
// predicates come from the section package so the store and the pure
// classifier can never drift apart silently; the section tests
// cross-check both against the same fixtures.
func (s *Store) ListSection(ctx context.Context, bucket section.Bucket, w section.Window, limit, offset int) ([]*atom.Atom, error) {
	predicate, err := section.Predicate(bucket)
	if err != nil {
		return nil, fault.Validation("unknown section bucket %q", bucket)
	}

	sqlText := "SELECT " + atomColumns + " FROM atoms WHERE " +
		section.VisibleSQL + " AND " + predicate +
		" ORDER BY " + section.OrderSQL +
		" LIMIT ?"

	args := section.Args(bucket, w)
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit)
	if offset > 0 {
		sqlText += " OFFSET ?"
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fault.DB("list section", err)
	}
	defer rows.Close()

	atoms, err := collectAtoms(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range atoms {
		if err := s.loadTags(ctx, a); err != nil {
			return nil, err
		}
	}
	return atoms, nil
}
