package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

const atomColumns = `uuid, kind, content, task_status, start_at, end_at,
	hlc_timestamp, preview_text, preview_image, is_deleted, created_at, updated_at`

// ListQuery selects and pages atoms. Zero values mean "no filter".
// Limit and Offset arrive pre-clamped from the service layer; a
// non-positive Limit reads unbounded.
type ListQuery struct {
	Kind           atom.Kind
	Tag            string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Get returns one atom by id, or nil when it does not exist. Tombstoned
// atoms are invisible unless includeDeleted is set.
func (s *Store) Get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*atom.Atom, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+atomColumns+`
		FROM atoms
		WHERE uuid = ? AND (? OR is_deleted = 0)
	`, id.String(), includeDeleted)

	a, err := scanAtom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTags(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns atoms matching the query, newest-touched first with a
// uuid tie-break for reproducible pages.
func (s *Store) List(ctx context.Context, q ListQuery) ([]*atom.Atom, error) {
	sqlText := "SELECT " + atomColumns + " FROM atoms WHERE 1 = 1"
	var args []any

	if !q.IncludeDeleted {
		sqlText += " AND is_deleted = 0"
	}
	if q.Kind != "" {
		sqlText += " AND kind = ?"
		args = append(args, string(q.Kind))
	}
	if q.Tag != "" {
		sqlText += ` AND EXISTS (
			SELECT 1 FROM atom_tags at
			INNER JOIN tags t ON t.id = at.tag_id
			WHERE at.atom_uuid = atoms.uuid AND t.name = ? COLLATE NOCASE
		)`
		args = append(args, q.Tag)
	}

	sqlText += " ORDER BY updated_at DESC, uuid ASC"

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	sqlText += " LIMIT ?"
	args = append(args, limit)
	if q.Offset > 0 {
		sqlText += " OFFSET ?"
		args = append(args, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fault.DB("list atoms", err)
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

// ListTags returns every known tag name sorted case-insensitively.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM tags ORDER BY name COLLATE NOCASE ASC")
	if err != nil {
		return nil, fault.DB("list tags", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fault.DB("scan tag", err)
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.DB("iterate tags", err)
	}
	return tags, nil
}

func (s *Store) loadTags(ctx context.Context, a *atom.Atom) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM atom_tags at
		INNER JOIN tags t ON t.id = at.tag_id
		WHERE at.atom_uuid = ?
		ORDER BY t.name COLLATE NOCASE ASC
	`, a.ID.String())
	if err != nil {
		return fault.DB("load atom tags", err)
	}
	defer rows.Close()

	a.Tags = nil
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fault.DB("scan atom tag", err)
		}
		a.Tags = append(a.Tags, name)
	}
	if err := rows.Err(); err != nil {
		return fault.DB("iterate atom tags", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanAtom decodes one atoms row, rejecting invalid persisted state
// instead of masking it.
func scanAtom(sc scanner) (*atom.Atom, error) {
	var (
		uuidText   string
		kindText   string
		content    string
		taskStatus sql.NullString
		startAt    sql.NullInt64
		endAt      sql.NullInt64
		hlc        sql.NullString
		prevText   sql.NullString
		prevImage  sql.NullString
		isDeleted  int
		createdAt  int64
		updatedAt  int64
	)
	err := sc.Scan(&uuidText, &kindText, &content, &taskStatus, &startAt, &endAt,
		&hlc, &prevText, &prevImage, &isDeleted, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fault.DB("scan atom row", err)
	}

	id, err := uuid.Parse(uuidText)
	if err != nil {
		return nil, fault.DB("parse persisted uuid", err)
	}
	kind, ok := atom.ParseKind(kindText)
	if !ok {
		return nil, fault.New(fault.CodeDB, "invalid persisted kind %q", kindText)
	}

	a := &atom.Atom{
		ID:        id,
		Kind:      kind,
		Content:   content,
		IsDeleted: isDeleted == 1,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if taskStatus.Valid {
		status, ok := atom.ParseTaskStatus(taskStatus.String)
		if !ok {
			return nil, fault.New(fault.CodeDB, "invalid persisted task status %q", taskStatus.String)
		}
		a.TaskStatus = &status
	}
	if startAt.Valid {
		v := startAt.Int64
		a.StartAt = &v
	}
	if endAt.Valid {
		v := endAt.Int64
		a.EndAt = &v
	}
	if hlc.Valid {
		v := hlc.String
		a.HLC = &v
	}
	if prevText.Valid {
		v := prevText.String
		a.PreviewText = &v
	}
	if prevImage.Valid {
		v := prevImage.String
		a.PreviewImage = &v
	}
	return a, nil
}

func collectAtoms(rows *sql.Rows) ([]*atom.Atom, error) {
	var atoms []*atom.Atom
	for rows.Next() {
		a, err := scanAtom(rows)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.DB("iterate atoms", err)
	}
	return atoms, nil
}
