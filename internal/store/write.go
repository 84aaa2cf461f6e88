package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
)

// Insert persists a new atom, its tag links, and its search index entry
// in one transaction. The atom is validated first; nothing is written
// on a validation failure.
func (s *Store) Insert(ctx context.Context, a *atom.Atom) error {
	if err := a.Validate(); err != nil {
		return err
	}

	now := nowMillis()
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	if a.UpdatedAt == 0 {
		a.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.DB("begin insert", err)
	}
	defer tx.Rollback()

	var taskStatus *string
	if a.TaskStatus != nil {
		v := string(*a.TaskStatus)
		taskStatus = &v
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO atoms
		(uuid, kind, content, task_status, start_at, end_at, hlc_timestamp,
		 preview_text, preview_image, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID.String(), string(a.Kind), a.Content, taskStatus,
		a.StartAt, a.EndAt, a.HLC,
		a.PreviewText, a.PreviewImage,
		boolToInt(a.IsDeleted), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fault.DB("insert atom", err)
	}

	if len(a.Tags) > 0 {
		if err := replaceTagsTx(ctx, tx, a.ID.String(), a.Tags); err != nil {
			return err
		}
	}

	if !a.IsDeleted {
		if err := indexAddTx(ctx, tx, a.ID.String()); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fault.DB("commit insert", err)
	}
	return nil
}

// UpdateContent replaces an atom's content wholesale together with its
// derived preview fields, bumps updated_at, and refreshes the search
// index entry in the same transaction. Fails with NOT_FOUND when the
// atom does not exist or is tombstoned.
func (s *Store) UpdateContent(ctx context.Context, id uuid.UUID, content string, previewText, previewImage *string) (int64, error) {
	now := nowMillis()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fault.DB("begin update", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE atoms
		SET content = ?, preview_text = ?, preview_image = ?, updated_at = ?
		WHERE uuid = ? AND is_deleted = 0
	`, content, previewText, previewImage, now, id.String())
	if err != nil {
		return 0, fault.DB("update atom content", err)
	}
	if changed, err := rowsChanged(res); err != nil {
		return 0, err
	} else if changed == 0 {
		return 0, fault.NotFound(id.String())
	}

	// Unconditional remove-then-add keeps the index correct for every
	// state transition with one rule.
	if err := indexRemoveTx(ctx, tx, id.String()); err != nil {
		return 0, err
	}
	if err := indexAddTx(ctx, tx, id.String()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fault.DB("commit update", err)
	}
	return now, nil
}

// SetTaskStatus sets or clears the task status of a live atom.
// Content is untouched, so the search index needs no refresh.
func (s *Store) SetTaskStatus(ctx context.Context, id uuid.UUID, status *atom.TaskStatus) error {
	var value *string
	if status != nil {
		if _, ok := atom.ParseTaskStatus(string(*status)); !ok {
			return fault.Validation("invalid task status %q", *status)
		}
		v := string(*status)
		value = &v
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE atoms SET task_status = ?, updated_at = ?
		WHERE uuid = ? AND is_deleted = 0
	`, value, nowMillis(), id.String())
	if err != nil {
		return fault.DB("set task status", err)
	}
	if changed, err := rowsChanged(res); err != nil {
		return err
	} else if changed == 0 {
		return fault.NotFound(id.String())
	}
	return nil
}

// SetSchedule replaces the time-matrix fields of a live atom. A nil
// value clears its axis. A reversed range fails VALIDATION before any
// write.
func (s *Store) SetSchedule(ctx context.Context, id uuid.UUID, startAt, endAt *int64) error {
	if startAt != nil && endAt != nil && *endAt < *startAt {
		return fault.Validation("end_at (%d) must be >= start_at (%d)", *endAt, *startAt)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE atoms SET start_at = ?, end_at = ?, updated_at = ?
		WHERE uuid = ? AND is_deleted = 0
	`, startAt, endAt, nowMillis(), id.String())
	if err != nil {
		return fault.DB("set schedule", err)
	}
	if changed, err := rowsChanged(res); err != nil {
		return err
	} else if changed == 0 {
		return fault.NotFound(id.String())
	}
	return nil
}

// SoftDelete tombstones an atom and retracts it from the search index
// in the same transaction. Idempotent: deleting an already-deleted atom
// succeeds without bumping updated_at. An unknown id fails NOT_FOUND.
func (s *Store) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.DB("begin soft delete", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE atoms SET is_deleted = 1, updated_at = ?
		WHERE uuid = ? AND is_deleted = 0
	`, nowMillis(), id.String())
	if err != nil {
		return fault.DB("soft delete atom", err)
	}

	changed, err := rowsChanged(res)
	if err != nil {
		return err
	}
	if changed == 0 {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM atoms WHERE uuid = ?)", id.String(),
		).Scan(&exists)
		if err != nil {
			return fault.DB("check atom existence", err)
		}
		if exists == 0 {
			return fault.NotFound(id.String())
		}
		// Already tombstoned: success with no timestamp bump.
		return tx.Commit()
	}

	if err := indexRemoveTx(ctx, tx, id.String()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fault.DB("commit soft delete", err)
	}
	return nil
}

// ReplaceTags swaps the atom's entire tag set in one transaction:
// delete all existing links, insert the new set, bump updated_at.
// A failure rolls everything back; partial replacement never persists.
// Tags must already be normalized by the caller.
func (s *Store) ReplaceTags(ctx context.Context, id uuid.UUID, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault.DB("begin tag replace", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM atoms WHERE uuid = ? AND is_deleted = 0)", id.String(),
	).Scan(&exists)
	if err != nil {
		return fault.DB("check atom existence", err)
	}
	if exists == 0 {
		return fault.NotFound(id.String())
	}

	if err := replaceTagsTx(ctx, tx, id.String(), tags); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE atoms SET updated_at = ? WHERE uuid = ?", nowMillis(), id.String())
	if err != nil {
		return fault.DB("bump updated_at", err)
	}

	if err := tx.Commit(); err != nil {
		return fault.DB("commit tag replace", err)
	}
	return nil
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, atomUUID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM atom_tags WHERE atom_uuid = ?", atomUUID); err != nil {
		return fault.DB("clear tag links", err)
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
			return fault.DB("insert tag", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO atom_tags (atom_uuid, tag_id)
			SELECT ?, id FROM tags WHERE name = ? COLLATE NOCASE
		`, atomUUID, tag); err != nil {
			return fault.DB("link tag", err)
		}
	}
	return nil
}

// indexAddTx indexes the atom's current content under its table rowid.
func indexAddTx(ctx context.Context, tx *sql.Tx, atomUUID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO atoms_fts (rowid, content)
		SELECT rowid, content FROM atoms WHERE uuid = ?
	`, atomUUID)
	if err != nil {
		return fault.DB("add search index entry", err)
	}
	return nil
}

// indexRemoveTx drops the atom's search index entry if present.
func indexRemoveTx(ctx context.Context, tx *sql.Tx, atomUUID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM atoms_fts
		WHERE rowid = (SELECT rowid FROM atoms WHERE uuid = ?)
	`, atomUUID)
	if err != nil {
		return fault.DB("remove search index entry", err)
	}
	return nil
}

func rowsChanged(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fault.DB("read rows affected", err)
	}
	return n, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
