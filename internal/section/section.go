// Package section buckets atoms into Inbox/Today/Upcoming views.
//
// Classification reads only (start_at, end_at, task_status, is_deleted)
// plus the caller-supplied day window. It never looks at kind: a note,
// task, and event with identical time fields classify identically.
//
// The package provides the rules twice in lockstep: Classify for
// in-memory decisions and Predicate/Args for SQL-level section queries.
// Both must express the same table of rules; the classification tests
// cross-check them against a live store.
package section

import (
	"fmt"

	"lazynote/internal/atom"
)

// Bucket identifies a section view.
type Bucket string

const (
	Inbox    Bucket = "inbox"
	Today    Bucket = "today"
	Upcoming Bucket = "upcoming"
)

// ParseBucket maps a CLI/API string to a Bucket.
func ParseBucket(s string) (Bucket, bool) {
	switch Bucket(s) {
	case Inbox, Today, Upcoming:
		return Bucket(s), true
	}
	return "", false
}

// Window is the caller's day boundary in epoch milliseconds.
// BOD is start of day, EOD is end of day, both device-local.
type Window struct {
	BOD int64
	EOD int64
}

// Classify returns the bucket for the given atom state, or false when
// the atom belongs to no section (tombstoned, closed status, or a fully
// elapsed range).
func Classify(a *atom.Atom, w Window) (Bucket, bool) {
	if a.IsDeleted {
		return "", false
	}
	if a.TaskStatus != nil && a.TaskStatus.Closed() {
		return "", false
	}

	switch {
	case a.StartAt == nil && a.EndAt == nil:
		return Inbox, true

	case a.StartAt == nil:
		if *a.EndAt <= w.EOD {
			return Today, true
		}
		return Upcoming, true

	case a.EndAt == nil:
		if *a.StartAt <= w.EOD {
			return Today, true
		}
		return Upcoming, true

	default:
		// Range overlaps the window when it starts before the window
		// ends and ends after the window starts.
		if *a.StartAt <= w.EOD && *a.EndAt >= w.BOD {
			return Today, true
		}
		if *a.StartAt > w.EOD {
			return Upcoming, true
		}
		return "", false
	}
}

// VisibleSQL filters rows eligible for any section bucket.
const VisibleSQL = "is_deleted = 0 AND (task_status IS NULL OR task_status NOT IN ('done', 'cancelled'))"

// OrderSQL sorts a bucket: earliest-scheduled first, most-recently
// touched as tie-break, uuid last so identical queries stay reproducible.
const OrderSQL = "COALESCE(start_at, end_at) ASC, updated_at DESC, uuid ASC"

// Predicate returns the SQL fragment selecting rows for the bucket.
// Placeholders bind to the values returned by Args for the same bucket.
func Predicate(b Bucket) (string, error) {
	switch b {
	case Inbox:
		return "start_at IS NULL AND end_at IS NULL", nil
	case Today:
		return `(
			(start_at IS NULL AND end_at IS NOT NULL AND end_at <= ?)
			OR (start_at IS NOT NULL AND end_at IS NULL AND start_at <= ?)
			OR (start_at IS NOT NULL AND end_at IS NOT NULL AND start_at <= ? AND end_at >= ?)
		)`, nil
	case Upcoming:
		return `(
			(start_at IS NULL AND end_at IS NOT NULL AND end_at > ?)
			OR (start_at IS NOT NULL AND end_at IS NULL AND start_at > ?)
			OR (start_at IS NOT NULL AND end_at IS NOT NULL AND start_at > ?)
		)`, nil
	default:
		return "", fmt.Errorf("unknown bucket %q", b)
	}
}

// Args returns the bind values matching Predicate placeholder order.
func Args(b Bucket, w Window) []any {
	switch b {
	case Today:
		return []any{w.EOD, w.EOD, w.EOD, w.BOD}
	case Upcoming:
		return []any{w.EOD, w.EOD, w.EOD}
	default:
		return nil
	}
}
