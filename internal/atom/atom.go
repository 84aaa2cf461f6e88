package atom

import (
	"github.com/google/uuid"

	"lazynote/internal/fault"
)

// Kind labels the projection a UI renders for an atom.
// It is a rendering hint only: lifecycle, classification, and search
// treat all kinds identically.
type Kind string

const (
	KindNote  Kind = "note"
	KindTask  Kind = "task"
	KindEvent Kind = "event"
)

// ParseKind maps a storage/CLI string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindNote, KindTask, KindEvent:
		return Kind(s), true
	}
	return "", false
}

// TaskStatus is the task lifecycle state. It may be set on any kind.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// ParseTaskStatus maps a storage/CLI string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return TaskStatus(s), true
	}
	return "", false
}

// Closed reports whether the status removes an atom from section views.
func (s TaskStatus) Closed() bool {
	return s == StatusDone || s == StatusCancelled
}

// Atom is the canonical storage shape shared by note/task/event
// projections. Optional fields are pointers so one row shape supports
// every projection without copying data between per-kind tables.
type Atom struct {
	// ID is the stable identifier. Never nil, never reused.
	ID uuid.UUID

	// Kind selects the rendering projection.
	Kind Kind

	// Content is the authoritative markdown body.
	Content string

	// TaskStatus applies to any kind; nil means statusless.
	TaskStatus *TaskStatus

	// StartAt / EndAt are epoch milliseconds. They form an axis
	// independent of Kind and drive section classification.
	StartAt *int64
	EndAt   *int64

	// PreviewText / PreviewImage are derived from Content on every
	// content write. Never authoritative, never hand-edited.
	PreviewText  *string
	PreviewImage *string

	// HLC is reserved for a future merge strategy. Unused by the core.
	HLC *string

	// IsDeleted is the tombstone. It alone decides visibility.
	IsDeleted bool

	// CreatedAt / UpdatedAt are epoch milliseconds. UpdatedAt is bumped
	// on every mutating write.
	CreatedAt int64
	UpdatedAt int64

	// Tags are lowercase-normalized. Replaced only as a whole set.
	Tags []string
}

// New creates an atom with a freshly generated id and derived previews.
func New(kind Kind, content string) *Atom {
	a := &Atom{
		ID:      uuid.New(),
		Kind:    kind,
		Content: content,
	}
	a.RefreshPreview()
	return a
}

// NewTask creates a task atom with the default todo status.
func NewTask(content string) *Atom {
	a := New(KindTask, content)
	status := StatusTodo
	a.TaskStatus = &status
	return a
}

// NewEvent creates an event atom with point (end nil) or range semantics.
func NewEvent(content string, startAt int64, endAt *int64) *Atom {
	a := New(KindEvent, content)
	a.StartAt = &startAt
	a.EndAt = endAt
	return a
}

// RefreshPreview recomputes the derived preview fields from Content.
// Must be called by every path that replaces Content.
func (a *Atom) RefreshPreview() {
	text, image := DerivePreview(a.Content)
	a.PreviewText = text
	a.PreviewImage = image
}

// SoftDelete marks the atom as tombstoned.
func (a *Atom) SoftDelete() {
	a.IsDeleted = true
}

// Restore clears the tombstone.
func (a *Atom) Restore() {
	a.IsDeleted = false
}

// Active reports whether the atom is visible on default read paths.
func (a *Atom) Active() bool {
	return !a.IsDeleted
}

// Validate checks core invariants. Every write path calls this before
// touching storage; a failing atom must leave the store unchanged.
func (a *Atom) Validate() error {
	if a.ID == uuid.Nil {
		return fault.Validation("atom id must not be nil")
	}
	if _, ok := ParseKind(string(a.Kind)); !ok {
		return fault.Validation("invalid atom kind %q", a.Kind)
	}
	if a.TaskStatus != nil {
		if _, ok := ParseTaskStatus(string(*a.TaskStatus)); !ok {
			return fault.Validation("invalid task status %q", *a.TaskStatus)
		}
	}
	if a.StartAt != nil && a.EndAt != nil && *a.EndAt < *a.StartAt {
		return fault.Validation("end_at (%d) must be >= start_at (%d)", *a.EndAt, *a.StartAt)
	}
	return nil
}
