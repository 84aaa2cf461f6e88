// Package service is the use-case layer over the entity store. It is
// the only writer of the store and the search index: callers (CLI, UI
// bridge, save coordinator) go through it, never around it.
//
// The service enforces what the store alone cannot: derived previews
// recomputed on every content write, tag normalization before the
// atomic full-set replace, and silent clamping of pagination. It never
// retries: retry policy belongs to the save coordinator, which knows
// about draft-loss risk.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"lazynote/internal/atom"
	"lazynote/internal/fault"
	"lazynote/internal/section"
	"lazynote/internal/store"
)

// Limits are the pagination knobs. Values outside the range are
// clamped silently rather than erroring.
type Limits struct {
	DefaultList    int
	MaxList        int
	DefaultSection int
	MaxSection     int
	DefaultSearch  int
	MaxSearch      int
}

// DefaultLimits returns the stock pagination contract.
func DefaultLimits() Limits {
	return Limits{
		DefaultList:    10,
		MaxList:        50,
		DefaultSection: 50,
		MaxSection:     50,
		DefaultSearch:  20,
		MaxSearch:      50,
	}
}

// Service wires use-cases to the store.
type Service struct {
	store  *store.Store
	log    *slog.Logger
	limits Limits
}

// New creates a service. A nil logger falls back to slog.Default.
func New(st *store.Store, log *slog.Logger, limits Limits) *Service {
	if log == nil {
		log = slog.Default()
	}
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	return &Service{store: st, log: log, limits: limits}
}

// Create makes a new atom of the given kind. Tasks default to todo
// status; use ScheduleEvent for events that need time fields at birth.
func (s *Service) Create(ctx context.Context, kind atom.Kind, content string) (*atom.Atom, error) {
	var a *atom.Atom
	switch kind {
	case atom.KindTask:
		a = atom.NewTask(content)
	case atom.KindNote, atom.KindEvent:
		a = atom.New(kind, content)
	default:
		return nil, fault.Validation("invalid atom kind %q", kind)
	}

	if err := s.store.Insert(ctx, a); err != nil {
		s.log.Error("atom create failed", "kind", kind, "err", err)
		return nil, err
	}
	s.log.Info("atom created", "id", a.ID, "kind", kind)
	return a, nil
}

// ScheduleEvent creates an event atom with point (endAt nil) or range
// semantics.
func (s *Service) ScheduleEvent(ctx context.Context, content string, startAt int64, endAt *int64) (*atom.Atom, error) {
	a := atom.NewEvent(content, startAt, endAt)
	if err := s.store.Insert(ctx, a); err != nil {
		s.log.Error("event schedule failed", "err", err)
		return nil, err
	}
	s.log.Info("event scheduled", "id", a.ID, "start_at", startAt)
	return a, nil
}

// Update replaces an atom's content wholesale and recomputes its
// derived previews. Returns the stored atom after the write.
func (s *Service) Update(ctx context.Context, id uuid.UUID, content string) (*atom.Atom, error) {
	previewText, previewImage := atom.DerivePreview(content)

	updatedAt, err := s.store.UpdateContent(ctx, id, content, previewText, previewImage)
	if err != nil {
		s.log.Error("atom update failed", "id", id, "err", err)
		return nil, err
	}
	s.log.Info("atom updated", "id", id, "updated_at", updatedAt)

	return s.readBack(ctx, id)
}

// Save persists draft content for the save coordinator, returning the
// new updated_at. Same write path as Update without the read-back.
func (s *Service) Save(ctx context.Context, id uuid.UUID, content string) (int64, error) {
	previewText, previewImage := atom.DerivePreview(content)
	return s.store.UpdateContent(ctx, id, content, previewText, previewImage)
}

// Get returns one atom, or nil when absent. Tombstones stay invisible
// unless includeDeleted is set.
func (s *Service) Get(ctx context.Context, id uuid.UUID, includeDeleted bool) (*atom.Atom, error) {
	return s.store.Get(ctx, id, includeDeleted)
}

// ListRequest selects and pages atoms.
type ListRequest struct {
	Kind           atom.Kind // "" = all kinds
	Tag            string    // "" = no tag filter
	IncludeDeleted bool
	Limit          int // <= 0 = default; above max clamps silently
	Offset         int
}

// List returns matching atoms plus the limit actually applied.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*atom.Atom, int, error) {
	tag := ""
	if req.Tag != "" {
		tag = atom.NormalizeTag(req.Tag)
		if tag == "" {
			return nil, 0, fault.Validation("invalid tag filter %q", req.Tag)
		}
	}
	if req.Kind != "" {
		if _, ok := atom.ParseKind(string(req.Kind)); !ok {
			return nil, 0, fault.Validation("invalid atom kind %q", req.Kind)
		}
	}

	limit := clamp(req.Limit, s.limits.DefaultList, s.limits.MaxList)
	atoms, err := s.store.List(ctx, store.ListQuery{
		Kind:           req.Kind,
		Tag:            tag,
		IncludeDeleted: req.IncludeDeleted,
		Limit:          limit,
		Offset:         max(req.Offset, 0),
	})
	if err != nil {
		return nil, 0, err
	}
	return atoms, limit, nil
}

// SoftDelete tombstones an atom. Idempotent for already-deleted atoms.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		s.log.Error("atom delete failed", "id", id, "err", err)
		return err
	}
	s.log.Info("atom deleted", "id", id)
	return nil
}

// SetTags atomically replaces an atom's whole tag set. Raw blank tags
// are rejected before normalization; survivors are lowercased and
// deduplicated.
func (s *Service) SetTags(ctx context.Context, id uuid.UUID, tags []string) (*atom.Atom, error) {
	for _, tag := range tags {
		if atom.NormalizeTag(tag) == "" {
			return nil, fault.Validation("invalid tag %q", tag)
		}
	}

	normalized := atom.NormalizeTags(tags)
	if err := s.store.ReplaceTags(ctx, id, normalized); err != nil {
		s.log.Error("tag replace failed", "id", id, "err", err)
		return nil, err
	}
	s.log.Info("tags replaced", "id", id, "count", len(normalized))

	return s.readBack(ctx, id)
}

// ListTags returns all known tag names sorted case-insensitively.
func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	return s.store.ListTags(ctx)
}

// SetTaskStatus sets or clears the status of a live atom.
func (s *Service) SetTaskStatus(ctx context.Context, id uuid.UUID, status *atom.TaskStatus) (*atom.Atom, error) {
	if err := s.store.SetTaskStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.readBack(ctx, id)
}

// SetSchedule replaces the time-matrix fields of a live atom.
func (s *Service) SetSchedule(ctx context.Context, id uuid.UUID, startAt, endAt *int64) (*atom.Atom, error) {
	if err := s.store.SetSchedule(ctx, id, startAt, endAt); err != nil {
		return nil, err
	}
	return s.readBack(ctx, id)
}

// Search runs a ranked full-text query over non-deleted atoms.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]store.SearchHit, error) {
	return s.store.Search(ctx, store.SearchQuery{
		Text:  text,
		Limit: clamp(limit, s.limits.DefaultSearch, s.limits.MaxSearch),
	})
}

// Section returns one section view for the caller's day window.
func (s *Service) Section(ctx context.Context, bucket section.Bucket, w section.Window, limit, offset int) ([]*atom.Atom, error) {
	if _, ok := section.ParseBucket(string(bucket)); !ok {
		return nil, fault.Validation("unknown section bucket %q", bucket)
	}
	return s.store.ListSection(ctx, bucket, w,
		clamp(limit, s.limits.DefaultSection, s.limits.MaxSection), max(offset, 0))
}

// readBack fetches the atom after a successful write. A miss here is
// an internal consistency failure, not a caller error.
func (s *Service) readBack(ctx context.Context, id uuid.UUID) (*atom.Atom, error) {
	a, err := s.store.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fault.New(fault.CodeDB, "atom missing in read-back")
	}
	return a, nil
}

func clamp(limit, def, maxLimit int) int {
	switch {
	case limit <= 0:
		return def
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
