package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazynote/internal/atom"
	"lazynote/internal/section"
)

// A fixed "today": bod at an arbitrary midnight, eod one ms before the
// next midnight.
var (
	bod        = int64(1_700_000_000_000)
	eod        = bod + 86_400_000 - 1
	testWindow = section.Window{BOD: bod, EOD: eod}
)

func insertTimed(t *testing.T, s *Store, start, end *int64) *atom.Atom {
	t.Helper()
	a := atom.New(atom.KindTask, "timed item")
	a.StartAt = start
	a.EndAt = end
	require.NoError(t, s.Insert(context.Background(), a))
	return a
}

func sectionIDs(t *testing.T, s *Store, b section.Bucket) map[uuid.UUID]bool {
	t.Helper()
	atoms, err := s.ListSection(context.Background(), b, testWindow, 0, 0)
	require.NoError(t, err)
	ids := make(map[uuid.UUID]bool, len(atoms))
	for _, a := range atoms {
		ids[a.ID] = true
	}
	return ids
}

func TestListSection_InboxAlwaysHoldsUntimedAtoms(t *testing.T) {
	s := openTestStore(t)

	untimed := insertTimed(t, s, nil, nil)
	timed := insertTimed(t, s, ptr(bod+3600_000), nil)

	inbox := sectionIDs(t, s, section.Inbox)
	assert.True(t, inbox[untimed.ID])
	assert.False(t, inbox[timed.ID])
	assert.False(t, sectionIDs(t, s, section.Today)[untimed.ID])
	assert.False(t, sectionIDs(t, s, section.Upcoming)[untimed.ID])
}

func TestListSection_EndTodayVsEndTomorrow(t *testing.T) {
	s := openTestStore(t)

	// end_at today 09:00 vs tomorrow 09:00, both without start_at,
	// evaluated at a window covering today.
	nineAM := bod + 9*3600_000
	today := insertTimed(t, s, nil, &nineAM)
	tomorrowNine := nineAM + 86_400_000
	tomorrow := insertTimed(t, s, nil, &tomorrowNine)

	assert.True(t, sectionIDs(t, s, section.Today)[today.ID])
	assert.False(t, sectionIDs(t, s, section.Today)[tomorrow.ID])
	assert.True(t, sectionIDs(t, s, section.Upcoming)[tomorrow.ID])
	assert.False(t, sectionIDs(t, s, section.Upcoming)[today.ID])
}

func TestListSection_ClosedAndDeletedExcluded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	done := insertTimed(t, s, nil, nil)
	status := atom.StatusDone
	require.NoError(t, s.SetTaskStatus(ctx, done.ID, &status))

	deleted := insertTimed(t, s, nil, nil)
	require.NoError(t, s.SoftDelete(ctx, deleted.ID))

	open := insertTimed(t, s, nil, nil)

	inbox := sectionIDs(t, s, section.Inbox)
	assert.True(t, inbox[open.ID])
	assert.False(t, inbox[done.ID])
	assert.False(t, inbox[deleted.ID])
}

// TestListSection_AgreesWithClassify feeds one grid of time fixtures
// through both the SQL predicates and the pure classifier and requires
// identical bucketing, so the two rule encodings cannot drift apart.
func TestListSection_AgreesWithClassify(t *testing.T) {
	s := openTestStore(t)

	fixtures := []struct {
		name  string
		start *int64
		end   *int64
	}{
		{"untimed", nil, nil},
		{"end within today", nil, ptr(bod + 3600_000)},
		{"end in past", nil, ptr(bod - 86_400_000)},
		{"end tomorrow", nil, ptr(eod + 3600_000)},
		{"start within today", ptr(bod + 3600_000), nil},
		{"start in past", ptr(bod - 86_400_000), nil},
		{"start next week", ptr(eod + 7*86_400_000), nil},
		{"range overlapping", ptr(bod - 3600_000), ptr(bod + 3600_000)},
		{"range future", ptr(eod + 3600_000), ptr(eod + 7200_000)},
		{"range fully past", ptr(bod - 7200_000), ptr(bod - 3600_000)},
		{"range ending at bod", ptr(bod - 3600_000), ptr(bod)},
		{"range starting at eod", ptr(eod), ptr(eod + 3600_000)},
	}

	atomsByID := make(map[uuid.UUID]*atom.Atom)
	for _, f := range fixtures {
		a := insertTimed(t, s, f.start, f.end)
		atomsByID[a.ID] = a
	}

	buckets := map[section.Bucket]map[uuid.UUID]bool{
		section.Inbox:    sectionIDs(t, s, section.Inbox),
		section.Today:    sectionIDs(t, s, section.Today),
		section.Upcoming: sectionIDs(t, s, section.Upcoming),
	}

	for id, a := range atomsByID {
		want, wantOK := section.Classify(a, testWindow)
		for b, members := range buckets {
			expected := wantOK && b == want
			assert.Equal(t, expected, members[id],
				"atom start=%v end=%v bucket=%s", a.StartAt, a.EndAt, b)
		}
	}
}

func TestListSection_Ordering(t *testing.T) {
	pinClock(t, 6_000_000)
	s := openTestStore(t)

	// Earliest-scheduled first: coalesce(start_at, end_at) ascending.
	late := insertTimed(t, s, ptr(bod+10*3600_000), nil)
	early := insertTimed(t, s, nil, ptr(bod+2*3600_000))
	mid := insertTimed(t, s, ptr(bod+5*3600_000), ptr(bod+6*3600_000))

	atoms, err := s.ListSection(context.Background(), section.Today, testWindow, 0, 0)
	require.NoError(t, err)
	require.Len(t, atoms, 3)
	assert.Equal(t, early.ID, atoms[0].ID)
	assert.Equal(t, mid.ID, atoms[1].ID)
	assert.Equal(t, late.ID, atoms[2].ID)
}

func TestListSection_SameScheduleTieBrokenByRecency(t *testing.T) {
	pinClock(t, 7_000_000)
	s := openTestStore(t)

	at := ptr(bod + 3600_000)
	older := insertTimed(t, s, at, nil)
	newer := insertTimed(t, s, at, nil)

	atoms, err := s.ListSection(context.Background(), section.Today, testWindow, 0, 0)
	require.NoError(t, err)
	require.Len(t, atoms, 2)
	assert.Equal(t, newer.ID, atoms[0].ID, "most recently touched first")
	assert.Equal(t, older.ID, atoms[1].ID)
}

func TestListSection_Pagination(t *testing.T) {
	pinClock(t, 8_000_000)
	s := openTestStore(t)

	for i := int64(0); i < 5; i++ {
		insertTimed(t, s, ptr(bod+i*3600_000), nil)
	}

	page, err := s.ListSection(context.Background(), section.Today, testWindow, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, page[0].StartAt)
	assert.Equal(t, bod+2*3600_000, *page[0].StartAt)
}

func ptr(v int64) *int64 { return &v }
