package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazynote/internal/atom"
)

// Noon window: bod = today 00:00, eod = today 23:59:59.999 in epoch ms.
var testWindow = Window{BOD: 1_700_000_000_000, EOD: 1_700_086_399_999}

func ts(offset int64) *int64 {
	v := testWindow.BOD + offset
	return &v
}

func day(n int64) int64 { return n * 86_400_000 }

func buildAtom(start, end *int64) *atom.Atom {
	a := atom.New(atom.KindNote, "content")
	a.StartAt = start
	a.EndAt = end
	return a
}

func TestClassify_TimeMatrix(t *testing.T) {
	tests := []struct {
		name   string
		start  *int64
		end    *int64
		want   Bucket
		wantOK bool
	}{
		{"no times is always inbox", nil, nil, Inbox, true},
		{"end today", nil, ts(day(0) + 3600_000), Today, true},
		{"end tomorrow", nil, ts(day(1) + 3600_000), Upcoming, true},
		{"end in the past still today", nil, ts(-day(2)), Today, true},
		{"start today", ts(3600_000), nil, Today, true},
		{"start in the past still today", ts(-day(3)), nil, Today, true},
		{"start next week", ts(day(7)), nil, Upcoming, true},
		{"range overlapping window", ts(-day(1)), ts(day(1)), Today, true},
		{"range inside window", ts(3600_000), ts(7200_000), Today, true},
		{"range entirely future", ts(day(2)), ts(day(3)), Upcoming, true},
		{"range entirely past is unbucketed", ts(-day(3)), ts(-day(2)), "", false},
		{"range ending at bod overlaps", ts(-day(1)), ts(0), Today, true},
		{"range starting at eod overlaps", ts(day(0) + 86_399_999), ts(day(2)), Today, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := buildAtom(tt.start, tt.end)
			got, ok := Classify(a, testWindow)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_KindIndependent(t *testing.T) {
	for _, kind := range []atom.Kind{atom.KindNote, atom.KindTask, atom.KindEvent} {
		a := atom.New(kind, "x")
		a.EndAt = ts(3600_000)

		got, ok := Classify(a, testWindow)
		require.True(t, ok, "kind %s", kind)
		assert.Equal(t, Today, got, "kind %s", kind)
	}
}

func TestClassify_ClosedStatusExcluded(t *testing.T) {
	for _, status := range []atom.TaskStatus{atom.StatusDone, atom.StatusCancelled} {
		a := buildAtom(nil, nil)
		s := status
		a.TaskStatus = &s

		_, ok := Classify(a, testWindow)
		assert.False(t, ok, "status %s must be unbucketed", status)
	}

	for _, status := range []atom.TaskStatus{atom.StatusTodo, atom.StatusInProgress} {
		a := buildAtom(nil, nil)
		s := status
		a.TaskStatus = &s

		got, ok := Classify(a, testWindow)
		require.True(t, ok)
		assert.Equal(t, Inbox, got)
	}
}

func TestClassify_DeletedExcluded(t *testing.T) {
	a := buildAtom(nil, nil)
	a.SoftDelete()

	_, ok := Classify(a, testWindow)
	assert.False(t, ok)
}

func TestPredicate_ArgsArity(t *testing.T) {
	for _, b := range []Bucket{Inbox, Today, Upcoming} {
		sql, err := Predicate(b)
		require.NoError(t, err)

		placeholders := 0
		for _, r := range sql {
			if r == '?' {
				placeholders++
			}
		}
		assert.Len(t, Args(b, testWindow), placeholders, "bucket %s", b)
	}
}

func TestPredicate_UnknownBucket(t *testing.T) {
	_, err := Predicate(Bucket("overdue"))
	assert.Error(t, err)
}

func TestParseBucket(t *testing.T) {
	for _, valid := range []string{"inbox", "today", "upcoming"} {
		b, ok := ParseBucket(valid)
		assert.True(t, ok)
		assert.EqualValues(t, valid, b)
	}

	_, ok := ParseBucket("someday")
	assert.False(t, ok)
}
