package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazynote/internal/atom"
)

func TestList_FiltersAndOrdering(t *testing.T) {
	pinClock(t, 3_000_000)
	s := openTestStore(t)
	ctx := context.Background()

	note := atom.New(atom.KindNote, "a note")
	note.Tags = []string{"alpha"}
	task := atom.NewTask("a task")
	task.Tags = []string{"alpha", "beta"}
	event := atom.NewEvent("an event", 1000, nil)

	// Insert order fixes updated_at order under the pinned clock.
	require.NoError(t, s.Insert(ctx, note))
	require.NoError(t, s.Insert(ctx, task))
	require.NoError(t, s.Insert(ctx, event))

	all, err := s.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest-touched first.
	assert.Equal(t, event.ID, all[0].ID)
	assert.Equal(t, task.ID, all[1].ID)
	assert.Equal(t, note.ID, all[2].ID)

	tasks, err := s.List(ctx, ListQuery{Kind: atom.KindTask})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	tagged, err := s.List(ctx, ListQuery{Tag: "alpha"})
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	beta, err := s.List(ctx, ListQuery{Tag: "beta"})
	require.NoError(t, err)
	require.Len(t, beta, 1)
	assert.Equal(t, task.ID, beta[0].ID)
}

func TestList_ExcludesDeletedByDefault(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	kept := atom.New(atom.KindNote, "kept")
	gone := atom.New(atom.KindNote, "gone")
	require.NoError(t, s.Insert(ctx, kept))
	require.NoError(t, s.Insert(ctx, gone))
	require.NoError(t, s.SoftDelete(ctx, gone.ID))

	visible, err := s.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, kept.ID, visible[0].ID)

	all, err := s.List(ctx, ListQuery{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestList_Pagination(t *testing.T) {
	pinClock(t, 4_000_000)
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		a := atom.New(atom.KindNote, "note body")
		require.NoError(t, s.Insert(ctx, a))
		ids = append(ids, a.ID.String())
	}

	page1, err := s.List(ctx, ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID.String())
	assert.Equal(t, ids[3], page1[1].ID.String())

	page2, err := s.List(ctx, ListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[2], page2[0].ID.String())
	assert.Equal(t, ids[1], page2[1].ID.String())

	page3, err := s.List(ctx, ListQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, ids[0], page3[0].ID.String())
}

func TestListTags_SortedCaseInsensitively(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := atom.New(atom.KindNote, "x")
	a.Tags = []string{"zeta", "alpha", "mid"}
	require.NoError(t, s.Insert(ctx, a))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, tags)
}

func TestListTags_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	tags, err := s.ListTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}
