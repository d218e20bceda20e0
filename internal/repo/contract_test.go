package repo

import (
	"context"
	"testing"
	"time"

	dom "taskmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTaskRepo runs the behaviour every TaskRepo backend must share.
// r must start empty.
func testTaskRepo(t *testing.T, r TaskRepo) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	create := func(t *testing.T, title string, status dom.Status, at time.Time) dom.Task {
		t.Helper()
		created, err := r.Create(ctx, dom.Task{
			Title:     title,
			Status:    status,
			CreatedAt: at,
			UpdatedAt: at,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		return created
	}

	t.Run("create and get", func(t *testing.T) {
		c := create(t, "Buy milk", dom.StatusPending, base)

		got, err := r.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, dom.StatusPending, got.Status)
		assert.True(t, got.CreatedAt.Equal(base))
		assert.True(t, got.UpdatedAt.Equal(base))

		require.NoError(t, r.Delete(ctx, c.ID))
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := create(t, "a", dom.StatusPending, base)
		b := create(t, "b", dom.StatusPending, base)
		assert.NotEqual(t, a.ID, b.ID)
		require.NoError(t, r.Delete(ctx, a.ID))
		require.NoError(t, r.Delete(ctx, b.ID))
	})

	t.Run("list filter and sort", func(t *testing.T) {
		old := create(t, "old", dom.StatusCompleted, base)
		mid := create(t, "mid", dom.StatusPending, base.Add(time.Minute))
		recent := create(t, "recent", dom.StatusCompleted, base.Add(2*time.Minute))

		// Touch "old" so updatedAt order differs from createdAt order.
		old.UpdatedAt = base.Add(3 * time.Minute)
		_, err := r.Update(ctx, old)
		require.NoError(t, err)

		all, err := r.List(ctx, dom.ListQuery{Sort: dom.DefaultSort})
		require.NoError(t, err)
		assert.Equal(t, []string{recent.ID, mid.ID, old.ID}, ids(all))
		for _, task := range all {
			assert.True(t, task.CreatedAt.IsZero(), "createdAt must not be returned by List")
			assert.False(t, task.UpdatedAt.IsZero())
		}

		completed, err := r.List(ctx, dom.NewListQuery([]string{"completed"}, "updatedAt:asc"))
		require.NoError(t, err)
		assert.Equal(t, []string{recent.ID, old.ID}, ids(completed))

		either, err := r.List(ctx, dom.NewListQuery([]string{"completed", "pending"}, "title:asc"))
		require.NoError(t, err)
		assert.Equal(t, []string{mid.ID, old.ID, recent.ID}, ids(either))

		none, err := r.List(ctx, dom.NewListQuery([]string{"in-progress"}, ""))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		for _, task := range []dom.Task{old, mid, recent} {
			require.NoError(t, r.Delete(ctx, task.ID))
		}
	})

	t.Run("update", func(t *testing.T) {
		c := create(t, "draft", dom.StatusPending, base)
		c.Title = "final"
		c.Status = dom.StatusInProgress
		c.UpdatedAt = base.Add(time.Second)

		got, err := r.Update(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "final", got.Title)
		assert.Equal(t, dom.StatusInProgress, got.Status)
		assert.True(t, got.UpdatedAt.Equal(base.Add(time.Second)))
		assert.True(t, got.CreatedAt.Equal(base))

		require.NoError(t, r.Delete(ctx, c.ID))
	})

	t.Run("missing ids", func(t *testing.T) {
		for _, id := range []string{"", "not-an-id", "650000000000000000000000", "8c1f0c1e-8a0e-4ad4-9c0b-1f2e3d4c5b6a"} {
			_, err := r.GetByID(ctx, id)
			assert.ErrorIs(t, err, dom.ErrNotFound, "get %q", id)

			_, err = r.Update(ctx, dom.Task{ID: id, Title: "x", Status: dom.StatusPending, UpdatedAt: base})
			assert.ErrorIs(t, err, dom.ErrNotFound, "update %q", id)

			assert.ErrorIs(t, r.Delete(ctx, id), dom.ErrNotFound, "delete %q", id)
		}

		all, err := r.List(ctx, dom.ListQuery{Sort: dom.DefaultSort})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete is permanent", func(t *testing.T) {
		c := create(t, "gone", dom.StatusPending, base)
		require.NoError(t, r.Delete(ctx, c.ID))

		_, err := r.GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, dom.ErrNotFound)
		assert.ErrorIs(t, r.Delete(ctx, c.ID), dom.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, r.Ping(ctx))
	})
}

func ids(list []dom.Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func dom0() dom.ListQuery { return dom.ListQuery{Sort: dom.DefaultSort} }

func domQuery(statuses ...string) dom.ListQuery {
	return dom.NewListQuery(statuses, "")
}
