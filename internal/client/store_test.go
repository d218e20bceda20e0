package client

import (
	"context"
	"errors"
	"testing"

	"taskmanager/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	list    []dto.TaskResponse
	created dto.TaskResponse
	updated dto.TaskResponse
	err     error
	deleted []string
}

func (f *fakeAPI) List(context.Context, ListParams) ([]dto.TaskResponse, error) {
	return f.list, f.err
}

func (f *fakeAPI) Get(_ context.Context, id string) (dto.TaskResponse, error) {
	if f.err != nil {
		return dto.TaskResponse{}, f.err
	}
	return f.updated, nil
}

func (f *fakeAPI) Create(context.Context, dto.CreateTaskRequest) (dto.TaskResponse, error) {
	return f.created, f.err
}

func (f *fakeAPI) Update(context.Context, string, dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	return f.updated, f.err
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func task(id, title string) dto.TaskResponse {
	return dto.TaskResponse{ID: id, Title: title, Status: "pending"}
}

func titles(s Snapshot) []string {
	out := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		out[i] = t.Title
	}
	return out
}

func TestStoreStartsLoading(t *testing.T) {
	s := NewStore(&fakeAPI{})
	snap := s.Snapshot()
	assert.Equal(t, StateLoading, snap.State)
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.Err)
}

func TestStoreTransitions(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{list: []dto.TaskResponse{task("1", "a"), task("2", "b")}}
	s := NewStore(api)

	var states []State
	s.OnChange(func(snap Snapshot) { states = append(states, snap.State) })

	require.NoError(t, s.Fetch(ctx, ListParams{}))
	assert.Equal(t, []State{StateLoading, StateReady}, states)
	assert.Equal(t, []string{"a", "b"}, titles(s.Snapshot()))

	api.created = task("3", "c")
	_, err := s.Add(ctx, dto.CreateTaskRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, titles(s.Snapshot()))

	api.updated = task("1", "a2")
	_, err = s.Edit(ctx, "1", dto.UpdateTaskRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a2", "b"}, titles(s.Snapshot()))

	require.NoError(t, s.Remove(ctx, "2"))
	assert.Equal(t, []string{"c", "a2"}, titles(s.Snapshot()))
	assert.Equal(t, []string{"2"}, api.deleted)

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Empty(t, snap.Err)
}

func TestStoreFailureKeepsCollection(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{list: []dto.TaskResponse{task("1", "a")}}
	s := NewStore(api)
	require.NoError(t, s.Fetch(ctx, ListParams{}))

	api.err = &APIError{StatusCode: 400, Status: "fail", Message: "Title is required"}

	steps := map[string]func() error{
		"fetch":   func() error { return s.Refetch(ctx) },
		"add":     func() error { _, err := s.Add(ctx, dto.CreateTaskRequest{}); return err },
		"edit":    func() error { _, err := s.Edit(ctx, "1", dto.UpdateTaskRequest{}); return err },
		"refresh": func() error { _, err := s.Refresh(ctx, "1"); return err },
		"remove":  func() error { return s.Remove(ctx, "1") },
	}
	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			err := step()
			require.Error(t, err)

			var apiErr *APIError
			assert.True(t, errors.As(err, &apiErr))

			snap := s.Snapshot()
			assert.Equal(t, StateError, snap.State)
			assert.Equal(t, "Title is required", snap.Err)
			assert.Equal(t, []string{"a"}, titles(snap))
		})
	}

	api.err = nil
	api.updated = task("1", "fresh")
	_, err := s.Refresh(ctx, "1")
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Empty(t, snap.Err)
	assert.Equal(t, []string{"fresh"}, titles(snap))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(&fakeAPI{list: []dto.TaskResponse{task("1", "a")}})
	require.NoError(t, s.Fetch(ctx, ListParams{}))

	snap := s.Snapshot()
	snap.Tasks[0].Title = "mutated"
	assert.Equal(t, []string{"a"}, titles(s.Snapshot()))
}
