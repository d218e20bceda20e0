package client

import (
	"context"
	"sync"

	"taskmanager/internal/dto"
)

// State is the lifecycle of a Store.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// TaskAPI is the subset of *API the store needs.
type TaskAPI interface {
	List(ctx context.Context, p ListParams) ([]dto.TaskResponse, error)
	Get(ctx context.Context, id string) (dto.TaskResponse, error)
	Create(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, id string) error
}

// Snapshot is a copy of the store's state at one point in time.
type Snapshot struct {
	State State
	Tasks []dto.TaskResponse
	Err   string
}

// Store holds the client's view of the task collection.
//
// A failed action moves the store to StateError and keeps the message; the
// collection is left as it was. A successful action clears the error.
// Actions still return their error so callers can react.
type Store struct {
	api TaskAPI

	mu       sync.Mutex
	state    State
	tasks    []dto.TaskResponse
	err      string
	params   ListParams
	onChange []func(Snapshot)
}

func NewStore(api TaskAPI) *Store {
	return &Store{api: api, state: StateLoading, tasks: []dto.TaskResponse{}}
}

// OnChange registers fn to be called with a snapshot after every transition.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	tasks := make([]dto.TaskResponse, len(s.tasks))
	copy(tasks, s.tasks)
	return Snapshot{State: s.state, Tasks: tasks, Err: s.err}
}

// Fetch replaces the collection with the server's list. p is remembered
// for Refetch.
func (s *Store) Fetch(ctx context.Context, p ListParams) error {
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return s.Refetch(ctx)
}

// Refetch repeats the last Fetch.
func (s *Store) Refetch(ctx context.Context) error {
	s.mu.Lock()
	p := s.params
	s.mu.Unlock()

	s.transition(func() { s.state = StateLoading })
	list, err := s.api.List(ctx, p)
	if err != nil {
		s.fail(err)
		return err
	}
	s.succeed(func() { s.tasks = list })
	return nil
}

// Add creates a task and puts it at the front of the collection.
func (s *Store) Add(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskResponse, error) {
	t, err := s.api.Create(ctx, req)
	if err != nil {
		s.fail(err)
		return dto.TaskResponse{}, err
	}
	s.succeed(func() {
		s.tasks = append([]dto.TaskResponse{t}, s.tasks...)
	})
	return t, nil
}

// Edit updates task id and replaces it in place.
func (s *Store) Edit(ctx context.Context, id string, req dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	t, err := s.api.Update(ctx, id, req)
	if err != nil {
		s.fail(err)
		return dto.TaskResponse{}, err
	}
	s.succeed(func() { s.replace(t) })
	return t, nil
}

// Refresh reloads a single task from the server.
func (s *Store) Refresh(ctx context.Context, id string) (dto.TaskResponse, error) {
	t, err := s.api.Get(ctx, id)
	if err != nil {
		s.fail(err)
		return dto.TaskResponse{}, err
	}
	s.succeed(func() { s.replace(t) })
	return t, nil
}

// Remove deletes task id and drops it from the collection.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.succeed(func() {
		kept := s.tasks[:0:0]
		for _, t := range s.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
	})
	return nil
}

// replace swaps the task with t.ID for t. Caller holds mu.
func (s *Store) replace(t dto.TaskResponse) {
	next := make([]dto.TaskResponse, len(s.tasks))
	for i, cur := range s.tasks {
		if cur.ID == t.ID {
			cur = t
		}
		next[i] = cur
	}
	s.tasks = next
}

func (s *Store) succeed(apply func()) {
	s.transition(func() {
		apply()
		s.state = StateReady
		s.err = ""
	})
}

func (s *Store) fail(err error) {
	s.transition(func() {
		s.state = StateError
		s.err = err.Error()
	})
}

func (s *Store) transition(apply func()) {
	s.mu.Lock()
	apply()
	snap := s.snapshotLocked()
	listeners := append([]func(Snapshot){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
