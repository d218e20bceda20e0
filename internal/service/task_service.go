package service

import (
	"context"
	"strconv"
	"time"

	"taskmanager/internal/cache"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Recorder observes the outcome of task operations. May be nil.
type Recorder interface {
	RecordTaskOp(op string, err error)
}

type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
	rec   Recorder
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*TaskService)

// WithCache enables Redis list caching. A nil cache disables it.
func WithCache(c *cache.TaskCache) Option {
	return func(s *TaskService) { s.cache = c }
}

func WithRecorder(r Recorder) Option {
	return func(s *TaskService) { s.rec = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *TaskService) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(r repo.TaskRepo, opts ...Option) *TaskService {
	s := &TaskService{repo: r, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns tasks matching q. Results are served from cache when enabled.
// The cache generation is read before the store, so a list fetched before a
// concurrent write is filed under the old generation and never served again.
func (s *TaskService) List(ctx context.Context, q dom.ListQuery) (list []dom.Task, err error) {
	defer func() { s.record("list", err) }()

	if s.cache == nil {
		return s.repo.List(ctx, q)
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("task cache generation read failed")
		return s.repo.List(ctx, q)
	}
	key := "list:" + strconv.FormatInt(gen, 10) + ":" + q.Key()
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, ok, err := s.cache.GetList(ctx, gen, q); err == nil && ok {
			return list, nil
		} else if err != nil {
			s.log.Warn().Err(err).Msg("task cache read failed")
		}
		list, err := s.repo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, gen, q, list); err != nil {
			s.log.Warn().Err(err).Msg("task cache write failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) Get(ctx context.Context, id string) (t dom.Task, err error) {
	defer func() { s.record("get", err) }()
	return s.repo.GetByID(ctx, id)
}

// Create validates f, stamps createdAt/updatedAt and stores the task.
// Nothing is written when validation fails.
func (s *TaskService) Create(ctx context.Context, f dom.Fields) (t dom.Task, err error) {
	defer func() { s.record("create", err) }()

	t = dom.NewTask(f)
	if err := dom.Validate(t); err != nil {
		return dom.Task{}, err
	}
	now := dom.Now(s.now())
	t.CreatedAt = now
	t.UpdatedAt = now

	t, err = s.repo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

// Update applies the supplied fields to task id, re-validates the merged
// task and refreshes updatedAt.
func (s *TaskService) Update(ctx context.Context, id string, f dom.Fields) (t dom.Task, err error) {
	defer func() { s.record("update", err) }()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, err
	}
	patch := existing.Apply(f)
	if err := dom.Validate(patch); err != nil {
		return dom.Task{}, err
	}
	patch.UpdatedAt = dom.NextUpdatedAt(existing.UpdatedAt, s.now())

	t, err = s.repo.Update(ctx, patch)
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.record("delete", err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Ping checks the underlying store.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.log.Warn().Err(err).Msg("task cache invalidation failed")
	}
}

func (s *TaskService) record(op string, err error) {
	if s.rec != nil {
		s.rec.RecordTaskOp(op, err)
	}
}
