package repo

import (
	"context"

	dom "taskmanager/internal/domain"
)

// TaskRepo persists tasks. Implementations translate driver "no rows"
// conditions and malformed ids into dom.ErrNotFound. List results leave
// CreatedAt zero; it is only ordered on, never returned.
type TaskRepo interface {
	// Create stores t, assigning its ID. Timestamps are set by the caller.
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	List(ctx context.Context, q dom.ListQuery) ([]dom.Task, error)
	// Update replaces title, description, status and updatedAt of t.ID.
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
