package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "taskmanager/internal/domain"
	"taskmanager/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// pgSortColumns whitelists ORDER BY targets.
var pgSortColumns = map[dom.SortField]string{
	dom.SortTitle:       "title",
	dom.SortDescription: "description",
	dom.SortStatus:      "status",
	dom.SortCreatedAt:   "created_at",
	dom.SortUpdatedAt:   "updated_at",
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

// ConnectPostgres opens a pool on dsn and verifies it with a ping.
func ConnectPostgres(ctx context.Context, dsn string) (*PGTaskRepo, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return NewPGTaskRepo(pool), nil
}

// MigratePostgres applies the embedded goose migrations.
func MigratePostgres(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, status, created_at, updated_at`
	out, err := scanTask(r.db.QueryRow(ctx, query,
		uuid.New(), t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt))
	if err != nil {
		return dom.Task{}, fmt.Errorf("pg insert task: %w", err)
	}
	return out, nil
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	query := `
		SELECT id, title, description, status, created_at, updated_at
		FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, uid))
	return t, pgErr("get task", err)
}

func (r *PGTaskRepo) List(ctx context.Context, q dom.ListQuery) ([]dom.Task, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, title, description, status, updated_at FROM tasks`)
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		sb.WriteString(` WHERE status = ANY($1)`)
	}
	col, ok := pgSortColumns[q.Sort.Field]
	if !ok {
		col = pgSortColumns[dom.DefaultSort.Field]
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, id %s`, col, dir, dir)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pg list tasks: %w", err)
	}
	defer rows.Close()

	list := make([]dom.Task, 0)
	for rows.Next() {
		var (
			t      dom.Task
			id     uuid.UUID
			status string
		)
		if err := rows.Scan(&id, &t.Title, &t.Description, &status, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pg scan task: %w", err)
		}
		t.ID = id.String()
		t.Status = dom.Status(status)
		t.UpdatedAt = t.UpdatedAt.UTC()
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	uid, err := uuid.Parse(t.ID)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	query := `
		UPDATE tasks SET title = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, title, description, status, created_at, updated_at`
	out, err := scanTask(r.db.QueryRow(ctx, query,
		uid, t.Title, t.Description, string(t.Status), t.UpdatedAt))
	return out, pgErr("update task", err)
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return dom.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("pg delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PGTaskRepo) Close(ctx context.Context) error {
	_ = ctx
	r.db.Close()
	return nil
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var (
		t      dom.Task
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return dom.Task{}, err
	}
	t.ID = id.String()
	t.Status = dom.Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func pgErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.ErrNotFound
	}
	return fmt.Errorf("pg %s: %w", op, err)
}
