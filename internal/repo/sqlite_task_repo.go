package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "taskmanager/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// taskRecord is the gorm model. Timestamps are owned by the service, so
// gorm's automatic tracking is off.
type taskRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:100;not null"`
	Description string    `gorm:"size:500;not null;default:''"`
	Status      string    `gorm:"size:16;not null;default:pending;index:idx_tasks_status_created_at,priority:1"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_tasks_status_created_at,priority:2,sort:desc"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string { return "tasks" }

func (r taskRecord) toDomain() dom.Task {
	return dom.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      dom.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

var sqliteSortColumns = map[dom.SortField]string{
	dom.SortTitle:       "title",
	dom.SortDescription: "description",
	dom.SortStatus:      "status",
	dom.SortCreatedAt:   "created_at",
	dom.SortUpdatedAt:   "updated_at",
}

// SQLiteTaskRepo implements TaskRepo with gorm on SQLite. It backs local
// development (sqlite:// URIs) and store tests.
type SQLiteTaskRepo struct {
	db *gorm.DB
}

// OpenSQLite opens path (":memory:" for a private in-memory database) and migrates the schema.
func OpenSQLite(path string) (*SQLiteTaskRepo, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &SQLiteTaskRepo{db: db}, nil
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	rec := taskRecord{
		ID:          uuid.NewString(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return dom.Task{}, fmt.Errorf("sqlite insert task: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	var rec taskRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return dom.Task{}, sqliteErr("get task", err)
	}
	return rec.toDomain(), nil
}

func (r *SQLiteTaskRepo) List(ctx context.Context, q dom.ListQuery) ([]dom.Task, error) {
	col, ok := sqliteSortColumns[q.Sort.Field]
	if !ok {
		col = sqliteSortColumns[dom.DefaultSort.Field]
	}
	tx := r.db.WithContext(ctx).
		Model(&taskRecord{}).
		Select("id", "title", "description", "status", "updated_at")
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		tx = tx.Where("status IN ?", statuses)
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: q.Sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Sort.Desc})

	var recs []taskRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlite list tasks: %w", err)
	}
	list := make([]dom.Task, len(recs))
	for i, rec := range recs {
		list[i] = rec.toDomain()
		list[i].CreatedAt = time.Time{}
	}
	return list, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	var out taskRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&taskRecord{}).Where("id = ?", t.ID).Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"status":      string(t.Status),
			"updated_at":  t.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return dom.ErrNotFound
		}
		return tx.First(&out, "id = ?", t.ID).Error
	})
	if err != nil {
		return dom.Task{}, sqliteErr("update task", err)
	}
	return out.toDomain(), nil
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("sqlite delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *SQLiteTaskRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLiteTaskRepo) Close(ctx context.Context) error {
	_ = ctx
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, dom.ErrNotFound) {
		return dom.ErrNotFound
	}
	return fmt.Errorf("sqlite %s: %w", op, err)
}
