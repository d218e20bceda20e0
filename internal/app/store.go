package app

import (
	"context"
	"fmt"
	"strings"

	"taskmanager/internal/config"
	"taskmanager/internal/repo"

	"github.com/rs/zerolog"
)

// newTaskRepo picks the store backend from the DB_URI scheme.
func newTaskRepo(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (repo.TaskRepo, error) {
	scheme, rest, ok := strings.Cut(cfg.URI, "://")
	if !ok {
		return nil, fmt.Errorf("DB_URI must look like scheme://..., got %q", cfg.URI)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		r, err := repo.ConnectMongo(ctx, cfg.URI, cfg.Name)
		if err != nil {
			return nil, err
		}
		if err := r.EnsureIndexes(ctx); err != nil {
			_ = r.Close(ctx)
			return nil, err
		}
		log.Info().Str("backend", "mongodb").Str("db", cfg.Name).Msg("task store connected")
		return r, nil
	case "postgres", "postgresql":
		if err := repo.MigratePostgres(cfg.URI); err != nil {
			return nil, err
		}
		r, err := repo.ConnectPostgres(ctx, cfg.URI)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", "postgres").Msg("task store connected")
		return r, nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("DB_URI sqlite:// needs a path or :memory:")
		}
		r, err := repo.OpenSQLite(rest)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", "sqlite").Str("path", rest).Msg("task store opened")
		return r, nil
	}
	return nil, fmt.Errorf("DB_URI scheme %q is not supported", scheme)
}
