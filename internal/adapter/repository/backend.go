package repository

import (
	"context"
	"fmt"

	"resume-builder/internal/config"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/logger"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Backend bundles the section store with the optional postgres pool used for
// export history.
type Backend struct {
	KV   KVStore
	Pool *pgxpool.Pool
}

// OpenBackend connects the configured storage backend. A postgres DSN is
// optional for the other backends; when it is set but unreachable, export
// history is disabled with a warning.
func OpenBackend(ctx context.Context, cfg config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{}

	if cfg.DB.DSN != "" {
		pool, err := infrastructure.NewPool(ctx, cfg.DB.DSN)
		if err != nil {
			if cfg.Storage.Backend == "postgres" {
				return nil, fmt.Errorf("connect postgres: %w", err)
			}
			log.Warn("Postgres not available, export history disabled", zap.Error(err))
		} else if err := migration.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		} else {
			b.Pool = pool
		}
	}

	switch cfg.Storage.Backend {
	case "memory":
		b.KV = NewMemoryKV()
	case "file":
		kv, err := NewFileKV(cfg.Storage.Dir)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KV = kv
	case "sqlite":
		db, err := infrastructure.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		kv, err := NewSQLiteKV(db)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KV = kv
	case "postgres":
		b.KV = NewPostgresKV(b.Pool)
	case "redis":
		client, err := infrastructure.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.KV = NewRedisKV(client)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	log.Info("Storage backend ready", zap.String("backend", cfg.Storage.Backend), zap.Bool("export_history", b.Pool != nil))
	return b, nil
}

// Close releases the postgres pool. The KV store is closed by its owner.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}
