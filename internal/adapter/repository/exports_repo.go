package repository

import (
	"context"
	"errors"

	"resume-builder/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ExportsRepo keeps the export history. A nil pool turns every call into a no-op.
type ExportsRepo struct {
	pool *pgxpool.Pool
}

func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{pool: pool}
}

func (r *ExportsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r == nil || r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO resume_exports (id, status, title, file_name, file_path, file_size, page_count, error, created_at, updated_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, file_name = EXCLUDED.file_name, file_path = EXCLUDED.file_path, file_size = EXCLUDED.file_size, page_count = EXCLUDED.page_count, error = EXCLUDED.error, updated_at = EXCLUDED.updated_at, completed_at = EXCLUDED.completed_at`,
		j.ID, j.Status, j.Title, j.FileName, j.FilePath, j.FileSize, j.PageCount, j.Error, j.CreatedAt, j.UpdatedAt, j.CompletedAt)
	return err
}

func (r *ExportsRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	var j domain.ExportJob
	err := r.pool.QueryRow(ctx, `SELECT id, status, title, file_name, file_path, file_size, page_count, error, created_at, updated_at, completed_at
		FROM resume_exports WHERE id = $1`, id).
		Scan(&j.ID, &j.Status, &j.Title, &j.FileName, &j.FilePath, &j.FileSize, &j.PageCount, &j.Error, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Recent lists the latest exports, newest first.
func (r *ExportsRepo) Recent(ctx context.Context, limit int) ([]domain.ExportJob, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, status, title, file_name, file_path, file_size, page_count, error, created_at, updated_at, completed_at
		FROM resume_exports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExportJob
	for rows.Next() {
		var j domain.ExportJob
		if err := rows.Scan(&j.ID, &j.Status, &j.Title, &j.FileName, &j.FilePath, &j.FileSize, &j.PageCount, &j.Error, &j.CreatedAt, &j.UpdatedAt, &j.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
