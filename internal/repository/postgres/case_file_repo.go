package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"notaria/internal/domain"
	"notaria/internal/port"
)

type caseFileRepo struct {
	db *sqlx.DB
}

// NewCaseFileRepo creates a new PostgreSQL-backed CaseFileRepository.
func NewCaseFileRepo(db *sqlx.DB) port.CaseFileRepository {
	return &caseFileRepo{db: db}
}

func (r *caseFileRepo) Create(ctx context.Context, f *domain.CaseFile) error {
	f.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO case_files (
			id, case_id, category, file_name, content_type, size, storage_key, url, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.CaseID, f.Category, f.FileName, f.ContentType, f.Size, f.StorageKey, f.URL, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("caseFileRepo.Create: %w", err)
	}
	return nil
}

func (r *caseFileRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseFile, error) {
	files := []domain.CaseFile{}
	err := r.db.SelectContext(ctx, &files,
		"SELECT * FROM case_files WHERE case_id = $1 ORDER BY created_at ASC", caseID)
	if err != nil {
		return nil, fmt.Errorf("caseFileRepo.ListByCase: %w", err)
	}
	return files, nil
}

func (r *caseFileRepo) CountByCase(ctx context.Context, caseID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM case_files WHERE case_id = $1", caseID); err != nil {
		return 0, fmt.Errorf("caseFileRepo.CountByCase: %w", err)
	}
	return n, nil
}
