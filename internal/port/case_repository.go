package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"notaria/internal/domain"
)

// CaseFilter narrows case listings. Zero values mean "any".
type CaseFilter struct {
	UserID     uuid.UUID
	Status     domain.CaseStatus
	CaseTypeID string
	Offset     int
	Limit      int
}

// CaseRepository defines the contract for case persistence. Every update is
// guarded by the expected current status and returns
// domain.ErrConcurrentTransition when the row has moved on.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, int, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.CaseStatus, errorMessage string) error
	UpdateState(ctx context.Context, c *domain.Case, expected domain.CaseStatus) error
	ListStale(ctx context.Context, statuses []domain.CaseStatus, updatedBefore time.Time, limit int) ([]domain.Case, error)
}

// CaseFileRepository defines the contract for uploaded file metadata.
type CaseFileRepository interface {
	Create(ctx context.Context, f *domain.CaseFile) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseFile, error)
	CountByCase(ctx context.Context, caseID uuid.UUID) (int, error)
}
