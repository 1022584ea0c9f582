package port

import (
	"context"

	"github.com/google/uuid"

	"notaria/internal/domain"
)

// DocumentRepository defines the contract for rendered document persistence.
type DocumentRepository interface {
	// CompleteGeneration inserts doc with its first version row and moves the
	// owning case from GENERATING to REVIEWING in one transaction.
	CompleteGeneration(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error)
	// UpdateContent stores doc.Content/Status/Version when the stored version
	// still equals expectedVersion, and appends a history row.
	UpdateContent(ctx context.Context, doc *domain.Document, expectedVersion int, instruction string) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.DocumentStatus) error
	ListVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error)
}
