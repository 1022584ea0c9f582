package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"notaria/internal/domain"
	"notaria/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) CompleteGeneration(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (
				id, case_id, type, template_id, content, status, version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			doc.ID, doc.CaseID, doc.Type, doc.TemplateID, doc.Content, doc.Status, doc.Version,
			doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("documentRepo.CompleteGeneration insert: %w", err)
		}
		if err := insertVersion(ctx, tx, doc, ""); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE cases SET status = $1, error_message = '', updated_at = $2
			 WHERE id = $3 AND status = $4`,
			domain.CaseStatusReviewing, now, doc.CaseID, domain.CaseStatusGenerating)
		if err != nil {
			return fmt.Errorf("documentRepo.CompleteGeneration case update: %w", err)
		}
		ok, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConcurrentTransition
		}
		return nil
	})
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("document", id.String())
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Document, error) {
	docs := []domain.Document{}
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE case_id = $1 ORDER BY created_at DESC", caseID)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByCase: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) UpdateContent(ctx context.Context, doc *domain.Document, expectedVersion int, instruction string) error {
	doc.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET content = $1, status = $2, version = $3, updated_at = $4
			 WHERE id = $5 AND version = $6`,
			doc.Content, doc.Status, doc.Version, doc.UpdatedAt, doc.ID, expectedVersion)
		if err != nil {
			return fmt.Errorf("documentRepo.UpdateContent: %w", err)
		}
		ok, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrVersionConflict
		}
		return insertVersion(ctx, tx, doc, instruction)
	})
}

func (r *documentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("documentRepo.TransitionStatus: %w", err)
	}
	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConcurrentTransition
	}
	return nil
}

func (r *documentRepo) ListVersions(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentVersion, error) {
	versions := []domain.DocumentVersion{}
	err := r.db.SelectContext(ctx, &versions,
		`SELECT document_id, version, content, instruction, created_at
		 FROM document_versions WHERE document_id = $1 ORDER BY version ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListVersions: %w", err)
	}
	return versions, nil
}

func insertVersion(ctx context.Context, tx *sqlx.Tx, doc *domain.Document, instruction string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO document_versions (document_id, version, content, instruction, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		doc.ID, doc.Version, doc.Content, instruction, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo: recording version %d: %w", doc.Version, err)
	}
	return nil
}
