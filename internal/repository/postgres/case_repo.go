package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"notaria/internal/domain"
	"notaria/internal/port"
)

type caseRepo struct {
	db *sqlx.DB
}

// NewCaseRepo creates a new PostgreSQL-backed CaseRepository.
func NewCaseRepo(db *sqlx.DB) port.CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) Create(ctx context.Context, c *domain.Case) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (
			id, user_id, contact_email, case_type_id, ai_model, status,
			extracted_data, missing_fields, suggestions, error_message,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.UserID, c.ContactEmail, c.CaseTypeID, c.AIModel, c.Status,
		c.ExtractedData, c.MissingFields, c.Suggestions, c.ErrorMessage,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("caseRepo.Create: %w", err)
	}
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	var c domain.Case
	err := r.db.GetContext(ctx, &c, "SELECT * FROM cases WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("case", id.String())
		}
		return nil, fmt.Errorf("caseRepo.GetByID: %w", err)
	}
	return &c, nil
}

// listQueries builds the count and page queries for a filter.
func listQueries(filter port.CaseFilter) (sq.SelectBuilder, sq.SelectBuilder) {
	where := sq.Eq{"user_id": filter.UserID.String()}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if filter.CaseTypeID != "" {
		where["case_type_id"] = filter.CaseTypeID
	}
	count := psql.Select("COUNT(*)").From("cases").Where(where)
	page := psql.Select("*").From("cases").Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	return count, page
}

func (r *caseRepo) List(ctx context.Context, filter port.CaseFilter) ([]domain.Case, int, error) {
	countQ, pageQ := listQueries(filter)

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List count: %w", err)
	}

	query, args, err = pageQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List query: %w", err)
	}
	cases := []domain.Case{}
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List: %w", err)
	}
	return cases, total, nil
}

func (r *caseRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.CaseStatus, errorMessage string) error {
	if !from.CanTransitionTo(to) {
		return &domain.TransitionError{From: string(from), To: string(to)}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE cases SET status = $1, error_message = $2, updated_at = $3
		 WHERE id = $4 AND status = $5`,
		to, errorMessage, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("caseRepo.TransitionStatus: %w", err)
	}
	return r.checkGuard(ctx, res, id)
}

func (r *caseRepo) UpdateState(ctx context.Context, c *domain.Case, expected domain.CaseStatus) error {
	if c.Status != expected && !expected.CanTransitionTo(c.Status) {
		return &domain.TransitionError{From: string(expected), To: string(c.Status)}
	}
	c.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE cases SET
			status = $1, extracted_data = $2, missing_fields = $3,
			suggestions = $4, error_message = $5, updated_at = $6
		 WHERE id = $7 AND status = $8`,
		c.Status, c.ExtractedData, c.MissingFields,
		c.Suggestions, c.ErrorMessage, c.UpdatedAt,
		c.ID, expected)
	if err != nil {
		return fmt.Errorf("caseRepo.UpdateState: %w", err)
	}
	return r.checkGuard(ctx, res, c.ID)
}

// staleQuery selects cases left in one of statuses since before cutoff.
func staleQuery(statuses []domain.CaseStatus, updatedBefore time.Time, limit int) sq.SelectBuilder {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return psql.Select("*").From("cases").
		Where(sq.Eq{"status": names}).
		Where(sq.Lt{"updated_at": updatedBefore}).
		OrderBy("updated_at ASC").
		Limit(uint64(limit))
}

func (r *caseRepo) ListStale(ctx context.Context, statuses []domain.CaseStatus, updatedBefore time.Time, limit int) ([]domain.Case, error) {
	query, args, err := staleQuery(statuses, updatedBefore, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("caseRepo.ListStale query: %w", err)
	}
	cases := []domain.Case{}
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("caseRepo.ListStale: %w", err)
	}
	return cases, nil
}

// checkGuard distinguishes a missing case from a status guard miss when an
// update touched no rows.
func (r *caseRepo) checkGuard(ctx context.Context, res sql.Result, id uuid.UUID) error {
	ok, err := rowsAffected(res)
	if err != nil || ok {
		return err
	}
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM cases WHERE id = $1)", id); err != nil {
		return fmt.Errorf("caseRepo: checking case %s: %w", id, err)
	}
	if !exists {
		return domain.NewNotFound("case", id.String())
	}
	return domain.ErrConcurrentTransition
}
