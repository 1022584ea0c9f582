package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"notaria/internal/domain"
	"notaria/internal/port"
)

// MockCaseRepo is a mock implementation of port.CaseRepository.
type MockCaseRepo struct {
	mock.Mock
}

func (m *MockCaseRepo) Create(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepo) List(ctx context.Context, filter port.CaseFilter) ([]domain.Case, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Case), args.Int(1), args.Error(2)
}

func (m *MockCaseRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.CaseStatus, errorMessage string) error {
	args := m.Called(ctx, id, from, to, errorMessage)
	return args.Error(0)
}

func (m *MockCaseRepo) UpdateState(ctx context.Context, c *domain.Case, expected domain.CaseStatus) error {
	args := m.Called(ctx, c, expected)
	return args.Error(0)
}

func (m *MockCaseRepo) ListStale(ctx context.Context, statuses []domain.CaseStatus, updatedBefore time.Time, limit int) ([]domain.Case, error) {
	args := m.Called(ctx, statuses, updatedBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Case), args.Error(1)
}

// MockCaseFileRepo is a mock implementation of port.CaseFileRepository.
type MockCaseFileRepo struct {
	mock.Mock
}

func (m *MockCaseFileRepo) Create(ctx context.Context, f *domain.CaseFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockCaseFileRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseFile, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CaseFile), args.Error(1)
}

func (m *MockCaseFileRepo) CountByCase(ctx context.Context, caseID uuid.UUID) (int, error) {
	args := m.Called(ctx, caseID)
	return args.Int(0), args.Error(1)
}
