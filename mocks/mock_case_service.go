package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"notaria/internal/domain"
	"notaria/internal/port"
	"notaria/internal/service"
)

// MockCaseService is a mock implementation of service.CaseService.
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) caseResult(args mock.Arguments) (*domain.Case, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) documentResult(args mock.Arguments) (*domain.Document, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockCaseService) Create(ctx context.Context, input service.CreateCaseInput) (*domain.Case, error) {
	return m.caseResult(m.Called(ctx, input))
}

func (m *MockCaseService) Get(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	return m.caseResult(m.Called(ctx, caseID, userID))
}

func (m *MockCaseService) List(ctx context.Context, filter port.CaseFilter) ([]domain.Case, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Case), args.Int(1), args.Error(2)
}

func (m *MockCaseService) AttachFile(ctx context.Context, input service.AttachFileInput) (*domain.CaseFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CaseFile), args.Error(1)
}

func (m *MockCaseService) ListFiles(ctx context.Context, caseID, userID uuid.UUID) ([]domain.CaseFile, error) {
	args := m.Called(ctx, caseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CaseFile), args.Error(1)
}

func (m *MockCaseService) Process(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	return m.caseResult(m.Called(ctx, caseID, userID))
}

func (m *MockCaseService) RunExtraction(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseService) SupplyFields(ctx context.Context, input service.SupplyFieldsInput) (*domain.Case, error) {
	return m.caseResult(m.Called(ctx, input))
}

func (m *MockCaseService) Generate(ctx context.Context, caseID, userID uuid.UUID) (*domain.Document, error) {
	return m.documentResult(m.Called(ctx, caseID, userID))
}

func (m *MockCaseService) Approve(ctx context.Context, caseID, userID uuid.UUID) (*domain.Case, error) {
	return m.caseResult(m.Called(ctx, caseID, userID))
}

func (m *MockCaseService) ListDocuments(ctx context.Context, caseID, userID uuid.UUID) ([]domain.Document, error) {
	args := m.Called(ctx, caseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockCaseService) GetDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	return m.documentResult(m.Called(ctx, docID, userID))
}

func (m *MockCaseService) EditDocument(ctx context.Context, input service.EditDocumentInput) (*domain.Document, error) {
	return m.documentResult(m.Called(ctx, input))
}

func (m *MockCaseService) ApproveDocument(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	return m.documentResult(m.Called(ctx, docID, userID))
}

func (m *MockCaseService) MarkPrinted(ctx context.Context, docID, userID uuid.UUID) (*domain.Document, error) {
	return m.documentResult(m.Called(ctx, docID, userID))
}

func (m *MockCaseService) ListDocumentVersions(ctx context.Context, docID, userID uuid.UUID) ([]domain.DocumentVersion, error) {
	args := m.Called(ctx, docID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentVersion), args.Error(1)
}

func (m *MockCaseService) FailStage(ctx context.Context, c *domain.Case, message string) error {
	args := m.Called(ctx, c, message)
	return args.Error(0)
}

func (m *MockCaseService) Wait() {
	m.Called()
}
