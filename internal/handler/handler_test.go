package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"notaria/internal/casetype"
	"notaria/internal/domain"
	"notaria/internal/export"
	"notaria/internal/handler"
	"notaria/internal/middleware"
	"notaria/internal/port"
	"notaria/internal/service"
	"notaria/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const catalogYAML = `
case_types:
  - id: compraventa_inmueble
    name: Compraventa de inmueble
    fields:
      - {id: vendedor, label: Vendedor, type: string, required: true, section: partes}
      - {id: precio, label: Precio, type: currency, required: true}
`

func newCaseTypes(t *testing.T) port.CaseTypeRegistry {
	t.Helper()
	reg, err := casetype.Parse([]byte(catalogYAML))
	require.NoError(t, err)
	return reg
}

func newContext(method, target string, body *bytes.Buffer, userID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request, _ = http.NewRequest(method, target, body)
	c.Request.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		c.Set(middleware.ContextKeyUserID, userID)
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Field: "instruction", Message: "must not be empty"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"case not found", domain.NewNotFound("case", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("loading: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"transition", &domain.TransitionError{From: "CREATED", To: "EXTRACTING"}, http.StatusConflict, "INVALID_TRANSITION"},
		{"concurrent", domain.ErrConcurrentTransition, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"locked", domain.ErrDocumentLocked, http.StatusConflict, "DOCUMENT_LOCKED"},
		{"no files", domain.ErrNoFiles, http.StatusBadRequest, "NO_FILES"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"generation", fmt.Errorf("%w: provider timeout", domain.ErrGenerationFailed), http.StatusBadGateway, "GENERATION_FAILED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_InternalHidesDetail(t *testing.T) {
	_, _, msg := handler.MapDomainError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, msg, "password")
}

func TestCaseHandler_Create(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID := uuid.New()

	created := &domain.Case{ID: uuid.New(), UserID: userID, CaseTypeID: "compraventa_inmueble", Status: domain.CaseStatusCreated}
	svc.On("Create", mock.Anything, service.CreateCaseInput{
		UserID: userID, CaseTypeID: "compraventa_inmueble", AIModel: "gemini",
	}).Return(created, nil)

	body := bytes.NewBufferString(`{"case_type_id":"compraventa_inmueble","ai_model":"gemini"}`)
	c, w := newContext(http.MethodPost, "/api/v1/cases", body, userID)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	svc.AssertExpectations(t)
}

func TestCaseHandler_Create_Invalid(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))

	c, w := newContext(http.MethodPost, "/api/v1/cases", bytes.NewBufferString(`{}`), uuid.New())
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCaseHandler_NoAuthContext(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))

	c, w := newContext(http.MethodGet, "/api/v1/cases", nil, uuid.Nil)
	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCaseHandler_List(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID := uuid.New()

	svc.On("List", mock.Anything, port.CaseFilter{
		UserID: userID, Status: domain.CaseStatusNeedsInfo, Offset: 0, Limit: 20,
	}).Return([]domain.Case{{ID: uuid.New()}}, 1, nil)

	c, w := newContext(http.MethodGet, "/api/v1/cases?status=NEEDS_INFO&limit=500", nil, userID)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
	svc.AssertExpectations(t)
}

func TestCaseHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))

	c, w := newContext(http.MethodGet, "/api/v1/cases/nope", nil, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestCaseHandler_GetByID_Forbidden(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	svc.On("Get", mock.Anything, caseID, userID).Return(nil, domain.ErrForbidden)

	c, w := newContext(http.MethodGet, "/api/v1/cases/"+caseID.String(), nil, userID)
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCaseHandler_UploadFile(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	svc.On("AttachFile", mock.Anything, mock.MatchedBy(func(in service.AttachFileInput) bool {
		return in.CaseID == caseID && in.UserID == userID && in.Category == "ine" && in.FileName == "ine.pdf"
	})).Return(&domain.CaseFile{ID: uuid.New(), CaseID: caseID, Category: "ine"}, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("category", "ine")
	part, _ := writer.CreateFormFile("file", "ine.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 test content"))
	_ = writer.Close()

	c, w := newContext(http.MethodPost, "/api/v1/cases/"+caseID.String()+"/files", body, userID)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.UploadFile(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestCaseHandler_UploadFile_Missing(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	caseID := uuid.New()

	c, w := newContext(http.MethodPost, "/api/v1/cases/"+caseID.String()+"/files", nil, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.UploadFile(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestCaseHandler_Process(t *testing.T) {
	userID, caseID := uuid.New(), uuid.New()

	t.Run("accepted", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewCaseHandler(svc, newCaseTypes(t))
		svc.On("Process", mock.Anything, caseID, userID).
			Return(&domain.Case{ID: caseID, Status: domain.CaseStatusExtracting}, nil)

		c, w := newContext(http.MethodPost, "/", nil, userID)
		c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
		h.Process(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("no files", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewCaseHandler(svc, newCaseTypes(t))
		svc.On("Process", mock.Anything, caseID, userID).Return(nil, domain.ErrNoFiles)

		c, w := newContext(http.MethodPost, "/", nil, userID)
		c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
		h.Process(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "NO_FILES", decode(t, w).Error.Code)
	})

	t.Run("concurrent trigger", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewCaseHandler(svc, newCaseTypes(t))
		svc.On("Process", mock.Anything, caseID, userID).Return(nil, domain.ErrConcurrentTransition)

		c, w := newContext(http.MethodPost, "/", nil, userID)
		c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
		h.Process(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCaseHandler_SupplyFields(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	svc.On("SupplyFields", mock.Anything, service.SupplyFieldsInput{
		CaseID: caseID, UserID: userID, Fields: map[string]string{"precio": "1500000.50"},
	}).Return(&domain.Case{ID: caseID, Status: domain.CaseStatusReviewing}, nil)

	c, w := newContext(http.MethodPut, "/", bytes.NewBufferString(`{"fields":{"precio":"1500000.50"}}`), userID)
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.SupplyFields(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCaseHandler_Generate_Failure(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	svc.On("Generate", mock.Anything, caseID, userID).
		Return(nil, fmt.Errorf("%w: empty reply", domain.ErrGenerationFailed))

	c, w := newContext(http.MethodPost, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.Generate(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "GENERATION_FAILED", decode(t, w).Error.Code)
}

func TestCaseHandler_ExportXLSX(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	data := domain.ExtractedData{}
	data.Set("partes", "vendedor", domain.NewFieldDatum(domain.StringPtr("ANA"), 0.9, "ine", false))
	svc.On("Get", mock.Anything, caseID, userID).
		Return(&domain.Case{ID: caseID, CaseTypeID: "compraventa_inmueble", ExtractedData: data}, nil)

	c, w := newContext(http.MethodGet, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.ExportXLSX(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "compraventa_inmueble_"+caseID.String()[:8])
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestCaseHandler_ExportCSV(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewCaseHandler(svc, newCaseTypes(t))
	userID, caseID := uuid.New(), uuid.New()

	svc.On("Get", mock.Anything, caseID, userID).
		Return(&domain.Case{ID: caseID, CaseTypeID: "compraventa_inmueble", ExtractedData: domain.ExtractedData{}}, nil)

	c, w := newContext(http.MethodGet, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "partes,vendedor,Vendedor,,0.00,,sí,sí")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
}

func TestDocumentHandler_Edit(t *testing.T) {
	userID, docID := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewDocumentHandler(svc)
		svc.On("EditDocument", mock.Anything, service.EditDocumentInput{
			DocumentID: docID, UserID: userID, Instruction: "Cambia el precio",
		}).Return(&domain.Document{ID: docID, Version: 2, Status: domain.DocumentStatusInReview}, nil)

		c, w := newContext(http.MethodPost, "/", bytes.NewBufferString(`{"instruction":"Cambia el precio"}`), userID)
		c.Params = gin.Params{{Key: "id", Value: docID.String()}}
		h.Edit(c)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing instruction", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewDocumentHandler(svc)

		c, w := newContext(http.MethodPost, "/", bytes.NewBufferString(`{}`), userID)
		c.Params = gin.Params{{Key: "id", Value: docID.String()}}
		h.Edit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("locked", func(t *testing.T) {
		svc := new(mocks.MockCaseService)
		h := handler.NewDocumentHandler(svc)
		svc.On("EditDocument", mock.Anything, mock.Anything).Return(nil, domain.ErrDocumentLocked)

		c, w := newContext(http.MethodPost, "/", bytes.NewBufferString(`{"instruction":"x"}`), userID)
		c.Params = gin.Params{{Key: "id", Value: docID.String()}}
		h.Edit(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDocumentHandler_Preview(t *testing.T) {
	svc := new(mocks.MockCaseService)
	h := handler.NewDocumentHandler(svc)
	userID, docID := uuid.New(), uuid.New()

	svc.On("GetDocument", mock.Anything, docID, userID).Return(&domain.Document{
		ID: docID, Type: "compraventa_inmueble", Status: domain.DocumentStatusDraft, Version: 1,
		Content: "**PRIMERA.** Ante mí",
	}, nil)

	c, w := newContext(http.MethodGet, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), "<strong>PRIMERA.</strong>")
}

func TestDocumentHandler_StatusActions(t *testing.T) {
	userID, docID := uuid.New(), uuid.New()
	svc := new(mocks.MockCaseService)
	h := handler.NewDocumentHandler(svc)

	svc.On("ApproveDocument", mock.Anything, docID, userID).
		Return(&domain.Document{ID: docID, Status: domain.DocumentStatusApproved}, nil)
	svc.On("MarkPrinted", mock.Anything, docID, userID).
		Return(nil, &domain.TransitionError{From: "BORRADOR", To: "IMPRESO"})

	c, w := newContext(http.MethodPost, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	h.Approve(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodPost, "/", nil, userID)
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	h.MarkPrinted(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCaseTypeHandler(t *testing.T) {
	h := handler.NewCaseTypeHandler(newCaseTypes(t))

	c, w := newContext(http.MethodGet, "/", nil, uuid.Nil)
	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "compraventa_inmueble")

	c, w = newContext(http.MethodGet, "/", nil, uuid.Nil)
	c.Params = gin.Params{{Key: "id", Value: "testamento"}}
	h.GetByID(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(_ context.Context) error { return p.err }

func TestHealthHandler_Readiness(t *testing.T) {
	providers := func() []domain.AIModel { return []domain.AIModel{domain.AIModelClaude} }
	none := func() []domain.AIModel { return nil }

	tests := []struct {
		name      string
		db        fakePinger
		providers func() []domain.AIModel
		status    int
	}{
		{"ready", fakePinger{}, providers, http.StatusOK},
		{"db down", fakePinger{err: errors.New("refused")}, providers, http.StatusServiceUnavailable},
		{"no providers", fakePinger{}, none, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.db, tt.providers)
			c, w := newContext(http.MethodGet, "/readyz", nil, uuid.Nil)
			h.Readiness(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCaseHandler_ImportXLSX(t *testing.T) {
	svc := new(mocks.MockCaseService)
	caseTypes := newCaseTypes(t)
	h := handler.NewCaseHandler(svc, caseTypes)
	userID, caseID := uuid.New(), uuid.New()

	data := domain.ExtractedData{}
	data.Set("partes", "vendedor", domain.NewFieldDatum(domain.StringPtr("ANA"), 0.9, "ine", false))
	current := &domain.Case{ID: caseID, CaseTypeID: "compraventa_inmueble", Status: domain.CaseStatusNeedsInfo, ExtractedData: data}
	svc.On("Get", mock.Anything, caseID, userID).Return(current, nil)

	// build the sheet the reviewer downloaded, with precio filled in
	ct, _ := caseTypes.Get("compraventa_inmueble")
	var sheet bytes.Buffer
	require.NoError(t, export.WriteCaseXLSX(&sheet, current, ct))
	f, err := excelize.OpenReader(&sheet)
	require.NoError(t, err)
	rows, _ := f.GetRows("Datos")
	for i, row := range rows {
		if len(row) > 1 && row[1] == "precio" {
			cell, _ := excelize.CoordinatesToCellName(4, i+1)
			require.NoError(t, f.SetCellValue("Datos", cell, "1500000.50"))
		}
	}
	var edited bytes.Buffer
	require.NoError(t, f.Write(&edited))

	svc.On("SupplyFields", mock.Anything, service.SupplyFieldsInput{
		CaseID: caseID, UserID: userID, Fields: map[string]string{"general.precio": "1500000.50"},
	}).Return(&domain.Case{ID: caseID, Status: domain.CaseStatusReviewing}, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "expediente.xlsx")
	_, _ = part.Write(edited.Bytes())
	_ = writer.Close()

	c, w := newContext(http.MethodPost, "/", body, userID)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: caseID.String()}}
	h.ImportXLSX(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
