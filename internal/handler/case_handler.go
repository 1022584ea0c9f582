package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"notaria/internal/domain"
	"notaria/internal/export"
	"notaria/internal/port"
	"notaria/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CaseHandler handles case pipeline endpoints.
type CaseHandler struct {
	cases     service.CaseService
	caseTypes port.CaseTypeRegistry
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(cases service.CaseService, caseTypes port.CaseTypeRegistry) *CaseHandler {
	return &CaseHandler{cases: cases, caseTypes: caseTypes}
}

// Create handles POST /api/v1/cases
func (h *CaseHandler) Create(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}

	var req struct {
		CaseTypeID   string `json:"case_type_id" binding:"required"`
		AIModel      string `json:"ai_model"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "case_type_id is required")
		return
	}

	created, err := h.cases.Create(c.Request.Context(), service.CreateCaseInput{
		UserID:       userID,
		CaseTypeID:   req.CaseTypeID,
		AIModel:      req.AIModel,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, created)
}

// List handles GET /api/v1/cases
func (h *CaseHandler) List(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	offset, limit := paginationParams(c)

	cases, total, err := h.cases.List(c.Request.Context(), port.CaseFilter{
		UserID:     userID,
		Status:     domain.CaseStatus(c.Query("status")),
		CaseTypeID: c.Query("case_type_id"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, cases, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/cases/:id
func (h *CaseHandler) GetByID(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.cases.Get(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, found)
}

// UploadFile handles POST /api/v1/cases/:id/files (multipart: file, category)
func (h *CaseHandler) UploadFile(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	attached, err := h.cases.AttachFile(c.Request.Context(), service.AttachFileInput{
		CaseID:   caseID,
		UserID:   userID,
		Category: c.PostForm("category"),
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, attached)
}

// ListFiles handles GET /api/v1/cases/:id/files
func (h *CaseHandler) ListFiles(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	files, err := h.cases.ListFiles(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, files)
}

// Process handles POST /api/v1/cases/:id/process. Extraction continues in
// the background; clients poll the case for its outcome.
func (h *CaseHandler) Process(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	processing, err := h.cases.Process(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, processing)
}

// SupplyFields handles PUT /api/v1/cases/:id/fields
func (h *CaseHandler) SupplyFields(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Fields map[string]string `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fields is required")
		return
	}

	updated, err := h.cases.SupplyFields(c.Request.Context(), service.SupplyFieldsInput{
		CaseID: caseID,
		UserID: userID,
		Fields: req.Fields,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, updated)
}

// Generate handles POST /api/v1/cases/:id/generate
func (h *CaseHandler) Generate(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.cases.Generate(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, doc)
}

// Approve handles POST /api/v1/cases/:id/approve
func (h *CaseHandler) Approve(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	approved, err := h.cases.Approve(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, approved)
}

// ListDocuments handles GET /api/v1/cases/:id/documents
func (h *CaseHandler) ListDocuments(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	docs, err := h.cases.ListDocuments(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, docs)
}

// ExportXLSX handles GET /api/v1/cases/:id/export.xlsx
func (h *CaseHandler) ExportXLSX(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.cases.Get(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	ct, err := h.caseTypes.Get(found.CaseTypeID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCaseXLSX(&buf, found, ct); err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(found, "xlsx")+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCSV handles GET /api/v1/cases/:id/export.csv
func (h *CaseHandler) ExportCSV(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	found, err := h.cases.Get(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	ct, err := h.caseTypes.Get(found.CaseTypeID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCaseCSV(&buf, found, ct); err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(found, "csv")+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportXLSX handles POST /api/v1/cases/:id/import.xlsx (multipart: file).
// Values changed or filled in the review sheet are supplied as manual fields.
func (h *CaseHandler) ImportXLSX(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	values, err := export.ReadFieldValues(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_SHEET", "file is not a readable review sheet")
		return
	}
	if len(values) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_SHEET", "sheet contains no values")
		return
	}

	current, err := h.cases.Get(c.Request.Context(), caseID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	// unchanged rows keep their extracted provenance
	for key, value := range values {
		if d, found := current.ExtractedData.Lookup(key); found && d.StringValue() == value {
			delete(values, key)
		}
	}
	if len(values) == 0 {
		RespondOK(c, current)
		return
	}

	updated, err := h.cases.SupplyFields(c.Request.Context(), service.SupplyFieldsInput{
		CaseID: caseID,
		UserID: userID,
		Fields: values,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, updated)
}
