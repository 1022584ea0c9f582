package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notaria/internal/export"
	"notaria/internal/service"
)

// DocumentHandler handles rendered document endpoints.
type DocumentHandler struct {
	cases service.CaseService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(cases service.CaseService) *DocumentHandler {
	return &DocumentHandler{cases: cases}
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.cases.GetDocument(c.Request.Context(), docID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Edit handles POST /api/v1/documents/:id/edit
func (h *DocumentHandler) Edit(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Instruction string `json:"instruction" binding:"required"`
		AIModel     string `json:"ai_model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "instruction is required")
		return
	}

	doc, err := h.cases.EditDocument(c.Request.Context(), service.EditDocumentInput{
		DocumentID:  docID,
		UserID:      userID,
		Instruction: req.Instruction,
		Model:       req.AIModel,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// ListVersions handles GET /api/v1/documents/:id/versions
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	versions, err := h.cases.ListDocumentVersions(c.Request.Context(), docID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, versions)
}

// Approve handles POST /api/v1/documents/:id/approve
func (h *DocumentHandler) Approve(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.cases.ApproveDocument(c.Request.Context(), docID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// MarkPrinted handles POST /api/v1/documents/:id/print
func (h *DocumentHandler) MarkPrinted(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.cases.MarkPrinted(c.Request.Context(), docID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Preview handles GET /api/v1/documents/:id/preview
func (h *DocumentHandler) Preview(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		return
	}
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.cases.GetDocument(c.Request.Context(), docID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", export.RenderPreviewHTML(doc))
}
