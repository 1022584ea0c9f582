package handler

import (
	"github.com/gin-gonic/gin"

	"notaria/internal/port"
)

// CaseTypeHandler exposes the case-type catalog.
type CaseTypeHandler struct {
	caseTypes port.CaseTypeRegistry
}

// NewCaseTypeHandler creates a new CaseTypeHandler.
func NewCaseTypeHandler(caseTypes port.CaseTypeRegistry) *CaseTypeHandler {
	return &CaseTypeHandler{caseTypes: caseTypes}
}

// List handles GET /api/v1/case-types
func (h *CaseTypeHandler) List(c *gin.Context) {
	RespondOK(c, h.caseTypes.List())
}

// GetByID handles GET /api/v1/case-types/:id
func (h *CaseTypeHandler) GetByID(c *gin.Context) {
	ct, err := h.caseTypes.Get(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ct)
}
