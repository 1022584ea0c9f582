package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notaria/internal/domain"
	"notaria/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 response for work continuing in the background.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// errorMapping ties a sentinel to its HTTP rendering. An empty msg means the
// error's own text is safe to show.
type errorMapping struct {
	target error
	status int
	code   string
	msg    string
}

// sentinelMappings is checked in order; the first match wins.
var sentinelMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "forbidden"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", ""},
	{domain.ErrConcurrentTransition, http.StatusConflict, "CONCURRENT_MODIFICATION", "case was modified by another operation; retry"},
	{domain.ErrVersionConflict, http.StatusConflict, "VERSION_CONFLICT", "document version changed during edit; retry"},
	{domain.ErrDocumentLocked, http.StatusConflict, "DOCUMENT_LOCKED", "document can no longer be edited"},
	{domain.ErrNoFiles, http.StatusBadRequest, "NO_FILES", "attach at least one file before processing"},
	{domain.ErrNoExtractedData, http.StatusBadRequest, "NO_EXTRACTED_DATA", "case has no extracted data"},
	{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"},
	{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"},
	{domain.ErrNoProvider, http.StatusServiceUnavailable, "NO_PROVIDER", "no AI provider configured"},
	{domain.ErrGenerationFailed, http.StatusBadGateway, "GENERATION_FAILED", ""},
	{domain.ErrEditFailed, http.StatusBadGateway, "EDIT_FAILED", ""},
	{domain.ErrExtractionFailed, http.StatusBadGateway, "EXTRACTION_FAILED", ""},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Messages never carry internal detail except for caller-fixable errors.
func MapDomainError(err error) (status int, code, msg string) {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, "INVALID_REQUEST", validation.Error()
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, "NOT_FOUND", notFound.Error()
	}
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return http.StatusConflict, "INVALID_TRANSITION", transition.Error()
	}
	for _, m := range sentinelMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.msg == "" {
			return m.status, m.code, err.Error()
		}
		return m.status, m.code, m.msg
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("handler.HandleError: req=%s %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.FullPath(), err)
	}
	RespondError(c, status, code, msg)
}

// extractUserID reads the authenticated user. Returns false if the auth
// context is missing (error response already written).
func extractUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a uuid path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

func paginationParams(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
