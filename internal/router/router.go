package router

import (
	"github.com/gin-gonic/gin"

	"notaria/internal/handler"
	"notaria/internal/middleware"
	"notaria/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Case     *handler.CaseHandler
	Document *handler.DocumentHandler
	CaseType *handler.CaseTypeHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.GET("/case-types", h.CaseType.List)
	protected.GET("/case-types/:id", h.CaseType.GetByID)

	cases := protected.Group("/cases")
	cases.POST("", h.Case.Create)
	cases.GET("", h.Case.List)
	cases.GET("/:id", h.Case.GetByID)
	cases.POST("/:id/files", h.Case.UploadFile)
	cases.GET("/:id/files", h.Case.ListFiles)
	cases.POST("/:id/process", h.Case.Process)
	cases.PUT("/:id/fields", h.Case.SupplyFields)
	cases.POST("/:id/generate", h.Case.Generate)
	cases.POST("/:id/approve", h.Case.Approve)
	cases.GET("/:id/documents", h.Case.ListDocuments)
	cases.GET("/:id/export.xlsx", h.Case.ExportXLSX)
	cases.POST("/:id/import.xlsx", h.Case.ImportXLSX)
	cases.GET("/:id/export.csv", h.Case.ExportCSV)

	docs := protected.Group("/documents")
	docs.GET("/:id", h.Document.GetByID)
	docs.POST("/:id/edit", h.Document.Edit)
	docs.GET("/:id/versions", h.Document.ListVersions)
	docs.POST("/:id/approve", h.Document.Approve)
	docs.POST("/:id/print", h.Document.MarkPrinted)
	docs.GET("/:id/preview", h.Document.Preview)

	return r
}
