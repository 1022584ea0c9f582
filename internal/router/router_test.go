package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"notaria/internal/casetype"
	"notaria/internal/domain"
	"notaria/internal/handler"
	"notaria/internal/router"
	"notaria/internal/service"
	"notaria/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newEngine(t *testing.T, svc *mocks.MockCaseService, auth *mocks.MockAuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	caseTypes, err := casetype.Load("")
	require.NoError(t, err)
	return router.Setup(auth, router.Handlers{
		Case:     handler.NewCaseHandler(svc, caseTypes),
		Document: handler.NewDocumentHandler(svc),
		CaseType: handler.NewCaseTypeHandler(caseTypes),
		Health:   handler.NewHealthHandler(okPinger{}, func() []domain.AIModel { return []domain.AIModel{domain.AIModelClaude} }),
	}, []string{"http://localhost:3000"})
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := newEngine(t, new(mocks.MockCaseService), new(mocks.MockAuthService))

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r := newEngine(t, new(mocks.MockCaseService), new(mocks.MockAuthService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/cases", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthenticatedRoute(t *testing.T) {
	svc := new(mocks.MockCaseService)
	auth := new(mocks.MockAuthService)
	r := newEngine(t, svc, auth)

	userID, caseID := uuid.New(), uuid.New()
	auth.On("ValidateToken", "tok").Return(&service.Claims{UserID: userID}, nil)
	svc.On("Process", mock.Anything, caseID, userID).
		Return(&domain.Case{ID: caseID, Status: domain.CaseStatusExtracting}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/cases/"+caseID.String()+"/process", http.NoBody)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"EXTRACTING"`)
	svc.AssertExpectations(t)
}
