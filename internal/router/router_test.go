package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"billrecon/internal/domain"
	"billrecon/internal/handler"
	"billrecon/internal/router"
	"billrecon/internal/service"
	"billrecon/mocks"
)

func newRouter(svc *mocks.MockExtractionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	return router.Setup(log, []string{"*"},
		handler.NewExtractionHandler(svc, log),
		handler.NewHealthHandler("test", nil))
}

func TestRouter_HealthRoutes(t *testing.T) {
	r := newRouter(new(mocks.MockExtractionService))

	for _, path := range []string{"/", "/health", "/healthz", "/readyz"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_ExtractPropagatesRequestID(t *testing.T) {
	svc := new(mocks.MockExtractionService)
	r := newRouter(svc)

	svc.On("Extract", mock.Anything, service.ExtractInput{
		RequestID:   "req-abc",
		DocumentURL: "https://cdn.example.com/bill.pdf",
	}).Return(&service.ExtractOutput{Result: &domain.ExtractionResult{}}, nil)

	for _, path := range []string{"/extract-bill-data", "/api/v1/extract-bill-data"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, path,
			bytes.NewBufferString(`{"document":"https://cdn.example.com/bill.pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", "req-abc")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "req-abc", w.Header().Get("X-Request-ID"))
	}
	svc.AssertNumberOfCalls(t, "Extract", 2)
}

func TestRouter_Preflight(t *testing.T) {
	r := newRouter(new(mocks.MockExtractionService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/extract-bill-data", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newRouter(new(mocks.MockExtractionService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/nope", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
