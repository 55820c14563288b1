package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"billrecon/internal/domain"
	"billrecon/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid url", fmt.Errorf("%w: %w", domain.ErrAcquisitionFailed, domain.ErrInvalidDocumentURL), http.StatusBadRequest, domain.CodeAcquisitionFailed},
		{"file too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, domain.CodeFileTooLarge},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, domain.CodeRateLimited},
		{"malformed page", domain.ErrMalformedPage, http.StatusUnprocessableEntity, domain.CodeMalformedPage},
		{"extraction failed", domain.ErrExtractionFailed, http.StatusInternalServerError, domain.CodeExtractionFailed},
		{"invalid format", domain.ErrInvalidExportFormat, http.StatusBadRequest, domain.CodeInvalidFormat},
		{"audit disabled", domain.ErrAuditDisabled, http.StatusNotFound, domain.CodeAuditDisabled},
		{"client canceled", fmt.Errorf("fetching document: %w", context.Canceled), handler.StatusClientClosedRequest, domain.CodeRequestCanceled},
		{"unknown", errors.New("database exploded"), http.StatusInternalServerError, domain.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestMapDomainError_HidesInternalDetails(t *testing.T) {
	_, _, msg := handler.MapDomainError(fmt.Errorf("%w: gemini: api key leaked in body", domain.ErrExtractionFailed))
	assert.NotContains(t, msg, "api key")

	_, _, msg = handler.MapDomainError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "an internal error occurred", msg)
}

func TestMapDomainError_ClientErrorsCarryDetail(t *testing.T) {
	err := fmt.Errorf("%w: page 3: item_name is required", domain.ErrMalformedPage)
	_, _, msg := handler.MapDomainError(err)
	assert.Contains(t, msg, "page 3")
}

func TestHandleError_CanceledLogsWarnOnly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/extract-bill-data", http.NoBody)

	handler.HandleError(c, zap.New(core), fmt.Errorf("fetching document: %w", context.Canceled))

	assert.Equal(t, handler.StatusClientClosedRequest, w.Code)
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestHandleError_ServerErrorLogsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/extract-bill-data", http.NoBody)

	handler.HandleError(c, zap.New(core), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
