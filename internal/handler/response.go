package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billrecon/internal/domain"
	"billrecon/internal/middleware"
	"billrecon/internal/parser"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	IsSuccess  bool               `json:"is_success"`
	TokenUsage *domain.TokenUsage `json:"token_usage,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Error      *APIError          `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{IsSuccess: true, Data: data})
}

// RespondExtraction sends a 200 success response carrying token usage.
func RespondExtraction(c *gin.Context, usage domain.TokenUsage, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{IsSuccess: true, TokenUsage: &usage, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		IsSuccess: false,
		Error:     &APIError{Code: code, Message: msg},
	})
}

// StatusClientClosedRequest is reported when the client went away before a
// response was written.
const StatusClientClosedRequest = 499

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Client errors carry the error text; server errors get a generic message.
func MapDomainError(err error) (status int, code, msg string) {
	code = domain.ErrorCode(err)
	switch code {
	case domain.CodeAcquisitionFailed:
		return http.StatusBadRequest, code, err.Error()
	case domain.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge, code, "document exceeds maximum allowed size"
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests, code, "extraction providers are rate limited; retry later"
	case domain.CodeMalformedPage:
		return http.StatusUnprocessableEntity, code, err.Error()
	case domain.CodeExtractionFailed:
		return http.StatusInternalServerError, code, "extraction produced no usable line items"
	case domain.CodeInvalidFormat:
		return http.StatusBadRequest, code, "invalid export format; allowed: csv, xlsx"
	case domain.CodeRequestCanceled:
		return StatusClientClosedRequest, code, "request canceled"
	case domain.CodeAuditDisabled:
		return http.StatusNotFound, code, "extraction audit log is not enabled"
	default:
		return http.StatusInternalServerError, domain.CodeInternalError, "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	switch {
	case code == domain.CodeRequestCanceled:
		log.Warn("request canceled",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
	case status >= 500:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("code", code),
			zap.Error(err))
	}

	var rlErr *parser.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}

	RespondError(c, status, code, msg)
}
