package domain

import (
	"context"
	"errors"
)

var (
	// Acquisition failures: the document could not be turned into pages.
	ErrAcquisitionFailed   = errors.New("document could not be acquired")
	ErrInvalidDocumentURL  = errors.New("invalid document URL")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")

	// Extraction failures: the model produced nothing usable.
	ErrExtractionFailed = errors.New("extraction produced no usable line items")
	ErrRateLimited      = errors.New("extraction provider rate limited")

	// ErrMalformedPage rejects the whole request; a partial reconciliation could understate the bill.
	ErrMalformedPage = errors.New("malformed page record")

	ErrInvalidExportFormat = errors.New("invalid export format")
	ErrAuditDisabled       = errors.New("extraction audit log is not enabled")
)

// Error codes reported to clients and stored in the audit log.
const (
	CodeAcquisitionFailed = "ACQUISITION_FAILED"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeMalformedPage     = "MALFORMED_PAGE"
	CodeInvalidFormat     = "INVALID_EXPORT_FORMAT"
	CodeAuditDisabled     = "AUDIT_DISABLED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeRequestCanceled   = "REQUEST_CANCELED"
)

// ErrorCode classifies err into one of the client-facing error codes.
// Order matters: a too-large file is also an acquisition failure.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return CodeRequestCanceled
	case errors.Is(err, ErrFileTooLarge):
		return CodeFileTooLarge
	case errors.Is(err, ErrAcquisitionFailed),
		errors.Is(err, ErrInvalidDocumentURL),
		errors.Is(err, ErrUnsupportedFileType):
		return CodeAcquisitionFailed
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrMalformedPage):
		return CodeMalformedPage
	case errors.Is(err, ErrExtractionFailed):
		return CodeExtractionFailed
	case errors.Is(err, ErrInvalidExportFormat):
		return CodeInvalidFormat
	case errors.Is(err, ErrAuditDisabled):
		return CodeAuditDisabled
	default:
		return CodeInternalError
	}
}
