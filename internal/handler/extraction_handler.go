package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"billrecon/internal/domain"
	"billrecon/internal/export"
	"billrecon/internal/middleware"
	"billrecon/internal/service"
)

// ExtractionHandler handles bill extraction and reconciliation endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
	log               *zap.Logger
	now               func() time.Time
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService, log *zap.Logger) *ExtractionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExtractionHandler{
		extractionService: extractionService,
		log:               log.Named("handler.extraction"),
		now:               time.Now,
	}
}

// Extract handles POST /extract-bill-data
// @Summary Extract and reconcile bill line items
// @Description Downloads the bill at the given URL, extracts line items page by page, removes cross-page duplicates and returns the reconciled total.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractRequest true "Document URL"
// @Success 200 {object} ExtractionResponse "Reconciled line items"
// @Failure 400 {object} ErrorResponseBody "Document could not be acquired"
// @Failure 413 {object} ErrorResponseBody "Document too large"
// @Failure 422 {object} ErrorResponseBody "Malformed page record"
// @Failure 429 {object} ErrorResponseBody "Extraction providers rate limited"
// @Failure 500 {object} ErrorResponseBody "Extraction failed"
// @Router /extract-bill-data [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	input, ok := h.bindExtractInput(c)
	if !ok {
		return
	}

	out, err := h.extractionService.Extract(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondExtraction(c, out.TokenUsage, out.Result)
}

// Reconcile handles POST /api/v1/reconcile
// @Summary Reconcile already-extracted pages
// @Description Validates and deduplicates page-wise line items and computes the reconciled total without fetching or calling a model.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ReconcileRequest true "Page-wise line items"
// @Success 200 {object} ExtractionResponse "Reconciled line items"
// @Failure 400 {object} ErrorResponseBody "Invalid request body"
// @Failure 422 {object} ErrorResponseBody "Malformed page record"
// @Router /reconcile [post]
func (h *ExtractionHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "pagewise_line_items is required")
		return
	}

	result, err := h.extractionService.Reconcile(c.Request.Context(), *req.Pages)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondExtraction(c, domain.TokenUsage{}, result)
}

// Export handles POST /api/v1/extract-bill-data/export
// @Summary Extract a bill and download the line items as a sheet
// @Tags extraction
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param request body ExtractRequest true "Document URL"
// @Success 200 {file} file "Line item sheet"
// @Failure 400 {object} ErrorResponseBody "Invalid format or document"
// @Failure 500 {object} ErrorResponseBody "Extraction failed"
// @Router /extract-bill-data/export [post]
func (h *ExtractionHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportFormatCSV))))
	if !domain.ValidExportFormats[format] {
		HandleError(c, h.log, fmt.Errorf("%w: %q", domain.ErrInvalidExportFormat, format))
		return
	}

	input, ok := h.bindExtractInput(c)
	if !ok {
		return
	}

	out, err := h.extractionService.Extract(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, out.Result); err != nil {
		HandleError(c, h.log, err)
		return
	}

	filename := export.BuildFilename(input.DocumentURL, format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// ListRecent handles GET /api/v1/extractions
// @Summary List recent extraction audit records
// @Tags extraction
// @Produce json
// @Param limit query int false "Max records (default 20, max 100)"
// @Success 200 {object} Response{data=[]domain.ExtractionAudit}
// @Failure 404 {object} ErrorResponseBody "Audit log not enabled"
// @Router /extractions [get]
func (h *ExtractionHandler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	rows, err := h.extractionService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	if rows == nil {
		rows = []domain.ExtractionAudit{}
	}

	RespondOK(c, rows)
}

func (h *ExtractionHandler) bindExtractInput(c *gin.Context) (service.ExtractInput, bool) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Document) == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document is required")
		return service.ExtractInput{}, false
	}
	return service.ExtractInput{
		RequestID:   middleware.GetRequestID(c),
		DocumentURL: strings.TrimSpace(req.Document),
	}, true
}
