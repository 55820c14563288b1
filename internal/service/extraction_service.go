package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"billrecon/internal/domain"
	"billrecon/internal/parser"
	"billrecon/internal/port"
	"billrecon/internal/reconcile"
)

// ExtractInput is the DTO for a single bill extraction request.
type ExtractInput struct {
	RequestID   string
	DocumentURL string
}

// ExtractOutput is the reconciled result plus provider metadata.
type ExtractOutput struct {
	Result     *domain.ExtractionResult
	TokenUsage domain.TokenUsage
	ModelUsed  string
	PageCount  int
	// CrossCheck is set when the bill printed a grand total.
	CrossCheck *reconcile.CrossCheckResult
}

// ExtractionOptions tunes the extraction service.
type ExtractionOptions struct {
	// TotalTolerance is the accepted gap between a printed total and the reconciled amount.
	TotalTolerance float64
	// ArchivePrefix is the object key prefix for archived documents and results.
	ArchivePrefix string
}

// ExtractionService defines the bill extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
	Reconcile(ctx context.Context, pages []domain.Page) (*domain.ExtractionResult, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error)
}

type extractionService struct {
	fetcher   port.DocumentFetcher
	extractor port.PageExtractor
	engine    *reconcile.Engine
	archive   port.ObjectStorage
	audits    port.ExtractionAuditRepository
	opts      ExtractionOptions
	log       *zap.Logger
	now       func() time.Time
}

// NewExtractionService creates a new ExtractionService implementation.
// archive and audits may be nil when those features are disabled.
func NewExtractionService(
	fetcher port.DocumentFetcher,
	extractor port.PageExtractor,
	engine *reconcile.Engine,
	archive port.ObjectStorage,
	audits port.ExtractionAuditRepository,
	opts ExtractionOptions,
	log *zap.Logger,
) ExtractionService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TotalTolerance < 0 {
		opts.TotalTolerance = reconcile.DefaultCrossCheckTolerance
	}
	return &extractionService{
		fetcher:   fetcher,
		extractor: extractor,
		engine:    engine,
		archive:   archive,
		audits:    audits,
		opts:      opts,
		log:       log.Named("service.extraction"),
		now:       time.Now,
	}
}

func (s *extractionService) Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error) {
	start := s.now()
	log := s.log.With(zap.String("request_id", input.RequestID))

	audit := &domain.ExtractionAudit{
		ID:          uuid.New(),
		RequestID:   input.RequestID,
		DocumentURL: input.DocumentURL,
	}

	out, doc, err := s.extract(ctx, log, input)
	audit.DurationMS = s.now().Sub(start).Milliseconds()
	audit.CreatedAt = start.UTC()

	if doc != nil {
		audit.ContentType = doc.ContentType
		audit.PageCount = doc.PageCount
	}

	if err != nil {
		log.Warn("extraction failed", zap.String("url", input.DocumentURL), zap.Error(err))
		audit.Status = domain.ExtractionStatusFailed
		audit.ErrorCode = domain.ErrorCode(err)
		s.recordSideEffects(ctx, log, audit, nil, nil)
		return nil, err
	}

	audit.Status = domain.ExtractionStatusCompleted
	audit.TotalItemCount = out.Result.TotalItemCount
	audit.ReconciledAmount = out.Result.ReconciledAmount
	audit.ModelUsed = out.ModelUsed
	audit.InputTokens = out.TokenUsage.InputTokens
	audit.OutputTokens = out.TokenUsage.OutputTokens
	audit.TotalTokens = out.TokenUsage.TotalTokens
	if out.CrossCheck != nil {
		printed := out.CrossCheck.PrintedTotal
		audit.PrintedTotal = &printed
	}

	log.Info("extraction completed",
		zap.Int("pages", out.PageCount),
		zap.Int("items", out.Result.TotalItemCount),
		zap.Float64("reconciled_amount", out.Result.ReconciledAmount),
		zap.String("model", out.ModelUsed),
		zap.Int("total_tokens", out.TokenUsage.TotalTokens),
		zap.Int64("duration_ms", audit.DurationMS))

	s.recordSideEffects(ctx, log, audit, doc, out.Result)
	return out, nil
}

func (s *extractionService) extract(ctx context.Context, log *zap.Logger, input ExtractInput) (*ExtractOutput, *domain.Document, error) {
	doc, err := s.fetcher.Fetch(ctx, input.DocumentURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching document: %w", err)
	}

	raw, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   doc.Bytes,
		ContentType: doc.ContentType,
		PageCount:   doc.PageCount,
	})
	if err != nil {
		return nil, doc, classifyExtractorError(ctx, err)
	}

	if len(raw.Pages) == 0 {
		return nil, doc, fmt.Errorf("%w: model returned no pages", domain.ErrExtractionFailed)
	}

	result, err := s.engine.Reconcile(raw.Pages)
	if err != nil {
		return nil, doc, err
	}
	if result.TotalItemCount == 0 {
		return nil, doc, fmt.Errorf("%w: no line items on any page", domain.ErrExtractionFailed)
	}

	out := &ExtractOutput{
		Result:     result,
		TokenUsage: raw.TokenUsage,
		ModelUsed:  raw.ModelUsed,
		PageCount:  doc.PageCount,
	}

	if raw.PrintedTotal != nil {
		cc := reconcile.CrossCheck(*raw.PrintedTotal, result.ReconciledAmount, s.opts.TotalTolerance)
		out.CrossCheck = &cc
		if !cc.WithinTolerance {
			log.Warn("printed total differs from reconciled amount",
				zap.Float64("printed_total", cc.PrintedTotal),
				zap.Float64("reconciled_amount", cc.ReconciledAmount),
				zap.Float64("difference", cc.Difference))
		}
	}

	return out, doc, nil
}

// classifyExtractorError maps provider failures onto the domain taxonomy.
func classifyExtractorError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var rlErr *parser.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case errors.Is(err, domain.ErrMalformedPage), errors.Is(err, domain.ErrExtractionFailed):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
}

// recordSideEffects archives the document and result and writes the audit
// row. The group only joins the two goroutines; each logs its own failure
// and neither fails the request.
func (s *extractionService) recordSideEffects(
	ctx context.Context,
	log *zap.Logger,
	audit *domain.ExtractionAudit,
	doc *domain.Document,
	result *domain.ExtractionResult,
) {
	if s.audits == nil && (s.archive == nil || doc == nil) {
		return
	}

	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group

	if s.archive != nil && doc != nil {
		g.Go(func() error {
			if err := s.archiveResult(ctx, audit.RequestID, doc, result); err != nil {
				log.Error("archiving extraction failed", zap.Error(err))
			}
			return nil
		})
	}

	if s.audits != nil {
		g.Go(func() error {
			if err := s.audits.Create(ctx, audit); err != nil {
				log.Error("writing extraction audit failed", zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (s *extractionService) archiveResult(ctx context.Context, requestID string, doc *domain.Document, result *domain.ExtractionResult) error {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	base := path.Join(s.opts.ArchivePrefix, requestID)

	ext := "bin"
	if ft, ok := domain.AllowedContentTypes[doc.ContentType]; ok {
		ext = string(ft)
	}
	docKey := path.Join(base, "document."+ext)

	if _, err := s.archive.Upload(ctx, port.UploadInput{
		Key:         docKey,
		Body:        bytes.NewReader(doc.Bytes),
		ContentType: doc.ContentType,
		Size:        int64(len(doc.Bytes)),
	}); err != nil {
		return fmt.Errorf("uploading document: %w", err)
	}

	if result == nil {
		return nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if _, err := s.archive.Upload(ctx, port.UploadInput{
		Key:         path.Join(base, "result.json"),
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
		Size:        int64(len(payload)),
	}); err != nil {
		// Keep the archive consistent: a document without its result is removed.
		if delErr := s.archive.Delete(ctx, docKey); delErr != nil {
			return fmt.Errorf("uploading result: %w (cleanup failed: %v)", err, delErr)
		}
		return fmt.Errorf("uploading result: %w", err)
	}
	return nil
}

func (s *extractionService) Reconcile(ctx context.Context, pages []domain.Page) (*domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.engine.Reconcile(pages)
	if err != nil {
		return nil, err
	}
	s.log.Debug("reconciled pages",
		zap.Int("pages", len(pages)),
		zap.Int("items", result.TotalItemCount),
		zap.Float64("reconciled_amount", result.ReconciledAmount))
	return result, nil
}

func (s *extractionService) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error) {
	if s.audits == nil {
		return nil, domain.ErrAuditDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.audits.ListRecent(ctx, limit)
}
