package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"billrecon/internal/domain"
	"billrecon/internal/port"
)

type extractionAuditRepo struct {
	db *sqlx.DB
}

// NewExtractionAuditRepo creates a new PostgreSQL-backed ExtractionAuditRepository.
func NewExtractionAuditRepo(db *sqlx.DB) port.ExtractionAuditRepository {
	return &extractionAuditRepo{db: db}
}

func (r *extractionAuditRepo) Create(ctx context.Context, audit *domain.ExtractionAudit) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO extraction_audits (
			id, request_id, document_url, content_type, page_count, total_item_count,
			reconciled_amount, printed_total, model_used, input_tokens, output_tokens,
			total_tokens, status, error_code, duration_ms, created_at
		 ) VALUES (
			:id, :request_id, :document_url, :content_type, :page_count, :total_item_count,
			:reconciled_amount, :printed_total, :model_used, :input_tokens, :output_tokens,
			:total_tokens, :status, :error_code, :duration_ms, :created_at
		 )`, audit)
	if err != nil {
		return fmt.Errorf("extractionAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error) {
	var rows []domain.ExtractionAudit
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM extraction_audits ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("extractionAuditRepo.ListRecent: %w", err)
	}
	return rows, nil
}

func (r *extractionAuditRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
