package port

import (
	"context"

	"billrecon/internal/domain"
)

// ExtractionAuditRepository persists one audit row per extraction request.
type ExtractionAuditRepository interface {
	Create(ctx context.Context, entry *domain.ExtractionAudit) error
	ListRecent(ctx context.Context, limit int) ([]domain.ExtractionAudit, error)
	Ping(ctx context.Context) error
}
