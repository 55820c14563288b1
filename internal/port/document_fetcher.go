package port

import (
	"context"

	"billrecon/internal/domain"
)

// DocumentFetcher downloads and prepares a source document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, documentURL string) (*domain.Document, error)
}
