package port

import (
	"context"

	"billrecon/internal/domain"
)

// ExtractInput carries the document handed to an extraction provider.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	PageCount   int
}

// ExtractOutput is the raw per-page result of one extraction call.
type ExtractOutput struct {
	Pages []domain.Page
	// PrintedTotal is the grand total printed on the Final Bill page, when the model found one.
	PrintedTotal *float64
	TokenUsage   domain.TokenUsage
	ModelUsed    string
}

// PageExtractor abstracts LLM-based page-wise line item extraction.
type PageExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
