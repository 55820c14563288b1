package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BillItem is one charged line on a bill. Amount is authoritative over
// Quantity*Rate when the two disagree.
type BillItem struct {
	Name     string  `json:"item_name"`
	Amount   float64 `json:"item_amount"`
	Rate     float64 `json:"item_rate"`
	Quantity float64 `json:"item_quantity"`
}

// UnmarshalJSON defaults Quantity to 1 when it is absent or null.
func (b *BillItem) UnmarshalJSON(data []byte) error {
	type plain BillItem
	var aux struct {
		plain
		Quantity *float64 `json:"item_quantity"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = BillItem(aux.plain)
	b.Quantity = 1
	if aux.Quantity != nil {
		b.Quantity = *aux.Quantity
	}
	return nil
}

// Page is one physical page of the source document with the items extracted from it.
// Items is nil only when the extractor omitted the list entirely.
type Page struct {
	PageNo   string     `json:"page_no"`
	PageType PageType   `json:"page_type"`
	Items    []BillItem `json:"bill_items"`
}

// ExtractionResult is the deduplicated, reconciled output for one document.
type ExtractionResult struct {
	Pages            []Page  `json:"pagewise_line_items"`
	TotalItemCount   int     `json:"total_item_count"`
	ReconciledAmount float64 `json:"reconciled_amount"`
}

// TokenUsage is passed through verbatim from the extraction provider.
type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Document is a fetched source document ready for extraction.
type Document struct {
	SourceURL   string
	Bytes       []byte
	ContentType string
	PageCount   int
}

// ExtractionAudit records the outcome of one extraction request.
type ExtractionAudit struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	RequestID        string           `db:"request_id" json:"request_id"`
	DocumentURL      string           `db:"document_url" json:"document_url"`
	ContentType      string           `db:"content_type" json:"content_type"`
	PageCount        int              `db:"page_count" json:"page_count"`
	TotalItemCount   int              `db:"total_item_count" json:"total_item_count"`
	ReconciledAmount float64          `db:"reconciled_amount" json:"reconciled_amount"`
	PrintedTotal     *float64         `db:"printed_total" json:"printed_total,omitempty"`
	ModelUsed        string           `db:"model_used" json:"model_used"`
	InputTokens      int              `db:"input_tokens" json:"input_tokens"`
	OutputTokens     int              `db:"output_tokens" json:"output_tokens"`
	TotalTokens      int              `db:"total_tokens" json:"total_tokens"`
	Status           ExtractionStatus `db:"status" json:"status"`
	ErrorCode        string           `db:"error_code" json:"error_code"`
	DurationMS       int64            `db:"duration_ms" json:"duration_ms"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}
