package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"billrecon/internal/domain"
	"billrecon/internal/port"
)

// StripCodeFences removes a surrounding markdown code fence such as
// ```json ... ``` that some models emit despite instructions.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// pageNo accepts the page number either as a string or as a JSON number.
type pageNo string

func (p *pageNo) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = pageNo(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = pageNo(n.String())
	return nil
}

type rawItem struct {
	Name     *string  `json:"item_name"`
	Amount   *float64 `json:"item_amount"`
	Rate     *float64 `json:"item_rate"`
	Quantity *float64 `json:"item_quantity"`
}

type rawPage struct {
	PageNo   pageNo     `json:"page_no"`
	PageType string     `json:"page_type"`
	Items    *[]rawItem `json:"bill_items"`
}

type rawExtraction struct {
	Pages        []rawPage `json:"pagewise_line_items"`
	PrintedTotal *float64  `json:"printed_total"`
}

// DecodeExtraction turns model output text into typed pages.
//
// Text that is not JSON is an extraction failure. JSON that does not match
// the extraction schema is a malformed page. Missing quantities default to 1;
// a missing amount is derived from quantity and rate, and a missing rate from
// amount and quantity.
func DecodeExtraction(text string) ([]domain.Page, *float64, error) {
	cleaned := StripCodeFences(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, nil, fmt.Errorf("%w: model output is not valid JSON (raw: %s)", domain.ErrExtractionFailed, truncate(cleaned, 500))
	}

	if err := ValidateExtractionJSON([]byte(cleaned)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrMalformedPage, err)
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrMalformedPage, err)
	}

	pages := make([]domain.Page, 0, len(raw.Pages))
	for i, rp := range raw.Pages {
		no := string(rp.PageNo)
		if no == "" {
			no = strconv.Itoa(i + 1)
		}
		page := domain.Page{
			PageNo:   no,
			PageType: domain.PageType(strings.TrimSpace(rp.PageType)),
		}
		if rp.Items != nil {
			page.Items = make([]domain.BillItem, 0, len(*rp.Items))
			for _, ri := range *rp.Items {
				page.Items = append(page.Items, completeItem(ri))
			}
		}
		pages = append(pages, page)
	}

	return pages, raw.PrintedTotal, nil
}

// completeItem fills in the fields a model left out.
func completeItem(ri rawItem) domain.BillItem {
	item := domain.BillItem{Quantity: 1}
	if ri.Name != nil {
		item.Name = strings.TrimSpace(*ri.Name)
	}
	if ri.Quantity != nil {
		item.Quantity = *ri.Quantity
	}
	if ri.Rate != nil {
		item.Rate = *ri.Rate
	}

	switch {
	case ri.Amount != nil:
		item.Amount = *ri.Amount
	case ri.Rate != nil:
		item.Amount, _ = decimal.NewFromFloat(item.Quantity).
			Mul(decimal.NewFromFloat(item.Rate)).Round(2).Float64()
	}

	if ri.Rate == nil && ri.Amount != nil && item.Quantity > 0 {
		item.Rate, _ = decimal.NewFromFloat(item.Amount).
			Div(decimal.NewFromFloat(item.Quantity)).Round(2).Float64()
	}

	return item
}

// NewExtractOutput decodes model output text into an ExtractOutput.
func NewExtractOutput(text, model string, usage domain.TokenUsage) (*port.ExtractOutput, error) {
	pages, printed, err := DecodeExtraction(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{
		Pages:        pages,
		PrintedTotal: printed,
		TokenUsage:   usage,
		ModelUsed:    model,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
