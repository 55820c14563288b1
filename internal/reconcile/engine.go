// Package reconcile turns noisy per-page extraction output into a
// deduplicated, internally consistent ledger with a derived total.
//
// Everything here is pure and synchronous; an Engine holds only its
// configuration and is safe for concurrent use.
package reconcile

import "billrecon/internal/domain"

// Engine validates, deduplicates and totals a document's pages.
type Engine struct {
	precedence Precedence
}

// NewEngine creates an Engine. A zero Precedence falls back to the default.
func NewEngine(prec Precedence) *Engine {
	if len(prec.order) == 0 {
		prec = DefaultPrecedence()
	}
	return &Engine{precedence: prec}
}

// Precedence returns the page-type priority the engine applies.
func (e *Engine) Precedence() Precedence {
	return e.precedence
}

// Reconcile validates pages, collapses cross-page duplicates and computes the
// item count and reconciled amount from the retained items only.
func (e *Engine) Reconcile(pages []domain.Page) (*domain.ExtractionResult, error) {
	if err := ValidatePages(pages); err != nil {
		return nil, err
	}

	deduped := Deduplicate(pages, e.precedence)
	count, amount := Calculate(deduped)

	return &domain.ExtractionResult{
		Pages:            deduped,
		TotalItemCount:   count,
		ReconciledAmount: amount,
	}, nil
}
