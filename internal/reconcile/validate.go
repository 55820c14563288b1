package reconcile

import (
	"fmt"

	"billrecon/internal/domain"
)

// ValidatePages checks every page record before reconciliation. The first
// violation rejects the whole set; pages are never dropped individually.
// Errors wrap domain.ErrMalformedPage.
func ValidatePages(pages []domain.Page) error {
	for i := range pages {
		page := &pages[i]
		label := pageLabel(page, i)

		if page.PageType == "" {
			return fmt.Errorf("%w: page %s: missing page_type", domain.ErrMalformedPage, label)
		}
		if !domain.ValidPageTypes[page.PageType] {
			return fmt.Errorf("%w: page %s: unknown page_type %q", domain.ErrMalformedPage, label, page.PageType)
		}
		if page.Items == nil {
			return fmt.Errorf("%w: page %s: missing bill_items", domain.ErrMalformedPage, label)
		}
		for j := range page.Items {
			if err := validateItem(&page.Items[j]); err != nil {
				return fmt.Errorf("%w: page %s item %d: %v", domain.ErrMalformedPage, label, j+1, err)
			}
		}
	}
	return nil
}

func validateItem(item *domain.BillItem) error {
	switch {
	case !isFinite(item.Amount):
		return fmt.Errorf("item_amount is not a finite number")
	case item.Amount < 0:
		return fmt.Errorf("negative item_amount %.2f", item.Amount)
	case !isFinite(item.Quantity):
		return fmt.Errorf("item_quantity is not a finite number")
	case item.Quantity < 0:
		return fmt.Errorf("negative item_quantity %g", item.Quantity)
	case !isFinite(item.Rate):
		return fmt.Errorf("item_rate is not a finite number")
	case item.Rate < 0:
		return fmt.Errorf("negative item_rate %.2f", item.Rate)
	}
	return nil
}

func pageLabel(page *domain.Page, idx int) string {
	if page.PageNo != "" {
		return page.PageNo
	}
	return fmt.Sprintf("#%d", idx+1)
}
