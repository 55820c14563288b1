package reconcile

import (
	"github.com/shopspring/decimal"

	"billrecon/internal/domain"
)

// Calculate returns the retained item count and the sum of retained amounts
// rounded half-up to currency precision. The sum is accumulated in decimal so
// float drift never leaks into the total.
func Calculate(pages []domain.Page) (count int, amount float64) {
	sum := decimal.Zero
	for i := range pages {
		for j := range pages[i].Items {
			count++
			sum = sum.Add(toDecimal(pages[i].Items[j].Amount))
		}
	}
	amount, _ = sum.Round(2).Float64()
	return count, amount
}

// RoundCurrency rounds v half-up to 2 decimal places.
func RoundCurrency(v float64) float64 {
	f, _ := toDecimal(v).Round(2).Float64()
	return f
}
