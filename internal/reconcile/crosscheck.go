package reconcile

import "github.com/shopspring/decimal"

// DefaultCrossCheckTolerance is the absolute difference accepted between a
// printed grand total and the reconciled amount.
const DefaultCrossCheckTolerance = 1.00

// CrossCheckResult compares a printed grand total with the derived total.
// The reconciled amount stays authoritative either way.
type CrossCheckResult struct {
	PrintedTotal     float64 `json:"printed_total"`
	ReconciledAmount float64 `json:"reconciled_amount"`
	Difference       float64 `json:"difference"`
	WithinTolerance  bool    `json:"within_tolerance"`
}

// CrossCheck compares printed against reconciled. A negative tolerance is
// treated as zero.
func CrossCheck(printed, reconciled, tolerance float64) CrossCheckResult {
	if tolerance < 0 {
		tolerance = 0
	}
	diff := toDecimal(reconciled).Sub(toDecimal(printed)).Round(2)
	d, _ := diff.Float64()
	return CrossCheckResult{
		PrintedTotal:     RoundCurrency(printed),
		ReconciledAmount: RoundCurrency(reconciled),
		Difference:       d,
		WithinTolerance:  diff.Abs().LessThanOrEqual(decimal.NewFromFloat(tolerance)),
	}
}
