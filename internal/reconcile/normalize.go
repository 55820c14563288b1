package reconcile

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"billrecon/internal/domain"
)

// Key identifies a charge by value: its normalized name and its amount at
// currency precision.
type Key struct {
	Name   string
	Amount string
}

// Dedupable reports whether the key may be matched against other items.
// Items without a usable name are always unique.
func (k Key) Dedupable() bool {
	return k.Name != ""
}

// Normalize builds the comparison key for a bill item. It never fails.
func Normalize(item domain.BillItem) Key {
	if !isFinite(item.Amount) {
		return Key{Amount: "invalid"}
	}
	return Key{
		Name:   NormalizeName(item.Name),
		Amount: toDecimal(item.Amount).Round(2).StringFixed(2),
	}
}

// NormalizeName folds case and compatibility forms, strips punctuation and
// collapses runs of whitespace.
func NormalizeName(name string) string {
	s := cases.Fold().String(norm.NFKC.String(name))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsPunct(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toDecimal converts a float amount; non-finite values count as zero so the
// pure helpers stay total. ValidatePages rejects them before they get here.
func toDecimal(f float64) decimal.Decimal {
	if !isFinite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
