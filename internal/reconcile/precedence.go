package reconcile

import (
	"fmt"
	"strings"

	"billrecon/internal/domain"
)

// DefaultPriority is the source-of-truth order used when the same charge
// appears on pages of different types.
var DefaultPriority = []domain.PageType{
	domain.PageTypeFinalBill,
	domain.PageTypeBillDetail,
	domain.PageTypePharmacy,
}

// Precedence ranks page types. A lower rank wins.
type Precedence struct {
	order []domain.PageType
	rank  map[domain.PageType]int
}

// DefaultPrecedence returns the Final Bill > Bill Detail > Pharmacy ordering.
func DefaultPrecedence() Precedence {
	p, _ := NewPrecedence(DefaultPriority)
	return p
}

// NewPrecedence builds a Precedence from an ordered list of page types.
// Page types left out are appended in default order.
func NewPrecedence(order []domain.PageType) (Precedence, error) {
	p := Precedence{rank: make(map[domain.PageType]int, len(domain.ValidPageTypes))}
	for _, t := range order {
		if !domain.ValidPageTypes[t] {
			return Precedence{}, fmt.Errorf("unknown page type in priority: %q", t)
		}
		if _, dup := p.rank[t]; dup {
			return Precedence{}, fmt.Errorf("page type listed twice in priority: %q", t)
		}
		p.rank[t] = len(p.order)
		p.order = append(p.order, t)
	}
	for _, t := range DefaultPriority {
		if _, ok := p.rank[t]; !ok {
			p.rank[t] = len(p.order)
			p.order = append(p.order, t)
		}
	}
	return p, nil
}

// ParsePrecedence parses a comma-separated priority list such as
// "Final Bill,Bill Detail,Pharmacy". An empty string yields the default.
func ParsePrecedence(s string) (Precedence, error) {
	var order []domain.PageType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			order = append(order, domain.PageType(part))
		}
	}
	return NewPrecedence(order)
}

// Rank returns the priority rank of a page type. Unknown types rank last.
func (p Precedence) Rank(t domain.PageType) int {
	if r, ok := p.rank[t]; ok {
		return r
	}
	return len(p.order)
}

// Order returns the page types from highest to lowest priority.
func (p Precedence) Order() []domain.PageType {
	out := make([]domain.PageType, len(p.order))
	copy(out, p.order)
	return out
}

func (p Precedence) String() string {
	parts := make([]string, len(p.order))
	for i, t := range p.order {
		parts[i] = string(t)
	}
	return strings.Join(parts, " > ")
}
