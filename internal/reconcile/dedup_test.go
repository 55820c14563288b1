package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billrecon/internal/domain"
	"billrecon/internal/reconcile"
)

func item(name string, amount float64) domain.BillItem {
	return domain.BillItem{Name: name, Amount: amount, Rate: amount, Quantity: 1}
}

func page(no string, pt domain.PageType, items ...domain.BillItem) domain.Page {
	if items == nil {
		items = []domain.BillItem{}
	}
	return domain.Page{PageNo: no, PageType: pt, Items: items}
}

func names(p domain.Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Name)
	}
	return out
}

func TestDeduplicate_FinalBillWinsOverBillDetail(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("Paracetamol", 50), item("Syringe", 20)),
		page("2", domain.PageTypeFinalBill, item("Paracetamol", 50), item("Consultation", 300)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	require.Len(t, out, 2)
	assert.Equal(t, []string{"Syringe"}, names(out[0]))
	assert.Equal(t, []string{"Paracetamol", "Consultation"}, names(out[1]))
}

func TestDeduplicate_BillDetailWinsOverPharmacy(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypePharmacy, item("Dolo 650", 32.5)),
		page("2", domain.PageTypeBillDetail, item("DOLO 650", 32.50)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Empty(t, out[0].Items)
	assert.Equal(t, []string{"DOLO 650"}, names(out[1]))
}

func TestDeduplicate_SameTypeKeepsFirstPage(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypePharmacy, item("Pantop 40", 120)),
		page("2", domain.PageTypePharmacy, item("Pantop 40", 120)),
		page("3", domain.PageTypePharmacy, item("pantop-40", 120)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Len(t, out[0].Items, 1)
	assert.Empty(t, out[1].Items)
	assert.Empty(t, out[2].Items)
}

func TestDeduplicate_PriorityTieKeepsEarliest(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("Room Rent", 1500)),
		page("2", domain.PageTypeFinalBill, item("Room Rent", 1500)),
		page("3", domain.PageTypeFinalBill, item("Room Rent", 1500)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Empty(t, out[0].Items)
	assert.Len(t, out[1].Items, 1)
	assert.Empty(t, out[2].Items)
}

func TestDeduplicate_RepeatOnSamePageCollapsed(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("Gloves", 10), item("Gloves", 10), item("Mask", 5)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Equal(t, []string{"Gloves", "Mask"}, names(out[0]))
}

func TestDeduplicate_SameNameDifferentAmountsKept(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("Injection", 150)),
		page("2", domain.PageTypeFinalBill, item("Injection", 275)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Len(t, out[0].Items, 1)
	assert.Len(t, out[1].Items, 1)
	count, amount := reconcile.Calculate(out)
	assert.Equal(t, 2, count)
	assert.Equal(t, 425.0, amount)
}

func TestDeduplicate_EmptyNamesNeverCollapsed(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("", 100)),
		page("2", domain.PageTypeFinalBill, item("", 100)),
		page("3", domain.PageTypeFinalBill, item("...", 100)),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Equal(t, 3, reconcile.CountItems(out))
}

func TestDeduplicate_CustomPrecedence(t *testing.T) {
	prec, err := reconcile.NewPrecedence([]domain.PageType{domain.PageTypePharmacy})
	require.NoError(t, err)

	pages := []domain.Page{
		page("1", domain.PageTypeFinalBill, item("Ondem 4mg", 45)),
		page("2", domain.PageTypePharmacy, item("Ondem 4mg", 45)),
	}

	out := reconcile.Deduplicate(pages, prec)

	assert.Empty(t, out[0].Items)
	assert.Len(t, out[1].Items, 1)
}

func TestDeduplicate_PreservesPagesAndOrder(t *testing.T) {
	pages := []domain.Page{
		page("3", domain.PageTypeBillDetail, item("A", 1), item("B", 2), item("C", 3)),
		page("1", domain.PageTypeFinalBill, item("A", 1)),
		page("2", domain.PageTypePharmacy),
	}

	out := reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0].PageNo)
	assert.Equal(t, "1", out[1].PageNo)
	assert.Equal(t, "2", out[2].PageNo)
	assert.Equal(t, []string{"B", "C"}, names(out[0]))
	assert.NotNil(t, out[2].Items)
	assert.Empty(t, out[2].Items)
}

func TestDeduplicate_DoesNotModifyInput(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("X-Ray", 800)),
		page("2", domain.PageTypeFinalBill, item("X-Ray", 800)),
	}

	_ = reconcile.Deduplicate(pages, reconcile.DefaultPrecedence())

	assert.Len(t, pages[0].Items, 1)
	assert.Len(t, pages[1].Items, 1)
}

func TestDeduplicate_Idempotent(t *testing.T) {
	pages := []domain.Page{
		page("1", domain.PageTypeBillDetail, item("Paracetamol", 50), item("Syringe", 20), item("Syringe", 20)),
		page("2", domain.PageTypeFinalBill, item("paracetamol", 50), item("Consultation", 300)),
		page("3", domain.PageTypePharmacy, item("Syringe", 20), item("", 5), item("", 5)),
	}
	prec := reconcile.DefaultPrecedence()

	once := reconcile.Deduplicate(pages, prec)
	twice := reconcile.Deduplicate(once, prec)

	assert.Equal(t, once, twice)
}

func TestDeduplicate_Empty(t *testing.T) {
	out := reconcile.Deduplicate(nil, reconcile.DefaultPrecedence())
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
