package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"billrecon/internal/domain"
	"billrecon/internal/export"
)

func sampleResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Pages: []domain.Page{
			{PageNo: "1", PageType: domain.PageTypeBillDetail, Items: []domain.BillItem{
				{Name: "Syringe", Amount: 50, Rate: 10, Quantity: 5},
			}},
			{PageNo: "2", PageType: domain.PageTypeFinalBill, Items: []domain.BillItem{
				{Name: "Paracetamol", Amount: 20, Rate: 10, Quantity: 2},
				{Name: "Consultation, General", Amount: 300, Rate: 300, Quantity: 1},
			}},
			{PageNo: "3", PageType: domain.PageTypePharmacy, Items: []domain.BillItem{}},
		},
		TotalItemCount:   3,
		ReconciledAmount: 370,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, sampleResult()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), export.BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Page No", "Page Type", "Item Name", "Quantity", "Rate", "Amount"}, rows[0])
	assert.Equal(t, []string{"1", "Bill Detail", "Syringe", "5", "10.00", "50.00"}, rows[1])
	assert.Equal(t, "Consultation, General", rows[3][2])
	assert.Equal(t, []string{"", "", "Reconciled Total", "", "", "370.00"}, rows[4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "Item Name", rows[0][2])
	assert.Equal(t, "Paracetamol", rows[2][2])
	assert.Equal(t, "Reconciled Total", rows[4][2])

	total, err := f.GetCellValue("Line Items", "F5", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "370", total)
}

func TestWrite_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	err := export.Write(&buf, domain.ExportFormat("pdf"), sampleResult())
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", export.ContentType(domain.ExportFormatCSV))
	assert.Contains(t, export.ContentType(domain.ExportFormatXLSX), "spreadsheetml")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Apollo_Hospital_Bill", export.SanitizeFilename("Apollo Hospital: Bill!"))
	assert.Equal(t, "a_b", export.SanitizeFilename("a / b"))
	assert.Equal(t, "", export.SanitizeFilename("***"))
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "discharge_bill_2026-03-14.csv",
		export.BuildFilename("https://cdn.example.com/bills/discharge%20bill.pdf?sig=abc", domain.ExportFormatCSV, now))
	assert.Equal(t, "bill_2026-03-14.xlsx",
		export.BuildFilename("https://cdn.example.com/", domain.ExportFormatXLSX, now))
}
