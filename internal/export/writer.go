// Package export renders reconciled line items as CSV or XLSX sheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"billrecon/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the line-item sheet header row.
var columns = []string{
	"Page No",
	"Page Type",
	"Item Name",
	"Quantity",
	"Rate",
	"Amount",
}

const totalLabel = "Reconciled Total"

// Write renders result in the given format.
func Write(w io.Writer, format domain.ExportFormat, result *domain.ExtractionResult) error {
	switch format {
	case domain.ExportFormatCSV:
		return WriteCSV(w, result)
	case domain.ExportFormatXLSX:
		return WriteXLSX(w, result)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidExportFormat, format)
	}
}

// ContentType returns the MIME type for an export format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// WriteCSV writes a BOM, the header row, one row per retained item and a
// final total row.
func WriteCSV(w io.Writer, result *domain.ExtractionResult) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, page := range result.Pages {
		for _, item := range page.Items {
			if err := cw.Write(itemToRow(page, item)); err != nil {
				return err
			}
		}
	}
	total := make([]string, len(columns))
	total[2] = totalLabel
	total[5] = formatMoney(result.ReconciledAmount)
	if err := cw.Write(total); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func itemToRow(page domain.Page, item domain.BillItem) []string {
	return []string{
		page.PageNo,
		string(page.PageType),
		item.Name,
		strconv.FormatFloat(item.Quantity, 'f', -1, 64),
		formatMoney(item.Rate),
		formatMoney(item.Amount),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a Content-Disposition filename derived from the
// document URL. Format: {document_base_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(documentURL string, format domain.ExportFormat, now time.Time) string {
	base := "bill"
	if u, err := url.Parse(documentURL); err == nil {
		name := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
		if s := SanitizeFilename(name); s != "" {
			base = s
		}
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), format)
}
