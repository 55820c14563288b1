package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"billrecon/internal/domain"
)

const sheetName = "Line Items"

// WriteXLSX writes a single-sheet workbook with the same layout as WriteCSV.
func WriteXLSX(w io.Writer, result *domain.ExtractionResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, page := range result.Pages {
		for _, item := range page.Items {
			values := []interface{}{page.PageNo, string(page.PageType), item.Name, item.Quantity, item.Rate, item.Amount}
			if err := setRow(f, row, values); err != nil {
				return err
			}
			row++
		}
	}
	if err := setRow(f, row, []interface{}{nil, nil, totalLabel, nil, nil, result.ReconciledAmount}); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastCell, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	bottom, _ := excelize.CoordinatesToCellName(len(columns), row)
	if err := f.SetCellStyle(sheetName, "E2", bottom, money); err != nil {
		return fmt.Errorf("styling amounts: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "C", 40); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}
