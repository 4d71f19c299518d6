package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// SheetName is the worksheet holding the account table.
const SheetName = "Accounts"

// WriteXLSX writes a workbook with a single "Accounts" sheet. Amount columns
// are stored as numbers so they can be summed.
func WriteXLSX(w io.Writer, accounts []report.Account) error {
	if len(accounts) == 0 {
		return report.ErrNoAccounts
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headers := Headers()
	widths := make([]int, len(headers))
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	amount := map[int]bool{}
	for _, spec := range report.Vocabulary {
		if spec.Shape == report.ShapeAmount {
			amount[int(spec.Field)] = true
		}
	}

	for r, a := range accounts {
		row := r + 2
		for c, v := range Row(a) {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			var value any = v
			if amount[c] {
				if d, err := decimal.NewFromString(v); err == nil {
					value = d.InexactFloat64()
				}
			}
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(v))
		}
	}

	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, float64(min(wd+2, 60)))
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
