package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transactions"

// XLSXWriter writes record sets as a single-sheet workbook with numeric
// amount cells.
type XLSXWriter struct{}

func (w *XLSXWriter) Extension() string { return "xlsx" }
func (w *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *XLSXWriter) Write(out io.Writer, set *models.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range set.Transactions() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			i + 1,
			t.DateString(),
			t.Description,
			t.Debit.InexactFloat64(),
			t.Credit.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	// 0.00
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}
	if set.Len() > 0 {
		last := fmt.Sprintf("E%d", set.Len()+1)
		if err := f.SetCellStyle(SheetName, "D2", last, amountStyle); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}
	if err := f.SetColWidth(SheetName, "C", "C", 48); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "D", "E", 14); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
