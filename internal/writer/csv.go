// Package writer exports record sets as CSV or XLSX files.
package writer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// Column headers shared by every export format.
const (
	ColumnNo          = "No."
	ColumnDate        = "Date"
	ColumnDescription = "Description"
	ColumnDebit       = "Debit (Rs.)"
	ColumnCredit      = "Credit (Rs.)"
)

// Columns lists the export headers in order.
var Columns = []string{ColumnNo, ColumnDate, ColumnDescription, ColumnDebit, ColumnCredit}

// Writer serializes a record set.
type Writer interface {
	Write(out io.Writer, set *models.RecordSet) error
	// Extension is the file extension without the dot.
	Extension() string
	ContentType() string
}

// New returns the writer for a format name: csv or xlsx.
func New(format string) (Writer, error) {
	switch format {
	case "csv", "":
		return &CSVWriter{}, nil
	case "xlsx":
		return &XLSXWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q. Supported: csv, xlsx", format)
	}
}

// WriteToFile writes set to the file at path using w.
func WriteToFile(w Writer, path string, set *models.RecordSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, set); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// csvRow is one exported line. Amounts are plain two-decimal numbers.
type csvRow struct {
	No          int    `csv:"No."`
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Debit       string `csv:"Debit (Rs.)"`
	Credit      string `csv:"Credit (Rs.)"`
}

// CSVWriter writes record sets as comma separated values with a header row.
type CSVWriter struct{}

func (w *CSVWriter) Extension() string   { return "csv" }
func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Write writes the header and one line per row.
func (w *CSVWriter) Write(out io.Writer, set *models.RecordSet) error {
	if set.Empty() {
		if _, err := io.WriteString(out, strings.Join(Columns, ",")+"\n"); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		return nil
	}

	rows := make([]csvRow, len(set.Rows))
	for i, r := range set.Rows {
		rows[i] = csvRow{
			No:          r.No,
			Date:        r.DateString(),
			Description: r.Description,
			Debit:       r.Debit.StringFixed(2),
			Credit:      r.Credit.StringFixed(2),
		}
	}
	if err := gocsv.Marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
