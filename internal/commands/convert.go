package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-converter/internal/converter"
	"github.com/insightdelivered/statement-converter/internal/models"
	"github.com/insightdelivered/statement-converter/internal/parser"
	"github.com/insightdelivered/statement-converter/internal/writer"
)

// errNoTransactions makes the process exit non-zero after the hint is shown.
var errNoTransactions = errors.New("no transactions found")

type convertOptions struct {
	form      string
	format    string
	output    string
	dir       string
	stdout    bool
	summary   bool
	debug     bool
	bankCode  string
	pdftotext bool
	ocr       bool
}

func newConvertCommand(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <statement> [statement ...]",
		Short: "Convert statements into a transaction CSV or XLSX file",
		Long: `Converts one or more statements into a single transaction table.

Monthly statements can be combined; a transaction history export is
converted on its own. Inputs may be PDFs or text already extracted from
them (pages separated by form feeds).`,
		Example: `  statement-converter convert april.pdf may.pdf
  statement-converter convert --form history --format xlsx export.pdf
  statement-converter convert --stdout --summary statement.pdf > out.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("bank-code") {
				a.cfg.BankCode = opts.bankCode
			}
			if flags.Changed("pdftotext") {
				a.cfg.Extraction.Pdftotext = opts.pdftotext
			}
			if flags.Changed("ocr") {
				a.cfg.Extraction.OCR = opts.ocr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runConvert(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.form, "form", "f", "auto", "statement form: monthly, history or auto")
	flags.StringVar(&opts.format, "format", "csv", "export format: csv or xlsx")
	flags.StringVarP(&opts.output, "output", "o", "", "output file path (defaults to the generated filename in --dir)")
	flags.StringVar(&opts.dir, "dir", ".", "directory for the generated output file")
	flags.BoolVar(&opts.stdout, "stdout", false, "write the export to stdout instead of a file")
	flags.BoolVar(&opts.summary, "summary", false, "print transaction count and totals")
	flags.BoolVar(&opts.debug, "debug", false, "print what the parser did with every line")
	flags.StringVar(&opts.bankCode, "bank-code", "", "bank code used in the generated filename")
	flags.BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext when the PDF library finds no text")
	flags.BoolVar(&opts.ocr, "ocr", false, "fall back to Tesseract OCR for scanned statements")

	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, paths []string, opts convertOptions) error {
	form, err := parser.ParseForm(opts.form)
	if err != nil {
		return err
	}
	w, err := writer.New(opts.format)
	if err != nil {
		return err
	}

	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		docs = append(docs, models.Document{Name: filepath.Base(path), Data: data})
	}

	conv, err := a.service(nil).Convert(cmd.Context(), form, docs)
	if err != nil {
		return err
	}

	// Messages go to stderr when the export itself is written to stdout.
	msg := cmd.OutOrStdout()
	if opts.stdout {
		msg = cmd.ErrOrStderr()
	}

	for _, d := range conv.Documents {
		if d.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", d.Err)
			continue
		}
		fmt.Fprintf(msg, "Processed %s: %d page(s), %d transaction(s)", d.Name, d.Pages, d.Transactions)
		if d.Form != "" {
			fmt.Fprintf(msg, " [%s]", d.Form)
		}
		if len(d.Warnings) > 0 {
			fmt.Fprintf(msg, ", %d line(s) skipped", len(d.Warnings))
		}
		fmt.Fprintln(msg)
		if opts.debug {
			printDebugLines(cmd.ErrOrStderr(), d.DebugLines)
		}
	}

	if conv.NoTransactions() {
		fmt.Fprintln(cmd.ErrOrStderr(), converter.NoTransactionsHint)
		return errNoTransactions
	}

	if opts.stdout {
		if err := w.Write(cmd.OutOrStdout(), conv.RecordSet); err != nil {
			return err
		}
	} else {
		out := opts.output
		if out == "" {
			out = filepath.Join(opts.dir, conv.Filename(w.Extension()))
		}
		if err := writer.WriteToFile(w, out, conv.RecordSet); err != nil {
			return err
		}
		fmt.Fprintf(msg, "Output: %s\n", out)
	}

	if opts.summary {
		printSummary(msg, conv.Summary())
	}
	return nil
}

func printSummary(out io.Writer, s converter.Summary) {
	fmt.Fprintf(out, "Total transactions: %d\n", s.Transactions)
	fmt.Fprintf(out, "Total debits:       %s\n", s.TotalDebit)
	fmt.Fprintf(out, "Total credits:      %s\n", s.TotalCredit)
	if s.From != "" {
		fmt.Fprintf(out, "Period:             %s to %s\n", s.From, s.To)
	}
}

func printDebugLines(out io.Writer, lines []models.DebugLine) {
	for _, l := range lines {
		fmt.Fprintf(out, "  %5d  %-12s %-12s %s\n", l.LineNum, l.Result, l.Method, l.Text)
	}
}
