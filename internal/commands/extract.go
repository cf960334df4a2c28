package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-converter/internal/extractor"
	"github.com/insightdelivered/statement-converter/internal/models"
)

// dumpPageSeparator marks page boundaries in extracted text dumps.
const dumpPageSeparator = "\n\n--- Page Break ---\n\n"

func newExtractCommand(a *app) *cobra.Command {
	var output string
	var ocr bool

	cmd := &cobra.Command{
		Use:   "extract <statement>",
		Short: "Dump the text extracted from a statement",
		Long: `Writes the text the converter sees for a statement, one page after
another, so unrecognized layouts can be inspected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ocr") {
				a.cfg.Extraction.OCR = ocr
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			x := extractor.New(extractor.Options{
				Pdftotext: a.cfg.Extraction.Pdftotext,
				OCR:       a.cfg.Extraction.OCR,
			})
			pages, err := x.Extract(cmd.Context(), models.Document{Name: filepath.Base(args[0]), Data: data})
			if err != nil {
				return err
			}

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), pages.Text(dumpPageSeparator))
				return err
			}
			if err := os.WriteFile(output, []byte(pages.Text(dumpPageSeparator)), 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d page(s) to %s\n", len(pages), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the text to a file instead of stdout")
	cmd.Flags().BoolVar(&ocr, "ocr", false, "fall back to Tesseract OCR for scanned statements")

	return cmd
}
