package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// PDFExtractor reads the text layer of PDF documents.
// It tries the structured library first and, when enabled, falls back to
// the external pdftotext command (poppler-utils) and then to Tesseract OCR.
type PDFExtractor struct {
	Pdftotext bool
	OCR       bool
}

// Extract returns the text of each page in order.
func (x *PDFExtractor) Extract(ctx context.Context, doc models.Document) (Pages, error) {
	pages, libErr := extractWithLibrary(doc.Data)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	if x.Pdftotext {
		popplerPages, err := withTempFile(doc.Data, func(path string) (Pages, error) {
			return extractWithPdftotext(ctx, path)
		})
		if err == nil && isReadableText(popplerPages) {
			return popplerPages, nil
		}
	}

	if x.OCR {
		ocrPages, err := withTempFile(doc.Data, func(path string) (Pages, error) {
			return extractWithOCR(ctx, path)
		})
		if err == nil && isReadableText(ocrPages) {
			return ocrPages, nil
		}
	}

	// Readable text without statement vocabulary is still text; the parsers
	// decide whether it holds transactions.
	if libErr == nil && totalTextLen(pages) > 0 && textQuality(pages) > 0.6 {
		return pages, nil
	}

	if libErr != nil {
		return nil, &ExtractionError{Document: doc.Name, Err: libErr}
	}
	return nil, &ExtractionError{Document: doc.Name, Err: ErrNoText}
}

// ErrNoText means the document opened but held no readable text layer.
var ErrNoText = errors.New("no readable text could be extracted; the file may be image-based or scanned")

// textQuality returns the ratio of basic ASCII readable characters to total
// characters, 0.0-1.0. Accented garbage from identity-encoded fonts counts
// as unreadable.
func textQuality(pages Pages) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) || r == '₹' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every statement or transaction export.
var commonWords = []string{
	"account", "balance", "date", "statement", "transaction", "credit",
	"debit", "amount", "total", "payment", "card", "page", "branch",
	"withdrawal", "deposit", "txn",
}

func containsCommonWords(pages Pages) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, more than 60% readable
// ASCII, and at least one statement word.
func isReadableText(pages Pages) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages Pages) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

// extractWithLibrary uses ledongthuc/pdf, row extraction first and page
// plain text second.
func extractWithLibrary(data []byte) (pages Pages, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	plain := extractByPagePlainText(r, numPages)
	if isReadableText(plain) || totalTextLen(pages) == 0 {
		return plain, nil
	}
	return pages, nil
}

// extractByRow keeps the visual row layout, which is what line grammars need.
func extractByRow(r *pdf.Reader, numPages int) Pages {
	var pages Pages
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByPagePlainText(r *pdf.Reader, numPages int) Pages {
	var pages Pages
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// extractWithPdftotext runs pdftotext from poppler-utils on the whole file.
// pdftotext separates pages with form feeds.
func extractWithPdftotext(ctx context.Context, path string) (Pages, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := splitPages(string(out))
	if len(pages) == 0 {
		return nil, errors.New("pdftotext produced no output")
	}
	return pages, nil
}

// withTempFile writes data to a temporary PDF for the external tools.
func withTempFile(data []byte, fn func(path string) (Pages, error)) (Pages, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}
	return fn(tmp.Name())
}
