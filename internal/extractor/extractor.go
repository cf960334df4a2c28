// Package extractor turns document payloads into ordered per-page text.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// DefaultPageSeparator follows every page when pages are joined.
const DefaultPageSeparator = "\n"

// Pages is the ordered text of a document, one entry per page.
type Pages []string

// Text concatenates the pages, each followed by sep.
func (p Pages) Text(sep string) string {
	var b strings.Builder
	for _, page := range p {
		b.WriteString(page)
		b.WriteString(sep)
	}
	return b.String()
}

// Extractor produces ordered per-page text for one document.
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) (Pages, error)
}

// ExtractionError reports a document that could not be read or decoded.
type ExtractionError struct {
	Document string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %q: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyDocument is returned for zero-byte payloads.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnknownFormat is returned for payloads that are neither PDF nor text.
	ErrUnknownFormat = errors.New("document is neither a PDF nor UTF-8 text")
)

var pdfMagic = []byte("%PDF-")

// Options selects the fallbacks the PDF extractor may use.
type Options struct {
	Pdftotext bool
	OCR       bool
}

// New returns an extractor that sniffs each payload and dispatches to the
// PDF or plain-text extractor.
func New(opts Options) *AutoExtractor {
	return &AutoExtractor{
		PDF:  &PDFExtractor{Pdftotext: opts.Pdftotext, OCR: opts.OCR},
		Text: &TextExtractor{},
	}
}

// AutoExtractor dispatches on content rather than file name.
type AutoExtractor struct {
	PDF  Extractor
	Text Extractor
}

func (x *AutoExtractor) Extract(ctx context.Context, doc models.Document) (Pages, error) {
	if len(doc.Data) == 0 {
		return nil, &ExtractionError{Document: doc.Name, Err: ErrEmptyDocument}
	}
	if IsPDF(doc.Data) {
		return x.PDF.Extract(ctx, doc)
	}
	if utf8.Valid(doc.Data) {
		return x.Text.Extract(ctx, doc)
	}
	return nil, &ExtractionError{Document: doc.Name, Err: ErrUnknownFormat}
}

// IsPDF reports whether data starts with the PDF header, allowing leading whitespace.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic)
}

// TextExtractor accepts text that was already extracted elsewhere, for
// example by a browser-side PDF reader. Form feeds separate pages.
type TextExtractor struct{}

func (x *TextExtractor) Extract(_ context.Context, doc models.Document) (Pages, error) {
	if !utf8.Valid(doc.Data) {
		return nil, &ExtractionError{Document: doc.Name, Err: ErrUnknownFormat}
	}
	return splitPages(string(doc.Data)), nil
}

// splitPages splits on form feeds and drops blank pages.
func splitPages(text string) Pages {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var pages Pages
	for _, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, strings.Trim(page, "\n"))
		}
	}
	return pages
}
