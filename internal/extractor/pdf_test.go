package extractor

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-converter/internal/models"
)

func TestPDFExtractor_CorruptDocument(t *testing.T) {
	x := &PDFExtractor{}

	_, err := x.Extract(context.Background(), models.Document{
		Name: "broken.pdf",
		Data: []byte("%PDF-1.4\nthis is not really a pdf"),
	})

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "broken.pdf", extractionErr.Document)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestIsReadableText(t *testing.T) {
	statement := Pages{"STATE BANK OF INDIA\nStatement of Account\n05 Apr 24 ATM WDL XYZ 500.00 D"}

	tests := []struct {
		name  string
		pages Pages
		want  bool
	}{
		{"statement text", statement, true},
		{"too short", Pages{"Statement"}, false},
		{"no statement words", Pages{strings.Repeat("lorem ipsum dolor sit amet ", 5)}, false},
		{"garbage glyphs", Pages{strings.Repeat("ÃØÆ§¶µ×÷ statement ", 3) + strings.Repeat("ÃØÆ§¶µ", 30)}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isReadableText(tt.pages))
		})
	}
}

func TestTextQuality(t *testing.T) {
	assert.Equal(t, 0.0, textQuality(nil))
	assert.Equal(t, 1.0, textQuality(Pages{"Total ₹1,234.50\n"}))
	assert.Less(t, textQuality(Pages{"ÃØÆ§ab"}), 0.5)
}

func TestExtractWithPdftotext_Missing(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err == nil {
		t.Skip("pdftotext is installed; cannot test missing-tool error path")
	}

	_, err := extractWithPdftotext(context.Background(), "/nonexistent/file.pdf")
	assert.Error(t, err)
}

func TestIsOCRAvailable(t *testing.T) {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")

	assert.Equal(t, err1 == nil && err2 == nil, IsOCRAvailable())
}

func TestExtractWithOCR_MissingTools(t *testing.T) {
	if IsOCRAvailable() {
		t.Skip("OCR tools are installed; cannot test missing-tool error path")
	}

	_, err := extractWithOCR(context.Background(), "/nonexistent/file.pdf")
	assert.Error(t, err)
}

func TestExtractWithOCR_NonexistentFile(t *testing.T) {
	if !IsOCRAvailable() {
		t.Skip("OCR tools not installed; skipping")
	}

	_, err := extractWithOCR(context.Background(), "/tmp/nonexistent-file-12345.pdf")
	assert.Error(t, err)
}
