package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-converter/internal/models"
)

type fakeExtractor struct {
	called bool
	pages  Pages
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ models.Document) (Pages, error) {
	f.called = true
	return f.pages, f.err
}

func TestPagesText(t *testing.T) {
	pages := Pages{"page one", "page two"}

	assert.Equal(t, "page one\npage two\n", pages.Text(DefaultPageSeparator))
	assert.Equal(t, "page one\n\n--- Page Break ---\n\npage two\n\n--- Page Break ---\n\n",
		pages.Text("\n\n--- Page Break ---\n\n"))
	assert.Equal(t, "", Pages(nil).Text("\n"))
}

func TestTextExtractor(t *testing.T) {
	x := &TextExtractor{}

	pages, err := x.Extract(context.Background(), models.Document{
		Name: "statement.txt",
		Data: []byte("05 Apr 24 ATM 500.00 D\r\n\f\f06 Apr 24 TEA 20.00 D\n"),
	})

	require.NoError(t, err)
	assert.Equal(t, Pages{"05 Apr 24 ATM 500.00 D", "06 Apr 24 TEA 20.00 D"}, pages)
}

func TestAutoExtractor_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantPDF  bool
		wantText bool
		wantErr  error
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true, false, nil},
		{"pdf header after whitespace", []byte("\r\n%PDF-1.4"), true, false, nil},
		{"plain text", []byte("05 Apr 24 ATM 500.00 D"), false, true, nil},
		{"empty", nil, false, false, ErrEmptyDocument},
		{"binary", []byte{0xff, 0xfe, 0x00, 0x81}, false, false, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfX := &fakeExtractor{pages: Pages{"pdf"}}
			textX := &fakeExtractor{pages: Pages{"text"}}
			x := &AutoExtractor{PDF: pdfX, Text: textX}

			_, err := x.Extract(context.Background(), models.Document{Name: "doc", Data: tt.data})

			assert.Equal(t, tt.wantPDF, pdfX.called)
			assert.Equal(t, tt.wantText, textX.called)
			if tt.wantErr != nil {
				var extractionErr *ExtractionError
				require.ErrorAs(t, err, &extractionErr)
				assert.Equal(t, "doc", extractionErr.Document)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	x := New(Options{Pdftotext: true})

	pdfX, ok := x.PDF.(*PDFExtractor)
	require.True(t, ok)
	assert.True(t, pdfX.Pdftotext)
	assert.False(t, pdfX.OCR)
	assert.IsType(t, &TextExtractor{}, x.Text)
}
