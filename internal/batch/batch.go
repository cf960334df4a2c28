// Package batch runs extraction and parsing over a list of documents and
// concatenates their transactions in the order the documents were given.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-converter/internal/extractor"
	"github.com/insightdelivered/statement-converter/internal/logger"
	"github.com/insightdelivered/statement-converter/internal/metrics"
	"github.com/insightdelivered/statement-converter/internal/models"
	"github.com/insightdelivered/statement-converter/internal/parser"
)

var (
	// ErrNoDocuments is returned when a batch holds no documents.
	ErrNoDocuments = errors.New("no documents supplied")
	// ErrSingleDocument is returned when a history export batch holds more
	// than one document.
	ErrSingleDocument = errors.New("transaction history exports are converted one document at a time")
)

// DocumentReport describes what one document contributed to the batch.
type DocumentReport struct {
	Name         string               `json:"name"`
	Form         models.StatementForm `json:"form,omitempty"`
	Pages        int                  `json:"pages"`
	Transactions int                  `json:"transactions"`
	Warnings     []error              `json:"-"`
	DebugLines   []models.DebugLine   `json:"debugLines,omitempty"`
	Err          error                `json:"-"`
}

// Outcome classifies the report for metrics.
func (r DocumentReport) Outcome() string {
	switch {
	case r.Err != nil:
		return metrics.OutcomeExtractionError
	case r.Transactions == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeOK
	}
}

// Result is the concatenated output of a batch, before normalization.
type Result struct {
	Transactions []models.Transaction
	Documents    []DocumentReport
}

// Failed returns the reports of documents that could not be read.
func (r *Result) Failed() []DocumentReport {
	var failed []DocumentReport
	for _, d := range r.Documents {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// Aggregator runs each document through extraction and the parser for its
// statement form.
type Aggregator struct {
	Extractor     extractor.Extractor
	Metrics       *metrics.Metrics
	PageSeparator string
}

// Run processes docs in order. A document that cannot be extracted is
// reported and contributes nothing; the rest of the batch continues.
// Transactions are neither deduplicated nor reordered.
func (a *Aggregator) Run(ctx context.Context, form models.StatementForm, docs []models.Document) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if form == models.FormHistory && len(docs) > 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSingleDocument, len(docs))
	}
	if form != models.FormAuto {
		if _, err := parser.New(form); err != nil {
			return nil, err
		}
	}

	log := logger.FromContext(ctx)
	result := &Result{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report, txns := a.runDocument(ctx, form, doc, len(docs), log)
		result.Transactions = append(result.Transactions, txns...)
		result.Documents = append(result.Documents, report)

		a.Metrics.ObserveDocument(metricForm(report.Form, form), report.Outcome(), report.Transactions, len(report.Warnings))
	}
	return result, nil
}

func (a *Aggregator) runDocument(ctx context.Context, form models.StatementForm, doc models.Document, batchSize int, log zerolog.Logger) (DocumentReport, []models.Transaction) {
	report := DocumentReport{Name: doc.Name}

	pages, err := a.Extractor.Extract(ctx, doc)
	if err != nil {
		report.Err = err
		log.Error().Err(err).Str("document", doc.Name).Msg("extraction failed")
		return report, nil
	}
	report.Pages = len(pages)

	sep := a.PageSeparator
	if sep == "" {
		sep = extractor.DefaultPageSeparator
	}
	text := pages.Text(sep)

	if form == models.FormAuto {
		detected, err := parser.AutoDetect(text)
		if err != nil {
			log.Debug().Str("document", doc.Name).Msg("no statement layout recognized")
			return report, nil
		}
		if detected == models.FormHistory && batchSize > 1 {
			report.Form = detected
			report.Err = ErrSingleDocument
			log.Error().Err(report.Err).Str("document", doc.Name).Msg("history export in a multi-document batch")
			return report, nil
		}
		form = detected
	}
	report.Form = form

	p, err := parser.New(form)
	if err != nil {
		report.Err = err
		return report, nil
	}
	parsed := p.Parse(text)

	report.Transactions = len(parsed.Transactions)
	report.Warnings = parsed.Warnings
	report.DebugLines = parsed.DebugLines
	for _, w := range parsed.Warnings {
		ev := log.Warn().Str("document", doc.Name)
		var pe *parser.ParseError
		if errors.As(w, &pe) {
			ev = ev.Int("line", pe.Line).Str("field", pe.Field).Str("value", pe.Value)
		}
		ev.Err(w).Msg("skipped transaction with invalid value")
	}
	return report, parsed.Transactions
}

func metricForm(detected, requested models.StatementForm) string {
	if detected != "" {
		return string(detected)
	}
	return string(requested)
}
