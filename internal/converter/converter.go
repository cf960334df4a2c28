// Package converter runs one conversion request: batch extraction and
// parsing, then normalization into a numbered, date-ordered record set.
package converter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-converter/internal/batch"
	"github.com/insightdelivered/statement-converter/internal/logger"
	"github.com/insightdelivered/statement-converter/internal/metrics"
	"github.com/insightdelivered/statement-converter/internal/models"
	"github.com/insightdelivered/statement-converter/internal/money"
	"github.com/insightdelivered/statement-converter/internal/normalize"
	"github.com/insightdelivered/statement-converter/internal/writer"
)

// DefaultBankCode prefixes export filenames when none is configured.
const DefaultBankCode = "SBI"

// NoTransactionsHint is shown when a conversion finds nothing.
const NoTransactionsHint = "No transactions found in the uploaded PDF. Please make sure it's a valid statement."

// Service converts batches of statement documents.
type Service struct {
	Aggregator *batch.Aggregator
	Metrics    *metrics.Metrics
	BankCode   string
}

// Conversion is the outcome of one request.
type Conversion struct {
	ID        string
	Form      models.StatementForm
	BankCode  string
	RecordSet *models.RecordSet
	Documents []batch.DocumentReport
	Elapsed   time.Duration
}

// Summary is the presentation view of a conversion's totals.
type Summary struct {
	Transactions int    `json:"transactions"`
	TotalDebit   string `json:"totalDebit"`
	TotalCredit  string `json:"totalCredit"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}

// Convert runs docs through the aggregator and normalizer. Errors are
// returned only for requests that cannot run at all; unreadable documents
// are listed in the returned Documents, and an empty result is reported by
// NoTransactions.
func (s *Service) Convert(ctx context.Context, form models.StatementForm, docs []models.Document) (*Conversion, error) {
	start := time.Now()
	id := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("request_id", id).Logger()
	ctx = logger.WithContext(ctx, log)

	result, err := s.Aggregator.Run(ctx, form, docs)
	if err != nil {
		log.Error().Err(err).Str("form", string(form)).Msg("conversion rejected")
		return nil, err
	}

	bankCode := s.BankCode
	if bankCode == "" {
		bankCode = DefaultBankCode
	}
	c := &Conversion{
		ID:        id,
		Form:      form,
		BankCode:  bankCode,
		RecordSet: normalize.Normalize(result.Transactions),
		Documents: result.Documents,
		Elapsed:   time.Since(start),
	}
	s.Metrics.ObserveConversion(string(form), c.Elapsed)

	log.Info().
		Str("form", string(form)).
		Int("documents", len(docs)).
		Int("failed", len(result.Failed())).
		Int("transactions", c.RecordSet.Len()).
		Dur("elapsed", c.Elapsed).
		Msg("conversion finished")
	return c, nil
}

// NoTransactions reports the empty terminal state.
func (c *Conversion) NoTransactions() bool {
	return c.RecordSet.Empty()
}

// Filename returns the export filename for ext, named after the oldest and
// newest transaction dates.
func (c *Conversion) Filename(ext string) string {
	return writer.Filename(c.BankCode, c.RecordSet.Oldest, c.RecordSet.Newest, ext)
}

// Summary renders the totals with the rupee symbol.
func (c *Conversion) Summary() Summary {
	s := Summary{
		Transactions: c.RecordSet.Len(),
		TotalDebit:   money.FormatINR(c.RecordSet.TotalDebit),
		TotalCredit:  money.FormatINR(c.RecordSet.TotalCredit),
	}
	if !c.RecordSet.Empty() {
		s.From = c.RecordSet.Oldest.Format(models.DateLayout)
		s.To = c.RecordSet.Newest.Format(models.DateLayout)
	}
	return s
}

// Warnings returns every parse warning across documents, in document order.
func (c *Conversion) Warnings() []error {
	var out []error
	for _, d := range c.Documents {
		out = append(out, d.Warnings...)
	}
	return out
}
