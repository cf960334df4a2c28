package batch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-converter/internal/extractor"
	"github.com/insightdelivered/statement-converter/internal/logger"
	"github.com/insightdelivered/statement-converter/internal/metrics"
	"github.com/insightdelivered/statement-converter/internal/models"
)

const aprilStatement = `STATE BANK OF INDIA
Statement of Account
05 Apr 24 ATM WDL XYZ 500.00 D
POS PURCHASE
10 Apr 24 1,200.00 D
AMAZON
Closing Balance 12,000.00`

const mayStatement = `STATE BANK OF INDIA
28 May 24 SALARY ACME 50,000.00 C`

const mayWithTotals = `STATE BANK OF INDIA
Statement Date 15/05/2024
Total Credit 5,000.00
01 May 24 PAYMENT RECEIVED 5,000.00 C
02 May 24 FUEL SURCHARGE 12.50 D`

const historyExport = `Transaction History
15/03/2024 UPI/DR/ZOMATO Debit 349.00
01/03/2024 NEFT/CR/ACME PAYROLL Credit 85,000.00`

func doc(name, text string) models.Document {
	return models.Document{Name: name, Data: []byte(text)}
}

func newAggregator() *Aggregator {
	return &Aggregator{Extractor: extractor.New(extractor.Options{}), Metrics: metrics.New()}
}

func descriptions(txns []models.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.Description
	}
	return out
}

func TestRun_ConcatenatesInDocumentOrder(t *testing.T) {
	a := newAggregator()

	result, err := a.Run(context.Background(), models.FormMonthly, []models.Document{
		doc("may.txt", mayStatement),
		doc("april.txt", aprilStatement),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"SALARY ACME", "ATM WDL XYZ", "POS PURCHASE AMAZON"}, descriptions(result.Transactions))
	require.Len(t, result.Documents, 2)
	assert.Equal(t, 1, result.Documents[0].Transactions)
	assert.Equal(t, 2, result.Documents[1].Transactions)
	assert.Equal(t, models.FormMonthly, result.Documents[1].Form)
	assert.Equal(t, 1, result.Documents[1].Pages)
	assert.Empty(t, result.Failed())
}

func TestRun_KeepsDuplicatesAcrossDocuments(t *testing.T) {
	a := newAggregator()

	result, err := a.Run(context.Background(), models.FormMonthly, []models.Document{
		doc("a.txt", mayStatement),
		doc("b.txt", mayStatement),
	})
	require.NoError(t, err)

	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, result.Transactions[0], result.Transactions[1])
}

func TestRun_IsolatesFailingDocument(t *testing.T) {
	a := newAggregator()

	result, err := a.Run(context.Background(), models.FormMonthly, []models.Document{
		doc("april.txt", aprilStatement),
		{Name: "empty.pdf"},
		doc("may.txt", mayStatement),
	})
	require.NoError(t, err)

	assert.Len(t, result.Transactions, 3)
	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "empty.pdf", failed[0].Name)
	assert.ErrorIs(t, failed[0].Err, extractor.ErrEmptyDocument)
	assert.Equal(t, metrics.OutcomeExtractionError, failed[0].Outcome())

	series, err := testutil.GatherAndCount(a.Metrics.Registry(), "statement_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestRun_ContractErrors(t *testing.T) {
	a := newAggregator()

	_, err := a.Run(context.Background(), models.FormMonthly, nil)
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = a.Run(context.Background(), models.FormHistory, []models.Document{
		doc("a.txt", historyExport),
		doc("b.txt", historyExport),
	})
	assert.ErrorIs(t, err, ErrSingleDocument)

	_, err = a.Run(context.Background(), "quarterly", []models.Document{doc("a.txt", mayStatement)})
	assert.Error(t, err)
}

func TestRun_History(t *testing.T) {
	a := newAggregator()

	result, err := a.Run(context.Background(), models.FormHistory, []models.Document{doc("export.txt", historyExport)})
	require.NoError(t, err)

	assert.Equal(t, []string{"UPI/DR/ZOMATO", "NEFT/CR/ACME PAYROLL"}, descriptions(result.Transactions))
}

func TestRun_AutoDetect(t *testing.T) {
	a := newAggregator()

	result, err := a.Run(context.Background(), models.FormAuto, []models.Document{doc("export.txt", historyExport)})
	require.NoError(t, err)
	assert.Equal(t, models.FormHistory, result.Documents[0].Form)
	assert.Len(t, result.Transactions, 2)

	result, err = a.Run(context.Background(), models.FormAuto, []models.Document{
		doc("april.txt", aprilStatement),
		doc("export.txt", historyExport),
		doc("notes.txt", "nothing to see here"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, models.FormMonthly, result.Documents[0].Form)
	assert.ErrorIs(t, result.Documents[1].Err, ErrSingleDocument)
	assert.NoError(t, result.Documents[2].Err)
	assert.Equal(t, metrics.OutcomeEmpty, result.Documents[2].Outcome())

	// A statement header can fit the export grammar across lines.
	result, err = a.Run(context.Background(), models.FormAuto, []models.Document{
		doc("april.txt", aprilStatement),
		doc("may.txt", mayWithTotals),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Failed())
	assert.Len(t, result.Transactions, 4)
	for _, d := range result.Documents {
		assert.NoError(t, d.Err)
		assert.Equal(t, models.FormMonthly, d.Form)
	}
}

func TestRun_LogsParseWarnings(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))
	a := newAggregator()

	result, err := a.Run(ctx, models.FormMonthly, []models.Document{
		doc("bad.txt", "31 Feb 24 ATM WDL 10.00 D\n05 Apr 24 TEA 20.00 D"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Transactions, 1)
	require.Len(t, result.Documents[0].Warnings, 1)
	assert.Contains(t, buf.String(), `"document":"bad.txt"`)
	assert.Contains(t, buf.String(), `"field":"date"`)
	assert.Contains(t, buf.String(), `"line":1`)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAggregator().Run(ctx, models.FormMonthly, []models.Document{doc("a.txt", mayStatement)})
	assert.True(t, errors.Is(err, context.Canceled))
}
