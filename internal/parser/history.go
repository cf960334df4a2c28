package parser

import (
	"strings"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// HistoryParser handles transaction history exports, where transactions
// run through the text without a stable line structure:
//
//	05/04/2024 UPI/DR/4099/ZOMATO Debit 349.00
//
// The export grammar is applied to the whole text, not line by line.
type HistoryParser struct{}

func (p *HistoryParser) Form() models.StatementForm {
	return models.FormHistory
}

// Parse extracts every non-overlapping export match in document order.
// Text with no matches yields an empty result, never an error.
func (p *HistoryParser) Parse(text string) *models.ParseResult {
	result := &models.ParseResult{Form: models.FormHistory}
	text = normalizeText(text)

	for _, m := range matchExport(text) {
		line := strings.Count(text[:m.offset], "\n") + 1
		dl := models.DebugLine{
			LineNum: line,
			Text:    truncate(strings.Join(strings.Fields(m.text), " ")),
			Method:  "export",
		}

		txn, err := m.transaction(line, parseExportDate, exportMarkers)
		if err != nil {
			dl.Result = "invalid"
			result.Warnings = append(result.Warnings, err)
		} else {
			dl.Result = "parsed"
			result.Transactions = append(result.Transactions, txn)
		}
		result.DebugLines = append(result.DebugLines, dl)
	}

	return result
}
