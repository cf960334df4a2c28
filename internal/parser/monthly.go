package parser

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// MonthlyParser handles monthly statement text.
//
// Monthly statements put a transaction on one line:
//
//	05 Apr 24 ATM WDL XYZ 500.00 D
//
// or split the description around the amount line:
//
//	POS PURCHASE
//	10 May 24 1,200.00 D
//	AMAZON
type MonthlyParser struct{}

func (p *MonthlyParser) Form() models.StatementForm {
	return models.FormMonthly
}

// Parse walks the lines once. A multi-line match consumes its continuation
// line, which is never evaluated on its own. Lines matching no grammar are
// skipped; matched lines with unconvertible values become warnings.
func (p *MonthlyParser) Parse(text string) *models.ParseResult {
	result := &models.ParseResult{Form: models.FormMonthly}

	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = normalizeLine(l)
	}

	for i := 0; i < len(lines); {
		dl := models.DebugLine{LineNum: i + 1, Text: truncate(lines[i])}

		m, method, ok := matchLine(lines, i)
		if !ok {
			if lines[i] != "" {
				dl.Result = "skipped"
				result.DebugLines = append(result.DebugLines, dl)
			}
			i++
			continue
		}

		dl.Method = method
		txn, err := m.transaction(i+1, parseStatementDate, statementMarkers)
		if err != nil {
			dl.Result = "invalid"
			result.Warnings = append(result.Warnings, err)
		} else {
			dl.Result = "parsed"
			result.Transactions = append(result.Transactions, txn)
		}
		result.DebugLines = append(result.DebugLines, dl)

		for j := 1; j < m.consumed && i+j < len(lines); j++ {
			result.DebugLines = append(result.DebugLines, models.DebugLine{
				LineNum: i + j + 1,
				Text:    truncate(lines[i+j]),
				Result:  "continuation",
				Method:  method,
			})
		}
		i += m.consumed
	}

	return result
}

// direction says which column an amount lands in.
type direction int

const (
	debit direction = iota
	credit
)

var errUnknownMarker = errors.New("unknown direction marker")

var (
	statementMarkers = map[string]direction{"D": debit, "C": credit}
	exportMarkers    = map[string]direction{"Debit": debit, "Credit": credit}
)

// transaction converts the textual match into a Transaction.
func (m rawMatch) transaction(line int, parseDate func(string) (time.Time, error), markers map[string]direction) (models.Transaction, error) {
	date, err := parseDate(m.date)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: line, Field: "date", Value: m.date, Err: err}
	}
	amount, err := parseAmount(m.amount)
	if err != nil {
		return models.Transaction{}, &ParseError{Line: line, Field: "amount", Value: m.amount, Err: err}
	}

	dir, ok := markers[m.marker]
	if !ok {
		return models.Transaction{}, &ParseError{Line: line, Field: "direction", Value: m.marker, Err: errUnknownMarker}
	}

	txn := models.Transaction{
		Date:        date,
		Description: m.description,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
	}
	if dir == credit {
		txn.Credit = amount
	} else {
		txn.Debit = amount
	}
	return txn, nil
}
