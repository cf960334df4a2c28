package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical display layout for transaction dates (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// Transaction represents a single statement transaction.
// Exactly one of Debit and Credit is nonzero for records produced by the parsers.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// DateString returns the date in DateLayout.
func (t Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// StatementForm identifies the text layout a document was exported in.
type StatementForm string

const (
	// FormMonthly is the line-oriented monthly statement layout.
	FormMonthly StatementForm = "monthly"
	// FormHistory is the flowing transaction history export layout.
	FormHistory StatementForm = "history"
	// FormAuto asks for the layout to be detected from each document's text.
	FormAuto StatementForm = "auto"
)

// DebugLine captures what the parser did with each examined line or match.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "parsed", "continuation", "invalid", "skipped"
	Method  string `json:"method,omitempty"`
}

// ParseResult is everything a parser produced from one document's text.
type ParseResult struct {
	Form         StatementForm
	Transactions []Transaction
	Warnings     []error
	DebugLines   []DebugLine
}

// Document is one input payload supplied by the caller.
type Document struct {
	Name string
	Data []byte
}
