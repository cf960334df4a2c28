package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Row is a numbered Transaction inside a RecordSet.
type Row struct {
	No int `json:"no"`
	Transaction
}

type rowJSON struct {
	No          int    `json:"no"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

// MarshalJSON renders the row with a DD/MM/YYYY date and two-decimal amounts.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		No:          r.No,
		Date:        r.DateString(),
		Description: r.Description,
		Debit:       r.Debit.StringFixed(2),
		Credit:      r.Credit.StringFixed(2),
	})
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw rowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("row %d: %w", raw.No, err)
	}
	debit, err := decimal.NewFromString(raw.Debit)
	if err != nil {
		return fmt.Errorf("row %d debit: %w", raw.No, err)
	}
	credit, err := decimal.NewFromString(raw.Credit)
	if err != nil {
		return fmt.Errorf("row %d credit: %w", raw.No, err)
	}
	*r = Row{No: raw.No, Transaction: Transaction{Date: date, Description: raw.Description, Debit: debit, Credit: credit}}
	return nil
}

// RecordSet is the sorted, numbered table produced by one conversion.
type RecordSet struct {
	Rows        []Row
	Oldest      time.Time
	Newest      time.Time
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// Len returns the number of rows.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Empty reports whether the set holds no transactions.
func (s *RecordSet) Empty() bool {
	return s.Len() == 0
}

// Transactions returns the rows without their sequence numbers, in row order.
func (s *RecordSet) Transactions() []Transaction {
	if s == nil {
		return nil
	}
	txns := make([]Transaction, len(s.Rows))
	for i, r := range s.Rows {
		txns[i] = r.Transaction
	}
	return txns
}
