// Package normalize orders transactions by date and numbers them.
package normalize

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// Normalize returns a RecordSet with the transactions stable-sorted by
// ascending date and numbered from 1. Transactions sharing a date keep
// their input order. The input slice is not modified.
func Normalize(txns []models.Transaction) *models.RecordSet {
	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	set := &models.RecordSet{
		Rows:        make([]models.Row, len(sorted)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, t := range sorted {
		set.Rows[i] = models.Row{No: i + 1, Transaction: t}
		set.TotalDebit = set.TotalDebit.Add(t.Debit)
		set.TotalCredit = set.TotalCredit.Add(t.Credit)
	}
	if len(sorted) > 0 {
		set.Oldest = sorted[0].Date
		set.Newest = sorted[len(sorted)-1].Date
	}
	return set
}
