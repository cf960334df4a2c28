package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-converter/internal/models"
)

func txn(date, desc, debit, credit string) models.Transaction {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{
		Date:        d,
		Description: desc,
		Debit:       decimal.RequireFromString(debit),
		Credit:      decimal.RequireFromString(credit),
	}
}

func dates(set *models.RecordSet) []string {
	out := make([]string, set.Len())
	for i, r := range set.Rows {
		out[i] = r.DateString()
	}
	return out
}

func numbers(set *models.RecordSet) []int {
	out := make([]int, set.Len())
	for i, r := range set.Rows {
		out[i] = r.No
	}
	return out
}

func TestNormalize_SortsAndNumbers(t *testing.T) {
	input := []models.Transaction{
		txn("15/03/2024", "MARCH", "100.00", "0"),
		txn("01/01/2024", "JANUARY", "0", "2500.50"),
		txn("20/02/2024", "FEBRUARY", "49.50", "0"),
	}

	set := Normalize(input)

	assert.Equal(t, []string{"01/01/2024", "20/02/2024", "15/03/2024"}, dates(set))
	assert.Equal(t, []int{1, 2, 3}, numbers(set))
	assert.Equal(t, "01/01/2024", set.Oldest.Format(models.DateLayout))
	assert.Equal(t, "15/03/2024", set.Newest.Format(models.DateLayout))
	assert.Equal(t, "149.50", set.TotalDebit.StringFixed(2))
	assert.Equal(t, "2500.50", set.TotalCredit.StringFixed(2))
	assert.Equal(t, "MARCH", input[0].Description, "input must not be reordered")
}

func TestNormalize_StableForEqualDates(t *testing.T) {
	set := Normalize([]models.Transaction{
		txn("02/01/2024", "LATER", "1", "0"),
		txn("01/01/2024", "FIRST", "1", "0"),
		txn("01/01/2024", "SECOND", "1", "0"),
		txn("01/01/2024", "THIRD", "1", "0"),
	})

	var got []string
	for _, r := range set.Rows {
		got = append(got, r.Description)
	}
	assert.Equal(t, []string{"FIRST", "SECOND", "THIRD", "LATER"}, got)
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize([]models.Transaction{
		txn("10/05/2024", "POS PURCHASE AMAZON", "1200.00", "0"),
		txn("05/04/2024", "ATM WDL XYZ", "500.00", "0"),
		txn("05/04/2024", "TEA", "20.00", "0"),
	})

	second := Normalize(first.Transactions())

	require.Equal(t, first.Len(), second.Len())
	assert.Equal(t, numbers(first), numbers(second))
	assert.Equal(t, dates(first), dates(second))
	assert.Equal(t, first.Transactions(), second.Transactions())
}

func TestNormalize_Empty(t *testing.T) {
	set := Normalize(nil)

	assert.True(t, set.Empty())
	assert.True(t, set.Oldest.IsZero())
	assert.True(t, set.TotalDebit.IsZero())
	assert.Equal(t, "0.00", set.TotalCredit.StringFixed(2))
}
