package parser

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"500.00", "500.00", false},
		{"1,234.50", "1234.50", false},
		{"12,34,567.89", "1234567.89", false},
		{" 25.99 ", "25.99", false},
		{"7", "7.00", false},
		{"abc", "", true},
		{"", "", true},
		{",", "", true},
		{"1.2.3", "", true},
		{"-25.99", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.StringFixed(2))
		})
	}
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"05 Apr 24", time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), false},
		{"10  May   24", time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC), false},
		{"01 JAN 99", time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC), false},
		{"31 dec 23", time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"05 Xyz 24", time.Time{}, true},
		{"32 Jan 24", time.Time{}, true},
		{"30 Feb 24", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseStatementDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseExportDate(t *testing.T) {
	got, err := parseExportDate("15/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "15/03/2024", got.Format(exportDateLayout))

	_, err = parseExportDate("31/02/2024")
	assert.Error(t, err)

	_, err = parseExportDate("15/13/2024")
	assert.Error(t, err)
}

func TestNormalizeLine(t *testing.T) {
	assert.Equal(t, "05 Apr 24 ATM 500.00 D", normalizeLine("  05 Apr 24 ATM 500.00 D\r"))
	assert.Equal(t, "AMAZON", normalizeLine("\uFEFFAMA\u200BZON"))
	assert.Equal(t, "", normalizeLine(" \t\u00A0"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "05/04/2024 ATM WDL\nDebit 500.00",
		normalizeText("05/04/2024\u00A0ATM\u200B WDL\n\uFEFFDebit\u00A0500.00"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	assert.Equal(t, strings.Repeat("a", 120)+"...", truncate(strings.Repeat("a", 130)))

	rupees := truncate(strings.Repeat("₹", 130))
	assert.True(t, utf8.ValidString(rupees))
	assert.Equal(t, 123, utf8.RuneCountInString(rupees))
	assert.Equal(t, strings.Repeat("₹", 120)+"...", rupees)

	exact := strings.Repeat("₹", 120)
	assert.Equal(t, exact, truncate(exact))
}

func TestParseError(t *testing.T) {
	_, amtErr := parseAmount("abc")
	err := &ParseError{Line: 4, Field: "amount", Value: "abc", Err: amtErr}

	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), `"abc"`)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
