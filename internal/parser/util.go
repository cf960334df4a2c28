package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-converter/internal/models"
)

const (
	// statementDateLayout is the monthly statement date, e.g. "05 Apr 24".
	statementDateLayout = "02 Jan 06"
	// exportDateLayout is the transaction history date, e.g. "05/04/2024".
	exportDateLayout = models.DateLayout
)

// ErrInvalidAmount is wrapped by ParseError when an amount is not numeric.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseError reports a line or match that fit a grammar but carried a value
// that could not be converted. Parsers skip the offending record and keep
// the error as a warning.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parseAmount converts a string like "1,234.50" to a decimal.
// Grouping separators are stripped; anything else non-numeric is rejected.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// parseStatementDate parses "DD MMM YY". Runs of whitespace between the
// parts are accepted; month abbreviations match case-insensitively.
func parseStatementDate(s string) (time.Time, error) {
	return time.Parse(statementDateLayout, strings.Join(strings.Fields(s), " "))
}

// parseExportDate validates a "DD/MM/YYYY" date.
func parseExportDate(s string) (time.Time, error) {
	return time.Parse(exportDateLayout, strings.TrimSpace(s))
}

// normalizeText cleans up common PDF extraction artifacts: zero-width
// characters and byte order marks are dropped and non-breaking spaces become
// plain spaces. Line breaks are left alone.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\u200B", "")
	text = strings.ReplaceAll(text, "\uFEFF", "")
	return strings.ReplaceAll(text, "\u00A0", " ")
}

// normalizeLine is normalizeText plus trimming.
func normalizeLine(line string) string {
	return strings.TrimSpace(normalizeText(line))
}

// maxDebugRunes bounds lines shown in debug output.
const maxDebugRunes = 120

// truncate shortens long lines for debug display without splitting a
// multi-byte character.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDebugRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxDebugRunes]) + "..."
}
