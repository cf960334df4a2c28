package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-converter/internal/models"
)

// Parser defines the interface for statement text parsers.
type Parser interface {
	// Parse takes the whole extracted text of one document and returns the
	// transactions found in it. Unrecognized text is dropped silently.
	Parse(text string) *models.ParseResult
	// Form returns the statement layout the parser understands.
	Form() models.StatementForm
}

// New returns the parser for the given statement form.
func New(form models.StatementForm) (Parser, error) {
	switch form {
	case models.FormMonthly:
		return &MonthlyParser{}, nil
	case models.FormHistory:
		return &HistoryParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported statement form: %q", form)
	}
}

// ParseForm maps user input to a statement form.
func ParseForm(s string) (models.StatementForm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "monthly-statement", "statement":
		return models.FormMonthly, nil
	case "history", "transaction-history", "export":
		return models.FormHistory, nil
	case "auto", "":
		return models.FormAuto, nil
	default:
		return "", fmt.Errorf("unknown statement form %q. Supported: monthly, history, auto", s)
	}
}

// AutoDetect identifies the statement form from extracted text. Any line
// matching the monthly grammar makes the text a monthly statement; the export
// grammar is only consulted when none does, because monthly headers such as
// "Statement Date 15/05/2024" followed by "Total Credit 5,000.00" also fit it.
func AutoDetect(text string) (models.StatementForm, error) {
	text = normalizeText(text)

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for i := range lines {
		if _, _, ok := matchLine(lines, i); ok {
			return models.FormMonthly, nil
		}
	}

	if exportPattern.MatchString(text) {
		return models.FormHistory, nil
	}

	return "", fmt.Errorf("could not detect statement form from content; please specify the form explicitly")
}
