package parser

import (
	"regexp"
	"strings"
)

// Monthly statement grammars. Both are anchored to the whole normalized line.
var (
	// DD MMM YY  DESCRIPTION  AMOUNT  C|D
	singleLinePattern = regexp.MustCompile(`^(\d{2}\s+[A-Za-z]{3}\s+\d{2})\s+(.+?)\s+([\d,.]+)\s+(C|D)$`)
	// DD MMM YY  AMOUNT  C|D, with the description on the surrounding lines
	multiLinePattern = regexp.MustCompile(`^(\d{2}\s+[A-Za-z]{3}\s+\d{2})\s+([\d,.]+)\s+(C|D)$`)
)

// Transaction history export grammar, applied to the whole text.
// DD/MM/YYYY  DESCRIPTION  Credit|Debit  AMOUNT
var exportPattern = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+(.*?)\s+(Credit|Debit)\s+([\d,.]+)`)

// rawMatch is the textual output of a grammar before value conversion.
type rawMatch struct {
	date        string
	description string
	amount      string
	marker      string
	// consumed is how many lines, starting at the matched one, belong to the match.
	consumed int
}

// lineGrammar recognizes a transaction starting at lines[i].
type lineGrammar struct {
	method string
	match  func(lines []string, i int) (rawMatch, bool)
}

// monthlyGrammars are tried in order; the first grammar that matches wins.
var monthlyGrammars = []lineGrammar{
	{method: "single-line", match: matchSingleLine},
	{method: "multi-line", match: matchMultiLine},
}

func matchSingleLine(lines []string, i int) (rawMatch, bool) {
	m := singleLinePattern.FindStringSubmatch(lines[i])
	if m == nil {
		return rawMatch{}, false
	}
	return rawMatch{
		date:        m[1],
		description: strings.TrimSpace(m[2]),
		amount:      m[3],
		marker:      m[4],
		consumed:    1,
	}, true
}

// matchMultiLine joins the line before and the line after the amount line
// into the description. The following line is consumed by the match.
func matchMultiLine(lines []string, i int) (rawMatch, bool) {
	m := multiLinePattern.FindStringSubmatch(lines[i])
	if m == nil {
		return rawMatch{}, false
	}
	var before, after string
	if i > 0 {
		before = strings.TrimSpace(lines[i-1])
	}
	if i+1 < len(lines) {
		after = strings.TrimSpace(lines[i+1])
	}
	return rawMatch{
		date:        m[1],
		description: strings.TrimSpace(before + " " + after),
		amount:      m[2],
		marker:      m[3],
		consumed:    2,
	}, true
}

// matchLine tries every monthly grammar against lines[i] in priority order.
func matchLine(lines []string, i int) (rawMatch, string, bool) {
	for _, g := range monthlyGrammars {
		if m, ok := g.match(lines, i); ok {
			return m, g.method, true
		}
	}
	return rawMatch{}, "", false
}

// exportMatch is a rawMatch located inside the whole-document text.
type exportMatch struct {
	rawMatch
	offset int
	text   string
}

// matchExport returns every non-overlapping export-form match in document order.
func matchExport(text string) []exportMatch {
	locs := exportPattern.FindAllStringSubmatchIndex(text, -1)
	matches := make([]exportMatch, 0, len(locs))
	for _, loc := range locs {
		group := func(n int) string { return text[loc[2*n]:loc[2*n+1]] }
		matches = append(matches, exportMatch{
			rawMatch: rawMatch{
				date:        group(1),
				description: strings.TrimSpace(group(2)),
				marker:      group(3),
				amount:      group(4),
			},
			offset: loc[0],
			text:   text[loc[0]:loc[1]],
		})
	}
	return matches
}
