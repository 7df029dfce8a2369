package dialog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
)

var (
	missingPeriodRe = regexp.MustCompile(`^\d+\s+`)
	expRe           = regexp.MustCompile(`(?i)(?:^|[\s(*])exp\s+`)
)

// Validate scans a search document for two structural slips and returns
// one message per finding:
//
//   - a line numbered "1 ..." instead of "1. ..."
//   - an "exp" heading that is not closed by "/" before the next boolean
//     operator, closing parenthesis, or end of line
//
// Validate never rejects input.
func Validate(doc string) []string {
	var out []string
	for i, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := i + 1
		if missingPeriodRe.MatchString(line) {
			out = append(out, fmt.Sprintf("Line %d: missing period after line number: %q", n, clip(line, 20)))
		}
		for _, loc := range expRe.FindAllStringIndex(line, -1) {
			if !closedBySlash(line[loc[1]:]) {
				out = append(out, fmt.Sprintf("Line %d: MeSH heading after \"exp\" may be missing its trailing \"/\": %q", n, clip(line[loc[0]:], 30)))
			}
		}
	}
	return out
}

// closedBySlash reports whether rest contains "/" before a boolean
// operator or a closing parenthesis.
func closedBySlash(rest string) bool {
	for _, tok := range query.Tokenize(rest) {
		if tok.Kind == query.TokRParen {
			return false
		}
		if _, ok := query.ParseOp(tok.Text); ok {
			return false
		}
		if strings.Contains(tok.Text, "/") {
			return true
		}
	}
	return false
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
