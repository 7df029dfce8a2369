package query

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// TokenKind classifies a raw token.
type TokenKind int

const (
	TokWord TokenKind = iota
	TokLParen
	TokRParen
)

// Token is a raw lexical unit. Word tokens keep embedded quoted phrases and
// bracketed tags intact, so `"heart failure"[tiab:~3]` is a single word.
type Token struct {
	Kind TokenKind
	Text string
}

var quoteReplacer = strings.NewReplacer(
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`,
	"\u2018", "'", "\u2019", "'",
	"\u00a0", " ",
)

// Normalize folds full-width punctuation and typographic quotes that creep
// in when queries are drafted in word processors or CJK input methods.
func Normalize(s string) string {
	s = width.Fold.String(s)
	s = norm.NFC.String(s)
	return quoteReplacer.Replace(s)
}

// Tokenize splits s into words and parentheses. Parentheses inside quotes or
// brackets are part of the word. Unterminated quotes or brackets run to the
// end of the input.
func Tokenize(s string) []Token {
	var toks []Token
	var cur strings.Builder
	inQuote, inBracket := false, false

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, Token{Kind: TokWord, Text: cur.String()})
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case inQuote:
			cur.WriteRune(r)
			if r == '"' {
				inQuote = false
			}
		case inBracket:
			cur.WriteRune(r)
			if r == ']' {
				inBracket = false
			}
		case r == '"':
			cur.WriteRune(r)
			inQuote = true
		case r == '[':
			cur.WriteRune(r)
			inBracket = true
		case r == '(':
			flush()
			toks = append(toks, Token{Kind: TokLParen, Text: "("})
		case r == ')':
			flush()
			toks = append(toks, Token{Kind: TokRParen, Text: ")"})
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// IsQuoted reports whether s is a single double-quoted phrase.
func IsQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) &&
		!strings.Contains(s[1:len(s)-1], `"`)
}

// Unquote strips one pair of surrounding double quotes, if present.
func Unquote(s string) string {
	if IsQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// CollapseSpace reduces every whitespace run to a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
