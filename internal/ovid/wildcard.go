package ovid

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

const minTruncationStem = 4

var numericTruncRe = regexp.MustCompile(`\$\d+`)

// rewriteWildcards converts Ovid truncation and wildcard characters in
// every word of text to PubMed's "*".
func rewriteWildcards(text string, w *warn.Collector) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		words[i] = rewriteWord(word, w)
	}
	return strings.Join(words, " ")
}

func rewriteWord(word string, w *warn.Collector) string {
	if numericTruncRe.MatchString(word) {
		word = numericTruncRe.ReplaceAllString(word, "*")
		w.Add(`Ovid numeric truncation ("$n") is not supported by PubMed; converted to "*"`)
	}
	if strings.HasSuffix(word, "$") {
		word = strings.TrimSuffix(word, "$") + "*"
	}
	if strings.ContainsAny(word, "?#") {
		word = strings.NewReplacer("?", "*", "#", "*").Replace(word)
		w.Add(`Ovid wildcards ("?", "#") are not supported by PubMed; converted to "*" (may broaden results)`)
	}
	if hasShortStem(word) {
		w.Add(`PubMed may ignore truncation with fewer than %d characters before "*": %q`,
			minTruncationStem, strings.Trim(word, `"()`))
	}
	return word
}

// hasShortStem reports whether any "*" in word follows fewer than
// minTruncationStem letters or digits.
func hasShortStem(word string) bool {
	stem := 0
	for _, r := range word {
		switch {
		case r == '*':
			if stem < minTruncationStem {
				return true
			}
			stem = 0
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			stem++
		default:
			stem = 0
		}
	}
	return false
}

// rewriteTree applies rewriteWildcards to every leaf that has not been
// tagged by the input itself.
func rewriteTree(n query.Node, w *warn.Collector) {
	query.Walk(n, func(n query.Node) {
		switch v := n.(type) {
		case *query.Term:
			if v.Tag == "" {
				v.Text = rewriteWildcards(v.Text, w)
			}
		case *query.Proximity:
			if v.Tag == "" {
				for i, t := range v.Terms {
					v.Terms[i] = rewriteWildcards(t, w)
				}
			}
		}
	})
}
