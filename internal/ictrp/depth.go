package ictrp

import "strings"

// FlattenDepth replaces parentheses nested deeper than limit with spaces.
// Text inside double quotes is left alone.
func FlattenDepth(s string, limit int) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
			if depth > limit {
				r = ' '
			}
		case r == ')':
			if depth > limit {
				r = ' '
			}
			if depth > 0 {
				depth--
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tidyParens drops spaces just inside parentheses, outside quotes.
func tidyParens(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	inQuote := false
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '"' {
			inQuote = !inQuote
		}
		if r == ' ' && !inQuote {
			j := i
			for j < len(rs) && rs[j] == ' ' {
				j++
			}
			if (j < len(rs) && rs[j] == ')') || (len(out) > 0 && out[len(out)-1] == '(') {
				i = j - 1
				continue
			}
		}
		out = append(out, r)
	}
	return string(out)
}
