package query

import (
	"regexp"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	refRe  = regexp.MustCompile(`^#(\d+)$`)
	dateRe = regexp.MustCompile(`^(\d{4}(?:/\d{1,2}(?:/\d{1,2})?)?):(\d{4}(?:/\d{1,2}(?:/\d{1,2})?)?)$`)
)

// ParsePubMed parses a single PubMed query expression. Parsing never fails:
// unbalanced parentheses and dangling operators are repaired and reported
// through w. An empty input yields a nil node.
func ParsePubMed(s string, w *warn.Collector) Node {
	p := &pubmedParser{toks: Tokenize(Normalize(s)), w: w}
	return p.parseTop()
}

type pubmedParser struct {
	toks []Token
	pos  int
	w    *warn.Collector
}

func (p *pubmedParser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *pubmedParser) parseTop() Node {
	var nodes []Node
	var ops []Op
	for {
		if n := p.parseExpr(); n != nil {
			if len(nodes) > 0 {
				ops = append(ops, OpNone)
			}
			nodes = append(nodes, n)
		}
		if _, ok := p.peek(); !ok {
			break
		}
		// parseExpr only stops early on a closing parenthesis.
		p.w.Add("unbalanced parenthesis: removed a stray \")\"")
		p.pos++
	}
	return collapse(nodes, ops)
}

// parseExpr reads operands joined by operators until a closing parenthesis
// or the end of input.
func (p *pubmedParser) parseExpr() Node {
	var operands []Node
	var ops []Op
	pending := OpNone
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokRParen {
			break
		}
		if tok.Kind == TokWord {
			if op, isOp := ParseOp(tok.Text); isOp {
				p.pos++
				if len(operands) == 0 {
					p.w.Add("dangling operator %q ignored", tok.Text)
					continue
				}
				pending = StackOp(pending, op, p.w)
				continue
			}
		}
		operand := p.parseOperand()
		if operand == nil {
			continue
		}
		if len(operands) > 0 {
			ops = append(ops, pending)
		}
		operands = append(operands, operand)
		pending = OpNone
	}
	if pending != OpNone {
		p.w.Add("dangling operator %q ignored", string(pending))
	}
	return collapse(operands, ops)
}

// StackOp resolves an operator that follows another with no operand between
// them. AND NOT reads as NOT; any other pair keeps the later operator.
func StackOp(pending, next Op, w *warn.Collector) Op {
	switch {
	case pending == OpNone:
	case pending == OpAnd && next == OpNot:
	default:
		w.Add("stacked operators %q %q: kept %q", string(pending), string(next), string(next))
	}
	return next
}

func (p *pubmedParser) parseOperand() Node {
	tok := p.toks[p.pos]
	if tok.Kind == TokLParen {
		p.pos++
		inner := p.parseExpr()
		if t, ok := p.peek(); ok && t.Kind == TokRParen {
			p.pos++
		} else {
			p.w.Add("unbalanced parenthesis: closed a missing \")\"")
		}
		if inner == nil {
			return nil
		}
		return &Group{Expr: inner}
	}

	if m := refRe.FindStringSubmatch(tok.Text); m != nil {
		p.pos++
		return &Ref{ID: m[1]}
	}

	// Collect a phrase: consecutive plain words, closed by a tagged word.
	var words []string
	for {
		t, ok := p.peek()
		if !ok || t.Kind != TokWord {
			break
		}
		if _, isOp := ParseOp(t.Text); isOp {
			break
		}
		if refRe.MatchString(t.Text) {
			break
		}
		words = append(words, t.Text)
		p.pos++
		if _, _, tagged := SplitTag(t.Text); tagged {
			break
		}
	}
	return PhraseNode(words)
}

// PhraseNode builds a leaf from the words of a phrase. When the last word
// carries a PubMed tag the tag applies to the whole phrase.
func PhraseNode(words []string) Node {
	if len(words) == 0 {
		return nil
	}
	last := words[len(words)-1]
	text, rawTag, tagged := SplitTag(last)
	joined := strings.Join(append(append([]string{}, words[:len(words)-1]...), text), " ")
	joined = strings.TrimSpace(joined)
	if !tagged {
		return plainTerm(joined)
	}
	return taggedNode(joined, ParseTag(rawTag))
}

func plainTerm(text string) *Term {
	if IsQuoted(text) {
		return &Term{Text: Unquote(text), Quoted: true}
	}
	return &Term{Text: text}
}

func taggedNode(text string, tag Tag) Node {
	quoted := IsQuoted(text)
	inner := Unquote(text)

	if tag.Field == FieldDate {
		if m := dateRe.FindStringSubmatch(inner); m != nil {
			return &DateRange{From: m[1], To: m[2], Tag: tag.Raw}
		}
	}
	if tag.Proximity >= 0 {
		return &Proximity{
			Terms:    strings.Fields(inner),
			Distance: tag.Proximity,
			Field:    tag.Field,
			Tag:      tag.Raw,
		}
	}
	if tag.Field == FieldMeSH || tag.Field == FieldMeSHMajor {
		desc, sub, _ := strings.Cut(inner, "/")
		return &MeSH{
			Descriptor: strings.TrimSpace(desc),
			Subheading: strings.TrimSpace(sub),
			Major:      tag.Field == FieldMeSHMajor,
			NoExplode:  tag.NoExplode,
			Quoted:     quoted,
			Tag:        tag.Raw,
		}
	}
	return &Term{Text: inner, Quoted: quoted, Field: tag.Field, Tag: tag.Raw}
}

func collapse(operands []Node, ops []Op) Node {
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	}
	return &Bool{Operands: operands, Ops: ops}
}
