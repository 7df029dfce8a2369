package ovid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	// asthma.ti.  "heart failure".ti,ab.  50-78-2.rn.
	suffixWordRe = regexp.MustCompile(`(?i)^(.+?)\.([a-z]{2,3}(?:,[a-z]{2,3})*)\.$`)
	// .ti,ab. written after a closing parenthesis
	suffixOnlyRe = regexp.MustCompile(`(?i)^\.([a-z]{2,3}(?:,[a-z]{2,3})*)\.$`)
	// Asthma/  Asthma/.  Neoplasms/dh.  Neoplasms/diet (therapy. follows)
	meshWordRe  = regexp.MustCompile(`^(.+)/([A-Za-z]{2,})?(\.?)$`)
	subheadTail = regexp.MustCompile(`^([A-Za-z]+)\.?$`)
	adjRe       = regexp.MustCompile(`(?i)^adj(\d*)$`)
	refRe       = regexp.MustCompile(`^#(\d+)$`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
)

// joint is the connective between two operands of an Ovid expression.
type joint struct {
	op   query.Op
	adj  bool
	dist int
}

type parser struct {
	toks []query.Token
	pos  int
	w    *warn.Collector
}

func parse(toks []query.Token, w *warn.Collector) query.Node {
	p := &parser{toks: toks, w: w}
	var nodes []query.Node
	for {
		if n := p.parseExpr(); n != nil {
			nodes = append(nodes, n)
		}
		if _, ok := p.peek(); !ok {
			break
		}
		p.w.Add("unbalanced parenthesis: removed a stray \")\"")
		p.pos++
	}
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	}
	ops := make([]query.Op, len(nodes)-1)
	return &query.Bool{Operands: nodes, Ops: ops}
}

func (p *parser) peek() (query.Token, bool) {
	if p.pos >= len(p.toks) {
		return query.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) peekWord(offset int) (string, bool) {
	i := p.pos + offset
	if i >= len(p.toks) || p.toks[i].Kind != query.TokWord {
		return "", false
	}
	return p.toks[i].Text, true
}

func isKeyword(word string) bool {
	if _, ok := query.ParseOp(word); ok {
		return true
	}
	return adjRe.MatchString(word)
}

func (p *parser) parseExpr() query.Node {
	var operands []query.Node
	var joints []joint
	var pending *joint
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == query.TokRParen {
			break
		}
		if tok.Kind == query.TokWord {
			if op, isOp := query.ParseOp(tok.Text); isOp {
				p.pos++
				if len(operands) == 0 {
					p.w.Add("dangling operator %q ignored", strings.ToUpper(tok.Text))
					continue
				}
				prev := query.OpNone
				if pending != nil && !pending.adj {
					prev = pending.op
				} else if pending != nil {
					p.w.Add("stacked operators %q %q: kept %q", "ADJ", string(op), string(op))
				}
				pending = &joint{op: query.StackOp(prev, op, p.w)}
				continue
			}
			if m := adjRe.FindStringSubmatch(tok.Text); m != nil {
				p.pos++
				if len(operands) == 0 {
					p.w.Add("dangling operator %q ignored", tok.Text)
					continue
				}
				if pending != nil {
					prev := "ADJ"
					if !pending.adj {
						prev = string(pending.op)
					}
					p.w.Add("stacked operators %q %q: kept %q", prev, tok.Text, tok.Text)
				}
				pending = &joint{adj: true, dist: p.adjDistance(m[1])}
				continue
			}
		}
		operand := p.parseOperand()
		if operand == nil {
			continue
		}
		if len(operands) > 0 {
			if pending == nil {
				pending = &joint{op: query.OpNone}
			}
			joints = append(joints, *pending)
		}
		operands = append(operands, operand)
		pending = nil
	}
	if pending != nil {
		p.w.Add("dangling operator ignored at end of expression")
	}
	return p.chain(operands, joints)
}

// adjDistance reads the N of adjN. "adj 3" is accepted; a bare adj means
// adjacent within one word.
func (p *parser) adjDistance(digits string) int {
	if digits == "" {
		if next, ok := p.peekWord(0); ok && digitsRe.MatchString(next) {
			if _, more := p.peek2(); more {
				digits = next
				p.pos++
			}
		}
	}
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 1
	}
	return n
}

func (p *parser) peek2() (query.Token, bool) {
	if p.pos+1 >= len(p.toks) {
		return query.Token{}, false
	}
	return p.toks[p.pos+1], true
}

// chain folds adjacency runs into proximity nodes and joins the rest as a
// flat boolean chain. Proximity binds tighter than AND, OR and NOT.
func (p *parser) chain(operands []query.Node, joints []joint) query.Node {
	if len(operands) == 0 {
		return nil
	}
	var out []query.Node
	var ops []query.Op
	run := []query.Node{operands[0]}
	var dists []int
	flush := func() {
		if len(run) == 1 {
			out = append(out, run[0])
		} else {
			out = append(out, p.proximity(run, dists))
		}
	}
	for i, j := range joints {
		if j.adj {
			run = append(run, operands[i+1])
			dists = append(dists, j.dist)
			continue
		}
		flush()
		ops = append(ops, j.op)
		run = []query.Node{operands[i+1]}
		dists = nil
	}
	flush()
	if len(out) == 1 {
		return out[0]
	}
	return &query.Bool{Operands: out, Ops: ops}
}

func (p *parser) proximity(run []query.Node, dists []int) query.Node {
	// A suffix on the last word covers the whole adjacency run:
	// heart adj3 failure.ti. searches both words in the title.
	label := ""
	if u, ok := run[len(run)-1].(*query.Untranslated); ok {
		if _, plain := plainText(u.Expr); plain {
			label = u.Label
			run = append(append([]query.Node{}, run[:len(run)-1]...), u.Expr)
		}
	}

	terms := make([]string, 0, len(run))
	for _, n := range run {
		text, ok := plainText(n)
		if !ok {
			p.w.Add("proximity between non-term operands approximated with AND")
			ops := make([]query.Op, len(run)-1)
			for i := range ops {
				ops[i] = query.OpAnd
			}
			return withLabel(&query.Bool{Operands: run, Ops: ops}, label)
		}
		terms = append(terms, text)
	}

	dist := dists[0]
	mixed := false
	for _, d := range dists[1:] {
		if d != dist {
			mixed = true
		}
		if d > dist {
			dist = d
		}
	}
	if mixed {
		p.w.Add("mixed proximity distances in one group; using the largest (%d)", dist)
	}
	if len(terms) > 2 {
		p.w.Add("proximity across %d terms approximated as one PubMed phrase %q",
			len(terms), strings.Join(terms, " "))
	}
	return withLabel(&query.Proximity{Terms: terms, Distance: dist}, label)
}

// plainText returns the unquoted text of an untagged term, looking
// through single-term groups.
func plainText(n query.Node) (string, bool) {
	switch v := n.(type) {
	case *query.Term:
		if v.Field == "" && v.Tag == "" {
			return v.Text, true
		}
	case *query.Group:
		return plainText(v.Expr)
	}
	return "", false
}

func withLabel(n query.Node, label string) query.Node {
	if label == "" {
		return n
	}
	return &query.Untranslated{Expr: n, Label: label}
}

func (p *parser) parseOperand() query.Node {
	tok := p.toks[p.pos]
	if tok.Kind == query.TokLParen {
		p.pos++
		inner := p.parseExpr()
		if t, ok := p.peek(); ok && t.Kind == query.TokRParen {
			p.pos++
		} else {
			p.w.Add("unbalanced parenthesis: closed a missing \")\"")
		}
		label := ""
		if next, ok := p.peekWord(0); ok {
			if m := suffixOnlyRe.FindStringSubmatch(next); m != nil {
				label = m[1]
				p.pos++
			}
		}
		if inner == nil {
			return nil
		}
		return withLabel(&query.Group{Expr: inner}, label)
	}
	return p.parsePhrase()
}

// parsePhrase reads consecutive words up to an operator, a parenthesis, or
// a word that closes the phrase (field suffix, MeSH slash, PubMed tag).
func (p *parser) parsePhrase() query.Node {
	var words []string
	focus, explode := false, false
	var prefix []string

	for {
		word, ok := p.peekWord(0)
		if !ok || isKeyword(word) {
			break
		}
		if len(words) == 0 && len(prefix) == 0 {
			if m := refRe.FindStringSubmatch(word); m != nil {
				p.pos++
				return &query.Ref{ID: m[1]}
			}
		} else if refRe.MatchString(word) {
			break
		}
		p.pos++

		if len(words) == 0 {
			switch strings.ToLower(word) {
			case "*":
				focus = true
				prefix = append(prefix, word)
				continue
			case "exp":
				explode = true
				prefix = append(prefix, word)
				continue
			case "*exp":
				focus, explode = true, true
				prefix = append(prefix, word)
				continue
			}
			if len(word) > 1 && strings.HasPrefix(word, "*") && strings.Contains(word, "/") ||
				len(word) > 1 && strings.HasPrefix(word, "*") && p.phraseEndsInSlash() {
				focus = true
				prefix = append(prefix, "*")
				word = word[1:]
			}
		}

		if m := suffixWordRe.FindStringSubmatch(word); m != nil && !strings.Contains(word, "[") {
			words = append(words, m[1])
			return p.finishTerm(prefix, words, m[2])
		}
		if m := suffixOnlyRe.FindStringSubmatch(word); m != nil && len(words) > 0 {
			return p.finishTerm(prefix, words, m[1])
		}
		if query.HasTag(word) {
			words = append(words, word)
			return query.PhraseNode(append(prefix, words...))
		}
		if m := meshWordRe.FindStringSubmatch(word); m != nil && !p.tagFollows() {
			words = append(words, m[1])
			sub := m[2]
			if sub != "" && m[3] == "" {
				if next, ok := p.peekWord(0); ok && !isKeyword(next) {
					if t := subheadTail.FindStringSubmatch(next); t != nil {
						sub += " " + t[1]
						p.pos++
					}
				}
			}
			desc := query.Unquote(strings.Join(words, " "))
			if sub != "" {
				// A subheading searches the exploded heading regardless of focus.
				return &query.MeSH{Descriptor: desc, Subheading: sub}
			}
			return &query.MeSH{Descriptor: desc, Major: focus, NoExplode: !explode}
		}
		words = append(words, word)
	}

	return p.finishTerm(prefix, words, "")
}

// phraseEndsInSlash looks ahead through the current phrase for a MeSH
// heading slash.
func (p *parser) phraseEndsInSlash() bool {
	for i := 0; ; i++ {
		word, ok := p.peekWord(i)
		if !ok || isKeyword(word) {
			return false
		}
		if suffixWordRe.MatchString(word) || query.HasTag(word) {
			return false
		}
		if meshWordRe.MatchString(word) {
			return true
		}
	}
}

// tagFollows reports whether the current phrase is closed by a PubMed
// bracket tag, as in already converted "Neoplasms/diet therapy[mh]".
func (p *parser) tagFollows() bool {
	for i := 0; ; i++ {
		word, ok := p.peekWord(i)
		if !ok || isKeyword(word) || suffixWordRe.MatchString(word) {
			return false
		}
		if query.HasTag(word) {
			return true
		}
	}
}

func (p *parser) finishTerm(prefix, words []string, label string) query.Node {
	if len(prefix) > 0 {
		words = append(append([]string{}, prefix...), words...)
		if explodes(prefix) {
			p.w.Add("%q without a trailing \"/\" is not a MeSH heading; passed through as text",
				strings.Join(words, " "))
		}
	}
	if len(words) == 0 {
		return nil
	}
	text := strings.Join(words, " ")
	term := &query.Term{Text: text}
	if query.IsQuoted(text) {
		term = &query.Term{Text: query.Unquote(text), Quoted: true}
	}
	return withLabel(term, label)
}

func explodes(prefix []string) bool {
	for _, w := range prefix {
		if strings.HasSuffix(strings.ToLower(w), "exp") {
			return true
		}
	}
	return false
}
