package document

import (
	"sort"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// RenderFunc renders an expression in a target dialect. ref is called for
// every query.Ref and returns the text to put in its place.
type RenderFunc func(n query.Node, ref func(id string) string) string

// Expander renders lines with references replaced by the parenthesized
// rendering of the referenced line, recursively. Each line is rendered
// once.
type Expander struct {
	doc    *Document
	render RenderFunc
	w      *warn.Collector
	cache  map[int]string
	active map[int]bool
}

// NewExpander returns an Expander over d. w receives reference cycle
// warnings.
func NewExpander(d *Document, render RenderFunc, w *warn.Collector) *Expander {
	return &Expander{
		doc:    d,
		render: render,
		w:      w,
		cache:  make(map[int]string),
		active: make(map[int]bool),
	}
}

// Line renders d.Lines[i] with its references expanded.
func (e *Expander) Line(i int) string {
	if s, ok := e.cache[i]; ok {
		return s
	}
	e.active[i] = true
	s := e.render(e.doc.Lines[i].Expr, e.ref)
	delete(e.active, i)
	e.cache[i] = s
	return s
}

func (e *Expander) ref(id string) string {
	i, ok := e.doc.index[id]
	if !ok {
		return "#" + id
	}
	if e.active[i] {
		e.w.Add("#%s refers to itself; reference left unexpanded", id)
		return "#" + id
	}
	s := e.Line(i)
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

// RenameRefs replaces whole "#N" references in text using mapping, longest
// key first so "#1" never matches inside "#10". Text inside double quotes
// is left alone.
func RenameRefs(text string, mapping map[string]string) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	type replacement struct {
		end int
		to  string
	}
	repl := make(map[int]replacement)
	taken := make([]bool, len(text))
	quoted := quotedMask(text)
	for _, k := range keys {
		for i := 0; i+len(k) <= len(text); i++ {
			if text[i:i+len(k)] != k || quoted[i] || anyTaken(taken, i, i+len(k)) {
				continue
			}
			if i > 0 && isRefChar(text[i-1], true) {
				continue
			}
			if end := i + len(k); end < len(text) && isRefChar(text[end], false) {
				continue
			}
			for j := i; j < i+len(k); j++ {
				taken[j] = true
			}
			repl[i] = replacement{end: i + len(k), to: mapping[k]}
		}
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if r, ok := repl[i]; ok {
			b.WriteString(r.to)
			i = r.end
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func anyTaken(taken []bool, from, to int) bool {
	for i := from; i < to; i++ {
		if taken[i] {
			return true
		}
	}
	return false
}

func isRefChar(c byte, before bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		return true
	case before && c == '#':
		return true
	}
	return false
}

// quotedMask marks the bytes of text that lie inside double quotes.
func quotedMask(text string) []bool {
	mask := make([]bool, len(text))
	in := false
	for i := 0; i < len(text); i++ {
		if text[i] == '"' {
			in = !in
			mask[i] = true
			continue
		}
		mask[i] = in
	}
	return mask
}

// PubMed renders n in PubMed syntax. It is the RenderFunc for expanding
// references without changing dialect.
func PubMed(n query.Node, ref func(string) string) string {
	switch v := n.(type) {
	case *query.Ref:
		return ref(v.ID)
	case *query.Group:
		inner := PubMed(v.Expr, ref)
		if inner == "" {
			return ""
		}
		return "(" + inner + ")"
	case *query.Bool:
		parts := make([]string, len(v.Operands))
		for i, op := range v.Operands {
			parts[i] = PubMed(op, ref)
		}
		return query.JoinBool(parts, v.Ops)
	}
	return query.RenderPubMed(n)
}

// Query returns the whole document as one PubMed query: the combining line
// with references expanded, or every block ANDed when there is none.
func Query(d *Document, w *warn.Collector) string {
	e := NewExpander(d, PubMed, w)
	if i, ok := d.Combining(); ok {
		return e.Line(i)
	}
	var parts []string
	for i, l := range d.Lines {
		if l.Blank {
			continue
		}
		if s := e.Line(i); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	for i, p := range parts {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, " AND ")
}
