// Package ictrp converts PubMed search documents to a single-line query
// for the WHO International Clinical Trials Registry Platform search
// portal. The portal has no field tags, no proximity operator and no
// controlled vocabulary, and rejects deeply nested parentheses.
package ictrp

import (
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/synonyms"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// DefaultMaxDepth is the deepest parenthesis nesting kept in the output.
const DefaultMaxDepth = 2

// Result is a converted ICTRP query.
type Result struct {
	Text     string   `json:"text"`
	Warnings []string `json:"warnings"`
}

// Converter converts documents using a MeSH synonym map. The zero value is
// ready to use.
type Converter struct {
	// Synonyms replaces MeSH headings by an OR of free-text terms.
	// Headings without an entry are searched as the quoted descriptor.
	Synonyms synonyms.Map
	// MaxDepth caps parenthesis nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

// Convert converts doc with the default converter.
func Convert(doc string) Result {
	return (&Converter{}).Convert(doc)
}

// Convert converts a line-numbered PubMed document. The output is the
// combining line with every reference replaced by the referenced line's
// content; without a combining line all blocks are ANDed.
func (c *Converter) Convert(doc string) Result {
	w := warn.New()
	d := document.Parse(doc, w)
	if d.Empty() {
		return Result{Warnings: w.Warnings()}
	}

	r := &renderer{syn: c.Synonyms}
	e := document.NewExpander(d, r.render, w)
	expand := func(i int) string {
		r.w = warn.New()
		s := e.Line(i)
		l := d.Lines[i]
		for _, msg := range r.w.Warnings() {
			if l.ID != "" {
				msg = l.Label() + ": " + msg
			}
			w.Add("%s", msg)
		}
		return s
	}

	var text string
	if i, ok := d.Combining(); ok {
		// Render referenced lines first so their warnings carry their own label.
		for _, j := range d.Reachable(i) {
			expand(j)
		}
		text = expand(i)
	} else {
		var parts []string
		for j, l := range d.Lines {
			if l.Blank {
				continue
			}
			if s := expand(j); s != "" {
				parts = append(parts, "("+s+")")
			}
		}
		if len(parts) > 1 {
			w.Add("no combining line found; all lines joined with AND")
		}
		text = strings.Join(parts, " AND ")
	}
	return Result{Text: c.finish(text), Warnings: w.Warnings()}
}

// ConvertLine converts a single PubMed expression with no line references.
func (c *Converter) ConvertLine(content string) Result {
	w := warn.New()
	r := &renderer{syn: c.Synonyms, w: w}
	text := r.render(query.ParsePubMed(content, w), func(id string) string { return "#" + id })
	return Result{Text: c.finish(text), Warnings: w.Warnings()}
}

func (c *Converter) finish(s string) string {
	depth := c.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	s = FlattenDepth(s, depth)
	s = tidyParens(s)
	return query.CollapseSpace(s)
}

type renderer struct {
	syn synonyms.Map
	w   *warn.Collector
}

func (r *renderer) render(n query.Node, ref func(string) string) string {
	switch v := n.(type) {
	case nil:
		return ""
	case *query.Term:
		return r.term(v)
	case *query.MeSH:
		return r.mesh(v)
	case *query.Proximity:
		r.w.Add("ICTRP has no proximity operator; %q searched with AND", strings.Join(v.Terms, " "))
		return "(" + strings.Join(v.Terms, " AND ") + ")"
	case *query.Ref:
		return ref(v.ID)
	case *query.DateRange:
		r.w.Add("date limit %s:%s dropped; set registration dates in the ICTRP search form", v.From, v.To)
		return ""
	case *query.Group:
		inner := r.render(v.Expr, ref)
		if inner == "" {
			return ""
		}
		return "(" + inner + ")"
	case *query.Bool:
		parts := make([]string, len(v.Operands))
		for i, op := range v.Operands {
			parts[i] = r.render(op, ref)
		}
		return query.JoinBool(parts, v.Ops)
	case *query.Literal:
		return v.Text
	}
	return query.RenderPubMed(n)
}

func (r *renderer) term(t *query.Term) string {
	text := t.Text
	if t.Quoted {
		text = `"` + text + `"`
	}
	switch t.Field {
	case query.FieldAuthor, query.FieldPubType, query.FieldJournal:
		r.w.Add("ICTRP has no [%s] field; %s searched as a keyword", t.Field, text)
	}
	return text
}

func (r *renderer) mesh(m *query.MeSH) string {
	if m.Subheading != "" {
		r.w.Add("MeSH subheading %q dropped", m.Subheading)
	}
	terms := r.syn.Lookup(m.Descriptor)
	if len(terms) == 0 {
		return `"` + m.Descriptor + `"`
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	if len(quoted) == 1 {
		return quoted[0]
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}
