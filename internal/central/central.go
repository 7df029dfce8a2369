// Package central converts PubMed search documents to Cochrane CENTRAL
// (Cochrane Library advanced search) syntax.
package central

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// Result is a converted CENTRAL document.
type Result struct {
	Text     string   `json:"text"`
	Warnings []string `json:"warnings"`
}

// fieldSuffix maps PubMed fields to CENTRAL field restrictions.
var fieldSuffix = map[string]string{
	query.FieldTitle:         ":ti",
	query.FieldAbstract:      ":ab",
	query.FieldTitleAbstract: ":ti,ab,kw",
	query.FieldTextWord:      ":ti,ab,kw",
	query.FieldAuthor:        ":au",
	query.FieldPubType:       ":pt",
	query.FieldOtherTerm:     ":kw",
	query.FieldJournal:       ":so",
}

// Convert converts a line-numbered PubMed document. References to other
// lines are replaced by the converted content of those lines. When no line
// combines the others and there is more than one block, a line ANDing all
// blocks is appended.
func Convert(doc string) Result {
	w := warn.New()
	d := document.Parse(doc, w)
	if d.Empty() {
		return Result{Warnings: w.Warnings()}
	}

	r := &renderer{}
	e := document.NewExpander(d, r.render, w)
	out := make([]string, 0, len(d.Lines)+1)
	var converted []string
	maxID := 0
	for i, l := range d.Lines {
		if l.Blank {
			out = append(out, "")
			continue
		}
		r.w = warn.New()
		text := e.Line(i)
		for _, msg := range r.w.Warnings() {
			w.Add("%s", label(l, msg))
		}
		converted = append(converted, text)
		if l.ID != "" {
			line := l.Label()
			if text != "" {
				line += " " + text
			}
			out = append(out, line)
			if n, err := strconv.Atoi(l.ID); err == nil && n > maxID {
				maxID = n
			}
		} else {
			out = append(out, text)
		}
	}

	if _, ok := d.Combining(); !ok && len(converted) > 1 {
		id := maxID + 1
		w.Add("no combining line found; appended #%d joining all lines with AND", id)
		parts := make([]string, 0, len(converted))
		for _, c := range converted {
			if c != "" {
				parts = append(parts, "("+c+")")
			}
		}
		out = append(out, fmt.Sprintf("#%d %s", id, strings.Join(parts, " AND ")))
	}
	return Result{Text: strings.Join(out, "\n"), Warnings: w.Warnings()}
}

// ConvertLine converts a single PubMed expression with no line references.
func ConvertLine(content string) Result {
	w := warn.New()
	r := &renderer{w: w}
	text := r.render(query.ParsePubMed(content, w), func(id string) string { return "#" + id })
	return Result{Text: text, Warnings: w.Warnings()}
}

func label(l document.Line, msg string) string {
	if l.ID == "" {
		return msg
	}
	return l.Label() + ": " + msg
}

type renderer struct {
	w *warn.Collector
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
		return r.proximity(v)
	case *query.Ref:
		return ref(v.ID)
	case *query.DateRange:
		r.w.Add("date limit %s:%s dropped; CENTRAL applies date limits in the search manager", v.From, v.To)
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
	if t.Field == "" {
		return text
	}
	if sfx, ok := fieldSuffix[t.Field]; ok {
		return text + sfx
	}
	r.w.Add("field [%s] has no CENTRAL equivalent; %s searched in all fields", tagName(t.Tag, t.Field), text)
	return text
}

func (r *renderer) mesh(m *query.MeSH) string {
	if m.Major {
		r.w.Add("CENTRAL has no major-topic MeSH search; %q searched as a regular heading", m.Descriptor)
	}
	desc := `"` + m.Descriptor + `"`
	if m.Subheading != "" {
		return "[mh " + desc + "/" + m.Subheading + "]"
	}
	if m.NoExplode {
		return "[mh ^" + desc + "]"
	}
	return "[mh " + desc + "]"
}

func (r *renderer) proximity(p *query.Proximity) string {
	sfx := ":ti,ab,kw"
	switch p.Field {
	case query.FieldTitle:
		sfx = ":ti"
	case query.FieldAffiliation:
		sfx = ""
		r.w.Add("CENTRAL has no affiliation field; %q searched in all fields", strings.Join(p.Terms, " "))
	}

	quoted := make([]string, len(p.Terms))
	for i, t := range p.Terms {
		quoted[i] = `"` + t + `"`
	}
	switch {
	case p.Distance == 0:
		return "(" + strings.Join(quoted, " NEXT ") + ")" + sfx
	case len(quoted) == 2:
		return fmt.Sprintf("(%s NEAR/%d %s)%s", quoted[0], p.Distance, quoted[1], sfx)
	}
	r.w.Add("CENTRAL NEAR takes two terms; %q approximated with AND", strings.Join(p.Terms, " "))
	return "(" + strings.Join(quoted, " AND ") + ")" + sfx
}

func tagName(raw, field string) string {
	if raw != "" {
		return raw
	}
	return field
}
