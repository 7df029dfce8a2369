// Package dialog converts PubMed search documents to Embase syntax on the
// Dialog platform. Numbered lines become Dialog sets S1, S2, … in document
// order and references are renamed to match.
package dialog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// Result is a converted Dialog document.
type Result struct {
	Text     string   `json:"text"`
	Warnings []string `json:"warnings"`
}

// fieldCode maps PubMed fields to Dialog field codes. Title/abstract is
// handled separately as TI OR AB.
var fieldCode = map[string]string{
	query.FieldTitle:       "TI",
	query.FieldAbstract:    "AB",
	query.FieldAuthor:      "AU",
	query.FieldAffiliation: "CS",
	query.FieldPubType:     "DTYPE",
	query.FieldJournal:     "PUB",
	query.FieldLanguage:    "LA",
}

// proximityCode maps PubMed proximity fields to Dialog field codes.
var proximityCode = map[string]string{
	query.FieldTitle:         "TI",
	query.FieldTitleAbstract: "TI,AB",
	query.FieldAffiliation:   "CS",
}

var setLabelRe = regexp.MustCompile(`^S\d+\s+`)

// Convert converts a line-numbered PubMed document. Syntax problems found
// by Validate are reported first; conversion proceeds regardless.
func Convert(doc string) Result {
	w := warn.New()
	for _, msg := range Validate(doc) {
		w.Add("%s", msg)
	}
	d := document.Parse(doc, w)
	if d.Empty() {
		return Result{Warnings: w.Warnings()}
	}

	sets := make(map[string]string)
	n := 0
	for _, l := range d.Lines {
		if l.ID != "" {
			n++
			sets[l.Label()] = fmt.Sprintf("S%d", n)
		}
	}

	r := &renderer{}
	refs := func(id string) string { return "#" + id }
	out := make([]string, 0, len(d.Lines))
	k := 0
	for _, l := range d.Lines {
		if l.Blank {
			out = append(out, "")
			continue
		}
		r.w = warn.New()
		text := document.RenameRefs(r.render(l.Expr, refs), sets)
		for _, msg := range r.w.Warnings() {
			if l.ID != "" {
				msg = l.Label() + ": " + msg
			}
			w.Add("%s", msg)
		}
		if l.ID != "" {
			k++
			text = fmt.Sprintf("S%d %s", k, text)
		}
		out = append(out, text)
	}
	return Result{Text: strings.Join(out, "\n"), Warnings: w.Warnings()}
}

// ConvertLine converts a single PubMed expression. References are kept as
// written.
func ConvertLine(content string) Result {
	w := warn.New()
	r := &renderer{w: w}
	text := r.render(query.ParsePubMed(content, w), func(id string) string { return "#" + id })
	return Result{Text: text, Warnings: w.Warnings()}
}

// CommandLines returns the set definitions of a converted document without
// their S labels, one command per line, ready to paste into Dialog.
func CommandLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, setLabelRe.ReplaceAllString(line, ""))
	}
	return out
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
		return fmt.Sprintf("PD(%s-%s)", compactDate(v.From), compactDate(v.To))
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
	quoted := `"` + t.Text + `"`
	switch t.Field {
	case "":
		if t.Quoted {
			return quoted
		}
		return t.Text
	case query.FieldTitleAbstract, query.FieldTextWord:
		return "(TI(" + quoted + ") OR AB(" + quoted + "))"
	}
	if code, ok := fieldCode[t.Field]; ok {
		return code + "(" + quoted + ")"
	}
	r.w.Add("field [%s] has no Dialog equivalent; %s searched in all fields", t.Field, quoted)
	if t.Quoted {
		return quoted
	}
	return t.Text
}

func (r *renderer) mesh(m *query.MeSH) string {
	if m.Subheading != "" {
		r.w.Add("MeSH subheading %q dropped; Emtree subheadings differ", m.Subheading)
	}
	fn := "EMB.EXACT"
	if m.Major {
		fn = "MJEMB.EXACT"
	}
	if !m.NoExplode || m.Subheading != "" {
		fn += ".EXPLODE"
	}
	return fn + `("` + m.Descriptor + `")`
}

func (r *renderer) proximity(p *query.Proximity) string {
	code, ok := proximityCode[p.Field]
	if !ok {
		code = "TI,AB"
	}
	if len(p.Terms) != 2 {
		r.w.Add("Dialog proximity takes two terms; %q approximated with AND", strings.Join(p.Terms, " "))
		return code + "(" + strings.Join(p.Terms, " AND ") + ")"
	}
	if p.Distance == 0 {
		return fmt.Sprintf("%s(%s W/1 %s)", code, p.Terms[0], p.Terms[1])
	}
	return fmt.Sprintf("%s(%s N/%d %s)", code, p.Terms[0], p.Distance, p.Terms[1])
}

// compactDate turns 2020/1/5 into 20200105. A bare year stays a year.
func compactDate(s string) string {
	parts := strings.Split(s, "/")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if len(p) == 1 {
			b.WriteString("0")
		}
		b.WriteString(p)
	}
	return b.String()
}
