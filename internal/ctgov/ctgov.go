// Package ctgov converts PubMed search documents to the fields of the
// ClinicalTrials.gov advanced search form. Every search term is routed to
// one form field by its PubMed tag; the terms of a field are ORed and the
// fields are ANDed by the form itself.
package ctgov

import (
	"fmt"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/document"
	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/synonyms"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// Advanced search form fields, in output order.
const (
	FieldCondition    = "Condition"
	FieldIntervention = "Intervention"
	FieldTitle        = "Title"
	FieldOtherTerms   = "Other Terms"
)

var fieldOrder = []string{FieldCondition, FieldIntervention, FieldTitle, FieldOtherTerms}

// DefaultInterventionWords mark a title/abstract term as an intervention.
var DefaultInterventionWords = []string{"treatment", "therapy", "drug", "medication"}

// Field is one filled-in search form field.
type Field struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Result is a converted ClinicalTrials.gov search. Fields holds only the
// fields that received terms, in form order.
type Result struct {
	Fields   []Field  `json:"fields"`
	Warnings []string `json:"warnings"`
}

// Converter routes terms to form fields. The zero value is ready to use.
type Converter struct {
	// Synonyms replaces MeSH headings by free-text condition terms.
	Synonyms synonyms.Map
	// InterventionWords overrides DefaultInterventionWords.
	InterventionWords []string
}

// Convert converts doc with the default converter.
func Convert(doc string) Result {
	return (&Converter{}).Convert(doc)
}

// Convert converts a line-numbered PubMed document.
func (c *Converter) Convert(doc string) Result {
	w := warn.New()
	d := document.Parse(doc, w)
	b := &buckets{values: make(map[string][]string)}
	for _, l := range d.Blocks() {
		lw := warn.New()
		c.route(l.Expr, b, lw)
		for _, msg := range lw.Warnings() {
			if l.ID != "" {
				msg = l.Label() + ": " + msg
			}
			w.Add("%s", msg)
		}
	}
	return Result{Fields: b.fields(), Warnings: w.Warnings()}
}

// ConvertLine converts a single PubMed expression.
func (c *Converter) ConvertLine(content string) Result {
	w := warn.New()
	b := &buckets{values: make(map[string][]string)}
	c.route(query.ParsePubMed(content, w), b, w)
	return Result{Fields: b.fields(), Warnings: w.Warnings()}
}

func (c *Converter) route(expr query.Node, b *buckets, w *warn.Collector) {
	routed := false
	for _, leaf := range query.Leaves(expr) {
		if _, ok := leaf.(*query.Ref); ok {
			continue
		}
		c.routeLeaf(leaf, b, w)
		routed = true
	}
	if routed && (query.HasOperator(expr, query.OpAnd) || query.HasOperator(expr, query.OpNot)) {
		w.Add("AND/NOT structure flattened; terms are ORed within each field")
	}
}

func (c *Converter) routeLeaf(n query.Node, b *buckets, w *warn.Collector) {
	switch v := n.(type) {
	case *query.MeSH:
		if v.Subheading != "" {
			w.Add("MeSH subheading %q dropped", v.Subheading)
		}
		terms := c.Synonyms.Lookup(v.Descriptor)
		if len(terms) == 0 {
			terms = []string{v.Descriptor}
		}
		for _, t := range terms {
			b.add(FieldCondition, `"`+t+`"`)
		}
	case *query.Term:
		c.routeTerm(v, b, w)
	case *query.Proximity:
		w.Add("ClinicalTrials.gov has no proximity operator; %q searched with AND", strings.Join(v.Terms, " "))
		c.routeText(v.Field, "("+strings.Join(v.Terms, " AND ")+")", b, w)
	case *query.DateRange:
		w.Add("date limit %s:%s dropped; use the study start date filter instead", v.From, v.To)
	case *query.Literal:
		b.add(FieldOtherTerms, v.Text)
	}
}

func (c *Converter) routeTerm(t *query.Term, b *buckets, w *warn.Collector) {
	text := t.Text
	switch {
	case t.Field == query.FieldTitle:
		text = `"` + text + `"`
	case t.Field == query.FieldAffiliation && t.Quoted && strings.Contains(text, " "):
		text = "(" + strings.Join(strings.Fields(text), " AND ") + ")"
	case t.Quoted:
		text = `"` + text + `"`
	}
	c.routeText(t.Field, text, b, w)
}

func (c *Converter) routeText(field, text string, b *buckets, w *warn.Collector) {
	switch field {
	case query.FieldTitle:
		b.add(FieldTitle, text)
	case query.FieldTitleAbstract, query.FieldTextWord, query.FieldAbstract:
		if c.isIntervention(text) {
			b.add(FieldIntervention, text)
		} else {
			b.add(FieldOtherTerms, text)
		}
	case query.FieldSubstance, query.FieldRegistry:
		b.add(FieldIntervention, text)
	case query.FieldAuthor, query.FieldPubType, query.FieldJournal, query.FieldLanguage,
		query.FieldDate, query.FieldUID:
		w.Add("[%s] has no ClinicalTrials.gov search field; %s dropped", field, text)
	default:
		b.add(FieldOtherTerms, text)
	}
}

func (c *Converter) isIntervention(text string) bool {
	words := c.InterventionWords
	if len(words) == 0 {
		words = DefaultInterventionWords
	}
	lower := strings.ToLower(text)
	for _, word := range words {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

type buckets struct {
	values map[string][]string
}

func (b *buckets) add(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, v := range b.values[field] {
		if strings.EqualFold(v, value) {
			return
		}
	}
	b.values[field] = append(b.values[field], value)
}

func (b *buckets) fields() []Field {
	out := []Field{}
	for _, name := range fieldOrder {
		if vals := b.values[name]; len(vals) > 0 {
			out = append(out, Field{Name: name, Query: strings.Join(vals, " OR ")})
		}
	}
	return out
}

// Format prints one "Field: query" line per field.
func Format(r Result) string {
	lines := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		lines[i] = fmt.Sprintf("%s: %s", f.Name, f.Query)
	}
	return strings.Join(lines, "\n")
}

// FormatUI prints the fields as one expression in the style the search
// form shows after submitting, one field per line.
func FormatUI(r Result) string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("( %s: %s )", f.Name, f.Query)
	}
	return strings.Join(parts, " AND\n")
}
