package ovid

import (
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// applyFields resolves the field suffixes recorded by the parser as
// Untranslated nodes. Mapped suffixes become PubMed tags on every leaf they
// cover; unmapped ones stay Untranslated and render back as written.
func (c *Converter) applyFields(n query.Node, w *warn.Collector) query.Node {
	switch v := n.(type) {
	case *query.Untranslated:
		inner := c.applyFields(v.Expr, w)
		tag, ok := c.mapField(v.Label)
		if !ok {
			w.Add("unsupported Ovid field suffix %q left unchanged", "."+v.Label+".")
			v.Expr = inner
			return v
		}
		return tagNode(inner, tag, false)
	case *query.Group:
		v.Expr = c.applyFields(v.Expr, w)
	case *query.Bool:
		for i, op := range v.Operands {
			v.Operands[i] = c.applyFields(op, w)
		}
	}
	return n
}

// tagNode puts tag on every untagged leaf of n. force quotes each leaf, as
// Ovid does when a suffix is distributed over a boolean group.
func tagNode(n query.Node, tag string, force bool) query.Node {
	switch v := n.(type) {
	case *query.Term:
		if v.Field != "" || v.Tag != "" {
			return v
		}
		quoted := v.Quoted
		if !quoted && !noQuoteTags[tag] && !strings.Contains(v.Text, `"`) &&
			(force || strings.ContainsAny(v.Text, " \t")) {
			quoted = true
		}
		if tag == query.FieldMeSH {
			return &query.MeSH{Descriptor: v.Text, Quoted: quoted}
		}
		v.Field = tag
		v.Quoted = quoted
		return v
	case *query.Proximity:
		if v.Field == "" && v.Tag == "" {
			v.Field = proximityField(tag)
		}
	case *query.Group:
		if _, isBool := v.Expr.(*query.Bool); !isBool {
			// (pylori).tw. is a single term, not a group.
			return tagNode(v.Expr, tag, force)
		}
		v.Expr = tagNode(v.Expr, tag, true)
	case *query.Bool:
		for i, op := range v.Operands {
			v.Operands[i] = tagNode(op, tag, true)
		}
	}
	return n
}

// defaultProximityFields gives title/abstract to proximity groups that no
// suffix covered.
func defaultProximityFields(n query.Node) {
	query.Walk(n, func(n query.Node) {
		if p, ok := n.(*query.Proximity); ok && p.Field == "" && p.Tag == "" {
			p.Field = query.FieldTitleAbstract
		}
	})
}
