// Package ovid translates Ovid MEDLINE search syntax into PubMed syntax.
//
// Conversion runs a fixed list of named stages over a single query:
//
//	normalize          fold full-width and typographic punctuation
//	tokenize           split into words and parentheses
//	parse              recognize MeSH headings, adjN proximity and field
//	                   suffixes; build the expression tree
//	apply-fields       turn field suffixes into PubMed tags (needs parse)
//	rewrite-wildcards  $, $N, ? and # to * on untagged leaves (needs
//	                   apply-fields so input-tagged leaves are skipped)
//	render-pubmed      print the tree with uppercase operators
//	tidy               collapse whitespace
//
// Nothing is fatal. Constructs PubMed cannot express are approximated and
// reported as warnings on the Result.
package ovid

import (
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

// Result is the outcome of converting one Ovid query.
type Result struct {
	Query    string   `json:"query"`
	Warnings []string `json:"warnings"`
	Trace    []string `json:"-"`
}

// Converter converts Ovid queries. The zero value uses FieldMap and is safe
// for concurrent use.
type Converter struct {
	// Fields replaces FieldMap when non-nil. Keys are lower-case suffixes
	// without dots, e.g. "ti,ab".
	Fields map[string]string
}

type state struct {
	text string
	toks []query.Token
	tree query.Node
	w    *warn.Collector
}

type stage struct {
	name string
	run  func(c *Converter, s *state) string
}

var pipeline = []stage{
	{"normalize", func(_ *Converter, s *state) string {
		s.text = query.Normalize(s.text)
		return s.text
	}},
	{"tokenize", func(_ *Converter, s *state) string {
		s.toks = query.Tokenize(s.text)
		return tokenTrace(s.toks)
	}},
	{"parse", func(_ *Converter, s *state) string {
		s.tree = parse(s.toks, s.w)
		return query.RenderPubMed(s.tree)
	}},
	{"apply-fields", func(c *Converter, s *state) string {
		s.tree = c.applyFields(s.tree, s.w)
		defaultProximityFields(s.tree)
		return query.RenderPubMed(s.tree)
	}},
	{"rewrite-wildcards", func(_ *Converter, s *state) string {
		rewriteTree(s.tree, s.w)
		return query.RenderPubMed(s.tree)
	}},
	{"render-pubmed", func(_ *Converter, s *state) string {
		s.text = query.RenderPubMed(s.tree)
		return s.text
	}},
	{"tidy", func(_ *Converter, s *state) string {
		s.text = query.CollapseSpace(s.text)
		return s.text
	}},
}

// Stages lists the pipeline stage names in execution order.
func Stages() []string {
	names := make([]string, len(pipeline))
	for i, st := range pipeline {
		names[i] = st.name
	}
	return names
}

// Convert translates a single Ovid query using the default field map.
func Convert(q string) Result {
	var c Converter
	return c.Convert(q)
}

// Convert translates a single Ovid query.
func (c *Converter) Convert(q string) Result {
	s := &state{text: q, w: warn.New()}
	for _, st := range pipeline {
		out := st.run(c, s)
		s.w.Tracef("%s: %s", st.name, out)
	}
	return Result{Query: s.text, Warnings: s.w.Warnings(), Trace: s.w.Trace()}
}

func tokenTrace(toks []query.Token) string {
	texts := make([]string, len(toks))
	for i, t := range toks {
		texts[i] = t.Text
	}
	return strings.Join(texts, " | ")
}
