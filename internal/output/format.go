// Package output renders conversion results, query checks and MeSH records
// as plain text (default), JSON (--json) or styled terminal output
// (--human), and writes the Markdown search-strategy report (--md).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/henrybloomingdale/searchconv/internal/ctgov"
	"github.com/henrybloomingdale/searchconv/internal/eutils"
	"github.com/henrybloomingdale/searchconv/internal/mesh"
	"github.com/henrybloomingdale/searchconv/internal/ovid"
)

// OutputConfig controls which output mode is active.
type OutputConfig struct {
	JSON  bool // Structured JSON
	Human bool // Rich terminal output with color
}

// Conversion is one target database's version of a search.
type Conversion struct {
	Target   string        `json:"target"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Commands []string      `json:"commands,omitempty"`
	Fields   []ctgov.Field `json:"fields,omitempty"`
	Warnings []string      `json:"warnings"`
}

// Report is a search converted to every requested target. Origin holds
// the Ovid search Source was translated from, if any; SourceWarnings are
// that translation's warnings.
type Report struct {
	Origin         string       `json:"origin,omitempty"`
	Source         string       `json:"source"`
	SourceWarnings []string     `json:"source_warnings,omitempty"`
	Generated      time.Time    `json:"generated"`
	Conversions    []Conversion `json:"conversions"`
}

// CheckReport is the outcome of running a PubMed search against ESearch.
type CheckReport struct {
	Search  *eutils.SearchResult  `json:"search"`
	Capture *eutils.CaptureResult `json:"capture,omitempty"`
	Lines   []eutils.BlockCount   `json:"lines,omitempty"`
}

// FormatReport writes converted searches. With a single conversion only
// its text is printed, ready to paste.
func FormatReport(w io.Writer, r *Report, cfg OutputConfig) error {
	if cfg.JSON {
		return writeJSON(w, r)
	}
	if cfg.Human {
		return formatReportHuman(w, r)
	}
	return formatReportPlain(w, r)
}

// FormatOvid writes an Ovid to PubMed translation.
func FormatOvid(w io.Writer, source string, res ovid.Result, cfg OutputConfig) error {
	if cfg.JSON {
		return writeJSON(w, res)
	}
	if cfg.Human {
		return formatOvidHuman(w, source, res)
	}
	_, err := fmt.Fprintln(w, res.Query)
	return err
}

// FormatValidation writes Dialog syntax findings.
func FormatValidation(w io.Writer, msgs []string, cfg OutputConfig) error {
	if cfg.JSON {
		if msgs == nil {
			msgs = []string{}
		}
		return writeJSON(w, map[string]any{"valid": len(msgs) == 0, "problems": msgs})
	}
	if cfg.Human {
		return formatValidationHuman(w, msgs)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No syntax problems found.")
		return nil
	}
	fmt.Fprintf(w, "%d syntax problem(s):\n", len(msgs))
	for _, m := range msgs {
		fmt.Fprintf(w, "  %s\n", m)
	}
	return nil
}

// FormatCheck writes a query check.
func FormatCheck(w io.Writer, r *CheckReport, cfg OutputConfig) error {
	if cfg.JSON {
		return writeJSON(w, r)
	}
	if cfg.Human {
		return formatCheckHuman(w, r)
	}
	return formatCheckPlain(w, r)
}

// FormatMeSHRecord writes a MeSH record.
func FormatMeSHRecord(w io.Writer, record *mesh.Record, cfg OutputConfig) error {
	if cfg.JSON {
		return writeJSON(w, record)
	}
	if cfg.Human {
		return formatMeSHHuman(w, record)
	}
	return formatMeSHPlain(w, record)
}

// --- Plain text formatters (default) ---

func formatReportPlain(w io.Writer, r *Report) error {
	if len(r.Conversions) == 1 {
		_, err := fmt.Fprintln(w, r.Conversions[0].Text)
		return err
	}
	for i, c := range r.Conversions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "=== %s ===\n", c.Title)
		fmt.Fprintln(w, c.Text)
	}
	return nil
}

func formatCheckPlain(w io.Writer, r *CheckReport) error {
	s := r.Search
	fmt.Fprintf(w, "Found %d results\n", s.Count)
	if s.QueryTranslation != "" {
		fmt.Fprintf(w, "Query: %s\n", s.QueryTranslation)
	}
	for _, p := range s.PhrasesNotFound {
		fmt.Fprintf(w, "Not found: %s\n", p)
	}
	for _, m := range s.Warnings {
		fmt.Fprintf(w, "PubMed: %s\n", m)
	}

	if len(r.Lines) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Lines:")
		for _, l := range r.Lines {
			fmt.Fprintf(w, "  %-4s %10d  %s\n", l.Name, l.Count, l.Query)
		}
	}

	if c := r.Capture; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Seed PMIDs captured: %d/%d (%.1f%%)\n",
			len(c.Captured), len(c.Captured)+len(c.Missing), c.Rate()*100)
		if len(c.Missing) > 0 {
			fmt.Fprintf(w, "Missing: %s\n", strings.Join(c.Missing, ", "))
		}
		for _, b := range c.Blocks {
			if !b.Exists {
				fmt.Fprintf(w, "  PMID %s: not in PubMed\n", b.PMID)
				continue
			}
			fmt.Fprintf(w, "  PMID %s: %s\n", b.PMID, blockHits(b))
		}
	}
	return nil
}

// blockHits lists "#1 yes, #2 no" in block name order.
func blockHits(b eutils.BlockCoverage) string {
	names := sortedKeys(b.Hits)
	parts := make([]string, len(names))
	for i, n := range names {
		mark := "no"
		if b.Hits[n] {
			mark = "yes"
		}
		parts[i] = n + " " + mark
	}
	return strings.Join(parts, ", ")
}

// sortedKeys orders "#2" before "#10".
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return keys
}

func formatMeSHPlain(w io.Writer, record *mesh.Record) error {
	fmt.Fprintf(w, "MeSH Term: %s\n", record.Name)
	fmt.Fprintf(w, "UI: %s\n", record.UI)

	if len(record.TreeNumbers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tree Numbers:")
		for _, tn := range record.TreeNumbers {
			fmt.Fprintf(w, "  %s\n", tn)
		}
	}
	if record.ScopeNote != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Scope Note:")
		fmt.Fprintf(w, "  %s\n", record.ScopeNote)
	}
	if len(record.EntryTerms) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Entry Terms (synonyms):")
		for _, et := range record.EntryTerms {
			fmt.Fprintf(w, "  - %s\n", et)
		}
	}
	if record.Annotation != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Annotation: %s\n", record.Annotation)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
