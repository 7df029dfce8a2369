package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/henrybloomingdale/searchconv/internal/eutils"
	"github.com/henrybloomingdale/searchconv/internal/mesh"
	"github.com/henrybloomingdale/searchconv/internal/ovid"
)

// --- Styles ---

var (
	cyan       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	bold       = lipgloss.NewStyle().Bold(true)
	dim        = lipgloss.NewStyle().Faint(true)
	green      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red        = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	magenta    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// truncate cuts s to maxLen runes, appending "…" if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
			}
			return lipgloss.NewStyle()
		})
}

func writeWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "  %s %s\n", yellow.Render("⚠"), msg)
	}
}

// --- Conversions ---

func formatReportHuman(w io.Writer, r *Report) error {
	for i, c := range r.Conversions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, bold.Render("🔄 "+c.Title))
		if len(c.Fields) > 0 {
			t := newTable("Field", "Query")
			for _, f := range c.Fields {
				t.Row(labelStyle.Render(f.Name), f.Query)
			}
			fmt.Fprintln(w, t.Render())
		} else if c.Text != "" {
			fmt.Fprintln(w, boxStyle.Render(c.Text))
		} else {
			fmt.Fprintln(w, dim.Render("  (empty)"))
		}
		writeWarnings(w, c.Warnings)
	}
	return nil
}

func formatOvidHuman(w io.Writer, source string, res ovid.Result) error {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Ovid:  "), dim.Render(source))
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("PubMed:"), cyan.Render(res.Query))
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
		writeWarnings(w, res.Warnings)
	}
	return nil
}

func formatValidationHuman(w io.Writer, msgs []string) error {
	if len(msgs) == 0 {
		fmt.Fprintln(w, green.Render("✅ No syntax problems found."))
		return nil
	}
	fmt.Fprintln(w, red.Render(fmt.Sprintf("❌ %d syntax problem(s)", len(msgs))))
	for _, m := range msgs {
		fmt.Fprintf(w, "   %s\n", m)
	}
	return nil
}

// --- Check ---

func formatCheckHuman(w io.Writer, r *CheckReport) error {
	s := r.Search
	fmt.Fprintln(w, bold.Render(fmt.Sprintf("🔬 %d results", s.Count)))
	if s.QueryTranslation != "" {
		fmt.Fprintf(w, "   Query: %s\n", dim.Render(s.QueryTranslation))
	}
	for _, p := range s.PhrasesNotFound {
		fmt.Fprintf(w, "   %s %s\n", red.Render("not found:"), p)
	}
	writeWarnings(w, s.Warnings)

	if len(r.Lines) > 0 {
		fmt.Fprintln(w)
		t := newTable("Line", "Count", "Query")
		for _, l := range r.Lines {
			t.Row(cyan.Render(l.Name), fmt.Sprintf("%d", l.Count), truncate(l.Query, 60))
		}
		fmt.Fprintln(w, t.Render())
	}

	if c := r.Capture; c != nil {
		fmt.Fprintln(w)
		total := len(c.Captured) + len(c.Missing)
		summary := fmt.Sprintf("Seed PMIDs captured: %d/%d (%.1f%%)", len(c.Captured), total, c.Rate()*100)
		if len(c.Missing) == 0 {
			fmt.Fprintln(w, green.Render("✅ "+summary))
		} else {
			fmt.Fprintln(w, red.Render("❌ "+summary))
		}
		if len(c.Blocks) > 0 {
			fmt.Fprintln(w, blockTable(c.Blocks).Render())
		} else if len(c.Missing) > 0 {
			fmt.Fprintf(w, "   Missing: %s\n", strings.Join(c.Missing, ", "))
		}
	}
	return nil
}

func blockTable(blocks []eutils.BlockCoverage) *table.Table {
	var names []string
	for _, b := range blocks {
		if b.Exists {
			names = sortedKeys(b.Hits)
			break
		}
	}
	t := newTable(append([]string{"PMID"}, names...)...)
	for _, b := range blocks {
		row := []string{cyan.Render(b.PMID)}
		for _, n := range names {
			switch {
			case !b.Exists:
				row = append(row, dim.Render("n/a"))
			case b.Hits[n]:
				row = append(row, green.Render("✓"))
			default:
				row = append(row, red.Render("✗"))
			}
		}
		t.Row(row...)
	}
	return t
}

// --- MeSH ---

func formatMeSHHuman(w io.Writer, record *mesh.Record) error {
	fmt.Fprintf(w, "🏷️  %s  %s\n\n", bold.Render(record.Name), dim.Render(record.UI))

	if len(record.TreeNumbers) > 0 {
		fmt.Fprintf(w, "  %s\n", labelStyle.Render("Tree Numbers:"))
		for _, tn := range record.TreeNumbers {
			fmt.Fprintf(w, "    %s %s\n", magenta.Render("├"), tn)
		}
		fmt.Fprintln(w)
	}
	if record.ScopeNote != "" {
		fmt.Fprintf(w, "  %s\n", labelStyle.Render("Scope Note:"))
		for _, line := range strings.Split(wordWrap(record.ScopeNote, 76), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintln(w)
	}
	if len(record.EntryTerms) > 0 {
		fmt.Fprintf(w, "  %s ", labelStyle.Render("Synonyms:"))
		colored := make([]string, len(record.EntryTerms))
		for i, et := range record.EntryTerms {
			colored[i] = yellow.Render(et)
		}
		fmt.Fprintln(w, strings.Join(colored, ", "))
		fmt.Fprintln(w)
	}
	if record.Annotation != "" {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Annotation:"), record.Annotation)
	}
	return nil
}

// wordWrap wraps text at width, breaking at spaces.
func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}
