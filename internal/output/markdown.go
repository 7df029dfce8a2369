package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteMarkdown writes r as a search-strategy document: the source search,
// each target's version in a code block, Dialog's paste-ready command
// lines, and the conversion warnings.
func WriteMarkdown(w io.Writer, r *Report) error {
	var b strings.Builder
	b.WriteString("# Database search strategies\n\n")
	fmt.Fprintf(&b, "Converted: %s\n\n", r.Generated.Format("2006-01-02 15:04:05"))
	if r.Origin != "" {
		writeSection(&b, "Ovid MEDLINE", strings.TrimSpace(r.Origin))
	}
	writeSection(&b, "PubMed", strings.TrimSpace(r.Source))

	var commands []string
	for _, c := range r.Conversions {
		writeSection(&b, c.Title, c.Text)
		if len(c.Commands) > 0 {
			commands = c.Commands
		}
	}
	if len(commands) > 0 {
		b.WriteString("## Command Line for Dialog\n\nPaste into the Dialog command line:\n\n")
		writeFence(&b, strings.Join(commands, "\n"))
	}

	first := true
	for _, msg := range r.SourceWarnings {
		if first {
			b.WriteString("## Warnings\n\n")
			first = false
		}
		fmt.Fprintf(&b, "- **PubMed**: %s\n", msg)
	}
	for _, c := range r.Conversions {
		for _, msg := range c.Warnings {
			if first {
				b.WriteString("## Warnings\n\n")
				first = false
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", c.Title, msg)
		}
	}
	if !first {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return err
}

// WriteMarkdownFile writes the report to path.
func WriteMarkdownFile(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := WriteMarkdown(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

func writeSection(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	writeFence(b, body)
}

func writeFence(b *strings.Builder, body string) {
	b.WriteString("```\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")
}
