// Package document models line-numbered PubMed search documents:
//
//	#1 "Essential Tremor"[Mesh]
//	#2 "tremor therapy"[tiab:~2]
//	#3 #1 OR #2
//
// Lines may also be numbered "1." or "1". Each line's content is parsed
// into a query.Node; references to other lines are query.Ref nodes.
package document

import (
	"regexp"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	hashLineRe   = regexp.MustCompile(`^#(\d+)(?:\s+(.*))?$`)
	numberLineRe = regexp.MustCompile(`^(\d+)\.?\s+(.*)$`)
)

// Line is one line of a document. ID is empty for unnumbered lines.
type Line struct {
	ID      string
	Content string
	Expr    query.Node
	Blank   bool
}

// Label returns "#ID", or "" for an unnumbered line.
func (l Line) Label() string {
	if l.ID == "" {
		return ""
	}
	return "#" + l.ID
}

// Document is a parsed search document.
type Document struct {
	Lines []Line
	index map[string]int
}

// Parse splits text into lines and parses each line's content as PubMed
// syntax. Leading and trailing blank lines are dropped; inner blank lines
// are kept. Problems are reported through w.
func Parse(text string, w *warn.Collector) *Document {
	d := &Document{index: make(map[string]int)}
	text = strings.TrimSpace(query.Normalize(text))
	if text == "" {
		return d
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			d.Lines = append(d.Lines, Line{Blank: true})
			continue
		}
		l := Line{Content: line}
		if m := hashLineRe.FindStringSubmatch(line); m != nil && !startsWithOperator(m[2]) {
			l.ID, l.Content = m[1], strings.TrimSpace(m[2])
		} else if m := numberLineRe.FindStringSubmatch(line); m != nil {
			l.ID, l.Content = m[1], strings.TrimSpace(m[2])
		}
		if l.ID != "" {
			if _, dup := d.index[l.ID]; dup {
				w.Add("#%s is defined more than once; the later line is used", l.ID)
			}
			d.index[l.ID] = len(d.Lines)
		}
		lw := warn.New()
		l.Expr = query.ParsePubMed(l.Content, lw)
		for _, msg := range lw.Warnings() {
			w.Add("%s", prefixed(l, msg))
		}
		d.Lines = append(d.Lines, l)
	}
	for _, l := range d.Lines {
		for _, id := range query.Refs(l.Expr) {
			if _, ok := d.index[id]; !ok {
				w.Add("%s", prefixed(l, "reference to undefined line #"+id))
			}
		}
	}
	return d
}

// startsWithOperator catches unnumbered combining lines such as
// "#1 AND #2", which would otherwise read as line #1.
func startsWithOperator(content string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(content), " ")
	_, ok := query.ParseOp(first)
	return ok
}

func prefixed(l Line, msg string) string {
	if l.ID == "" {
		return msg
	}
	return "#" + l.ID + ": " + msg
}

// Empty reports whether the document has no content lines.
func (d *Document) Empty() bool {
	for _, l := range d.Lines {
		if !l.Blank {
			return false
		}
	}
	return true
}

// Lookup returns the line defining id. When id is defined more than once
// the later line wins.
func (d *Document) Lookup(id string) (Line, bool) {
	i, ok := d.index[id]
	if !ok {
		return Line{}, false
	}
	return d.Lines[i], true
}

// Reachable returns the indexes of the lines d.Lines[i] refers to,
// directly or through other lines, in document order. i itself is not
// included.
func (d *Document) Reachable(i int) []int {
	seen := map[int]bool{i: true}
	stack := []int{i}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, id := range query.Refs(d.Lines[cur].Expr) {
			if j, ok := d.index[id]; ok && !seen[j] {
				seen[j] = true
				stack = append(stack, j)
			}
		}
	}
	var out []int
	for j := range d.Lines {
		if j != i && seen[j] {
			out = append(out, j)
		}
	}
	return out
}

// Blocks returns the non-blank lines in order. Unnumbered lines count as
// implicit blocks.
func (d *Document) Blocks() []Line {
	var out []Line
	for _, l := range d.Lines {
		if !l.Blank {
			out = append(out, l)
		}
	}
	return out
}

// References reports whether l refers to another defined line.
func (d *Document) References(l Line) bool {
	for _, id := range query.Refs(l.Expr) {
		if _, ok := d.index[id]; ok && id != l.ID {
			return true
		}
	}
	return false
}

// Combining returns the index in Lines of the combining line: the last
// block that references other blocks.
func (d *Document) Combining() (int, bool) {
	for i := len(d.Lines) - 1; i >= 0; i-- {
		l := d.Lines[i]
		if !l.Blank && d.References(l) {
			return i, true
		}
	}
	return -1, false
}

// Leaves returns the blocks that reference no other block, in order.
func (d *Document) Leaves() []Line {
	var out []Line
	for _, l := range d.Blocks() {
		if !d.References(l) {
			out = append(out, l)
		}
	}
	return out
}
