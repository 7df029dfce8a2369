package ovid

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
	"github.com/henrybloomingdale/searchconv/internal/warn"
)

var (
	historyLineRe = regexp.MustCompile(`^#?(\d+)\.?\s+(.*)$`)
	combineRe     = regexp.MustCompile(`(?i)^(and|or)/\s*([\d,\s-]+)$`)
	commandRe     = regexp.MustCompile(`(?i)^(limit|remove duplicates)\b`)
	rangeRe       = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
)

// ConvertDocument converts an Ovid search history, one numbered search per
// line ("1. exp Asthma/", "3 1 or 2", "4. or/1-3"), into a PubMed
// line-numbered document ("#1 Asthma[mh]", "#3 #1 OR #2").
func ConvertDocument(doc string) Result {
	var c Converter
	return c.ConvertDocument(doc)
}

// ConvertDocument converts an Ovid search history with c's field map.
func (c *Converter) ConvertDocument(doc string) Result {
	w := warn.New()
	lines := strings.Split(strings.TrimSpace(doc), "\n")

	ids := make(map[string]bool)
	for _, line := range lines {
		if m := historyLineRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			ids[m[1]] = true
		}
	}

	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, "")
			continue
		}
		id, content := "", line
		if m := historyLineRe.FindStringSubmatch(line); m != nil {
			id, content = m[1], strings.TrimSpace(m[2])
		}
		prefix := ""
		label := ""
		if id != "" {
			prefix = "#" + id + " "
			label = "#" + id + ": "
		}

		if commandRe.MatchString(content) {
			w.Add("%s%q has no PubMed equivalent; line passed through unchanged", label, content)
			out = append(out, prefix+content)
			continue
		}
		if m := combineRe.FindStringSubmatch(content); m != nil {
			content = expandCombine(m[1], m[2], ids, w, label)
		}

		res := c.Convert(historyRefs(content, ids))
		for _, msg := range res.Warnings {
			w.Add("%s%s", label, msg)
		}
		for _, t := range res.Trace {
			w.Tracef("%s%s", label, t)
		}
		out = append(out, prefix+res.Query)
	}
	return Result{Query: strings.Join(out, "\n"), Warnings: w.Warnings(), Trace: w.Trace()}
}

// expandCombine spells out Ovid's or/1-3 and and/1,3 shorthand. A range
// expands only to the history lines that exist within it.
func expandCombine(op, list string, ids map[string]bool, w *warn.Collector, label string) string {
	known := make([]int, 0, len(ids))
	for id := range ids {
		if n, err := strconv.Atoi(id); err == nil {
			known = append(known, n)
		}
	}
	sort.Ints(known)

	var refs []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m := rangeRe.FindStringSubmatch(part); m != nil {
			from, err := strconv.Atoi(m[1])
			if err != nil {
				w.Add("%srange %q is out of bounds; dropped", label, part)
				continue
			}
			to, err := strconv.Atoi(m[2])
			if err != nil {
				to = math.MaxInt
			}
			if from > to {
				w.Add("%sdescending range %q expanded in reverse", label, part)
				from, to = to, from
			}
			n := 0
			for _, id := range known {
				if id >= from && id <= to {
					refs = append(refs, "#"+strconv.Itoa(id))
					n++
				}
			}
			if to-from >= n {
				w.Add("%srange %q names lines not in the history; kept %d existing", label, part, n)
			}
			continue
		}
		refs = append(refs, "#"+part)
	}
	return strings.Join(refs, fmt.Sprintf(" %s ", strings.ToUpper(op)))
}

// historyRefs rewrites bare search numbers into #N references on a line that
// only combines earlier searches ("1 or 2", "(3 and 4) not 5"). Numbers on
// any other line are search terms.
func historyRefs(content string, ids map[string]bool) string {
	toks := query.Tokenize(content)
	for _, t := range toks {
		if t.Kind != query.TokWord {
			continue
		}
		if _, isOp := query.ParseOp(t.Text); isOp {
			continue
		}
		if digitsRe.MatchString(strings.TrimPrefix(t.Text, "#")) {
			continue
		}
		return content
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
		if t.Kind == query.TokWord && digitsRe.MatchString(t.Text) && ids[t.Text] {
			parts[i] = "#" + t.Text
		}
	}
	return strings.Join(parts, " ")
}
