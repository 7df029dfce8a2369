package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/searchconv/internal/warn"
)

const tremorDoc = `
#1 "Essential Tremor"[Mesh]
#2 "tremor therapy"[tiab:~2]

#3 "deep brain"[Title:~0]
#4 "hospital university"[ad:~5]
#5 (#1 OR #2) AND (#3 OR #4)
`

func TestParse_Lines(t *testing.T) {
	w := warn.New()
	d := Parse(tremorDoc, w)
	require.Len(t, d.Lines, 6)
	assert.Equal(t, "1", d.Lines[0].ID)
	assert.Equal(t, `"Essential Tremor"[Mesh]`, d.Lines[0].Content)
	assert.True(t, d.Lines[2].Blank)
	assert.Len(t, d.Blocks(), 5)
	assert.Len(t, d.Leaves(), 4)
	assert.Empty(t, w.Warnings())

	i, ok := d.Combining()
	require.True(t, ok)
	assert.Equal(t, "5", d.Lines[i].ID)
}

func TestParse_NumberingStyles(t *testing.T) {
	w := warn.New()
	d := Parse("1. asthma[tiab]\n2 wheeze[tiab]\n#3 #1 OR #2", w)
	require.Len(t, d.Lines, 3)
	assert.Equal(t, "1", d.Lines[0].ID)
	assert.Equal(t, "2", d.Lines[1].ID)
	assert.Equal(t, "asthma[tiab]", d.Lines[0].Content)
	assert.Equal(t, "#3", d.Lines[2].Label())
}

func TestParse_UnnumberedCombiningLine(t *testing.T) {
	w := warn.New()
	d := Parse("#1 asthma[tiab]\n#2 wheeze[tiab]\n#1 AND #2", w)
	i, ok := d.Combining()
	require.True(t, ok)
	assert.Equal(t, "", d.Lines[i].ID)
}

func TestParse_NoCombiningLine(t *testing.T) {
	w := warn.New()
	d := Parse("#1 asthma[tiab]\n#2 wheeze[tiab]", w)
	_, ok := d.Combining()
	assert.False(t, ok)
}

func TestParse_DuplicateLaterWins(t *testing.T) {
	w := warn.New()
	d := Parse("#1 asthma[tiab]\n#1 wheeze[tiab]", w)
	l, ok := d.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, "wheeze[tiab]", l.Content)
	require.Len(t, w.Warnings(), 1)
	assert.Contains(t, w.Warnings()[0], "more than once")
}

func TestParse_UndefinedReference(t *testing.T) {
	w := warn.New()
	Parse("#1 asthma[tiab]\n#2 #1 OR #9", w)
	require.Len(t, w.Warnings(), 1)
	assert.Equal(t, "#2: reference to undefined line #9", w.Warnings()[0])
}

func TestParse_Empty(t *testing.T) {
	w := warn.New()
	d := Parse(" \n\n ", w)
	assert.True(t, d.Empty())
	assert.Empty(t, d.Lines)
	_, ok := d.Combining()
	assert.False(t, ok)
}

func TestExpander_SubstitutesRecursively(t *testing.T) {
	w := warn.New()
	d := Parse("#1 a\n#2 b\n#3 #1 OR #2\n#4 #3 AND c", w)
	e := NewExpander(d, PubMed, w)
	i, _ := d.Combining()
	assert.Equal(t, "((a) OR (b)) AND c", e.Line(i))
	assert.Equal(t, "(a) OR (b)", e.Line(2))
	assert.Empty(t, w.Warnings())
}

func TestExpander_SelfReference(t *testing.T) {
	w := warn.New()
	d := Parse("#1 a OR #1", w)
	e := NewExpander(d, PubMed, w)
	assert.Equal(t, "a OR #1", e.Line(0))
	assert.Len(t, w.Warnings(), 1)
}

func TestRenameRefs_LongestFirst(t *testing.T) {
	mapping := map[string]string{"#1": "S1", "#10": "S2", "#2": "S3"}
	assert.Equal(t, "S1 OR S2 AND (S3 NOT S1)", RenameRefs("#1 OR #10 AND (#2 NOT #1)", mapping))
	assert.Equal(t, "#100 OR S2", RenameRefs("#100 OR #10", mapping))
	assert.Equal(t, `"#1 trial"[tiab] OR S1`, RenameRefs(`"#1 trial"[tiab] OR #1`, mapping))
	assert.Equal(t, "##1", RenameRefs("##1", mapping))
}

func TestQuery(t *testing.T) {
	w := warn.New()
	d := Parse(tremorDoc, w)
	assert.Equal(t,
		`(("Essential Tremor"[Mesh]) OR ("tremor therapy"[tiab:~2])) AND (("deep brain"[Title:~0]) OR ("hospital university"[ad:~5]))`,
		Query(d, w))

	d = Parse("#1 asthma[tiab]\n#2 wheeze[tiab]", w)
	assert.Equal(t, "(asthma[tiab]) AND (wheeze[tiab])", Query(d, w))

	d = Parse("asthma[tiab] OR wheeze[tiab]", w)
	assert.Equal(t, "asthma[tiab] OR wheeze[tiab]", Query(d, w))
	assert.Empty(t, w.Warnings())
}
