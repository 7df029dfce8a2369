package ictrp

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/searchconv/internal/synonyms"
)

const tremorDoc = `
#1 "Essential Tremor"[Mesh]
#2 "tremor therapy"[tiab:~2]

#3 "deep brain"[Title:~0]
#4 "hospital university"[ad:~5]
#5 (#1 OR #2) AND (#3 OR #4)
`

func TestConvert_Golden(t *testing.T) {
	res := Convert(tremorDoc)
	g := goldie.New(t)
	g.Assert(t, "tremor", []byte(res.Text+"\n"))

	require.Len(t, res.Warnings, 3)
	assert.Equal(t, `#2: ICTRP has no proximity operator; "tremor therapy" searched with AND`, res.Warnings[0])
	assert.Contains(t, res.Warnings[1], "#3: ")
	assert.Contains(t, res.Warnings[2], "#4: ")
}

func TestConvert_Synonyms(t *testing.T) {
	syn := synonyms.Map{}
	syn.Add("Essential Tremor", "essential tremor", "benign tremor", "familial tremor")
	c := &Converter{Synonyms: syn}
	res := c.Convert(tremorDoc)
	assert.Equal(t,
		`(("essential tremor" OR "benign tremor" OR "familial tremor") OR (tremor AND therapy)) AND ((deep AND brain) OR (hospital AND university))`,
		res.Text)
}

func TestConvert_MaxDepth(t *testing.T) {
	c := &Converter{MaxDepth: 1}
	res := c.Convert(tremorDoc)
	assert.Equal(t, `("Essential Tremor" OR tremor AND therapy) AND (deep AND brain OR hospital AND university)`, res.Text)
}

func TestConvert_NoCombiningLine(t *testing.T) {
	res := Convert("#1 asthma[tiab]\n#2 wheeze[ti]")
	assert.Equal(t, "(asthma) AND (wheeze)", res.Text)
	assert.Equal(t, []string{"no combining line found; all lines joined with AND"}, res.Warnings)
}

func TestConvert_SingleBlock(t *testing.T) {
	res := Convert("#1 asthma[tiab] OR wheeze[tiab]")
	assert.Equal(t, "(asthma OR wheeze)", res.Text)
	assert.Empty(t, res.Warnings)
}

func TestConvert_IgnoresUnreferencedLines(t *testing.T) {
	res := Convert("#1 asthma[tiab]\n#2 Smith J[au]\n#3 wheeze[tiab]\n#4 #1 OR #3")
	assert.Equal(t, "(asthma) OR (wheeze)", res.Text)
	assert.Empty(t, res.Warnings)
}

func TestConvert_Empty(t *testing.T) {
	res := Convert("\n  \n")
	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Warnings)
}

func TestConvertLine(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		warnings int
	}{
		{"tags stripped", `"heart failure"[tiab] OR cardiac[ti]`, `"heart failure" OR cardiac`, 0},
		{"operators uppercased", "asthma and wheeze", "asthma AND wheeze", 0},
		{"author kept as keyword", "Smith J[au]", "Smith J", 1},
		{"date dropped", "2020:2024[dp] AND asthma", "asthma", 1},
		{"subheading dropped", "Asthma/therapy[mh]", `"Asthma"`, 1},
		{"proximity", `"sleep apnea"[tiab:~3]`, "(sleep AND apnea)", 1},
	}
	c := &Converter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.ConvertLine(tt.in)
			assert.Equal(t, tt.want, res.Text)
			assert.Len(t, res.Warnings, tt.warnings)
		})
	}
}

func TestFlattenDepth(t *testing.T) {
	assert.Equal(t, "(a OR (b AND  c OR  d  ))", FlattenDepth("(a OR (b AND (c OR (d))))", 2))
	assert.Equal(t, `("a (b)" OR   c  )`, FlattenDepth(`("a (b)" OR ((c)))`, 1))
	assert.Equal(t, "a) OR (b)", FlattenDepth("a) OR (b)", 2))
}

func TestTidyParens(t *testing.T) {
	assert.Equal(t, "(a OR (b))", tidyParens("( a OR ( b ) )"))
	assert.Equal(t, `"( a )" AND (b)`, tidyParens(`"( a )" AND ( b)`))
}
