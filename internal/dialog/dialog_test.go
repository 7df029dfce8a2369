package dialog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tremorDoc = `#1 "Essential Tremor"[Mesh]
#2 "tremor therapy"[tiab:~2]

#3 "deep brain"[Title:~0]
#4 "hospital university"[ad:~5]
#5 (#1 OR #2) AND (#3 OR #4)`

func TestConvert_Golden(t *testing.T) {
	res := Convert(tremorDoc)
	g := goldie.New(t)
	g.Assert(t, "tremor", []byte(res.Text+"\n"))
	assert.Empty(t, res.Warnings)
}

func TestConvert_RenumbersSets(t *testing.T) {
	res := Convert("#1 asthma[ti]\n#2 wheeze[ti]\n#3 #1 AND #2")
	assert.Equal(t, "S1 TI(\"asthma\")\nS2 TI(\"wheeze\")\nS3 S1 AND S2", res.Text)
}

func TestConvert_AndNotExcludes(t *testing.T) {
	res := Convert("#1 a[tiab]\n#2 #1 AND NOT b[tiab]")
	out := strings.Split(res.Text, "\n")
	require.Len(t, out, 2)
	assert.Equal(t, `S2 S1 NOT (TI("b") OR AB("b"))`, out[1])
	assert.Empty(t, res.Warnings)
}

func TestConvert_LongestReferenceFirst(t *testing.T) {
	var lines []string
	for i := 1; i <= 11; i++ {
		lines = append(lines, fmt.Sprintf("#%d term%d[ti]", i*2, i))
	}
	lines = append(lines, "#30 #2 OR #20 OR #22")
	res := Convert(strings.Join(lines, "\n"))
	out := strings.Split(res.Text, "\n")
	require.Len(t, out, 12)
	assert.Equal(t, `S1 TI("term1")`, out[0])
	assert.Equal(t, `S10 TI("term10")`, out[9])
	assert.Equal(t, "S12 S1 OR S10 OR S11", out[11])
}

func TestConvertLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Asthma"[mh]`, `EMB.EXACT.EXPLODE("Asthma")`},
		{`Asthma[mh:noexp]`, `EMB.EXACT("Asthma")`},
		{`Asthma[majr]`, `MJEMB.EXACT.EXPLODE("Asthma")`},
		{`Asthma[majr:noexp]`, `MJEMB.EXACT("Asthma")`},
		{`wheeze[tiab]`, `(TI("wheeze") OR AB("wheeze"))`},
		{`"heart failure"[tiab]`, `(TI("heart failure") OR AB("heart failure"))`},
		{`wheeze[tw]`, `(TI("wheeze") OR AB("wheeze"))`},
		{`wheeze[ti]`, `TI("wheeze")`},
		{`wheeze[ab]`, `AB("wheeze")`},
		{`Smith J[au]`, `AU("Smith J")`},
		{`Harvard[ad]`, `CS("Harvard")`},
		{`review[pt]`, `DTYPE("review")`},
		{`Lancet[ta]`, `PUB("Lancet")`},
		{`english[la]`, `LA("english")`},
		{`"heart failure"[tiab:~3]`, `TI,AB(heart N/3 failure)`},
		{`"heart failure"[ti:~0]`, `TI(heart W/1 failure)`},
		{`2000/1/1:2020/12/31[dp]`, `PD(20000101-20201231)`},
		{`2020:2025[dp]`, `PD(2020-2025)`},
		{`asthma or "wheeze"`, `asthma OR "wheeze"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			res := ConvertLine(tt.in)
			assert.Equal(t, tt.want, res.Text)
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestConvertLine_Lossy(t *testing.T) {
	res := ConvertLine(`Neoplasms/diet therapy[mh]`)
	assert.Equal(t, `EMB.EXACT.EXPLODE("Neoplasms")`, res.Text)
	require.Len(t, res.Warnings, 1)

	res = ConvertLine(`"patient physician relationship"[tiab:~1]`)
	assert.Equal(t, `TI,AB(patient AND physician AND relationship)`, res.Text)
	require.Len(t, res.Warnings, 1)

	res = ConvertLine(`aspirin[nm]`)
	assert.Equal(t, `aspirin`, res.Text)
	require.Len(t, res.Warnings, 1)
}

func TestConvert_ValidationWarnings(t *testing.T) {
	res := Convert("1 asthma[ti]\n2. wheeze[ti]")
	assert.Equal(t, "S1 TI(\"asthma\")\nS2 TI(\"wheeze\")", res.Text)
	require.Len(t, res.Warnings, 1)
	assert.True(t, strings.HasPrefix(res.Warnings[0], "Line 1: missing period"))
}

func TestConvert_Empty(t *testing.T) {
	res := Convert("")
	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Warnings)
}

func TestValidate(t *testing.T) {
	doc := `1. exp Asthma/
2 exp Bronchitis or cough
3. (exp Lung Diseases) and smoking
4. exp Neoplasms/diet therapy`
	msgs := Validate(doc)
	require.Len(t, msgs, 3)
	assert.True(t, strings.HasPrefix(msgs[0], "Line 2: missing period"))
	assert.True(t, strings.HasPrefix(msgs[1], "Line 2: MeSH heading"))
	assert.True(t, strings.HasPrefix(msgs[2], "Line 3: MeSH heading"))
}

func TestCommandLines(t *testing.T) {
	res := Convert("#1 asthma[ti]\n\n#2 wheeze[ti]\n#3 #1 OR #2")
	assert.Equal(t, []string{`TI("asthma")`, `TI("wheeze")`, "S1 OR S2"}, CommandLines(res.Text))
}
