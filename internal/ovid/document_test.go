package ovid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/searchconv/internal/warn"
)

func TestConvertDocument_History(t *testing.T) {
	doc := `1. exp Asthma/
2. (wheez$ or asthma$).tw.
3. 1 or 2
4. randomized controlled trial.pt.
5. 3 and 4

6. limit 5 to english language
7. type 2 diabetes.ti.
8. (5 or 7) not 1`

	res := ConvertDocument(doc)
	want := `#1 Asthma[mh]
#2 ("wheez*"[tiab] OR "asthma*"[tiab])
#3 #1 OR #2
#4 randomized controlled trial[pt]
#5 #3 AND #4

#6 limit 5 to english language
#7 "type 2 diabetes"[ti]
#8 (#5 OR #7) NOT #1`
	assert.Equal(t, want, res.Query)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "#6: ")
}

func TestConvertDocument_CombineShorthand(t *testing.T) {
	res := ConvertDocument("1 asthma.ti.\n2 wheeze.ti.\n3 cough.ti.\n4 or/1-3\n5 and/1,3")
	assert.Equal(t,
		"#1 asthma[ti]\n#2 wheeze[ti]\n#3 cough[ti]\n#4 #1 OR #2 OR #3\n#5 #1 AND #3",
		res.Query)
	assert.Empty(t, res.Warnings)
}

func TestConvertDocument_HashNumbering(t *testing.T) {
	res := ConvertDocument("#1 cov*.tw.\n#2 #1 not animals/")
	assert.Equal(t, "#1 cov*[tiab]\n#2 #1 NOT animals[mh:noexp]", res.Query)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "#1: ")
}

func TestConvertDocument_UnknownNumbersStayTerms(t *testing.T) {
	res := ConvertDocument("1 covid 19.ti.")
	assert.Equal(t, `#1 "covid 19"[ti]`, res.Query)
}

func TestConvertDocument_Empty(t *testing.T) {
	res := ConvertDocument("  \n ")
	assert.Equal(t, "", res.Query)
	assert.Empty(t, res.Warnings)
}

func TestExpandCombine(t *testing.T) {
	ids := map[string]bool{"1": true, "2": true, "3": true, "7": true}
	w := warn.New()
	assert.Equal(t, "#1 OR #2 OR #3 OR #7", expandCombine("or", "1-3, 7", ids, w, ""))
	assert.Equal(t, "#2 AND #3", expandCombine("AND", "3-2", ids, w, "#4: "))
	assert.Len(t, w.Warnings(), 1)
}

func TestExpandCombine_RangeBeyondHistory(t *testing.T) {
	ids := map[string]bool{"1": true, "2": true}
	w := warn.New()
	assert.Equal(t, "#1 OR #2", expandCombine("or", "1-999999999", ids, w, "#3: "))
	require.Len(t, w.Warnings(), 1)
	assert.Contains(t, w.Warnings()[0], "#3: ")
	assert.Contains(t, w.Warnings()[0], "kept 2 existing")

	w = warn.New()
	assert.Equal(t, "#1 OR #2", expandCombine("or", "1-99999999999999999999", ids, w, ""))
	assert.Len(t, w.Warnings(), 1)
}

func TestConvertDocument_HugeRange(t *testing.T) {
	res := ConvertDocument("1. a.tw.\n2. or/1-2000000")
	assert.Equal(t, "#1 a[tiab]\n#2 #1", res.Query)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "#2: ")
}

func TestHistoryRefs(t *testing.T) {
	ids := map[string]bool{"1": true, "2": true, "3": true}
	assert.Equal(t, "#1 or #2", historyRefs("1 or 2", ids))
	assert.Equal(t, "( #1 and #2 ) not #3", historyRefs("(1 and 2) not 3", ids))
	assert.Equal(t, "type 2 diabetes.ti.", historyRefs("type 2 diabetes.ti.", ids))
	assert.Equal(t, "#1 or 9", historyRefs("1 or 9", ids))
}
