package query

import (
	"strconv"
	"strings"
)

// PubMed field codes used as the canonical vocabulary across converters.
const (
	FieldTitle         = "ti"
	FieldAbstract      = "ab"
	FieldTitleAbstract = "tiab"
	FieldTextWord      = "tw"
	FieldAffiliation   = "ad"
	FieldAuthor        = "au"
	FieldPubType       = "pt"
	FieldJournal       = "ta"
	FieldMeSH          = "mh"
	FieldMeSHMajor     = "majr"
	FieldSubstance     = "nm"
	FieldRegistry      = "rn"
	FieldOtherTerm     = "ot"
	FieldDate          = "dp"
	FieldLanguage      = "la"
	FieldUID           = "uid"
	FieldAll           = "all"
)

// fieldAliases maps lower-cased PubMed tag names, short and long, to the
// canonical code.
var fieldAliases = map[string]string{
	"ti":                    FieldTitle,
	"title":                 FieldTitle,
	"ab":                    FieldAbstract,
	"abstract":              FieldAbstract,
	"tiab":                  FieldTitleAbstract,
	"title/abstract":        FieldTitleAbstract,
	"tw":                    FieldTextWord,
	"text word":             FieldTextWord,
	"ad":                    FieldAffiliation,
	"affiliation":           FieldAffiliation,
	"au":                    FieldAuthor,
	"author":                FieldAuthor,
	"pt":                    FieldPubType,
	"publication type":      FieldPubType,
	"ta":                    FieldJournal,
	"journal":               FieldJournal,
	"mh":                    FieldMeSH,
	"mesh":                  FieldMeSH,
	"mesh terms":            FieldMeSH,
	"majr":                  FieldMeSHMajor,
	"mesh major topic":      FieldMeSHMajor,
	"nm":                    FieldSubstance,
	"supplementary concept": FieldSubstance,
	"rn":                    FieldRegistry,
	"ec/rn number":          FieldRegistry,
	"ot":                    FieldOtherTerm,
	"other term":            FieldOtherTerm,
	"dp":                    FieldDate,
	"pdat":                  FieldDate,
	"publication date":      FieldDate,
	"la":                    FieldLanguage,
	"language":              FieldLanguage,
	"uid":                   FieldUID,
	"pmid":                  FieldUID,
	"all":                   FieldAll,
	"all fields":            FieldAll,
}

// Tag is a parsed PubMed bracket tag such as [tiab:~3] or [mh:noexp].
type Tag struct {
	Raw       string // text between the brackets
	Field     string // canonical code, or the lower-cased name when unknown
	Known     bool
	NoExplode bool
	Proximity int // -1 when the tag carries no :~N modifier
}

// ParseTag interprets the text inside a PubMed bracket tag.
func ParseTag(raw string) Tag {
	t := Tag{Raw: raw, Proximity: -1}
	name, mod, _ := strings.Cut(raw, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	t.Field, t.Known = fieldAliases[name]
	if !t.Known {
		t.Field = name
	}
	mod = strings.ToLower(strings.TrimSpace(mod))
	switch {
	case mod == "noexp":
		t.NoExplode = true
	case strings.HasPrefix(mod, "~"):
		if n, err := strconv.Atoi(mod[1:]); err == nil && n >= 0 {
			t.Proximity = n
		}
	}
	return t
}

// SplitTag separates a trailing [tag] from a word. ok is false when the word
// does not end in a bracket tag.
func SplitTag(word string) (text, tag string, ok bool) {
	if !strings.HasSuffix(word, "]") {
		return word, "", false
	}
	open := strings.LastIndex(word, "[")
	if open < 0 {
		return word, "", false
	}
	return word[:open], word[open+1 : len(word)-1], true
}

// HasTag reports whether s already ends in a PubMed bracket tag.
func HasTag(s string) bool {
	_, _, ok := SplitTag(strings.TrimSpace(s))
	return ok
}
