package ovid

import (
	"maps"
	"strings"

	"github.com/henrybloomingdale/searchconv/internal/query"
)

// fieldMap maps Ovid MEDLINE field suffixes to PubMed field tags. It is
// never written after init.
var fieldMap = map[string]string{
	"ti":    query.FieldTitle,
	"ab":    query.FieldAbstract,
	"ti,ab": query.FieldTitleAbstract,
	"tw":    query.FieldTitleAbstract, // Ovid MEDLINE .tw. searches title and abstract
	"mp":    query.FieldTextWord,
	"jn":    query.FieldJournal,
	"au":    query.FieldAuthor,
	"ad":    query.FieldAffiliation,
	"pt":    query.FieldPubType,
	"sh":    query.FieldMeSH,
	"nm":    query.FieldSubstance,
	"rn":    query.FieldRegistry,
	"kf":    query.FieldOtherTerm,
}

// noQuoteTags are PubMed fields whose values are matched as entered and
// must not be phrase-quoted.
var noQuoteTags = map[string]bool{
	query.FieldAuthor:  true,
	query.FieldPubType: true,
	query.FieldJournal: true,
}

// proximityFields are the PubMed fields that accept [field:~N].
var proximityFields = []string{
	query.FieldTitleAbstract,
	query.FieldTitle,
	query.FieldAffiliation,
}

// FieldMap returns a copy of the default Ovid suffix to PubMed tag mapping,
// suitable as a starting point for Converter.Fields.
func FieldMap() map[string]string {
	return maps.Clone(fieldMap)
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.TrimPrefix(label, ".")
	return strings.TrimSuffix(label, ".")
}

func (c *Converter) mapField(label string) (string, bool) {
	fields := c.Fields
	if fields == nil {
		fields = fieldMap
	}
	tag, ok := fields[normalizeLabel(label)]
	return tag, ok
}

// proximityField picks the PubMed field for a proximity search carrying
// the given mapped tag, defaulting to title/abstract.
func proximityField(tag string) string {
	for _, f := range proximityFields {
		if f == tag {
			return f
		}
	}
	return query.FieldTitleAbstract
}
