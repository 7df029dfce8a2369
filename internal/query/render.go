package query

import (
	"fmt"
	"strings"
)

// RenderPubMed prints n in PubMed syntax. Tags are re-emitted as written
// when the node came from tagged input, otherwise as canonical codes.
func RenderPubMed(n Node) string {
	switch v := n.(type) {
	case nil:
		return ""
	case *Term:
		text := v.Text
		if v.Quoted {
			text = `"` + text + `"`
		}
		tag := v.Tag
		if tag == "" {
			tag = v.Field
		}
		if tag == "" {
			return text
		}
		return text + "[" + tag + "]"
	case *MeSH:
		text := v.Descriptor
		if v.Subheading != "" {
			text += "/" + v.Subheading
		}
		if v.Quoted {
			text = `"` + text + `"`
		}
		return text + "[" + meshTag(v) + "]"
	case *Proximity:
		tag := v.Tag
		if tag == "" {
			tag = fmt.Sprintf("%s:~%d", v.Field, v.Distance)
		}
		return `"` + strings.Join(v.Terms, " ") + `"[` + tag + "]"
	case *Ref:
		return "#" + v.ID
	case *DateRange:
		tag := v.Tag
		if tag == "" {
			tag = "dp"
		}
		return v.From + ":" + v.To + "[" + tag + "]"
	case *Group:
		inner := RenderPubMed(v.Expr)
		if inner == "" {
			return ""
		}
		return "(" + inner + ")"
	case *Bool:
		parts := make([]string, len(v.Operands))
		for i, op := range v.Operands {
			parts[i] = RenderPubMed(op)
		}
		return JoinBool(parts, v.Ops)
	case *Untranslated:
		return RenderPubMed(v.Expr) + "." + v.Label + "."
	case *Literal:
		return v.Text
	}
	return ""
}

func meshTag(m *MeSH) string {
	if m.Tag != "" {
		return m.Tag
	}
	tag := FieldMeSH
	if m.Major {
		tag = FieldMeSHMajor
	}
	// A subheading always searches the exploded descriptor.
	if m.NoExplode && m.Subheading == "" {
		tag += ":noexp"
	}
	return tag
}
