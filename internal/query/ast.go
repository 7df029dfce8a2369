// Package query holds the dialect-neutral representation of a boolean
// literature search: a tokenizer, the expression tree every converter
// works on, the PubMed tag tables, and the PubMed parser and renderer.
package query

import "strings"

// Node is any element of a boolean search expression.
type Node interface {
	node()
}

// Op is a boolean operator joining two operands. OpNone marks operands that
// were written next to each other with no operator.
type Op string

const (
	OpAnd  Op = "AND"
	OpOr   Op = "OR"
	OpNot  Op = "NOT"
	OpNone Op = ""
)

// ParseOp recognizes a boolean operator keyword, case-insensitively.
func ParseOp(word string) (Op, bool) {
	switch strings.ToUpper(word) {
	case "AND":
		return OpAnd, true
	case "OR":
		return OpOr, true
	case "NOT":
		return OpNot, true
	}
	return OpNone, false
}

// Term is a leaf search term. Field is the canonical PubMed field code, or
// empty for an untagged term. Tag keeps the tag exactly as written so that
// already-tagged input re-renders unchanged.
type Term struct {
	Text   string
	Quoted bool
	Field  string
	Tag    string
}

// MeSH is a reference to a MeSH descriptor.
type MeSH struct {
	Descriptor string
	Subheading string
	Major      bool
	NoExplode  bool
	Quoted     bool
	Tag        string
}

// Proximity requires its terms to appear within Distance words of each
// other in Field.
type Proximity struct {
	Terms    []string
	Distance int
	Field    string
	Tag      string
}

// Ref is a back-reference to a numbered line, e.g. #3 has ID "3".
type Ref struct {
	ID string
}

// DateRange is a publication date restriction such as
// 2000/01/01:2020/12/31[DP]. From and To keep the slash-separated form.
type DateRange struct {
	From string
	To   string
	Tag  string
}

// Group is a parenthesized sub-expression.
type Group struct {
	Expr Node
}

// Bool is a flat, left-to-right chain of operands. len(Ops) is always
// len(Operands)-1; no precedence is imposed so re-rendering keeps the
// author's structure.
type Bool struct {
	Operands []Node
	Ops      []Op
}

// Untranslated wraps an expression carrying a source-dialect field label
// that has no equivalent in the target dialect.
type Untranslated struct {
	Expr  Node
	Label string
}

// Literal is text passed through verbatim.
type Literal struct {
	Text string
}

func (*Term) node()         {}
func (*MeSH) node()         {}
func (*Proximity) node()    {}
func (*Ref) node()          {}
func (*DateRange) node()    {}
func (*Group) node()        {}
func (*Bool) node()         {}
func (*Untranslated) node() {}
func (*Literal) node()      {}

// Walk calls fn for n and every node below it, parents first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch v := n.(type) {
	case *Group:
		Walk(v.Expr, fn)
	case *Bool:
		for _, op := range v.Operands {
			Walk(op, fn)
		}
	case *Untranslated:
		Walk(v.Expr, fn)
	}
}

// Refs lists the line ids referenced anywhere in n, in order of appearance.
func Refs(n Node) []string {
	var ids []string
	Walk(n, func(n Node) {
		if r, ok := n.(*Ref); ok {
			ids = append(ids, r.ID)
		}
	})
	return ids
}

// Leaves returns every leaf node of n in order.
func Leaves(n Node) []Node {
	var out []Node
	Walk(n, func(n Node) {
		switch n.(type) {
		case *Group, *Bool, *Untranslated:
		default:
			out = append(out, n)
		}
	})
	return out
}

// MeSHDescriptors lists the distinct descriptor names referenced in n.
func MeSHDescriptors(n Node) []string {
	seen := make(map[string]bool)
	var out []string
	Walk(n, func(n Node) {
		if m, ok := n.(*MeSH); ok && !seen[m.Descriptor] {
			seen[m.Descriptor] = true
			out = append(out, m.Descriptor)
		}
	})
	return out
}

// HasOperator reports whether n joins operands with op anywhere in its tree.
func HasOperator(n Node, op Op) bool {
	found := false
	Walk(n, func(n Node) {
		if b, ok := n.(*Bool); ok {
			for _, o := range b.Ops {
				if o == op {
					found = true
				}
			}
		}
	})
	return found
}

// JoinBool joins rendered operands with their operators, skipping operands
// that rendered to nothing together with the operator that introduced them.
func JoinBool(parts []string, ops []Op) string {
	var b strings.Builder
	wrote := false
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if wrote {
			op := OpNone
			if i > 0 && i-1 < len(ops) {
				op = ops[i-1]
			}
			if op == OpNone {
				b.WriteString(" ")
			} else {
				b.WriteString(" " + string(op) + " ")
			}
		}
		b.WriteString(p)
		wrote = true
	}
	return b.String()
}
