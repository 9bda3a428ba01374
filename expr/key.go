package expr

import "strings"

// exactKey is an exact structural identity for e. Numbers are written as exact
// rationals, so two expressions share a key only when they are Equal.
// String is for display and may round.
func exactKey(e Expr) string {
	var b strings.Builder
	writeKey(&b, e)
	return b.String()
}

func writeKey(b *strings.Builder, e Expr) {
	switch v := e.(type) {
	case *Num:
		b.WriteByte('#')
		b.WriteString(v.val.RatString())
	case *Sym:
		b.WriteByte('$')
		b.WriteString(v.name)
	case *Bool:
		if v.val {
			b.WriteString("?t")
		} else {
			b.WriteString("?f")
		}
	case *Add:
		writeKeyList(b, "+", v.terms)
	case *Mul:
		writeKeyList(b, "*", v.factors)
	case *Pow:
		writeKeyList(b, "^", []Expr{v.base, v.exp})
	case *Func:
		writeKeyList(b, v.name, []Expr{v.arg})
	case *Rel:
		writeKeyList(b, v.op, []Expr{v.lhs, v.rhs})
	case *Piecewise:
		parts := make([]Expr, 0, 2*len(v.branches))
		for _, br := range v.branches {
			parts = append(parts, br.Value, br.Cond)
		}
		writeKeyList(b, "pw", parts)
	default:
		b.WriteString(e.String())
	}
}

func writeKeyList(b *strings.Builder, op string, es []Expr) {
	b.WriteString(op)
	b.WriteByte('(')
	for i, e := range es {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(b, e)
	}
	b.WriteByte(')')
}
