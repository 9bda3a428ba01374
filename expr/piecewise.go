package expr

import (
	"fmt"
	"strings"
)

// ============================================================
// Rel: relational condition
// ============================================================

// Rel compares two expressions. It folds to a Bool once both sides are
// numeric.
type Rel struct {
	op       string
	lhs, rhs Expr
}

var relLaTeX = map[string]string{">": ">", ">=": "\\geq", "<": "<", "<=": "\\leq", "==": "="}

func relOf(op string, lhs, rhs Expr) Expr { return (&Rel{op: op, lhs: lhs, rhs: rhs}).Simplify() }

func Gt(lhs, rhs Expr) Expr { return relOf(">", lhs, rhs) }
func Ge(lhs, rhs Expr) Expr { return relOf(">=", lhs, rhs) }
func Lt(lhs, rhs Expr) Expr { return relOf("<", lhs, rhs) }
func Le(lhs, rhs Expr) Expr { return relOf("<=", lhs, rhs) }
func EqOf(lhs, rhs Expr) Expr {
	return relOf("==", lhs, rhs)
}

func (r *Rel) Simplify() Expr {
	lhs, rhs := r.lhs.Simplify(), r.rhs.Simplify()
	ln, ok1 := lhs.(*Num)
	rn, ok2 := rhs.(*Num)
	if ok1 && ok2 {
		return BoolOf(compare(r.op, numCmp(ln, rn)))
	}
	return &Rel{op: r.op, lhs: lhs, rhs: rhs}
}

func compare(op string, c int) bool {
	switch op {
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case "==":
		return c == 0
	}
	panic("expr: unknown relation " + op)
}

func (r *Rel) String() string { return r.lhs.String() + " " + r.op + " " + r.rhs.String() }
func (r *Rel) LaTeX() string  { return r.lhs.LaTeX() + " " + relLaTeX[r.op] + " " + r.rhs.LaTeX() }
func (r *Rel) Subs(m map[string]Expr) Expr {
	return relOf(r.op, r.lhs.Subs(m), r.rhs.Subs(m))
}
func (r *Rel) Diff(string) Expr { return N(0) }

// Eval yields 1 or 0 when both sides evaluate.
func (r *Rel) Eval() (*Num, bool) {
	l, ok1 := r.lhs.Eval()
	rv, ok2 := r.rhs.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if compare(r.op, numCmp(l, rv)) {
		return N(1), true
	}
	return N(0), true
}

func (r *Rel) Equal(other Expr) bool {
	o, ok := other.(*Rel)
	return ok && r.op == o.op && r.lhs.Equal(o.lhs) && r.rhs.Equal(o.rhs)
}
func (r *Rel) exprType() string { return "rel" }
func (r *Rel) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "rel", "op": r.op, "lhs": r.lhs.toJSON(), "rhs": r.rhs.toJSON()}
}
func (r *Rel) Op() string { return r.op }

// ============================================================
// Bool: decided condition
// ============================================================

type Bool struct{ val bool }

func BoolOf(b bool) *Bool { return &Bool{val: b} }
func True() *Bool         { return BoolOf(true) }

func (b *Bool) Simplify() Expr            { return b }
func (b *Bool) Subs(map[string]Expr) Expr { return b }
func (b *Bool) Diff(string) Expr          { return N(0) }
func (b *Bool) Value() bool               { return b.val }
func (b *Bool) Equal(other Expr) bool     { o, ok := other.(*Bool); return ok && o.val == b.val }
func (b *Bool) exprType() string          { return "bool" }
func (b *Bool) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "bool", "value": b.val}
}
func (b *Bool) String() string {
	if b.val {
		return "True"
	}
	return "False"
}
func (b *Bool) LaTeX() string {
	if b.val {
		return "\\text{otherwise}"
	}
	return "\\text{False}"
}
func (b *Bool) Eval() (*Num, bool) {
	if b.val {
		return N(1), true
	}
	return N(0), true
}

// ============================================================
// Piecewise: conditional expression
// ============================================================

// Branch pairs a value with the condition selecting it.
type Branch struct {
	Value Expr
	Cond  Expr
}

func Case(value, cond Expr) Branch { return Branch{Value: value, Cond: cond} }

// Piecewise takes the value of the first branch whose condition holds.
type Piecewise struct{ branches []Branch }

func PiecewiseOf(branches ...Branch) Expr { return (&Piecewise{branches: branches}).Simplify() }

// Simplify drops branches whose condition is decided false and truncates
// after the first one decided true. A leading true branch collapses the
// expression to its value.
func (p *Piecewise) Simplify() Expr {
	kept := make([]Branch, 0, len(p.branches))
	for _, b := range p.branches {
		cond := b.Cond.Simplify()
		if bv, ok := cond.(*Bool); ok {
			if !bv.val {
				continue
			}
			if len(kept) == 0 {
				return b.Value.Simplify()
			}
			kept = append(kept, Branch{Value: b.Value.Simplify(), Cond: cond})
			break
		}
		kept = append(kept, Branch{Value: b.Value.Simplify(), Cond: cond})
	}
	return &Piecewise{branches: kept}
}

func (p *Piecewise) String() string {
	parts := make([]string, len(p.branches))
	for i, b := range p.branches {
		parts[i] = fmt.Sprintf("(%s, %s)", b.Value.String(), b.Cond.String())
	}
	return "Piecewise(" + strings.Join(parts, ", ") + ")"
}

func (p *Piecewise) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{cases}")
	for i, b := range p.branches {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		sb.WriteString(b.Value.LaTeX())
		sb.WriteString(" & ")
		sb.WriteString(b.Cond.LaTeX())
	}
	sb.WriteString("\\end{cases}")
	return sb.String()
}

func (p *Piecewise) Subs(m map[string]Expr) Expr {
	bs := make([]Branch, len(p.branches))
	for i, b := range p.branches {
		bs[i] = Branch{Value: b.Value.Subs(m), Cond: b.Cond.Subs(m)}
	}
	return PiecewiseOf(bs...)
}

func (p *Piecewise) Diff(varName string) Expr {
	bs := make([]Branch, len(p.branches))
	for i, b := range p.branches {
		bs[i] = Branch{Value: b.Value.Diff(varName), Cond: b.Cond}
	}
	return PiecewiseOf(bs...)
}

// Eval fails when a condition cannot be decided before one holds, or when
// no branch holds.
func (p *Piecewise) Eval() (*Num, bool) {
	for _, b := range p.branches {
		c, ok := b.Cond.Eval()
		if !ok {
			return nil, false
		}
		if !c.IsZero() {
			return b.Value.Eval()
		}
	}
	return nil, false
}

func (p *Piecewise) Equal(other Expr) bool {
	o, ok := other.(*Piecewise)
	if !ok || len(p.branches) != len(o.branches) {
		return false
	}
	for i := range p.branches {
		if !p.branches[i].Value.Equal(o.branches[i].Value) || !p.branches[i].Cond.Equal(o.branches[i].Cond) {
			return false
		}
	}
	return true
}

func (p *Piecewise) exprType() string { return "piecewise" }
func (p *Piecewise) toJSON() map[string]interface{} {
	bs := make([]map[string]interface{}, len(p.branches))
	for i, b := range p.branches {
		bs[i] = map[string]interface{}{"value": b.Value.toJSON(), "cond": b.Cond.toJSON()}
	}
	return map[string]interface{}{"type": "piecewise", "branches": bs}
}
func (p *Piecewise) Branches() []Branch { return append([]Branch(nil), p.branches...) }
