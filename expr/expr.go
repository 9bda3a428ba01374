// Package expr is the deterministic symbolic kernel used to assemble Gibbs
// energy expressions.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Simultaneous substitution, so replacement values are never revisited
//   - Symbols may carry a comparable tag (site fractions, state variables)
//     that survives substitution and can be extracted by type
package expr

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	// Subs replaces every symbol named in m at once.
	Subs(m map[string]Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts f exactly. Non-finite values have no rational form and
// panic.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("expr: non-finite value %v", f))
	}
	return &Num{val: new(big.Rat).SetFloat64(f)}
}

// NRat wraps a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr            { return n }
func (n *Num) Subs(map[string]Expr) Expr { return n }
func (n *Num) Diff(string) Expr          { return N(0) }
func (n *Num) Eval() (*Num, bool)        { return n, true }
func (n *Num) Equal(other Expr) bool     { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string          { return "num" }
func (n *Num) Float64() float64          { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool              { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool               { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool            { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool           { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat             { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool          { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool          { return n.val.Sign() < 0 }
func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val.RatString()}
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	// Floats from parameter files have power-of-two denominators that
	// read badly as fractions.
	if !isSmallDenom(n.val) {
		return floatText(n.val)
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	if !isSmallDenom(n.val) {
		return floatText(n.val)
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func isSmallDenom(r *big.Rat) bool { return r.Denom().BitLen() <= 32 }

func floatText(r *big.Rat) string { return new(big.Float).SetPrec(64).SetRat(r).Text('g', 15) }

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("expr: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym: symbolic variable
// ============================================================

// Sym is a named variable. Two symbols are equal when their names are; the
// tag is carried along for extraction with Tags.
type Sym struct {
	name string
	tag  any
}

func S(name string) *Sym { return &Sym{name: name} }

// Tagged returns a symbol that carries tag, which must be comparable.
func Tagged(name string, tag any) *Sym { return &Sym{name: name, tag: tag} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) LaTeX() string         { return s.name }
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Tag() any              { return s.tag }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Subs(m map[string]Expr) Expr {
	if v, ok := m[s.name]; ok {
		return v
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}
