package expr

import "sort"

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Sub replaces a single symbol.
func Sub(e Expr, varName string, value Expr) Expr {
	return e.Subs(map[string]Expr{varName: value}).Simplify()
}

// Substitute replaces every symbol keyed in m simultaneously: a value
// inserted for one symbol is never rewritten by another entry.
func Substitute(e Expr, m map[string]Expr) Expr {
	if len(m) == 0 {
		return e
	}
	return e.Subs(m).Simplify()
}

func Diff(e Expr, varName string) Expr {
	return e.Diff(varName).Simplify()
}

// Gradient returns the partial derivatives of e in the order of varNames.
func Gradient(e Expr, varNames []string) []Expr {
	grad := make([]Expr, len(varNames))
	for i, v := range varNames {
		grad[i] = Diff(e, v)
	}
	return grad
}

// EvalWith substitutes vals and evaluates the result.
func EvalWith(e Expr, vals map[string]Expr) (*Num, bool) {
	return Substitute(e, vals).Eval()
}

// Evalf is EvalWith for float inputs and output.
func Evalf(e Expr, vals map[string]float64) (float64, bool) {
	m := make(map[string]Expr, len(vals))
	for k, v := range vals {
		m[k] = NFloat(v)
	}
	n, ok := EvalWith(e, m)
	if !ok {
		return 0, false
	}
	return n.Float64(), true
}

// ============================================================
// Free Symbols
// ============================================================

// Walk visits e and every sub-expression in pre-order.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			Walk(t, fn)
		}
	case *Mul:
		for _, f := range v.factors {
			Walk(f, fn)
		}
	case *Pow:
		Walk(v.base, fn)
		Walk(v.exp, fn)
	case *Func:
		Walk(v.arg, fn)
	case *Rel:
		Walk(v.lhs, fn)
		Walk(v.rhs, fn)
	case *Piecewise:
		for _, b := range v.branches {
			Walk(b.Value, fn)
			Walk(b.Cond, fn)
		}
	}
}

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	Walk(e, func(x Expr) {
		if s, ok := x.(*Sym); ok {
			result[s.name] = struct{}{}
		}
	})
	return result
}

// Atoms returns the distinct symbols of e sorted by name.
func Atoms(e Expr) []*Sym {
	seen := map[string]*Sym{}
	Walk(e, func(x Expr) {
		if s, ok := x.(*Sym); ok {
			if _, dup := seen[s.name]; !dup {
				seen[s.name] = s
			}
		}
	})
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Sym, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}

// Tags returns the distinct tags of type T carried by symbols in e, in
// symbol-name order.
func Tags[T comparable](e Expr) []T {
	var out []T
	seen := map[T]struct{}{}
	for _, s := range Atoms(e) {
		t, ok := s.tag.(T)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
