package expr_test

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/njchilds90/gocalphad/expr"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := expr.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := expr.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := expr.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_FloatRendersDecimal(t *testing.T) {
	n := expr.NFloat(0.1)
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := expr.N(5).Diff("x")
	if expr.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", expr.String(result))
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := expr.Sub(expr.S("x"), "x", expr.N(3))
	if expr.String(result) != "3" {
		t.Errorf("want 3, got %s", expr.String(result))
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := expr.Sub(expr.S("x"), "y", expr.N(3))
	if expr.String(result) != "x" {
		t.Errorf("want x, got %s", expr.String(result))
	}
}

func TestSym_TaggedEqualsPlain(t *testing.T) {
	type key struct{ i int }
	a := expr.Tagged("y", key{1})
	if !a.Equal(expr.S("y")) {
		t.Errorf("tagged symbol should equal plain symbol of the same name")
	}
	if a.Tag() != (key{1}) {
		t.Errorf("tag lost: %v", a.Tag())
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.N(3))
	if expr.String(e) != "x + 3" {
		t.Errorf("want 'x + 3', got %s", expr.String(e))
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	e := expr.AddOf(expr.N(1), expr.N(-1))
	if expr.String(e) != "0" {
		t.Errorf("want 0, got %s", expr.String(e))
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.S("x"))
	if expr.String(e) != "2*x" {
		t.Errorf("want '2*x', got %s", expr.String(e))
	}
}

func TestAdd_CancelsProducts(t *testing.T) {
	x, y := expr.S("x"), expr.S("y")
	e := expr.SubOf(expr.MulOf(expr.N(3), x, y), expr.MulOf(y, expr.N(3), x))
	if expr.String(e) != "0" {
		t.Errorf("want 0, got %s", expr.String(e))
	}
}

// Constants that differ past the printed precision stay distinct terms.
func TestAdd_DistinctConstantsPrintingAlike(t *testing.T) {
	third := big.NewRat(1, 3)
	c1 := expr.NRat(new(big.Rat).Add(third, new(big.Rat).SetFrac64(1, 1<<61)))
	c2 := expr.NRat(new(big.Rat).Add(third, new(big.Rat).SetFrac64(1, 1<<62)))
	if c1.String() != c2.String() || c1.Equal(c2) {
		t.Fatalf("constants should print alike and differ: %s, %s", c1, c2)
	}
	x := expr.S("x")

	sum := expr.SubOf(expr.PowOf(expr.AddOf(x, c1), expr.N(2)), expr.PowOf(expr.AddOf(x, c2), expr.N(2)))
	got, ok := expr.EvalWith(sum, map[string]expr.Expr{"x": expr.N(0)})
	if !ok || got.IsZero() {
		t.Errorf("want c1^2 - c2^2 != 0, got %v (ok=%v) from %s", got, ok, sum)
	}

	prod := expr.MulOf(expr.AddOf(x, c1), expr.AddOf(x, c2))
	if _, isPow := prod.(*expr.Pow); isPow {
		t.Errorf("distinct bases merged into %s", prod)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	x := expr.S("x")
	if got := expr.String(expr.MulOf(x, x)); got != "x^2" {
		t.Errorf("want x^2, got %s", got)
	}
	if got := expr.String(expr.DivOf(x, x)); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestMul_ZeroAnnihilates(t *testing.T) {
	e := expr.MulOf(expr.N(0), expr.LnOf(expr.S("x")))
	if expr.String(e) != "0" {
		t.Errorf("want 0, got %s", expr.String(e))
	}
}

func TestAdd_Diff(t *testing.T) {
	// d/dx(x^2 + 3x + 1) = 2x + 3
	x := expr.S("x")
	e := expr.AddOf(expr.PowOf(x, expr.N(2)), expr.MulOf(expr.N(3), x), expr.N(1))
	d := expr.Diff(e, "x")
	if expr.String(d) != "2*x + 3" {
		t.Errorf("want '2*x + 3', got %s", expr.String(d))
	}
}

func TestPow_NumericFolding(t *testing.T) {
	e := expr.PowOf(expr.N(2), expr.N(-3))
	if !e.Equal(expr.F(1, 8)) {
		t.Errorf("want 1/8, got %s", e)
	}
}

func TestFunc_LnExp(t *testing.T) {
	x := expr.S("x")
	if got := expr.LnOf(expr.ExpOf(x)); !got.Equal(x) {
		t.Errorf("ln(exp(x)) should be x, got %s", got)
	}
	if got := expr.LnOf(expr.N(1)); !got.Equal(expr.N(0)) {
		t.Errorf("ln(1) should be 0, got %s", got)
	}
}

func TestFunc_DiffLn(t *testing.T) {
	// d/dx(x*ln(x)) = ln(x) + 1
	x := expr.S("x")
	d := expr.Diff(expr.MulOf(x, expr.LnOf(x)), "x")
	v, ok := expr.Evalf(d, map[string]float64{"x": 2})
	if !ok || math.Abs(v-(math.Log(2)+1)) > 1e-12 {
		t.Errorf("want %v, got %v (%s)", math.Log(2)+1, v, d)
	}
}

// ============================================================
// Substitution
// ============================================================

func TestSubstitute_Simultaneous(t *testing.T) {
	x, y := expr.S("x"), expr.S("y")
	e := expr.AddOf(x, expr.MulOf(expr.N(2), y))
	got := expr.Substitute(e, map[string]expr.Expr{"x": y, "y": x})
	if expr.String(got) != "2*x + y" {
		t.Errorf("want '2*x + y', got %s", expr.String(got))
	}
}

func TestFreeSymbols(t *testing.T) {
	e := expr.AddOf(expr.MulOf(expr.S("a"), expr.S("b")), expr.LnOf(expr.S("c")))
	fs := expr.FreeSymbols(e)
	for _, n := range []string{"a", "b", "c"} {
		if _, ok := fs[n]; !ok {
			t.Errorf("missing free symbol %s", n)
		}
	}
	if len(fs) != 3 {
		t.Errorf("want 3 symbols, got %d", len(fs))
	}
}

func TestTags_ByType(t *testing.T) {
	type site struct {
		sub     int
		species string
	}
	e := expr.AddOf(
		expr.MulOf(expr.Tagged("yB", site{0, "B"}), expr.Tagged("yA", site{0, "A"})),
		expr.Tagged("yA", site{0, "A"}),
		expr.S("T"),
	)
	tags := expr.Tags[site](e)
	if len(tags) != 2 || tags[0] != (site{0, "A"}) || tags[1] != (site{0, "B"}) {
		t.Errorf("unexpected tags %v", tags)
	}
}

// ============================================================
// Piecewise
// ============================================================

func TestPiecewise_SelectsBranch(t *testing.T) {
	x := expr.S("x")
	pw := expr.PiecewiseOf(
		expr.Case(expr.MulOf(expr.N(2), x), expr.Gt(x, expr.N(0))),
		expr.Case(expr.N(0), expr.True()),
	)
	if got := expr.Sub(pw, "x", expr.N(3)); !got.Equal(expr.N(6)) {
		t.Errorf("want 6, got %s", got)
	}
	if got := expr.Sub(pw, "x", expr.N(-3)); !got.Equal(expr.N(0)) {
		t.Errorf("want 0, got %s", got)
	}
}

func TestPiecewise_LeadingTrueCollapses(t *testing.T) {
	pw := expr.PiecewiseOf(
		expr.Case(expr.S("a"), expr.Le(expr.N(0), expr.N(0))),
		expr.Case(expr.S("b"), expr.True()),
	)
	if !pw.Equal(expr.S("a")) {
		t.Errorf("want a, got %s", pw)
	}
}

func TestPiecewise_DiffKeepsConditions(t *testing.T) {
	x := expr.S("x")
	pw := expr.PiecewiseOf(
		expr.Case(expr.PowOf(x, expr.N(2)), expr.Lt(x, expr.N(1))),
		expr.Case(x, expr.True()),
	)
	d := expr.Diff(pw, "x")
	if v, ok := expr.Evalf(d, map[string]float64{"x": 0.5}); !ok || v != 1 {
		t.Errorf("want 1 below the cut, got %v", v)
	}
	if v, ok := expr.Evalf(d, map[string]float64{"x": 2}); !ok || v != 1 {
		t.Errorf("want 1 above the cut, got %v", v)
	}
}

func TestPiecewise_UndecidedDoesNotEval(t *testing.T) {
	x := expr.S("x")
	pw := expr.PiecewiseOf(expr.Case(x, expr.Gt(x, expr.N(0))))
	if _, ok := pw.Eval(); ok {
		t.Errorf("symbolic condition must not evaluate")
	}
	if !strings.HasPrefix(pw.String(), "Piecewise(") {
		t.Errorf("unexpected rendering %s", pw)
	}
}
