package expr

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ============================================================
// Infix parsing
// ============================================================

// Parse reads an infix expression such as
//
//	-7976.15 + 137.093038*T - 24.3671976*T*ln(T) + pow(T, -1)
//
// using the HCL expression grammar. Powers are written pow(base, exp);
// conditionals (c ? a : b) become Piecewise. Identifiers may not contain
// '-', so subtraction between names needs surrounding spaces.
func Parse(src string) (Expr, error) {
	b := []byte(src)
	node, diags := hclsyntax.ParseExpression(b, "expr", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("expr: parse %q: %s", src, diags.Error())
	}
	return fromHCL(b, node)
}

// MustParse is Parse for literals known to be valid.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func fromHCL(src []byte, node hclsyntax.Expression) (Expr, error) {
	switch n := node.(type) {
	case *hclsyntax.LiteralValueExpr:
		return literal(src, n)

	case *hclsyntax.ScopeTraversalExpr:
		if len(n.Traversal) != 1 {
			return nil, fmt.Errorf("expr: attribute access is not supported: %s", rangeText(src, n.SrcRange))
		}
		name := n.Traversal.RootName()
		if strings.Contains(name, "-") {
			return nil, fmt.Errorf("expr: identifier %q contains '-'; separate subtraction with spaces", name)
		}
		return S(name), nil

	case *hclsyntax.ParenthesesExpr:
		return fromHCL(src, n.Expression)

	case *hclsyntax.UnaryOpExpr:
		val, err := fromHCL(src, n.Val)
		if err != nil {
			return nil, err
		}
		if n.Op == hclsyntax.OpNegate {
			return MulOf(N(-1), val), nil
		}
		return nil, fmt.Errorf("expr: unsupported unary operator in %s", rangeText(src, n.SrcRange))

	case *hclsyntax.BinaryOpExpr:
		lhs, err := fromHCL(src, n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := fromHCL(src, n.RHS)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case hclsyntax.OpAdd:
			return AddOf(lhs, rhs), nil
		case hclsyntax.OpSubtract:
			return SubOf(lhs, rhs), nil
		case hclsyntax.OpMultiply:
			return MulOf(lhs, rhs), nil
		case hclsyntax.OpDivide:
			return DivOf(lhs, rhs), nil
		case hclsyntax.OpGreaterThan:
			return Gt(lhs, rhs), nil
		case hclsyntax.OpGreaterThanOrEqual:
			return Ge(lhs, rhs), nil
		case hclsyntax.OpLessThan:
			return Lt(lhs, rhs), nil
		case hclsyntax.OpLessThanOrEqual:
			return Le(lhs, rhs), nil
		case hclsyntax.OpEqual:
			return EqOf(lhs, rhs), nil
		}
		return nil, fmt.Errorf("expr: unsupported operator in %s", rangeText(src, n.SrcRange))

	case *hclsyntax.ConditionalExpr:
		cond, err := fromHCL(src, n.Condition)
		if err != nil {
			return nil, err
		}
		switch cond.(type) {
		case *Rel, *Bool:
		default:
			return nil, fmt.Errorf("expr: condition %s is not a comparison", cond)
		}
		a, err := fromHCL(src, n.TrueResult)
		if err != nil {
			return nil, err
		}
		b, err := fromHCL(src, n.FalseResult)
		if err != nil {
			return nil, err
		}
		return PiecewiseOf(Case(a, cond), Case(b, True())), nil

	case *hclsyntax.FunctionCallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := fromHCL(src, a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return call(strings.ToLower(n.Name), args)
	}
	return nil, fmt.Errorf("expr: unsupported syntax %s", rangeText(src, node.Range()))
}

func call(name string, args []Expr) (Expr, error) {
	want := 1
	if name == "pow" {
		want = 2
	}
	if len(args) != want {
		return nil, fmt.Errorf("expr: %s takes %d argument(s), got %d", name, want, len(args))
	}
	switch name {
	case "ln", "log":
		return LnOf(args[0]), nil
	case "exp":
		return ExpOf(args[0]), nil
	case "abs":
		return AbsOf(args[0]), nil
	case "sqrt":
		return PowOf(args[0], F(1, 2)), nil
	case "pow":
		return PowOf(args[0], args[1]), nil
	}
	return nil, fmt.Errorf("expr: unknown function %q", name)
}

// literal reads numbers from their source text so decimals stay exact.
func literal(src []byte, n *hclsyntax.LiteralValueExpr) (Expr, error) {
	t := n.Val.Type()
	switch {
	case n.Val.IsNull():
	case t.Equals(cty.Number):
		f := n.Val.AsBigFloat()
		r := new(big.Rat)
		if _, ok := r.SetString(rangeText(src, n.SrcRange)); ok {
			if r.Sign() != f.Sign() {
				r.Neg(r)
			}
			return &Num{val: r}, nil
		}
		if f.IsInf() {
			return nil, fmt.Errorf("expr: non-finite number %s", f.String())
		}
		r, _ = f.Rat(nil)
		return &Num{val: r}, nil
	case t.Equals(cty.Bool):
		return BoolOf(n.Val.True()), nil
	}
	return nil, fmt.Errorf("expr: unsupported literal %s", rangeText(src, n.SrcRange))
}

func rangeText(src []byte, r hcl.Range) string {
	if r.Start.Byte < 0 || r.End.Byte > len(src) || r.Start.Byte > r.End.Byte {
		return r.String()
	}
	return string(src[r.Start.Byte:r.End.Byte])
}
