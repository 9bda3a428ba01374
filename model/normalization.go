package model

import (
	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	v "github.com/njchilds90/gocalphad/variables"
)

// siteRatioNormalization is the number of formula-unit sites that hold
// atoms. A sublattice that admits active vacancies counts only its
// non-vacant fraction.
func (c componentSet) siteRatioNormalization(phase database.Phase) expr.Expr {
	terms := make([]expr.Expr, len(phase.Constituents))
	for idx, subl := range phase.Constituents {
		ratio := expr.NFloat(phase.Sublattices[idx])
		if contains(subl, v.Vacancy) && c[v.Vacancy] {
			terms[idx] = expr.MulOf(ratio, expr.SubOf(expr.N(1), v.Y(phase.Name, idx, v.Vacancy)))
			continue
		}
		terms[idx] = ratio
	}
	return expr.AddOf(terms...)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
