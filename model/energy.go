package model

import (
	"math"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	v "github.com/njchilds90/gocalphad/variables"
)

// reference is the site-fraction weighted average of the endmember
// energies.
func (b *builder) reference(phase database.Phase) (expr.Expr, error) {
	norm := b.comps.siteRatioNormalization(phase)
	records := b.db.Search(database.And(
		database.Where(database.FieldPhaseName).Eq(phase.Name),
		database.Where(database.FieldParameterOrder).Eq(0),
		database.Where(database.FieldParameterType).Eq(database.TypeG),
		database.ConstituentsMatch(b.comps.isPure),
	))

	terms := make([]expr.Expr, 0, len(records))
	for _, p := range records {
		if err := checkShape(phase, p); err != nil {
			return nil, err
		}
		product := make([]expr.Expr, 0, len(p.Constituents)+1)
		for idx, subl := range p.Constituents {
			switch s := subl[0]; {
			case s == database.Wildcard:
				product = append(product, expr.AddOf(b.wildcard(phase, idx)...))
			case !b.comps[s]:
				product = append(product, expr.N(0))
			default:
				product = append(product, v.Y(phase.Name, idx, s))
			}
		}
		product = append(product, expr.Substitute(p.Value, b.symbols))
		terms = append(terms, expr.DivOf(expr.MulOf(product...), norm))
	}
	b.log.Debug().Int("parameters", len(records)).Msg("reference energy")
	return expr.AddOf(terms...), nil
}

// Fixed polynomial that replaces y*ln(y) at and below the cutoff.
var (
	entropyCutoff    = expr.NFloat(1e-12)
	entropyIntercept = expr.NFloat(3 * math.Log(10) / 2.5e11)
	entropySlope     = expr.NFloat(1 - math.Log(1e-12))
	entropyCurvature = expr.NFloat(5e-11)
)

func entropyTerm(y expr.Expr) expr.Expr {
	d := expr.SubOf(y, entropyCutoff)
	return expr.PiecewiseOf(
		expr.Case(expr.MulOf(y, expr.LnOf(y)), expr.Gt(y, entropyCutoff)),
		expr.Case(expr.AddOf(
			entropyIntercept,
			expr.MulOf(d, entropySlope),
			expr.MulOf(entropyCurvature, expr.PowOf(d, expr.N(2))),
		), expr.True()),
	)
}

// idealMixing is R*T times the configurational entropy term of every
// sublattice with at least two active species.
func (b *builder) idealMixing(phase database.Phase) (expr.Expr, error) {
	norm := b.comps.siteRatioNormalization(phase)
	var terms []expr.Expr
	for idx, subl := range phase.Constituents {
		active := b.comps.intersect(subl)
		if len(active) < 2 {
			continue
		}
		ratio := expr.DivOf(expr.NFloat(phase.Sublattices[idx]), norm)
		for _, s := range active {
			terms = append(terms, expr.MulOf(ratio, entropyTerm(v.Y(phase.Name, idx, s))))
		}
	}
	return expr.MulOf(v.R, v.T, expr.AddOf(terms...)), nil
}

func (b *builder) excessMixing(phase database.Phase) (expr.Expr, error) {
	sum, err := b.redlichKister(phase, b.comps.isInteraction, database.TypeG, database.TypeL)
	if err != nil {
		return nil, err
	}
	return expr.DivOf(sum, b.comps.siteRatioNormalization(phase)), nil
}

// magnetic is the Inden-Hillert-Jarl magnetic ordering energy. It is zero
// unless the phase declares both the structure factor and the
// antiferromagnetic factor. BMAGN and TC records are selected by validity,
// not interaction, so endmember Curie temperatures and moments count.
func (b *builder) magnetic(phase database.Phase) (expr.Expr, error) {
	structure, afm, ok := phase.Hints.Magnetic()
	if !ok {
		return expr.N(0), nil
	}
	moment, err := b.redlichKister(phase, b.comps.isValid, database.TypeBMAGN)
	if err != nil {
		return nil, err
	}
	curie, err := b.redlichKister(phase, b.comps.isValid, database.TypeTC)
	if err != nil {
		return nil, err
	}

	afmFactor := expr.NFloat(afm)
	beta := antiferromagnetic(moment, afmFactor)
	tc := antiferromagnetic(curie, afmFactor)
	zero := expr.N(0)
	tau := expr.PiecewiseOf(
		expr.Case(expr.DivOf(v.T, tc), expr.Gt(tc, zero)),
		// Reduced temperature is infinite without ordering.
		expr.Case(expr.N(10000), expr.EqOf(tc, zero)),
	)

	g := ihj(tau, expr.NFloat(structure))
	norm := b.comps.siteRatioNormalization(phase)
	return expr.DivOf(expr.MulOf(v.R, v.T, expr.LnOf(expr.AddOf(beta, expr.N(1))), g), norm), nil
}

// antiferromagnetic divides non-positive values by the antiferromagnetic
// factor.
func antiferromagnetic(x, factor expr.Expr) expr.Expr {
	zero := expr.N(0)
	return expr.PiecewiseOf(
		expr.Case(x, expr.Gt(x, zero)),
		expr.Case(expr.DivOf(x, factor), expr.Le(x, zero)),
	)
}

// ihj is the Inden-Hillert-Jarl g(tau) for structure factor p.
func ihj(tau, p expr.Expr) expr.Expr {
	one := expr.N(1)
	pow := func(n int64) expr.Expr { return expr.PowOf(tau, expr.N(n)) }
	pTerm := expr.SubOf(expr.DivOf(one, p), one)
	a := expr.AddOf(expr.F(518, 1125), expr.MulOf(expr.F(11692, 15975), pTerm))
	invA := expr.DivOf(one, a)

	below := expr.SubOf(one, expr.MulOf(invA, expr.AddOf(
		expr.MulOf(expr.DivOf(expr.N(79), expr.MulOf(expr.N(140), p)), pow(-1)),
		expr.MulOf(expr.F(474, 497), pTerm, expr.AddOf(
			expr.DivOf(pow(3), expr.N(6)),
			expr.DivOf(pow(9), expr.N(135)),
			expr.DivOf(pow(15), expr.N(600)),
		)),
	)))
	above := expr.MulOf(expr.N(-1), invA, expr.AddOf(
		expr.DivOf(pow(-5), expr.N(10)),
		expr.DivOf(pow(-15), expr.N(315)),
		expr.DivOf(pow(-25), expr.N(1500)),
	))
	return expr.PiecewiseOf(
		expr.Case(below, expr.Lt(tau, one)),
		expr.Case(above, expr.Ge(tau, one)),
	)
}
