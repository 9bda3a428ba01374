package model

import (
	"fmt"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	v "github.com/njchilds90/gocalphad/variables"
)

// redlichKister sums, over every record of the given types whose
// constituent array passes test, the record value times its site-fraction
// polynomial. The sum is not normalized.
func (b *builder) redlichKister(phase database.Phase, test func(database.ConstituentArray) bool, types ...string) (expr.Expr, error) {
	records := b.db.Search(database.And(
		database.Where(database.FieldPhaseName).Eq(phase.Name),
		typeQuery(types),
		database.ConstituentsMatch(test),
	))
	records = b.augmentTernary(records)

	terms := make([]expr.Expr, 0, len(records))
	for _, p := range records {
		poly, err := b.mixingTerm(phase, p)
		if err != nil {
			return nil, err
		}
		terms = append(terms, expr.MulOf(poly, expr.Substitute(p.Value, b.symbols)))
	}
	b.log.Debug().Strs("types", types).Int("parameters", len(records)).Msg("redlich-kister sum")
	return expr.AddOf(terms...), nil
}

func typeQuery(types []string) database.Query {
	vals := make([]any, len(types))
	for i, t := range types {
		vals[i] = t
	}
	return database.Where(database.FieldParameterType).OneOf(vals...)
}

// augmentTernary returns records followed by implicit order-1 and order-2
// copies of each order-0 ternary record that is the only record for its
// phase, type and constituent array. records is not modified.
func (b *builder) augmentTernary(records []database.Parameter) []database.Parameter {
	out := append([]database.Parameter(nil), records...)
	for _, p := range records {
		if p.Order != 0 || !hasTernary(p.Constituents) {
			continue
		}
		same := b.db.Search(database.And(
			database.Where(database.FieldPhaseName).Eq(p.PhaseName),
			database.Where(database.FieldParameterType).Eq(p.Type),
			database.Where(database.FieldConstituentArray).Eq(p.Constituents),
		))
		if len(same) != 1 || !same[0].Equal(p) {
			continue
		}
		first, second := p.Clone(), p.Clone()
		first.Order, second.Order = 1, 2
		out = append(out, first, second)
		b.log.Debug().Stringer("parameter", p).Msg("synthesized ternary orders 1 and 2")
	}
	return out
}

func hasTernary(ca database.ConstituentArray) bool {
	for _, subl := range ca {
		if len(subl) == 3 {
			return true
		}
	}
	return false
}

// mixingTerm is the site-fraction polynomial that multiplies the value of
// p: a product over sublattices, with the binary Redlich-Kister power or the
// Muggianu-corrected ternary pivot where the sublattice interacts.
func (b *builder) mixingTerm(phase database.Phase, p database.Parameter) (expr.Expr, error) {
	if err := checkShape(phase, p); err != nil {
		return nil, err
	}
	factors := make([]expr.Expr, 0, len(p.Constituents)+1)
	for idx, subl := range p.Constituents {
		if subl[0] == database.Wildcard {
			factors = append(factors, expr.AddOf(b.wildcard(phase, idx)...))
			continue
		}
		ys := siteFractions(phase.Name, idx, subl)
		factors = append(factors, expr.MulOf(ys...))
		switch n := len(subl); {
		case n == 2 && p.Order > 0:
			factors = append(factors, expr.PowOf(expr.SubOf(ys[0], ys[1]), expr.N(int64(p.Order))))
		case n == 3:
			if p.Order > 2 {
				return nil, fmt.Errorf("%w: %s indexes species %d of a ternary", ErrInvalidParameterOrder, p, p.Order)
			}
			factors = append(factors, muggianu(ys)[p.Order])
		case n > 3:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedInteraction, p)
		}
	}
	return expr.MulOf(factors...), nil
}

// muggianu replaces each y_i with y_i + (1 - sum(y))/m, all at once.
func muggianu(ys []expr.Expr) []expr.Expr {
	sum := expr.AddOf(ys...)
	correction := expr.DivOf(expr.SubOf(expr.N(1), sum), expr.N(int64(len(ys))))
	out := make([]expr.Expr, len(ys))
	for i, y := range ys {
		out[i] = expr.AddOf(y, correction)
	}
	return out
}

// wildcard expands to the site fractions of the active species of one
// sublattice, sorted by species.
func (b *builder) wildcard(phase database.Phase, idx int) []expr.Expr {
	return siteFractions(phase.Name, idx, b.comps.intersect(phase.Constituents[idx]))
}

func siteFractions(phase string, idx int, species []string) []expr.Expr {
	out := make([]expr.Expr, len(species))
	for i, s := range species {
		out[i] = v.Y(phase, idx, s)
	}
	return out
}

func checkShape(phase database.Phase, p database.Parameter) error {
	if len(p.Constituents) != len(phase.Constituents) {
		return fmt.Errorf("%w: %s has %d sublattices, phase %s has %d",
			database.ErrInvalidRecord, p, len(p.Constituents), phase.Name, len(phase.Constituents))
	}
	return nil
}
