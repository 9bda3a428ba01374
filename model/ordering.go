package model

import (
	"fmt"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	v "github.com/njchilds90/gocalphad/variables"
)

// MoleFraction expresses the mole fraction of species in terms of the site
// fractions of phase. Sublattices holding only vacancies are not counted,
// but vacancies elsewhere count like any other species, so the mole
// fractions of all species of a sublattice sum to one.
//
// A vacancy found in no counted sublattice has mole fraction 1. Any other
// species that is not found is an error, as is a ratio count that differs
// from the sublattice count.
func MoleFraction(species, phase string, constituents [][]string, ratios []float64) (expr.Expr, error) {
	if len(ratios) != len(constituents) {
		return nil, fmt.Errorf("%w: %d site ratios for %d sublattices",
			database.ErrInvalidRecord, len(ratios), len(constituents))
	}
	var numerator []expr.Expr
	norm := expr.Expr(expr.N(0))
	for idx, subl := range constituents {
		if len(subl) == 1 && subl[0] == v.Vacancy {
			continue
		}
		if !contains(subl, species) {
			continue
		}
		ratio := expr.NFloat(ratios[idx])
		norm = expr.AddOf(norm, ratio)
		numerator = append(numerator, expr.MulOf(ratio, v.Y(phase, idx, species)))
	}
	if n, ok := norm.(*expr.Num); ok && n.IsZero() {
		if species == v.Vacancy {
			return expr.N(1), nil
		}
		return nil, fmt.Errorf("%w: %s in %v", ErrMissingSpecies, species, constituents)
	}
	return expr.DivOf(expr.AddOf(numerator...), norm), nil
}

// atomicOrdering is the order-disorder correction for an ordered phase:
// the disordered phase energy written in mole fractions of the ordered
// phase, minus the ordered energy with every sublattice set to that same
// composition.
func (b *builder) atomicOrdering(ordered database.Phase, disorderedName string, orderedEnergy expr.Expr) (expr.Expr, error) {
	if disorderedName == ordered.Name {
		return nil, fmt.Errorf("%w: phase %s is declared as its own disordered phase",
			database.ErrInvalidRecord, ordered.Name)
	}
	disordered, err := b.db.Phase(disorderedName)
	if err != nil {
		return nil, err
	}
	parts, err := b.buildPhase(disordered)
	if err != nil {
		return nil, err
	}
	disorderedEnergy := parts.Total()

	constituents := make([][]string, len(ordered.Constituents))
	for i, subl := range ordered.Constituents {
		constituents[i] = b.comps.intersect(subl)
	}
	lastSublattice := len(ordered.Constituents) - 1

	rename := map[string]expr.Expr{}
	for _, sf := range v.SiteFractions(disorderedEnergy) {
		if sf.Species == v.Vacancy && len(disordered.Constituents[sf.Sublattice]) == 1 {
			// Pure vacancy sublattices are assumed to come last.
			rename[sf.Name()] = v.Y(ordered.Name, lastSublattice, v.Vacancy)
			continue
		}
		x, err := MoleFraction(sf.Species, ordered.Name, constituents, ordered.Sublattices)
		if err != nil {
			return nil, err
		}
		rename[sf.Name()] = x
	}
	disorderedEnergy = expr.Substitute(disorderedEnergy, rename)

	moleFractions := make(map[string]expr.Expr, len(b.comps))
	for _, comp := range b.comps.sorted() {
		x, err := MoleFraction(comp, ordered.Name, constituents, ordered.Sublattices)
		if err != nil {
			return nil, err
		}
		moleFractions[comp] = x
	}
	degenerate := map[string]expr.Expr{}
	for _, sf := range v.SiteFractions(orderedEnergy) {
		if sf.Species == v.Vacancy && len(ordered.Constituents[sf.Sublattice]) == 1 {
			continue
		}
		degenerate[sf.Name()] = moleFractions[sf.Species]
	}
	b.log.Debug().
		Str("disordered", disordered.Name).
		Int("renamed", len(rename)).
		Int("merged", len(degenerate)).
		Msg("order-disorder contribution")

	return expr.SubOf(disorderedEnergy, expr.Substitute(orderedEnergy, degenerate)), nil
}
