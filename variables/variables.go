// Package variables names the leaves of a Gibbs energy expression: site
// fractions, temperature and the gas constant.
package variables

import (
	"fmt"
	"sort"

	"github.com/njchilds90/gocalphad/expr"
)

// Vacancy is the species name reserved for vacant sites.
const Vacancy = "VA"

// GasConstant is R in J/(mol·K).
const GasConstant = 8.3145

// SiteFraction identifies the occupation of Species on one sublattice of a
// phase. It is a value type: usable as a map key and comparable with ==.
type SiteFraction struct {
	Phase      string
	Sublattice int
	Species    string
}

// StateVariable is a thermodynamic condition such as temperature.
type StateVariable struct{ Name string }

var (
	// T is the temperature state variable.
	T = expr.Tagged("T", StateVariable{Name: "T"})
	// R is the gas constant as an exact number.
	R = expr.NFloat(GasConstant)
)

// Y returns the site-fraction symbol for (phase, sublattice, species).
func Y(phase string, sublattice int, species string) *expr.Sym {
	return SiteFraction{Phase: phase, Sublattice: sublattice, Species: species}.Symbol()
}

// Name is the symbol name, e.g. Y(FCC_A1,0,AL).
func (s SiteFraction) Name() string {
	return fmt.Sprintf("Y(%s,%d,%s)", s.Phase, s.Sublattice, s.Species)
}

func (s SiteFraction) String() string { return s.Name() }

// Symbol returns the tagged expression leaf for s.
func (s SiteFraction) Symbol() *expr.Sym { return expr.Tagged(s.Name(), s) }

// Less orders by phase, then sublattice, then species.
func (s SiteFraction) Less(o SiteFraction) bool {
	if s.Phase != o.Phase {
		return s.Phase < o.Phase
	}
	if s.Sublattice != o.Sublattice {
		return s.Sublattice < o.Sublattice
	}
	return s.Species < o.Species
}

// SiteFractions returns the site fractions appearing in e in sorted order.
func SiteFractions(e expr.Expr) []SiteFraction {
	out := expr.Tags[SiteFraction](e)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Assignment maps site fractions (and optionally T) to values for numeric
// evaluation with expr.Evalf.
func Assignment(temperature float64, fractions map[SiteFraction]float64) map[string]float64 {
	vals := make(map[string]float64, len(fractions)+1)
	vals[T.Name()] = temperature
	for sf, v := range fractions {
		vals[sf.Name()] = v
	}
	return vals
}
