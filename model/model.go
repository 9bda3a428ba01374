package model

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	v "github.com/njchilds90/gocalphad/variables"
)

// Contributions holds the additive terms of a phase energy.
type Contributions struct {
	Reference expr.Expr
	Ideal     expr.Expr
	Excess    expr.Expr
	Magnetic  expr.Expr
	Ordering  expr.Expr
}

// Total is the sum of all contributions.
func (c Contributions) Total() expr.Expr {
	return expr.AddOf(c.Reference, c.Ideal, c.Excess, c.Magnetic, c.Ordering)
}

func (c Contributions) substitute(m map[string]expr.Expr) Contributions {
	return Contributions{
		Reference: expr.Substitute(c.Reference, m),
		Ideal:     expr.Substitute(c.Ideal, m),
		Excess:    expr.Substitute(c.Excess, m),
		Magnetic:  expr.Substitute(c.Magnetic, m),
		Ordering:  expr.Substitute(c.Ordering, m),
	}
}

// Model is the symbolic Gibbs energy of one phase for a set of components.
// It is immutable once built.
type Model struct {
	phase         string
	components    []string
	energy        expr.Expr
	contributions Contributions
	variables     []v.SiteFraction
}

// New builds the energy of phaseName restricted to comps. Component and
// phase names are case-insensitive.
//
// It fails with a *DofError when a sublattice of the phase holds none of
// comps.
func New(db database.Database, comps []string, phaseName string, opts ...Option) (*Model, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	phase, err := db.Phase(upper(phaseName))
	if err != nil {
		return nil, err
	}
	active, err := activeComponents(phase, comps)
	if err != nil {
		return nil, err
	}

	b := &builder{
		db:       db,
		comps:    active,
		symbols:  resolveSymbols(db.Symbols(), o.parameters, o.symbolDepth),
		log:      o.log.With().Str("phase", phase.Name).Logger(),
		parallel: o.parallel,
	}
	b.log.Debug().Strs("components", active.sorted()).Msg("building model")

	parts, err := b.buildPhase(phase)
	if err != nil {
		return nil, err
	}
	parts = parts.substitute(map[string]expr.Expr{v.T.Name(): v.T})
	energy := parts.Total()
	if err := checkResolved(energy); err != nil {
		return nil, err
	}

	return &Model{
		phase:         phase.Name,
		components:    active.sorted(),
		energy:        energy,
		contributions: parts,
		variables:     v.SiteFractions(energy),
	}, nil
}

// Energy returns the Gibbs energy per mole of formula unit.
func (m *Model) Energy() expr.Expr { return m.energy }

// Contributions returns the individual terms of Energy.
func (m *Model) Contributions() Contributions { return m.contributions }

// Variables returns the site fractions appearing in Energy, sorted.
func (m *Model) Variables() []v.SiteFraction {
	return append([]v.SiteFraction(nil), m.variables...)
}

// StateVariables returns the state variables appearing in Energy.
func (m *Model) StateVariables() []v.StateVariable {
	return expr.Tags[v.StateVariable](m.energy)
}

// Components returns the active components, sorted.
func (m *Model) Components() []string { return append([]string(nil), m.components...) }

// Phase returns the upper-cased phase name.
func (m *Model) Phase() string { return m.phase }

type builder struct {
	db       database.Database
	comps    componentSet
	symbols  map[string]expr.Expr
	log      zerolog.Logger
	parallel bool
}

// buildPhase runs reference, ideal, excess and magnetic, then the ordering
// correction when phase is the ordered member of its pair.
func (b *builder) buildPhase(phase database.Phase) (Contributions, error) {
	steps := []func(database.Phase) (expr.Expr, error){
		b.reference,
		b.idealMixing,
		b.excessMixing,
		b.magnetic,
	}
	terms := make([]expr.Expr, len(steps))
	if b.parallel {
		var g errgroup.Group
		for i, step := range steps {
			g.Go(func() error {
				t, err := step(phase)
				terms[i] = t
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return Contributions{}, err
		}
	} else {
		for i, step := range steps {
			t, err := step(phase)
			if err != nil {
				return Contributions{}, err
			}
			terms[i] = t
		}
	}

	c := Contributions{
		Reference: terms[0],
		Ideal:     terms[1],
		Excess:    terms[2],
		Magnetic:  terms[3],
		Ordering:  expr.N(0),
	}
	if phase.IsOrdered() {
		_, disordered, _ := phase.Hints.OrderDisorder()
		ordering, err := b.atomicOrdering(phase, disordered, c.Total())
		if err != nil {
			return Contributions{}, err
		}
		c.Ordering = ordering
	}
	return c, nil
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
