package model

import (
	"sort"

	"github.com/njchilds90/gocalphad/database"
)

// componentSet is the set of species active in one model.
type componentSet map[string]bool

// activeComponents intersects the requested components with the species of
// every sublattice. It fails with a *DofError on the first sublattice left
// without an active species.
func activeComponents(phase database.Phase, requested []string) (componentSet, error) {
	want := make(map[string]bool, len(requested))
	for _, c := range requested {
		want[upper(c)] = true
	}
	comps := componentSet{}
	for _, subl := range phase.Constituents {
		for _, s := range subl {
			if want[s] {
				comps[s] = true
			}
		}
	}
	for idx, subl := range phase.Constituents {
		if len(comps.intersect(subl)) == 0 {
			return nil, &DofError{
				Phase:        phase.Name,
				Sublattice:   idx,
				Constituents: append([]string(nil), subl...),
				Components:   comps.sorted(),
			}
		}
	}
	return comps, nil
}

func (c componentSet) sorted() []string {
	out := make([]string, 0, len(c))
	for s := range c {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// intersect returns the active members of species, sorted and deduplicated.
func (c componentSet) intersect(species []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range species {
		if c[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// isPure reports whether every sublattice names exactly one species that is
// active or the wildcard.
func (c componentSet) isPure(ca database.ConstituentArray) bool {
	for _, subl := range ca {
		if len(subl) != 1 {
			return false
		}
		if !c[subl[0]] && subl[0] != database.Wildcard {
			return false
		}
	}
	return true
}

// sublatticeValid reports whether every species of subl is active, or subl
// starts with the wildcard.
func (c componentSet) sublatticeValid(subl []string) bool {
	if len(subl) > 0 && subl[0] == database.Wildcard {
		return true
	}
	for _, s := range subl {
		if !c[s] {
			return false
		}
	}
	return true
}

// isValid reports whether every sublattice of ca is valid.
func (c componentSet) isValid(ca database.ConstituentArray) bool {
	for _, subl := range ca {
		if !c.sublatticeValid(subl) {
			return false
		}
	}
	return true
}

// isInteraction reports whether ca is valid on every sublattice and mixes
// at least two species on one of them. An invalid sublattice anywhere
// discards interactions found before it.
func (c componentSet) isInteraction(ca database.ConstituentArray) bool {
	result := false
	for _, subl := range ca {
		valid := c.sublatticeValid(subl)
		if len(subl) > 1 && valid {
			result = true
		}
		if !valid {
			result = false
			break
		}
	}
	return result
}
