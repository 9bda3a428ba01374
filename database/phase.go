package database

import (
	"fmt"
	"strings"
)

// Phase is a phase definition: sublattice site ratios, the species allowed on
// each sublattice, and optional model hints.
type Phase struct {
	Name         string
	Sublattices  []float64
	Constituents [][]string
	Hints        ModelHints
}

// ModelHints switches optional energy contributions on. Absent hints are
// nil pointers or empty strings; callers use the accessor methods rather
// than probing fields.
type ModelHints struct {
	MagneticStructureFactor *float64 `yaml:"ihj_magnetic_structure_factor,omitempty" json:"ihj_magnetic_structure_factor,omitempty"`
	MagneticAFMFactor       *float64 `yaml:"ihj_magnetic_afm_factor,omitempty" json:"ihj_magnetic_afm_factor,omitempty"`
	OrderedPhase            string   `yaml:"ordered_phase,omitempty" json:"ordered_phase,omitempty"`
	DisorderedPhase         string   `yaml:"disordered_phase,omitempty" json:"disordered_phase,omitempty"`
}

// Magnetic reports the Inden-Hillert-Jarl structure factor p and the
// antiferromagnetic factor. ok is false unless both are declared.
func (h ModelHints) Magnetic() (structureFactor, afmFactor float64, ok bool) {
	if h.MagneticStructureFactor == nil || h.MagneticAFMFactor == nil {
		return 0, 0, false
	}
	return *h.MagneticStructureFactor, *h.MagneticAFMFactor, true
}

// OrderDisorder reports the ordered/disordered phase pair, if declared.
func (h ModelHints) OrderDisorder() (ordered, disordered string, ok bool) {
	if h.OrderedPhase == "" || h.DisorderedPhase == "" {
		return "", "", false
	}
	return h.OrderedPhase, h.DisorderedPhase, true
}

// WithMagnetic returns a copy of h declaring IHJ magnetic ordering.
func (h ModelHints) WithMagnetic(structureFactor, afmFactor float64) ModelHints {
	h.MagneticStructureFactor = &structureFactor
	h.MagneticAFMFactor = &afmFactor
	return h
}

// WithOrderDisorder returns a copy of h declaring an ordered/disordered pair.
func (h ModelHints) WithOrderDisorder(ordered, disordered string) ModelHints {
	h.OrderedPhase = strings.ToUpper(ordered)
	h.DisorderedPhase = strings.ToUpper(disordered)
	return h
}

// IsOrdered reports whether p is the ordered member of its pair.
func (p Phase) IsOrdered() bool {
	ordered, _, ok := p.Hints.OrderDisorder()
	return ok && ordered == p.Name
}

// Validate checks the shape of p.
func (p Phase) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: phase without a name", ErrInvalidRecord)
	}
	if len(p.Sublattices) == 0 || len(p.Sublattices) != len(p.Constituents) {
		return fmt.Errorf("%w: phase %s has %d site ratios for %d sublattices",
			ErrInvalidRecord, p.Name, len(p.Sublattices), len(p.Constituents))
	}
	for i, subl := range p.Constituents {
		if len(subl) == 0 {
			return fmt.Errorf("%w: phase %s sublattice %d is empty", ErrInvalidRecord, p.Name, i)
		}
	}
	return nil
}

func (p Phase) normalized() Phase {
	out := Phase{
		Name:         strings.ToUpper(p.Name),
		Sublattices:  append([]float64(nil), p.Sublattices...),
		Constituents: make([][]string, len(p.Constituents)),
		Hints:        p.Hints,
	}
	for i, subl := range p.Constituents {
		out.Constituents[i] = upperAll(subl)
	}
	out.Hints.OrderedPhase = strings.ToUpper(out.Hints.OrderedPhase)
	out.Hints.DisorderedPhase = strings.ToUpper(out.Hints.DisorderedPhase)
	return out
}

func upperAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}
