package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDegreesOfFreedom is returned when a sublattice of the phase holds
	// none of the requested components. The concrete error is a *DofError.
	ErrDegreesOfFreedom = errors.New("model: sublattice has no active components")

	// ErrUnsupportedInteraction marks an interaction among more than three
	// species on one sublattice.
	ErrUnsupportedInteraction = errors.New("model: interactions of more than three species are not supported")

	// ErrInvalidParameterOrder marks a ternary parameter whose order does
	// not index one of its three species.
	ErrInvalidParameterOrder = errors.New("model: invalid parameter order")

	// ErrMissingSpecies is returned when a mole fraction is requested for a
	// species absent from every counted sublattice.
	ErrMissingSpecies = errors.New("model: species not found in constituents")

	// ErrUnresolvedSymbol is returned when the energy still references a
	// symbol after resolution: a chain deeper than the resolution depth, a
	// cycle, or a name that is not defined at all.
	ErrUnresolvedSymbol = errors.New("model: unresolved symbol")
)

// DofError names the sublattice that left the phase without degrees of
// freedom.
type DofError struct {
	Phase        string
	Sublattice   int
	Constituents []string
	Components   []string
}

func (e *DofError) Error() string {
	return fmt.Sprintf("%s: sublattice %d [%s] has no components in [%s]",
		e.Phase, e.Sublattice, strings.Join(e.Constituents, ", "), strings.Join(e.Components, ", "))
}

func (e *DofError) Unwrap() error { return ErrDegreesOfFreedom }
