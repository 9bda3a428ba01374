package database

import "errors"

// ErrPhaseNotFound is returned by Phase when no phase has the given name.
var ErrPhaseNotFound = errors.New("database: phase not found")

// ErrInvalidRecord marks a phase or parameter record that cannot be stored,
// e.g. a sublattice count that does not match the site ratios.
var ErrInvalidRecord = errors.New("database: invalid record")
