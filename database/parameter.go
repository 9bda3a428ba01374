package database

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gocalphad/expr"
)

// Wildcard in a constituent array stands for every active species of that
// sublattice.
const Wildcard = "*"

// Parameter types used by the energy model.
const (
	TypeG     = "G"
	TypeL     = "L"
	TypeBMAGN = "BMAGN"
	TypeTC    = "TC"
)

// ConstituentArray has one species list per sublattice. A single entry is an
// endmember position; two or more entries interact on that sublattice.
type ConstituentArray [][]string

// Equal compares element-wise; species order matters.
func (c ConstituentArray) Equal(o ConstituentArray) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if len(c[i]) != len(o[i]) {
			return false
		}
		for j := range c[i] {
			if c[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}

// Clone deep-copies c.
func (c ConstituentArray) Clone() ConstituentArray {
	out := make(ConstituentArray, len(c))
	for i, subl := range c {
		out[i] = append([]string(nil), subl...)
	}
	return out
}

// String renders c in the AL,CR:VA notation.
func (c ConstituentArray) String() string {
	parts := make([]string, len(c))
	for i, subl := range c {
		parts[i] = strings.Join(subl, ",")
	}
	return strings.Join(parts, ":")
}

// Parameter is one model parameter record.
type Parameter struct {
	PhaseName        string
	Type             string
	Constituents     ConstituentArray
	Order            int
	Value            expr.Expr
	Reference        string
	DiffusingSpecies string
}

// Equal reports whether p and o are the same record, value included.
func (p Parameter) Equal(o Parameter) bool {
	if p.PhaseName != o.PhaseName || p.Type != o.Type || p.Order != o.Order ||
		p.Reference != o.Reference || p.DiffusingSpecies != o.DiffusingSpecies {
		return false
	}
	if !p.Constituents.Equal(o.Constituents) {
		return false
	}
	if p.Value == nil || o.Value == nil {
		return p.Value == nil && o.Value == nil
	}
	return p.Value.Equal(o.Value)
}

// Clone deep-copies the record. Values are immutable and shared.
func (p Parameter) Clone() Parameter {
	p.Constituents = p.Constituents.Clone()
	return p
}

func (p Parameter) String() string {
	return fmt.Sprintf("%s(%s,%s;%d)", p.Type, p.PhaseName, p.Constituents, p.Order)
}

// Validate checks the record can be stored.
func (p Parameter) Validate() error {
	switch {
	case p.PhaseName == "":
		return fmt.Errorf("%w: parameter without phase", ErrInvalidRecord)
	case p.Type == "":
		return fmt.Errorf("%w: %s has no type", ErrInvalidRecord, p)
	case len(p.Constituents) == 0:
		return fmt.Errorf("%w: %s has no constituents", ErrInvalidRecord, p)
	case p.Order < 0:
		return fmt.Errorf("%w: %s has a negative order", ErrInvalidRecord, p)
	case p.Value == nil:
		return fmt.Errorf("%w: %s has no value", ErrInvalidRecord, p)
	}
	for i, subl := range p.Constituents {
		if len(subl) == 0 {
			return fmt.Errorf("%w: %s sublattice %d is empty", ErrInvalidRecord, p, i)
		}
	}
	return nil
}

func (p Parameter) normalized() Parameter {
	p = p.Clone()
	p.Value = NormalizeValue(p.Value)
	p.PhaseName = strings.ToUpper(p.PhaseName)
	p.Type = strings.ToUpper(p.Type)
	for i, subl := range p.Constituents {
		p.Constituents[i] = upperAll(subl)
	}
	return p
}

// NormalizeValue upper-cases the untagged symbols of e, the form symbol
// names are stored under. Tagged symbols are left alone.
func NormalizeValue(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	rename := map[string]expr.Expr{}
	for _, s := range expr.Atoms(e) {
		if s.Tag() != nil {
			continue
		}
		if name := strings.ToUpper(s.Name()); name != s.Name() {
			rename[s.Name()] = expr.S(name)
		}
	}
	return expr.Substitute(e, rename)
}
