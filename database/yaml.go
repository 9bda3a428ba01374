package database

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gocalphad/expr"
)

// Snapshot documents are a plain YAML rendering of a Memory database:
//
//	symbols:
//	  GHSERAL: -7976.15 + 137.093038*T - 24.3671976*T*ln(T)
//	phases:
//	  - name: FCC_A1
//	    sublattices: [1, 1]
//	    constituents: [[AL, NI], [VA]]
//	    hints: {ihj_magnetic_structure_factor: 0.28, ihj_magnetic_afm_factor: -3}
//	parameters:
//	  - {phase: FCC_A1, type: G, constituents: [[AL], [VA]], order: 0, value: GHSERAL}
//
// Values are infix text (see expr.Parse) or an expression JSON tree.
type snapshot struct {
	Symbols    map[string]valueNode `yaml:"symbols,omitempty"`
	Phases     []phaseDoc           `yaml:"phases"`
	Parameters []paramDoc           `yaml:"parameters"`
}

type phaseDoc struct {
	Name         string     `yaml:"name"`
	Sublattices  []float64  `yaml:"sublattices,flow"`
	Constituents [][]string `yaml:"constituents,flow"`
	Hints        ModelHints `yaml:"hints,omitempty"`
}

type paramDoc struct {
	Phase            string     `yaml:"phase"`
	Type             string     `yaml:"type"`
	Constituents     [][]string `yaml:"constituents,flow"`
	Order            int        `yaml:"order"`
	Value            valueNode  `yaml:"value"`
	Reference        string     `yaml:"reference,omitempty"`
	DiffusingSpecies string     `yaml:"diffusing_species,omitempty"`
}

type valueNode struct{ expr expr.Expr }

func (v *valueNode) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		e, err := expr.Parse(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		v.expr = e
		return nil
	case yaml.MappingNode:
		var tree map[string]interface{}
		if err := n.Decode(&tree); err != nil {
			return err
		}
		e, err := expr.FromJSON(tree)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		v.expr = e
		return nil
	}
	return fmt.Errorf("line %d: value must be a scalar or an expression tree", n.Line)
}

// MarshalYAML writes numbers and bare symbols as scalars that Parse reads
// back exactly; everything else as a JSON tree.
func (v valueNode) MarshalYAML() (interface{}, error) {
	switch e := v.expr.(type) {
	case *expr.Num:
		return e.Rat().RatString(), nil
	case *expr.Sym:
		return e.Name(), nil
	}
	return expr.JSONTree(v.expr), nil
}

// LoadYAML reads a snapshot document.
func LoadYAML(r io.Reader) (*Memory, error) {
	var doc snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("database: decode snapshot: %w", err)
	}
	m := NewMemory()
	for name, v := range doc.Symbols {
		if v.expr == nil {
			return nil, fmt.Errorf("%w: symbol %s has no value", ErrInvalidRecord, name)
		}
		m.AddSymbol(name, v.expr)
	}
	for _, p := range doc.Phases {
		if err := m.AddPhase(Phase{
			Name:         p.Name,
			Sublattices:  p.Sublattices,
			Constituents: p.Constituents,
			Hints:        p.Hints,
		}); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Parameters {
		if err := m.AddParameter(Parameter{
			PhaseName:        p.Phase,
			Type:             p.Type,
			Constituents:     p.Constituents,
			Order:            p.Order,
			Value:            p.Value.expr,
			Reference:        p.Reference,
			DiffusingSpecies: p.DiffusingSpecies,
		}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// LoadYAMLFile reads a snapshot from path.
func LoadYAMLFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

// WriteYAML writes m as a snapshot document.
func WriteYAML(w io.Writer, m *Memory) error {
	doc := snapshot{Symbols: map[string]valueNode{}}
	syms := m.Symbols()
	for _, n := range m.SymbolNames() {
		doc.Symbols[n] = valueNode{expr: syms[n]}
	}
	for _, name := range m.PhaseNames() {
		p, err := m.Phase(name)
		if err != nil {
			return err
		}
		doc.Phases = append(doc.Phases, phaseDoc{
			Name:         p.Name,
			Sublattices:  p.Sublattices,
			Constituents: p.Constituents,
			Hints:        p.Hints,
		})
	}
	for _, p := range m.Parameters() {
		doc.Parameters = append(doc.Parameters, paramDoc{
			Phase:            p.PhaseName,
			Type:             p.Type,
			Constituents:     p.Constituents,
			Order:            p.Order,
			Value:            valueNode{expr: p.Value},
			Reference:        p.Reference,
			DiffusingSpecies: p.DiffusingSpecies,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
