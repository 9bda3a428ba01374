package database

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/njchilds90/gocalphad/expr"
)

// Database is the read-only view the energy model queries.
type Database interface {
	// Phase looks up a phase by upper-cased name.
	Phase(name string) (Phase, error)
	// Symbols returns the global symbol table. Callers must not modify it.
	Symbols() map[string]expr.Expr
	// Search returns matching records in insertion order.
	Search(q Query) []Parameter
}

// Memory is an in-memory Database.
type Memory struct {
	mu         sync.RWMutex
	phases     map[string]Phase
	phaseOrder []string
	params     []Parameter
	symbols    map[string]expr.Expr
}

var _ Database = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		phases:  map[string]Phase{},
		symbols: map[string]expr.Expr{},
	}
}

// AddPhase stores p, upper-casing its names. A later phase with the same
// name replaces the earlier one.
func (m *Memory) AddPhase(p Phase) error {
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.phases[p.Name]; !ok {
		m.phaseOrder = append(m.phaseOrder, p.Name)
	}
	m.phases[p.Name] = p
	return nil
}

// AddParameter appends p, upper-casing names and species.
func (m *Memory) AddParameter(p Parameter) error {
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = append(m.params, p)
	return nil
}

// AddSymbol defines or replaces a named symbol. Names referenced by value
// are upper-cased like name.
func (m *Memory) AddSymbol(name string, value expr.Expr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols[strings.ToUpper(name)] = NormalizeValue(value)
}

func (m *Memory) Phase(name string) (Phase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.phases[strings.ToUpper(name)]
	if !ok {
		return Phase{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, strings.ToUpper(name))
	}
	return p, nil
}

// PhaseNames lists phases in insertion order.
func (m *Memory) PhaseNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.phaseOrder...)
}

func (m *Memory) Symbols() map[string]expr.Expr {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.symbols
}

// SymbolNames lists symbol names sorted.
func (m *Memory) SymbolNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.symbols))
	for n := range m.symbols {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *Memory) Search(q Query) []Parameter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Parameter
	for _, p := range m.params {
		if q.Match(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Parameters returns every record in insertion order.
func (m *Memory) Parameters() []Parameter { return m.Search(Query{}) }
