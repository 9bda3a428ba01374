package model

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gocalphad/expr"
)

// resolveSymbols merges overrides into the database symbol table and then
// substitutes the merged table into every value depth times. Record values
// get one more lookup when they are built, so a symbol whose value nests up
// to depth further references resolves fully. Deeper chains are left in
// place for checkResolved to report.
func resolveSymbols(db, overrides map[string]expr.Expr, depth int) map[string]expr.Expr {
	base := make(map[string]expr.Expr, len(db)+len(overrides))
	for name, v := range db {
		base[name] = v
	}
	for name, v := range overrides {
		base[name] = v
	}
	out := base
	for i := 0; i < depth; i++ {
		next := make(map[string]expr.Expr, len(out))
		for name, v := range out {
			next[name] = expr.Substitute(v, base)
		}
		out = next
	}
	return out
}

// checkResolved fails if e has a symbol that is neither a site fraction nor
// a state variable: a table key past the resolution depth, or a name no
// table defines.
func checkResolved(e expr.Expr) error {
	var left []string
	for _, s := range expr.Atoms(e) {
		if s.Tag() == nil {
			left = append(left, s.Name())
		}
	}
	if len(left) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnresolvedSymbol, strings.Join(left, ", "))
}
