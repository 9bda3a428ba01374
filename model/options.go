package model

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
)

// DefaultSymbolDepth is the number of substitution passes applied to the
// symbol table before it is used.
const DefaultSymbolDepth = 2

type options struct {
	log         zerolog.Logger
	parameters  map[string]expr.Expr
	symbolDepth int
	parallel    bool
}

// Option configures New.
type Option func(*options)

func defaultOptions() options {
	return options{log: zerolog.Nop(), symbolDepth: DefaultSymbolDepth}
}

// WithLogger sends construction events to l at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithParameters overrides database symbols by name. Names are
// case-insensitive, in keys and in the names values reference; an override
// replaces a database symbol of the same name.
func WithParameters(params map[string]expr.Expr) Option {
	return func(o *options) {
		if o.parameters == nil {
			o.parameters = make(map[string]expr.Expr, len(params))
		}
		for name, v := range params {
			o.parameters[strings.ToUpper(name)] = database.NormalizeValue(v)
		}
	}
}

// WithSymbolDepth sets how many levels of symbol-in-symbol references are
// resolved. Values below 1 are ignored.
func WithSymbolDepth(depth int) Option {
	return func(o *options) {
		if depth >= 1 {
			o.symbolDepth = depth
		}
	}
}

// WithParallel builds the independent contributions concurrently. The
// result is identical to a sequential build.
func WithParallel(on bool) Option {
	return func(o *options) {
		o.parallel = on
	}
}
