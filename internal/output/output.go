// Package output renders model expressions for the CLI and HTTP front ends.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/njchilds90/gocalphad/expr"
	"github.com/njchilds90/gocalphad/model"
)

// Formats lists the accepted values of Render's format argument.
var Formats = []string{"string", "latex", "json"}

// Render returns e as a string for "string" and "latex", or as its JSON
// tree for "json". An empty format means "string".
func Render(e expr.Expr, format string) (interface{}, error) {
	switch format {
	case "", "string":
		return e.String(), nil
	case "latex":
		return e.LaTeX(), nil
	case "json":
		return expr.JSONTree(e), nil
	}
	return nil, fmt.Errorf("unknown format %q: must be one of %s", format, strings.Join(Formats, ", "))
}

// ParseParameters parses NAME -> infix expression overrides. Names are
// kept as given; the model upper-cases them.
func ParseParameters(src map[string]string) (map[string]expr.Expr, error) {
	if len(src) == 0 {
		return nil, nil
	}
	out := make(map[string]expr.Expr, len(src))
	for _, name := range sortedKeys(src) {
		e, err := expr.Parse(src[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		out[name] = e
	}
	return out, nil
}

// ParseAssignments splits NAME=VALUE pairs as given on the command line.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q: want NAME=VALUE", p)
		}
		out[name] = value
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Report is the rendered form of a built model.
type Report struct {
	Phase      string                 `json:"phase"`
	Components []string               `json:"components"`
	Variables  []string               `json:"variables"`
	Energy     interface{}            `json:"energy"`
	Gradient   map[string]interface{} `json:"gradient,omitempty"`
	Value      *float64               `json:"value,omitempty"`
}

// Describe renders m in format. With gradient set, the partial derivative
// of the energy with respect to every variable is rendered too.
func Describe(m *model.Model, format string, gradient bool) (Report, error) {
	energy, err := Render(m.Energy(), format)
	if err != nil {
		return Report{}, err
	}
	r := Report{
		Phase:      m.Phase(),
		Components: m.Components(),
		Variables:  VariableNames(m),
		Energy:     energy,
	}
	if !gradient {
		return r, nil
	}
	grad := expr.Gradient(m.Energy(), r.Variables)
	r.Gradient = make(map[string]interface{}, len(grad))
	for i, name := range r.Variables {
		if r.Gradient[name], err = Render(grad[i], format); err != nil {
			return Report{}, err
		}
	}
	return r, nil
}

// VariableNames lists the state variables followed by the site fractions
// of m, by symbol name.
func VariableNames(m *model.Model) []string {
	var names []string
	for _, sv := range m.StateVariables() {
		names = append(names, sv.Name)
	}
	for _, sf := range m.Variables() {
		names = append(names, sf.Name())
	}
	return names
}

// WriteText prints r one line per expression. Report.Energy and the
// gradient entries must have been rendered as strings.
func WriteText(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "G(%s; %s) = %v\n", r.Phase, strings.Join(r.Components, ","), r.Energy); err != nil {
		return err
	}
	for _, name := range r.Variables {
		g, ok := r.Gradient[name]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "dG/d%s = %v\n", name, g); err != nil {
			return err
		}
	}
	if r.Value != nil {
		if _, err := fmt.Fprintf(w, "value = %.15g\n", *r.Value); err != nil {
			return err
		}
	}
	return nil
}
