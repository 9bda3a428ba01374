package expr

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON renders e as its JSON tree form. Symbol tags are not serialized.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// JSONTree returns the JSON tree form of e as generic maps.
func JSONTree(e Expr) map[string]interface{} { return e.toJSON() }

// UnmarshalJSON decodes a JSON tree document.
func UnmarshalJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FromJSON(m)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExpr := func(field string) (Expr, error) {
		m, err := subObj(field)
		if err != nil {
			return nil, err
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}

	subExprArray := func(field string) ([]Expr, error) {
		objs, err := subObjArray(field)
		if err != nil {
			return nil, err
		}
		out := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !knownFuncs[name] {
			return nil, fmt.Errorf("func: unknown function %q", name)
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return funcOf(name, arg).Simplify(), nil

	case "rel":
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		if _, ok := relLaTeX[op]; !ok {
			return nil, fmt.Errorf("rel: unknown operator %q", op)
		}
		lhs, err := subExpr("lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := subExpr("rhs")
		if err != nil {
			return nil, err
		}
		return relOf(op, lhs, rhs), nil

	case "bool":
		b, ok := data["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("bool: 'value' must be a boolean")
		}
		return BoolOf(b), nil

	case "piecewise":
		objs, err := subObjArray("branches")
		if err != nil {
			return nil, err
		}
		branches := make([]Branch, len(objs))
		for i, o := range objs {
			vm, ok1 := o["value"].(map[string]interface{})
			cm, ok2 := o["cond"].(map[string]interface{})
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("piecewise: branches[%d] needs 'value' and 'cond' objects", i)
			}
			value, err := FromJSON(vm)
			if err != nil {
				return nil, fmt.Errorf("piecewise: branches[%d].value: %w", i, err)
			}
			cond, err := FromJSON(cm)
			if err != nil {
				return nil, fmt.Errorf("piecewise: branches[%d].cond: %w", i, err)
			}
			branches[i] = Case(value, cond)
		}
		return PiecewiseOf(branches...), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
