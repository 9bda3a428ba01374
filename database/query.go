package database

import (
	"fmt"
	"strings"
)

// Field names a parameter record field a query can test.
type Field string

const (
	FieldPhaseName        Field = "phase_name"
	FieldParameterType    Field = "parameter_type"
	FieldConstituentArray Field = "constituent_array"
	FieldParameterOrder   Field = "parameter_order"
)

type queryOp int

const (
	opEq queryOp = iota
	opOneOf
	opTest
	opAnd
	opOr
)

// Query is a predicate over parameter records built from field clauses
// combined with And/Or. The zero Query matches everything.
type Query struct {
	op       queryOp
	field    Field
	values   []any
	test     func(any) bool
	children []Query
}

// Clause starts a predicate on one field.
type Clause struct{ field Field }

// Where starts a clause on f.
func Where(f Field) Clause { return Clause{field: f} }

// Eq matches records whose field equals v.
func (c Clause) Eq(v any) Query {
	return Query{op: opEq, field: c.field, values: []any{v}}
}

// OneOf matches records whose field equals any of vs.
func (c Clause) OneOf(vs ...any) Query {
	return Query{op: opOneOf, field: c.field, values: vs}
}

// Test matches records for which fn returns true on the field value.
func (c Clause) Test(fn func(any) bool) Query {
	return Query{op: opTest, field: c.field, test: fn}
}

// ConstituentsMatch is a typed Test on the constituent array.
func ConstituentsMatch(fn func(ConstituentArray) bool) Query {
	return Where(FieldConstituentArray).Test(func(v any) bool {
		ca, ok := v.(ConstituentArray)
		return ok && fn(ca)
	})
}

// And matches when every query matches.
func And(qs ...Query) Query { return Query{op: opAnd, children: qs} }

// Or matches when any query matches.
func Or(qs ...Query) Query { return Query{op: opOr, children: qs} }

func (q Query) And(o Query) Query { return And(q, o) }
func (q Query) Or(o Query) Query  { return Or(q, o) }

// Match evaluates q against p.
func (q Query) Match(p Parameter) bool {
	switch q.op {
	case opAnd:
		for _, c := range q.children {
			if !c.Match(p) {
				return false
			}
		}
		return true
	case opOr:
		for _, c := range q.children {
			if c.Match(p) {
				return true
			}
		}
		return false
	case opTest:
		return q.test(p.Field(q.field))
	}
	// opEq and opOneOf; a zero Query has opEq with no values.
	if q.field == "" {
		return true
	}
	got := p.Field(q.field)
	for _, v := range q.values {
		if fieldEqual(got, v) {
			return true
		}
	}
	return false
}

func (q Query) String() string {
	switch q.op {
	case opAnd, opOr:
		sep := " & "
		if q.op == opOr {
			sep = " | "
		}
		parts := make([]string, len(q.children))
		for i, c := range q.children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	case opTest:
		return fmt.Sprintf("%s.test()", q.field)
	case opOneOf:
		return fmt.Sprintf("%s in %v", q.field, q.values)
	}
	if q.field == "" {
		return "true"
	}
	return fmt.Sprintf("%s == %v", q.field, q.values[0])
}

// Field returns the value of f on p.
func (p Parameter) Field(f Field) any {
	switch f {
	case FieldPhaseName:
		return p.PhaseName
	case FieldParameterType:
		return p.Type
	case FieldConstituentArray:
		return p.Constituents
	case FieldParameterOrder:
		return p.Order
	}
	return nil
}

func fieldEqual(a, b any) bool {
	switch av := a.(type) {
	case ConstituentArray:
		switch bv := b.(type) {
		case ConstituentArray:
			return av.Equal(bv)
		case [][]string:
			return av.Equal(ConstituentArray(bv))
		}
		return false
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	}
	return false
}
