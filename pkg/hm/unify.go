package hm

import "fmt"

// UnificationError is returned when two types cannot be made equal.
type UnificationError struct {
	Have, Want Type
}

func (e UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s and %s", e.Have, e.Want)
}

// OccursCheckError is returned when binding a type variable would construct
// an infinite type (e.g. a = a -> b).
type OccursCheckError struct {
	Var TypeVariable
	In  Type
}

func (e OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}

// OccursIn reports whether tv is free in t. The caller (pkg/lumen's
// unification, which knows about concrete record types) is responsible for
// suppressing this check for record types per the spec's documented,
// intentional exception (spec §4.4.5/§9).
func OccursIn(tv TypeVariable, t Type) bool {
	return t.FreeTypeVar().Contains(tv)
}

// BindTypeVar produces the singleton substitution tv -> t, after an occurs
// check. Binding a variable to itself is a no-op.
func BindTypeVar(tv TypeVariable, t Type) (Subs, error) {
	if ot, ok := t.(TypeVariable); ok && tv == ot {
		return NewSubs(), nil
	}
	if OccursIn(tv, t) {
		return Subs{}, OccursCheckError{Var: tv, In: t}
	}
	subs := NewSubs()
	subs.AddType(tv, t)
	return subs, nil
}

// BindRowVar produces the singleton substitution rv -> other. Row variables
// only ever unify with other row variables (spec §4.4.4); binding to self is
// a no-op.
func BindRowVar(rv, other RowVariable) Subs {
	subs := NewSubs()
	if rv == other {
		return subs
	}
	subs.AddRow(rv, other)
	return subs
}
