// Package hm implements a generic Hindley-Milner substrate: type variables,
// row variables, substitutions, schemes, and unification. It knows nothing
// about any particular surface language; pkg/lumen builds concrete types
// (numbers, arrays, records, functions) on top of the Type interface defined
// here.
package hm

import "fmt"

// Type represents all possible type constructors.
type Type interface {
	Substitutable
	// Name returns a short, human-readable constructor name.
	Name() string
	Eq(Type) bool
	fmt.Stringer
}

// Substitutable is any type that can have substitutions applied and knows
// its own free type and row variables.
type Substitutable interface {
	Apply(Subs) Substitutable
	FreeTypeVar() TypeVarSet
}

// TypeVariable represents a type variable. Ids are unique for the lifetime
// of a single parse+infer run (see Fresher).
type TypeVariable int

func (tv TypeVariable) Name() string { return tv.String() }

func (tv TypeVariable) Apply(subs Subs) Substitutable {
	if t, exists := subs.Types[tv]; exists {
		return t
	}
	return tv
}

func (tv TypeVariable) FreeTypeVar() TypeVarSet {
	return NewTypeVarSet(tv)
}

func (tv TypeVariable) Eq(other Type) bool {
	ot, ok := other.(TypeVariable)
	return ok && tv == ot
}

func (tv TypeVariable) String() string {
	return fmt.Sprintf("t%d", int(tv))
}

// RowVariable represents a row variable: the tail of an open record row,
// standing for "and any other fields". Row variables live in their own id
// space, separate from TypeVariable ids, per the spec's invariant that type-
// and row-variable counters never collide.
type RowVariable int

func (rv RowVariable) Name() string { return rv.String() }

func (rv RowVariable) Apply(subs Subs) Substitutable {
	if r, exists := subs.Rows[rv]; exists {
		return r
	}
	return rv
}

func (rv RowVariable) FreeTypeVar() TypeVarSet {
	return NewRowVarSet(rv)
}

func (rv RowVariable) String() string {
	return fmt.Sprintf("r%d", int(rv))
}
