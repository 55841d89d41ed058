package hm

import (
	"fmt"
	"slices"
	"strings"
)

// Scheme represents a type scheme: a type universally quantified over a set
// of type variables. Row variables are never quantified (spec §9): a scheme
// only ever closes over TypeVariables.
type Scheme struct {
	tvs []TypeVariable
	t   Type
}

// NewScheme creates a new type scheme.
func NewScheme(tvs []TypeVariable, t Type) *Scheme {
	return &Scheme{tvs: tvs, t: t}
}

// Type returns the underlying type and whether the scheme is monomorphic
// (has no quantified variables).
func (s *Scheme) Type() (Type, bool) {
	return s.t, len(s.tvs) == 0
}

// TypeVars returns the quantified type variables.
func (s *Scheme) TypeVars() []TypeVariable {
	return s.tvs
}

// Apply applies a substitution to a scheme, leaving bound (quantified)
// variables untouched.
func (s *Scheme) Apply(subs Subs) Substitutable {
	filtered := NewSubs()
	for tv, t := range subs.Types {
		if !slices.Contains(s.tvs, tv) {
			filtered.Types[tv] = t
		}
	}
	for rv, img := range subs.Rows {
		filtered.Rows[rv] = img
	}
	return &Scheme{
		tvs: s.tvs,
		t:   s.t.Apply(filtered).(Type),
	}
}

// FreeTypeVar returns the free type and row variables in the scheme (i.e.
// those of the body not bound by the quantifier list).
func (s *Scheme) FreeTypeVar() TypeVarSet {
	ftvs := s.t.FreeTypeVar()
	for _, tv := range s.tvs {
		delete(ftvs, varKey{kindType, int(tv)})
	}
	return ftvs
}

// Clone creates a copy of the scheme.
func (s *Scheme) Clone() *Scheme {
	tvs := make([]TypeVariable, len(s.tvs))
	copy(tvs, s.tvs)
	return &Scheme{tvs: tvs, t: s.t}
}

func (s *Scheme) String() string {
	if len(s.tvs) == 0 {
		return s.t.String()
	}
	names := make([]string, len(s.tvs))
	for i, tv := range s.tvs {
		names[i] = tv.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), s.t.String())
}
