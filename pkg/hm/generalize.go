package hm

// Fresher generates fresh type variables. Implementations hold a
// process-local counter; a single Inferencer owns exactly one Fresher for
// type variables and a separate one (see RowFresher) for row variables, so
// the two id spaces never collide (spec invariant: "separate counters").
type Fresher interface {
	Fresh() TypeVariable
}

// RowFresher generates fresh row variables.
type RowFresher interface {
	FreshRow() RowVariable
}

// TypeVarFresher is a simple monotonically increasing Fresher.
type TypeVarFresher struct {
	counter int
}

// NewTypeVarFresher creates a new TypeVarFresher.
func NewTypeVarFresher() *TypeVarFresher {
	return &TypeVarFresher{}
}

// Fresh returns a new, never-before-seen TypeVariable.
func (f *TypeVarFresher) Fresh() TypeVariable {
	tv := TypeVariable(f.counter)
	f.counter++
	return tv
}

// RowVarFresher is a simple monotonically increasing RowFresher, using its
// own counter independent of any TypeVarFresher.
type RowVarFresher struct {
	counter int
}

// NewRowVarFresher creates a new RowVarFresher.
func NewRowVarFresher() *RowVarFresher {
	return &RowVarFresher{}
}

// FreshRow returns a new, never-before-seen RowVariable.
func (f *RowVarFresher) FreshRow() RowVariable {
	rv := RowVariable(f.counter)
	f.counter++
	return rv
}

// Generalize returns a scheme quantifying exactly those type-variable ids
// free in t but not free in env. Row variables are never quantified (spec
// §9: "schemes quantify only type variables").
func Generalize(env Env, t Type) *Scheme {
	envFtvs := env.FreeTypeVar()
	typeFtvs := t.FreeTypeVar()

	var quantified []TypeVariable
	for _, tv := range typeFtvs.TypeVars() {
		if !envFtvs.Contains(tv) {
			quantified = append(quantified, tv)
		}
	}
	return NewScheme(quantified, t)
}

// Instantiate produces a fresh instance of a scheme: every quantified
// variable is replaced by a fresh type variable.
func Instantiate(fresh Fresher, scheme *Scheme) Type {
	if len(scheme.tvs) == 0 {
		return scheme.t
	}
	subs := NewSubs()
	for _, tv := range scheme.tvs {
		subs.AddType(tv, fresh.Fresh())
	}
	return scheme.t.Apply(subs).(Type)
}
