package hm

// Env represents a type environment: a mapping from identifier to type
// scheme (spec §3, "Environments"). Lexical nesting is modeled by chaining:
// a child Env's Add writes only to the child and its SchemeOf falls back to
// the parent (see pkg/lumen's concrete TypeEnv).
type Env interface {
	SchemeOf(name string) (*Scheme, bool)
	Clone() Env
	Add(name string, scheme *Scheme) Env
	Remove(name string) Env
	FreeTypeVar() TypeVarSet
	Apply(subs Subs) Substitutable
}

// SimpleEnv is a flat, single-frame Env implementation.
type SimpleEnv struct {
	schemes map[string]*Scheme
}

// NewSimpleEnv creates a new, empty SimpleEnv.
func NewSimpleEnv() *SimpleEnv {
	return &SimpleEnv{schemes: make(map[string]*Scheme)}
}

// SchemeOf returns the scheme bound to name, if any.
func (env *SimpleEnv) SchemeOf(name string) (*Scheme, bool) {
	scheme, exists := env.schemes[name]
	return scheme, exists
}

// Clone creates a deep copy of the environment.
func (env *SimpleEnv) Clone() Env {
	newEnv := NewSimpleEnv()
	for name, scheme := range env.schemes {
		newEnv.schemes[name] = scheme.Clone()
	}
	return newEnv
}

// Add binds name to scheme, returning the environment for chaining.
func (env *SimpleEnv) Add(name string, scheme *Scheme) Env {
	env.schemes[name] = scheme
	return env
}

// Remove removes a binding from the environment.
func (env *SimpleEnv) Remove(name string) Env {
	newEnv := NewSimpleEnv()
	for n, scheme := range env.schemes {
		if n != name {
			newEnv.schemes[n] = scheme
		}
	}
	return newEnv
}

// FreeTypeVar returns the free type and row variables across every scheme
// in the environment.
func (env *SimpleEnv) FreeTypeVar() TypeVarSet {
	ftvs := make(TypeVarSet)
	for _, scheme := range env.schemes {
		for tv := range scheme.FreeTypeVar() {
			ftvs[tv] = true
		}
	}
	return ftvs
}

// Apply applies a substitution to every scheme in the environment.
func (env *SimpleEnv) Apply(subs Subs) Substitutable {
	newEnv := NewSimpleEnv()
	for name, scheme := range env.schemes {
		newEnv.schemes[name] = scheme.Apply(subs).(*Scheme)
	}
	return newEnv
}
