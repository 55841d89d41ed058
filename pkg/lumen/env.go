package lumen

import (
	"github.com/lumen-lang/lumen/pkg/hm"
)

// TypeEnv is a lexically chained type environment: a flat scheme map plus an
// optional parent, satisfying hm.Env (spec §3, "Environments"). Lookups walk
// outward to the parent on miss.
type TypeEnv struct {
	parent  *TypeEnv
	schemes map[string]*hm.Scheme
}

// NewTypeEnv creates a root type environment with no parent.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{schemes: map[string]*hm.Scheme{}}
}

// Child creates a new scope nested inside e.
func (e *TypeEnv) Child() *TypeEnv {
	return &TypeEnv{parent: e, schemes: map[string]*hm.Scheme{}}
}

func (e *TypeEnv) SchemeOf(name string) (*hm.Scheme, bool) {
	if s, ok := e.schemes[name]; ok {
		return s, true
	}
	if e.parent != nil {
		return e.parent.SchemeOf(name)
	}
	return nil, false
}

// Bind adds name -> scheme in this scope (mutates in place; used while
// building a fresh child scope for a let group or function body).
func (e *TypeEnv) Bind(name string, scheme *hm.Scheme) {
	e.schemes[name] = scheme
}

func (e *TypeEnv) Add(name string, scheme *hm.Scheme) hm.Env {
	child := &TypeEnv{parent: e.parent, schemes: map[string]*hm.Scheme{}}
	for k, v := range e.schemes {
		child.schemes[k] = v
	}
	child.schemes[name] = scheme
	return child
}

func (e *TypeEnv) Remove(name string) hm.Env {
	child := &TypeEnv{parent: e.parent, schemes: map[string]*hm.Scheme{}}
	for k, v := range e.schemes {
		if k != name {
			child.schemes[k] = v
		}
	}
	return child
}

func (e *TypeEnv) Clone() hm.Env {
	child := &TypeEnv{parent: e.parent, schemes: map[string]*hm.Scheme{}}
	for k, v := range e.schemes {
		child.schemes[k] = v
	}
	return child
}

func (e *TypeEnv) FreeTypeVar() hm.TypeVarSet {
	set := hm.NewTypeVarSet()
	for _, s := range e.schemes {
		set = set.Union(s.FreeTypeVar())
	}
	if e.parent != nil {
		set = set.Union(e.parent.FreeTypeVar())
	}
	return set
}

func (e *TypeEnv) Apply(subs hm.Subs) hm.Substitutable {
	child := &TypeEnv{schemes: map[string]*hm.Scheme{}}
	for k, v := range e.schemes {
		child.schemes[k] = v.Apply(subs).(*hm.Scheme)
	}
	if e.parent != nil {
		child.parent = e.parent.Apply(subs).(*TypeEnv)
	}
	return child
}

// RuntimeEnv is the evaluator's lexical scope-frame chain: a flat value map
// plus an optional parent (spec §3, "Environments"; spec §4.5, closures
// capture their defining RuntimeEnv).
type RuntimeEnv struct {
	parent *RuntimeEnv
	values map[string]Value
}

// NewRuntimeEnv creates a root runtime environment with no parent.
func NewRuntimeEnv() *RuntimeEnv {
	return &RuntimeEnv{values: map[string]Value{}}
}

// Child creates a new scope nested inside e.
func (e *RuntimeEnv) Child() *RuntimeEnv {
	return &RuntimeEnv{parent: e, values: map[string]Value{}}
}

// Lookup walks the scope chain outward for name.
func (e *RuntimeEnv) Lookup(name string) (Value, bool) {
	if v, ok := e.values[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Lookup(name)
	}
	return nil, false
}

// Define binds name in this scope, shadowing any outer binding.
func (e *RuntimeEnv) Define(name string, v Value) {
	e.values[name] = v
}

// Set mutates an existing binding in the nearest scope that has it, used
// only to resolve the pending-sentinel recursive-binding mechanism (spec
// §4.5, §9); it never introduces a new binding.
func (e *RuntimeEnv) Set(name string, v Value) bool {
	if _, ok := e.values[name]; ok {
		e.values[name] = v
		return true
	}
	if e.parent != nil {
		return e.parent.Set(name, v)
	}
	return false
}
