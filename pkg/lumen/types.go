package lumen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumen-lang/lumen/pkg/hm"
)

// Concrete hm.Type implementations (spec §4.3 "Types"). Arrays and dicts are
// invariant in their element types; records carry a row that may be open
// (polymorphic tail) or closed.

// NumberType is the singleton number type.
type NumberType struct{}

func (NumberType) Name() string                  { return "Number" }
func (NumberType) String() string                 { return "Number" }
func (NumberType) Apply(hm.Subs) hm.Substitutable { return NumberType{} }
func (NumberType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (NumberType) Eq(other hm.Type) bool           { _, ok := other.(NumberType); return ok }

// StringType is the singleton string type.
type StringType struct{}

func (StringType) Name() string                  { return "String" }
func (StringType) String() string                 { return "String" }
func (StringType) Apply(hm.Subs) hm.Substitutable { return StringType{} }
func (StringType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (StringType) Eq(other hm.Type) bool           { _, ok := other.(StringType); return ok }

// BooleanType is the singleton boolean type.
type BooleanType struct{}

func (BooleanType) Name() string                  { return "Boolean" }
func (BooleanType) String() string                 { return "Boolean" }
func (BooleanType) Apply(hm.Subs) hm.Substitutable { return BooleanType{} }
func (BooleanType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (BooleanType) Eq(other hm.Type) bool           { _, ok := other.(BooleanType); return ok }

// NullType is the singleton type of the null literal.
type NullType struct{}

func (NullType) Name() string                  { return "Null" }
func (NullType) String() string                 { return "Null" }
func (NullType) Apply(hm.Subs) hm.Substitutable { return NullType{} }
func (NullType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (NullType) Eq(other hm.Type) bool           { _, ok := other.(NullType); return ok }

// UndefinedType is the singleton type of the undefined literal.
type UndefinedType struct{}

func (UndefinedType) Name() string                  { return "Undefined" }
func (UndefinedType) String() string                 { return "Undefined" }
func (UndefinedType) Apply(hm.Subs) hm.Substitutable { return UndefinedType{} }
func (UndefinedType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (UndefinedType) Eq(other hm.Type) bool           { _, ok := other.(UndefinedType); return ok }

// UnitType is the type of an `if` without an `else` branch and of the
// `unit` annotation.
type UnitType struct{}

func (UnitType) Name() string                  { return "Unit" }
func (UnitType) String() string                 { return "Unit" }
func (UnitType) Apply(hm.Subs) hm.Substitutable { return UnitType{} }
func (UnitType) FreeTypeVar() hm.TypeVarSet      { return hm.NewTypeVarSet() }
func (UnitType) Eq(other hm.Type) bool           { _, ok := other.(UnitType); return ok }

// ArrayType is `[T]`, invariant in T (spec §4.3: "arrays... are invariant").
type ArrayType struct {
	Elem hm.Type
}

func (a ArrayType) Name() string { return "Array" }
func (a ArrayType) String() string { return fmt.Sprintf("[%s]", a.Elem) }
func (a ArrayType) Apply(subs hm.Subs) hm.Substitutable {
	return ArrayType{Elem: applyType(subs, a.Elem)}
}
func (a ArrayType) FreeTypeVar() hm.TypeVarSet { return a.Elem.FreeTypeVar() }
func (a ArrayType) Eq(other hm.Type) bool {
	ot, ok := other.(ArrayType)
	return ok && a.Elem.Eq(ot.Elem)
}

// DictType is `{[K]: V}`, invariant in both K and V.
type DictType struct {
	Key   hm.Type
	Value hm.Type
}

func (d DictType) Name() string { return "Dict" }
func (d DictType) String() string { return fmt.Sprintf("{[%s]: %s}", d.Key, d.Value) }
func (d DictType) Apply(subs hm.Subs) hm.Substitutable {
	return DictType{Key: applyType(subs, d.Key), Value: applyType(subs, d.Value)}
}
func (d DictType) FreeTypeVar() hm.TypeVarSet {
	return d.Key.FreeTypeVar().Union(d.Value.FreeTypeVar())
}
func (d DictType) Eq(other hm.Type) bool {
	ot, ok := other.(DictType)
	return ok && d.Key.Eq(ot.Key) && d.Value.Eq(ot.Value)
}

// FunctionType is an n-ary positional function type (spec §4.3: "functions
// are n-ary and positional, never curried"). Parameters are contravariant
// and the return covariant under assignable, never under unify.
type FunctionType struct {
	Params []hm.Type
	Ret    hm.Type
}

func (f FunctionType) Name() string { return "Function" }
func (f FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}
func (f FunctionType) Apply(subs hm.Subs) hm.Substitutable {
	params := make([]hm.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = applyType(subs, p)
	}
	return FunctionType{Params: params, Ret: applyType(subs, f.Ret)}
}
func (f FunctionType) FreeTypeVar() hm.TypeVarSet {
	set := f.Ret.FreeTypeVar()
	for _, p := range f.Params {
		set = set.Union(p.FreeTypeVar())
	}
	return set
}
func (f FunctionType) Eq(other hm.Type) bool {
	ot, ok := other.(FunctionType)
	if !ok || len(f.Params) != len(ot.Params) || !f.Ret.Eq(ot.Ret) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Eq(ot.Params[i]) {
			return false
		}
	}
	return true
}

// Row is the field map and optional polymorphic tail of a record type
// (spec §4.3: "Records are row-polymorphic"). A nil Tail means the row is
// closed: exactly these fields, no more.
type Row struct {
	Fields map[string]hm.Type
	Tail   *hm.RowVariable
}

func (r Row) sortedFieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Row) String() string {
	names := r.sortedFieldNames()
	parts := make([]string, 0, len(names)+1)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, r.Fields[name]))
	}
	if r.Tail != nil {
		parts = append(parts, "..."+r.Tail.String())
	}
	return strings.Join(parts, ", ")
}

func (r Row) apply(subs hm.Subs) Row {
	fields := make(map[string]hm.Type, len(r.Fields))
	for name, t := range r.Fields {
		fields[name] = applyType(subs, t)
	}
	tail := r.Tail
	if tail != nil {
		rv := subs.ApplyRow(*tail)
		tail = &rv
	}
	return Row{Fields: fields, Tail: tail}
}

func (r Row) freeTypeVar() hm.TypeVarSet {
	set := hm.NewTypeVarSet()
	for _, t := range r.Fields {
		set = set.Union(t.FreeTypeVar())
	}
	if r.Tail != nil {
		set = set.Union(hm.NewRowVarSet(*r.Tail))
	}
	return set
}

// RecordType wraps a Row as an hm.Type.
type RecordType struct {
	Row Row
}

func (r RecordType) Name() string { return "Record" }
func (r RecordType) String() string { return fmt.Sprintf("{%s}", r.Row) }
func (r RecordType) Apply(subs hm.Subs) hm.Substitutable {
	return RecordType{Row: r.Row.apply(subs)}
}
func (r RecordType) FreeTypeVar() hm.TypeVarSet { return r.Row.freeTypeVar() }
func (r RecordType) Eq(other hm.Type) bool {
	ot, ok := other.(RecordType)
	if !ok || len(r.Row.Fields) != len(ot.Row.Fields) {
		return false
	}
	for name, t := range r.Row.Fields {
		ott, ok := ot.Row.Fields[name]
		if !ok || !t.Eq(ott) {
			return false
		}
	}
	if (r.Row.Tail == nil) != (ot.Row.Tail == nil) {
		return false
	}
	if r.Row.Tail != nil && *r.Row.Tail != *ot.Row.Tail {
		return false
	}
	return true
}

// applyType substitutes through any hm.Type, concrete or variable. Concrete
// composite types implement Apply themselves; this helper exists so
// composite Apply methods (ArrayType, FunctionType, ...) can recurse without
// caring whether the child is a bare hm.TypeVariable or one of ours.
func applyType(subs hm.Subs, t hm.Type) hm.Type {
	applied := t.Apply(subs)
	if typed, ok := applied.(hm.Type); ok {
		return typed
	}
	return t
}
