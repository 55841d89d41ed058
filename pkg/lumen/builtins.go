package lumen

import (
	"fmt"
	"math"

	"github.com/lumen-lang/lumen/pkg/hm"
)

// BuiltinDef is one entry of the built-in catalog: a declared polymorphic
// scheme and a native implementation that performs its own runtime
// argument-shape checks (spec §6: "Built-in catalog").
type BuiltinDef struct {
	Name   string
	Doc    string
	Scheme *hm.Scheme
	Arity  int
	Impl   BuiltinFn
}

// builtinBuilder is a fluent constructor for a BuiltinDef, in the manner of
// this module's secondary style reference for registering native
// functions: `Builtin(name).Doc(...).Scheme(...).Impl(...)`.
type builtinBuilder struct {
	def *BuiltinDef
}

// Builtin starts building a BuiltinDef named name.
func Builtin(name string) *builtinBuilder {
	return &builtinBuilder{def: &BuiltinDef{Name: name}}
}

func (b *builtinBuilder) Doc(doc string) *builtinBuilder {
	b.def.Doc = doc
	return b
}

// Scheme sets the declared type scheme: body t, universally quantified over
// quantified.
func (b *builtinBuilder) Scheme(t hm.Type, quantified ...hm.TypeVariable) *builtinBuilder {
	b.def.Scheme = hm.NewScheme(quantified, t)
	return b
}

func (b *builtinBuilder) Arity(n int) *builtinBuilder {
	b.def.Arity = n
	return b
}

func (b *builtinBuilder) Impl(fn BuiltinFn) *builtinBuilder {
	b.def.Impl = fn
	return b
}

func (b *builtinBuilder) Build() *BuiltinDef { return b.def }

func tv(n int) hm.TypeVariable { return hm.TypeVariable(n) }

func arityError(name string, want, got int) error {
	return &RuntimeError{Msg: fmt.Sprintf("%s: expected %d argument(s), got %d", name, want, got)}
}

func typeError(name, want string, got Value) error {
	return &RuntimeError{Msg: fmt.Sprintf("%s: expected %s, got %s", name, want, DisplayString(got))}
}

func wantArray(name string, v Value) (*ArrayValue, error) {
	a, ok := v.(*ArrayValue)
	if !ok {
		return nil, typeError(name, "array", v)
	}
	return a, nil
}

func wantDict(name string, v Value) (*DictValue, error) {
	d, ok := v.(*DictValue)
	if !ok {
		return nil, typeError(name, "dictionary", v)
	}
	return d, nil
}

func wantNumber(name string, v Value) (float64, error) {
	n, ok := v.(NumberValue)
	if !ok {
		return 0, typeError(name, "number", v)
	}
	return float64(n), nil
}

func wantString(name string, v Value) (string, error) {
	s, ok := v.(StringValue)
	if !ok {
		return "", typeError(name, "string", v)
	}
	return string(s), nil
}

var builtinCatalog []*BuiltinDef

// Builtins returns the full catalog (spec §6).
func Builtins() []*BuiltinDef {
	return builtinCatalog
}

func init() {
	builtinCatalog = []*BuiltinDef{
		Builtin("length").
			Doc("Returns the number of elements in an array.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}}, Ret: NumberType{}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("length", 1, len(args))
				}
				a, err := wantArray("length", args[0])
				if err != nil {
					return nil, err
				}
				return NumberValue(len(a.Elements)), nil
			}).Build(),

		Builtin("head").
			Doc("Returns the first element of an array.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}}, Ret: tv(0)}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("head", 1, len(args))
				}
				a, err := wantArray("head", args[0])
				if err != nil {
					return nil, err
				}
				if len(a.Elements) == 0 {
					return nil, &RuntimeError{Msg: "head: empty array"}
				}
				return a.Elements[0], nil
			}).Build(),

		Builtin("tail").
			Doc("Returns all but the first element of an array.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}}, Ret: ArrayType{Elem: tv(0)}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("tail", 1, len(args))
				}
				a, err := wantArray("tail", args[0])
				if err != nil {
					return nil, err
				}
				if len(a.Elements) == 0 {
					return nil, &RuntimeError{Msg: "tail: empty array"}
				}
				rest := make([]Value, len(a.Elements)-1)
				copy(rest, a.Elements[1:])
				return &ArrayValue{Elements: rest}, nil
			}).Build(),

		Builtin("push").
			Doc("Appends an element to an array, returning a new array.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}, tv(0)}, Ret: ArrayType{Elem: tv(0)}}, tv(0)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("push", 2, len(args))
				}
				a, err := wantArray("push", args[0])
				if err != nil {
					return nil, err
				}
				elems := make([]Value, len(a.Elements)+1)
				copy(elems, a.Elements)
				elems[len(a.Elements)] = args[1]
				return &ArrayValue{Elements: elems}, nil
			}).Build(),

		Builtin("empty").
			Doc("Reports whether an array has no elements.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}}, Ret: BooleanType{}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("empty", 1, len(args))
				}
				a, err := wantArray("empty", args[0])
				if err != nil {
					return nil, err
				}
				return BooleanValue(len(a.Elements) == 0), nil
			}).Build(),

		Builtin("range").
			Doc("Builds the array of integers from start (inclusive) to end (exclusive).").
			Scheme(FunctionType{Params: []hm.Type{NumberType{}, NumberType{}}, Ret: ArrayType{Elem: NumberType{}}}).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("range", 2, len(args))
				}
				start, err := wantNumber("range", args[0])
				if err != nil {
					return nil, err
				}
				end, err := wantNumber("range", args[1])
				if err != nil {
					return nil, err
				}
				var elems []Value
				for i := start; i < end; i++ {
					elems = append(elems, NumberValue(i))
				}
				return &ArrayValue{Elements: elems}, nil
			}).Build(),

		Builtin("sum").
			Doc("Sums an array of numbers.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: NumberType{}}}, Ret: NumberType{}}).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("sum", 1, len(args))
				}
				a, err := wantArray("sum", args[0])
				if err != nil {
					return nil, err
				}
				var total float64
				for _, e := range a.Elements {
					n, err := wantNumber("sum", e)
					if err != nil {
						return nil, err
					}
					total += n
				}
				return NumberValue(total), nil
			}).Build(),

		Builtin("product").
			Doc("Multiplies an array of numbers.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: NumberType{}}}, Ret: NumberType{}}).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("product", 1, len(args))
				}
				a, err := wantArray("product", args[0])
				if err != nil {
					return nil, err
				}
				total := 1.0
				for _, e := range a.Elements {
					n, err := wantNumber("product", e)
					if err != nil {
						return nil, err
					}
					total *= n
				}
				return NumberValue(total), nil
			}).Build(),

		Builtin("flatten").
			Doc("Flattens an array of arrays by one level.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: ArrayType{Elem: tv(0)}}}, Ret: ArrayType{Elem: tv(0)}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("flatten", 1, len(args))
				}
				outer, err := wantArray("flatten", args[0])
				if err != nil {
					return nil, err
				}
				var elems []Value
				for _, e := range outer.Elements {
					inner, err := wantArray("flatten", e)
					if err != nil {
						return nil, err
					}
					elems = append(elems, inner.Elements...)
				}
				return &ArrayValue{Elements: elems}, nil
			}).Build(),

		Builtin("unique").
			Doc("Removes structurally duplicate elements, preserving first occurrence order.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}}, Ret: ArrayType{Elem: tv(0)}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("unique", 1, len(args))
				}
				a, err := wantArray("unique", args[0])
				if err != nil {
					return nil, err
				}
				var out []Value
				for _, e := range a.Elements {
					dup := false
					for _, seen := range out {
						if ValuesEqual(seen, e) {
							dup = true
							break
						}
					}
					if !dup {
						out = append(out, e)
					}
				}
				return &ArrayValue{Elements: out}, nil
			}).Build(),

		Builtin("chunk").
			Doc("Splits an array into consecutive chunks of the given size.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}, NumberType{}}, Ret: ArrayType{Elem: ArrayType{Elem: tv(0)}}}, tv(0)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("chunk", 2, len(args))
				}
				a, err := wantArray("chunk", args[0])
				if err != nil {
					return nil, err
				}
				size, err := wantNumber("chunk", args[1])
				if err != nil {
					return nil, err
				}
				n := int(size)
				if n <= 0 {
					return nil, &RuntimeError{Msg: "chunk: size must be positive"}
				}
				var chunks []Value
				for i := 0; i < len(a.Elements); i += n {
					end := i + n
					if end > len(a.Elements) {
						end = len(a.Elements)
					}
					part := make([]Value, end-i)
					copy(part, a.Elements[i:end])
					chunks = append(chunks, &ArrayValue{Elements: part})
				}
				return &ArrayValue{Elements: chunks}, nil
			}).Build(),

		Builtin("zip").
			Doc("Pairs two arrays element-wise into an array of {first, second} records.").
			Scheme(FunctionType{
				Params: []hm.Type{ArrayType{Elem: tv(0)}, ArrayType{Elem: tv(1)}},
				Ret:    ArrayType{Elem: RecordType{Row: Row{Fields: map[string]hm.Type{"first": tv(0), "second": tv(1)}}}},
			}, tv(0), tv(1)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("zip", 2, len(args))
				}
				a, err := wantArray("zip", args[0])
				if err != nil {
					return nil, err
				}
				b, err := wantArray("zip", args[1])
				if err != nil {
					return nil, err
				}
				n := len(a.Elements)
				if len(b.Elements) < n {
					n = len(b.Elements)
				}
				pairs := make([]Value, n)
				for i := 0; i < n; i++ {
					pairs[i] = &RecordValue{Fields: []RecordFieldValue{
						{Name: "first", Value: a.Elements[i]},
						{Name: "second", Value: b.Elements[i]},
					}}
				}
				return &ArrayValue{Elements: pairs}, nil
			}).Build(),

		Builtin("concat").
			Doc("Concatenates two arrays.").
			Scheme(FunctionType{Params: []hm.Type{ArrayType{Elem: tv(0)}, ArrayType{Elem: tv(0)}}, Ret: ArrayType{Elem: tv(0)}}, tv(0)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("concat", 2, len(args))
				}
				a, err := wantArray("concat", args[0])
				if err != nil {
					return nil, err
				}
				b, err := wantArray("concat", args[1])
				if err != nil {
					return nil, err
				}
				elems := make([]Value, 0, len(a.Elements)+len(b.Elements))
				elems = append(elems, a.Elements...)
				elems = append(elems, b.Elements...)
				return &ArrayValue{Elements: elems}, nil
			}).Build(),

		Builtin("substring").
			Doc("Returns the substring [start, end) of a string, in rune offsets.").
			Scheme(FunctionType{Params: []hm.Type{StringType{}, NumberType{}, NumberType{}}, Ret: StringType{}}).
			Arity(3).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 3 {
					return nil, arityError("substring", 3, len(args))
				}
				s, err := wantString("substring", args[0])
				if err != nil {
					return nil, err
				}
				start, err := wantNumber("substring", args[1])
				if err != nil {
					return nil, err
				}
				end, err := wantNumber("substring", args[2])
				if err != nil {
					return nil, err
				}
				runes := []rune(s)
				si, ei := int(start), int(end)
				if si < 0 || ei > len(runes) || si > ei {
					return nil, &RuntimeError{Msg: "substring: index out of bounds"}
				}
				return StringValue(string(runes[si:ei])), nil
			}).Build(),

		Builtin("strlen").
			Doc("Returns the rune length of a string.").
			Scheme(FunctionType{Params: []hm.Type{StringType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("strlen", 1, len(args))
				}
				s, err := wantString("strlen", args[0])
				if err != nil {
					return nil, err
				}
				return NumberValue(len([]rune(s))), nil
			}).Build(),

		Builtin("sqrt").
			Doc("Square root.").
			Scheme(FunctionType{Params: []hm.Type{NumberType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(numUnary("sqrt", math.Sqrt)).Build(),

		Builtin("abs").
			Doc("Absolute value.").
			Scheme(FunctionType{Params: []hm.Type{NumberType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(numUnary("abs", math.Abs)).Build(),

		Builtin("floor").
			Doc("Rounds down to the nearest integer.").
			Scheme(FunctionType{Params: []hm.Type{NumberType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(numUnary("floor", math.Floor)).Build(),

		Builtin("ceil").
			Doc("Rounds up to the nearest integer.").
			Scheme(FunctionType{Params: []hm.Type{NumberType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(numUnary("ceil", math.Ceil)).Build(),

		Builtin("toString").
			Doc("Renders any value as a display string.").
			Scheme(FunctionType{Params: []hm.Type{tv(0)}, Ret: StringType{}}, tv(0)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("toString", 1, len(args))
				}
				return StringValue(DisplayString(args[0])), nil
			}).Build(),

		Builtin("toNumber").
			Doc("Parses a string as a number.").
			Scheme(FunctionType{Params: []hm.Type{StringType{}}, Ret: NumberType{}}).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("toNumber", 1, len(args))
				}
				s, err := wantString("toNumber", args[0])
				if err != nil {
					return nil, err
				}
				n, err := parseNumber(s)
				if err != nil {
					return nil, &RuntimeError{Msg: fmt.Sprintf("toNumber: %q is not a number", s)}
				}
				return NumberValue(n), nil
			}).Build(),

		Builtin("dictKeys").
			Doc("Returns a dictionary's keys in insertion order.").
			Scheme(FunctionType{Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}}, Ret: ArrayType{Elem: tv(0)}}, tv(0), tv(1)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("dictKeys", 1, len(args))
				}
				d, err := wantDict("dictKeys", args[0])
				if err != nil {
					return nil, err
				}
				keys := make([]Value, len(d.Entries))
				for i, e := range d.Entries {
					keys[i] = e.Key
				}
				return &ArrayValue{Elements: keys}, nil
			}).Build(),

		Builtin("dictValues").
			Doc("Returns a dictionary's values in insertion order.").
			Scheme(FunctionType{Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}}, Ret: ArrayType{Elem: tv(1)}}, tv(0), tv(1)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("dictValues", 1, len(args))
				}
				d, err := wantDict("dictValues", args[0])
				if err != nil {
					return nil, err
				}
				vals := make([]Value, len(d.Entries))
				for i, e := range d.Entries {
					vals[i] = e.Value
				}
				return &ArrayValue{Elements: vals}, nil
			}).Build(),

		Builtin("dictEntries").
			Doc("Returns a dictionary's entries as {key, value} records, in insertion order.").
			Scheme(FunctionType{
				Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}},
				Ret:    ArrayType{Elem: RecordType{Row: Row{Fields: map[string]hm.Type{"key": tv(0), "value": tv(1)}}}},
			}, tv(0), tv(1)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("dictEntries", 1, len(args))
				}
				d, err := wantDict("dictEntries", args[0])
				if err != nil {
					return nil, err
				}
				entries := make([]Value, len(d.Entries))
				for i, e := range d.Entries {
					entries[i] = &RecordValue{Fields: []RecordFieldValue{
						{Name: "key", Value: e.Key},
						{Name: "value", Value: e.Value},
					}}
				}
				return &ArrayValue{Elements: entries}, nil
			}).Build(),

		Builtin("dictFromEntries").
			Doc("Builds a dictionary from an array of {key, value} records.").
			Scheme(FunctionType{
				Params: []hm.Type{ArrayType{Elem: RecordType{Row: Row{Fields: map[string]hm.Type{"key": tv(0), "value": tv(1)}}}}},
				Ret:    DictType{Key: tv(0), Value: tv(1)},
			}, tv(0), tv(1)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("dictFromEntries", 1, len(args))
				}
				a, err := wantArray("dictFromEntries", args[0])
				if err != nil {
					return nil, err
				}
				var entries []DictEntryValue
				for _, e := range a.Elements {
					rec, ok := e.(*RecordValue)
					if !ok {
						return nil, typeError("dictFromEntries", "record with key/value fields", e)
					}
					k, kok := recordField(rec, "key")
					v, vok := recordField(rec, "value")
					if !kok || !vok {
						return nil, &RuntimeError{Msg: "dictFromEntries: record missing key/value field"}
					}
					entries = append(entries, DictEntryValue{Key: k, Value: v})
				}
				return &DictValue{Entries: entries}, nil
			}).Build(),

		Builtin("dictMerge").
			Doc("Merges two dictionaries; entries from the second override the first on key collision.").
			Scheme(FunctionType{
				Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}, DictType{Key: tv(0), Value: tv(1)}},
				Ret:    DictType{Key: tv(0), Value: tv(1)},
			}, tv(0), tv(1)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("dictMerge", 2, len(args))
				}
				a, err := wantDict("dictMerge", args[0])
				if err != nil {
					return nil, err
				}
				b, err := wantDict("dictMerge", args[1])
				if err != nil {
					return nil, err
				}
				result := append([]DictEntryValue{}, a.Entries...)
				for _, e := range b.Entries {
					replaced := false
					for i, existing := range result {
						if ValuesEqual(existing.Key, e.Key) {
							result[i].Value = e.Value
							replaced = true
							break
						}
					}
					if !replaced {
						result = append(result, e)
					}
				}
				return &DictValue{Entries: result}, nil
			}).Build(),

		Builtin("dictHas").
			Doc("Reports whether a dictionary contains a key.").
			Scheme(FunctionType{Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}, tv(0)}, Ret: BooleanType{}}, tv(0), tv(1)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("dictHas", 2, len(args))
				}
				d, err := wantDict("dictHas", args[0])
				if err != nil {
					return nil, err
				}
				_, ok := dictLookup(d, args[1])
				return BooleanValue(ok), nil
			}).Build(),

		Builtin("dictSet").
			Doc("Returns a new dictionary with a key set to a value.").
			Scheme(FunctionType{
				Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}, tv(0), tv(1)},
				Ret:    DictType{Key: tv(0), Value: tv(1)},
			}, tv(0), tv(1)).
			Arity(3).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 3 {
					return nil, arityError("dictSet", 3, len(args))
				}
				d, err := wantDict("dictSet", args[0])
				if err != nil {
					return nil, err
				}
				result := append([]DictEntryValue{}, d.Entries...)
				for i, e := range result {
					if ValuesEqual(e.Key, args[1]) {
						result[i].Value = args[2]
						return &DictValue{Entries: result}, nil
					}
				}
				result = append(result, DictEntryValue{Key: args[1], Value: args[2]})
				return &DictValue{Entries: result}, nil
			}).Build(),

		Builtin("dictDelete").
			Doc("Returns a new dictionary with a key removed.").
			Scheme(FunctionType{
				Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}, tv(0)},
				Ret:    DictType{Key: tv(0), Value: tv(1)},
			}, tv(0), tv(1)).
			Arity(2).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 2 {
					return nil, arityError("dictDelete", 2, len(args))
				}
				d, err := wantDict("dictDelete", args[0])
				if err != nil {
					return nil, err
				}
				var result []DictEntryValue
				for _, e := range d.Entries {
					if !ValuesEqual(e.Key, args[1]) {
						result = append(result, e)
					}
				}
				return &DictValue{Entries: result}, nil
			}).Build(),

		Builtin("dictSize").
			Doc("Returns the number of entries in a dictionary.").
			Scheme(FunctionType{Params: []hm.Type{DictType{Key: tv(0), Value: tv(1)}}, Ret: NumberType{}}, tv(0), tv(1)).
			Arity(1).
			Impl(func(args []Value) (Value, error) {
				if len(args) != 1 {
					return nil, arityError("dictSize", 1, len(args))
				}
				d, err := wantDict("dictSize", args[0])
				if err != nil {
					return nil, err
				}
				return NumberValue(len(d.Entries)), nil
			}).Build(),
	}
}

func numUnary(name string, fn func(float64) float64) BuiltinFn {
	return func(args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, arityError(name, 1, len(args))
		}
		n, err := wantNumber(name, args[0])
		if err != nil {
			return nil, err
		}
		return NumberValue(fn(n)), nil
	}
}

func parseNumber(s string) (float64, error) {
	var n float64
	_, err := fmt.Sscanf(s, "%g", &n)
	return n, err
}
