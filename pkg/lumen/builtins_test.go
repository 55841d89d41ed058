package lumen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinsCatalogCoversEveryDoc(t *testing.T) {
	names := map[string]bool{}
	for _, b := range Builtins() {
		names[b.Name] = true
		require.NotEmpty(t, b.Doc, "builtin %s should document itself", b.Name)
		require.NotNil(t, b.Scheme)
		require.NotNil(t, b.Impl)
	}
	for _, want := range []string{
		"length", "head", "tail", "push", "empty", "range", "sum", "product",
		"flatten", "unique", "chunk", "zip", "concat", "substring", "strlen",
		"sqrt", "abs", "floor", "ceil", "toString", "toNumber",
		"dictKeys", "dictValues", "dictEntries", "dictFromEntries", "dictMerge",
		"dictHas", "dictSet", "dictDelete", "dictSize",
	} {
		require.Truef(t, names[want], "missing builtin %q", want)
	}
}

func TestBuiltinLength(t *testing.T) {
	require.Equal(t, NumberValue(3), mustEval(t, "length([1,2,3])"))
	require.Equal(t, NumberValue(0), mustEval(t, "length([])"))
}

func TestBuiltinLengthArityError(t *testing.T) {
	require.Error(t, evalErr(t, "length([1], [2])"))
}

func TestBuiltinLengthTypeError(t *testing.T) {
	require.Error(t, evalErr(t, `length("not an array")`))
}

func TestBuiltinHeadAndTail(t *testing.T) {
	require.Equal(t, NumberValue(1), mustEval(t, "head([1,2,3])"))
	tail := mustEval(t, "tail([1,2,3])").(*ArrayValue)
	require.Equal(t, []Value{NumberValue(2), NumberValue(3)}, tail.Elements)
}

func TestBuiltinHeadOnEmptyArrayIsError(t *testing.T) {
	require.Error(t, evalErr(t, "head([])"))
}

func TestBuiltinTailOnEmptyArrayIsError(t *testing.T) {
	require.Error(t, evalErr(t, "tail([])"))
}

func TestBuiltinPush(t *testing.T) {
	result := mustEval(t, "push([1,2], 3)").(*ArrayValue)
	require.Equal(t, []Value{NumberValue(1), NumberValue(2), NumberValue(3)}, result.Elements)
}

func TestBuiltinEmpty(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, "empty([])"))
	require.Equal(t, BooleanValue(false), mustEval(t, "empty([1])"))
}

func TestBuiltinRange(t *testing.T) {
	result := mustEval(t, "range(0, 5)").(*ArrayValue)
	require.Equal(t, []Value{
		NumberValue(0), NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4),
	}, result.Elements)
}

func TestBuiltinRangeEmptyWhenStartNotLessThanEnd(t *testing.T) {
	result := mustEval(t, "range(5, 5)").(*ArrayValue)
	require.Len(t, result.Elements, 0)
}

func TestBuiltinSumAndProduct(t *testing.T) {
	require.Equal(t, NumberValue(6), mustEval(t, "sum([1,2,3])"))
	require.Equal(t, NumberValue(6), mustEval(t, "product([1,2,3])"))
}

func TestBuiltinSumTypeMismatchIsError(t *testing.T) {
	require.Error(t, evalErr(t, `sum([1, "two", 3])`))
}

func TestBuiltinFlatten(t *testing.T) {
	result := mustEval(t, "flatten([[1,2],[3],[4,5]])").(*ArrayValue)
	require.Equal(t, []Value{
		NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4), NumberValue(5),
	}, result.Elements)
}

func TestBuiltinUnique(t *testing.T) {
	result := mustEval(t, "unique([1,2,2,3,1])").(*ArrayValue)
	require.Equal(t, []Value{NumberValue(1), NumberValue(2), NumberValue(3)}, result.Elements)
}

func TestBuiltinChunk(t *testing.T) {
	result := mustEval(t, "chunk([1,2,3,4,5], 2)").(*ArrayValue)
	require.Len(t, result.Elements, 3)
	first := result.Elements[0].(*ArrayValue)
	require.Equal(t, []Value{NumberValue(1), NumberValue(2)}, first.Elements)
	last := result.Elements[2].(*ArrayValue)
	require.Equal(t, []Value{NumberValue(5)}, last.Elements)
}

func TestBuiltinChunkNonPositiveSizeIsError(t *testing.T) {
	require.Error(t, evalErr(t, "chunk([1,2,3], 0)"))
	require.Error(t, evalErr(t, "chunk([1,2,3], -1)"))
}

func TestBuiltinZip(t *testing.T) {
	result := mustEval(t, `zip([1,2,3], ["a","b"])`).(*ArrayValue)
	require.Len(t, result.Elements, 2)
	pair := result.Elements[0].(*RecordValue)
	require.Equal(t, "first", pair.Fields[0].Name)
	require.Equal(t, NumberValue(1), pair.Fields[0].Value)
	require.Equal(t, "second", pair.Fields[1].Name)
	require.Equal(t, StringValue("a"), pair.Fields[1].Value)
}

func TestBuiltinConcat(t *testing.T) {
	result := mustEval(t, "concat([1,2], [3,4])").(*ArrayValue)
	require.Equal(t, []Value{
		NumberValue(1), NumberValue(2), NumberValue(3), NumberValue(4),
	}, result.Elements)
}

func TestBuiltinSubstring(t *testing.T) {
	require.Equal(t, StringValue("ell"), mustEval(t, `substring("hello", 1, 4)`))
}

func TestBuiltinSubstringOutOfBoundsIsError(t *testing.T) {
	require.Error(t, evalErr(t, `substring("hi", 0, 10)`))
	require.Error(t, evalErr(t, `substring("hi", 2, 1)`))
}

func TestBuiltinStrlen(t *testing.T) {
	require.Equal(t, NumberValue(5), mustEval(t, `strlen("hello")`))
	require.Equal(t, NumberValue(4), mustEval(t, `strlen("café")`))
}

func TestBuiltinMathUnaryOps(t *testing.T) {
	require.Equal(t, NumberValue(3), mustEval(t, "sqrt(9)"))
	require.Equal(t, NumberValue(5), mustEval(t, "abs(-5)"))
	require.Equal(t, NumberValue(2), mustEval(t, "floor(2.9)"))
	require.Equal(t, NumberValue(3), mustEval(t, "ceil(2.1)"))
}

func TestBuiltinToStringAndToNumber(t *testing.T) {
	require.Equal(t, StringValue("42"), mustEval(t, "toString(42)"))
	require.Equal(t, StringValue("true"), mustEval(t, "toString(true)"))
	require.Equal(t, NumberValue(42), mustEval(t, `toNumber("42")`))
}

func TestBuiltinToNumberInvalidIsError(t *testing.T) {
	require.Error(t, evalErr(t, `toNumber("not a number")`))
}

func TestBuiltinDictKeysValuesEntries(t *testing.T) {
	keys := mustEval(t, `dictKeys(["a": 1, "b": 2])`).(*ArrayValue)
	require.Equal(t, []Value{StringValue("a"), StringValue("b")}, keys.Elements)

	values := mustEval(t, `dictValues(["a": 1, "b": 2])`).(*ArrayValue)
	require.Equal(t, []Value{NumberValue(1), NumberValue(2)}, values.Elements)

	entries := mustEval(t, `dictEntries(["a": 1])`).(*ArrayValue)
	require.Len(t, entries.Elements, 1)
	rec := entries.Elements[0].(*RecordValue)
	require.Equal(t, "key", rec.Fields[0].Name)
	require.Equal(t, StringValue("a"), rec.Fields[0].Value)
}

func TestBuiltinDictFromEntries(t *testing.T) {
	result := mustEval(t, `dictFromEntries([{ key: "a", value: 1 }, { key: "b", value: 2 }])`).(*DictValue)
	require.Len(t, result.Entries, 2)
	require.Equal(t, StringValue("a"), result.Entries[0].Key)
	require.Equal(t, NumberValue(1), result.Entries[0].Value)
}

func TestBuiltinDictFromEntriesWrongShapeIsError(t *testing.T) {
	require.Error(t, evalErr(t, `dictFromEntries([{ notKey: 1 }])`))
	require.Error(t, evalErr(t, `dictFromEntries([1, 2])`))
}

func TestBuiltinDictMergeOverridesOnCollision(t *testing.T) {
	result := mustEval(t, `dictMerge(["a": 1, "b": 2], ["b": 3, "c": 4])`).(*DictValue)
	require.Len(t, result.Entries, 3)
	b, ok := dictLookup(result, StringValue("b"))
	require.True(t, ok)
	require.Equal(t, NumberValue(3), b)
}

func TestBuiltinDictHasSetDelete(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, `dictHas(["a": 1], "a")`))
	require.Equal(t, BooleanValue(false), mustEval(t, `dictHas(["a": 1], "z")`))

	set := mustEval(t, `dictSet(["a": 1], "b", 2)`).(*DictValue)
	require.Len(t, set.Entries, 2)

	overwrite := mustEval(t, `dictSet(["a": 1], "a", 9)`).(*DictValue)
	require.Len(t, overwrite.Entries, 1)
	require.Equal(t, NumberValue(9), overwrite.Entries[0].Value)

	deleted := mustEval(t, `dictDelete(["a": 1, "b": 2], "a")`).(*DictValue)
	require.Len(t, deleted.Entries, 1)
	require.Equal(t, StringValue("b"), deleted.Entries[0].Key)
}

func TestBuiltinDictSize(t *testing.T) {
	require.Equal(t, NumberValue(2), mustEval(t, `dictSize(["a": 1, "b": 2])`))
	require.Equal(t, NumberValue(0), mustEval(t, `dictSize(dictDelete(["a": 1], "a"))`))
}
