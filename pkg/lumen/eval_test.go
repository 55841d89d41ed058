package lumen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustEval(t *testing.T, src string) Value {
	t.Helper()
	prog := mustParse(t, src)
	v, err := Evaluate(context.Background(), prog, nil)
	require.NoError(t, err, "source: %s", src)
	return v
}

func evalErr(t *testing.T, src string) error {
	t.Helper()
	prog := mustParse(t, src)
	_, err := Evaluate(context.Background(), prog, nil)
	return err
}

func TestEvalLiterals(t *testing.T) {
	require.Equal(t, NumberValue(42), mustEval(t, "42"))
	require.Equal(t, StringValue("hi"), mustEval(t, `"hi"`))
	require.Equal(t, BooleanValue(true), mustEval(t, "true"))
	require.Equal(t, NullValue{}, mustEval(t, "null"))
	require.Equal(t, UndefinedValue{}, mustEval(t, "undefined"))
}

func TestEvalUndefinedVariableIsRuntimeError(t *testing.T) {
	err := evalErr(t, "nonexistent")
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestEvalArithmetic(t *testing.T) {
	require.Equal(t, NumberValue(3), mustEval(t, "1 + 2"))
	require.Equal(t, NumberValue(-1), mustEval(t, "1 - 2"))
	require.Equal(t, NumberValue(6), mustEval(t, "2 * 3"))
	require.Equal(t, NumberValue(2), mustEval(t, "6 / 3"))
	require.Equal(t, NumberValue(1), mustEval(t, "7 % 3"))
}

func TestEvalDivisionByZeroIsError(t *testing.T) {
	require.Error(t, evalErr(t, "1 / 0"))
	require.Error(t, evalErr(t, "1 % 0"))
}

func TestEvalStringConcatenation(t *testing.T) {
	require.Equal(t, StringValue("ab"), mustEval(t, `"a" + "b"`))
	require.Equal(t, StringValue("a1"), mustEval(t, `"a" + 1`))
	require.Equal(t, StringValue("1a"), mustEval(t, `1 + "a"`))
}

func TestEvalComparisonOperators(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, "1 < 2"))
	require.Equal(t, BooleanValue(true), mustEval(t, "2 <= 2"))
	require.Equal(t, BooleanValue(false), mustEval(t, "1 > 2"))
	require.Equal(t, BooleanValue(true), mustEval(t, "2 >= 2"))
}

func TestEvalStructuralEquality(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, "[1,2,3] == [1,2,3]"))
	require.Equal(t, BooleanValue(false), mustEval(t, "[1,2,3] == [1,2]"))
	require.Equal(t, BooleanValue(true), mustEval(t, "{ x: 1, y: 2 } == { y: 2, x: 1 }"))
	require.Equal(t, BooleanValue(false), mustEval(t, "{ x: 1 } == { x: 2 }"))
	require.Equal(t, BooleanValue(true), mustEval(t, "1 != 2"))
}

func TestEvalLogicalShortCircuit(t *testing.T) {
	// the right side calls an undefined function; if && truly
	// short-circuits on a falsy left, this must not error.
	require.Equal(t, BooleanValue(false), mustEval(t, "false && explode()"))
	require.Equal(t, BooleanValue(true), mustEval(t, "true || explode()"))
}

func TestEvalTruthiness(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, "!null"))
	require.Equal(t, BooleanValue(true), mustEval(t, "!undefined"))
	require.Equal(t, BooleanValue(true), mustEval(t, "!0"))
	require.Equal(t, BooleanValue(true), mustEval(t, `!""`))
	require.Equal(t, BooleanValue(false), mustEval(t, "![1]"))
	require.Equal(t, BooleanValue(false), mustEval(t, "!{ x: 1 }"))
}

func TestEvalUnaryOperators(t *testing.T) {
	require.Equal(t, NumberValue(-5), mustEval(t, "-5"))
	require.Equal(t, BooleanValue(false), mustEval(t, "!true"))
}

func TestEvalUnaryNegRequiresNumber(t *testing.T) {
	require.Error(t, evalErr(t, `-"x"`))
}

func TestEvalConditional(t *testing.T) {
	require.Equal(t, NumberValue(1), mustEval(t, "if (true) 1 else 2"))
	require.Equal(t, NumberValue(2), mustEval(t, "if (false) 1 else 2"))
	require.Equal(t, NullValue{}, mustEval(t, "if (false) 1"))
}

func TestEvalBlockScoping(t *testing.T) {
	require.Equal(t, NumberValue(3), mustEval(t, "{ let x = 1; let y = 2; x + y }"))
}

func TestEvalFunctionCallAndClosure(t *testing.T) {
	require.Equal(t, NumberValue(15), mustEval(t, "let add = (x, y) => x + y; add(5, 10)"))
}

func TestEvalClosureCapturesEnvironment(t *testing.T) {
	require.Equal(t, NumberValue(11), mustEval(t, "let makeAdder = (x) => (y) => x + y; let add10 = makeAdder(10); add10(1)"))
}

func TestEvalCallArityMismatchIsRuntimeError(t *testing.T) {
	err := evalErr(t, "let f = (x, y) => x + y; f(1)")
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestEvalCallingNonFunctionIsRuntimeError(t *testing.T) {
	require.Error(t, evalErr(t, "let x = 1; x(2)"))
}

func TestEvalMemberAccess(t *testing.T) {
	require.Equal(t, NumberValue(1), mustEval(t, "{ x: 1, y: 2 }.x"))
	require.Equal(t, NumberValue(3), mustEval(t, "let getX = (p) => p.x; getX({ x: 3, y: 4, z: 5 })"))
}

func TestEvalMemberAccessOnNullIsError(t *testing.T) {
	require.Error(t, evalErr(t, "null.x"))
}

func TestEvalMemberAccessMissingFieldIsError(t *testing.T) {
	require.Error(t, evalErr(t, "{ x: 1 }.y"))
}

func TestEvalIndexArray(t *testing.T) {
	require.Equal(t, NumberValue(6), mustEval(t, "let nums = [1,2,3]; nums[0] + nums[1] + nums[2]"))
}

func TestEvalIndexArrayOutOfBoundsIsError(t *testing.T) {
	require.Error(t, evalErr(t, "[1,2,3][5]"))
}

func TestEvalIndexDictMissingYieldsUndefined(t *testing.T) {
	require.Equal(t, UndefinedValue{}, mustEval(t, `["a": 1]["b"]`))
}

func TestEvalIndexDictPresent(t *testing.T) {
	require.Equal(t, NumberValue(1), mustEval(t, `["a": 1]["a"]`))
}

func TestEvalIndexingNonContainerIsError(t *testing.T) {
	require.Error(t, evalErr(t, "let x = 1; x[0]"))
}

func TestEvalMatchExpression(t *testing.T) {
	require.Equal(t, StringValue("pos"), mustEval(t, `match 5 { x if x < 0 => "neg", 0 => "zero", _ => "pos" }`))
	require.Equal(t, StringValue("neg"), mustEval(t, `match -1 { x if x < 0 => "neg", 0 => "zero", _ => "pos" }`))
	require.Equal(t, StringValue("zero"), mustEval(t, `match 0 { x if x < 0 => "neg", 0 => "zero", _ => "pos" }`))
}

func TestEvalMatchNoCaseMatchesIsError(t *testing.T) {
	require.Error(t, evalErr(t, `match 5 { 1 => "one" }`))
}

func TestEvalMatchIdentifierPatternBinds(t *testing.T) {
	require.Equal(t, NumberValue(10), mustEval(t, "match 5 { x => x * 2 }"))
}

func TestEvalMutualRecursion(t *testing.T) {
	require.Equal(t, BooleanValue(true), mustEval(t, `let even = (n) => if (n == 0) true else odd(n - 1) and odd = (n) => if (n == 0) false else even(n - 1); even(4)`))
	require.Equal(t, BooleanValue(true), mustEval(t, `let even = (n) => if (n == 0) true else odd(n - 1) and odd = (n) => if (n == 0) false else even(n - 1); odd(7)`))
}

func TestEvalSimpleSelfRecursion(t *testing.T) {
	require.Equal(t, NumberValue(120), mustEval(t, "let fact = (n) => if (n == 0) 1 else n * fact(n - 1); fact(5)"))
}

func TestEvalNonFunctionSelfReferenceIsUninitializedError(t *testing.T) {
	// spec §8: let x = { self: x } fails at runtime with the
	// uninitialized-read error, since record literals read their own
	// name during evaluation (unlike function literals).
	err := evalErr(t, "let x = { self: x }; 1")
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestEvalLetGroupCommaBindingsAreSequential(t *testing.T) {
	require.Equal(t, NumberValue(3), mustEval(t, "let a = 1, b = 2; a + b"))
}

func TestEvalDeterminism(t *testing.T) {
	src := "let fib = (n) => if (n < 2) n else fib(n - 1) + fib(n - 2); fib(10)"
	first := mustEval(t, src)
	second := mustEval(t, src)
	require.Equal(t, first, second)
}

func TestEvalArrayAndRecordLiteralOrder(t *testing.T) {
	arr := mustEval(t, "[1, 2, 3]").(*ArrayValue)
	require.Equal(t, []Value{NumberValue(1), NumberValue(2), NumberValue(3)}, arr.Elements)

	rec := mustEval(t, "{ b: 2, a: 1 }").(*RecordValue)
	require.Equal(t, "b", rec.Fields[0].Name)
	require.Equal(t, "a", rec.Fields[1].Name)
}

func TestEvalDictPreservesInsertionOrderAndValueKeys(t *testing.T) {
	dict := mustEval(t, `[1: "one", 2: "two"]`).(*DictValue)
	require.Len(t, dict.Entries, 2)
	require.Equal(t, NumberValue(1), dict.Entries[0].Key)
}

func TestDisplayString(t *testing.T) {
	require.Equal(t, "42", DisplayString(NumberValue(42)))
	require.Equal(t, "true", DisplayString(BooleanValue(true)))
	require.Equal(t, "null", DisplayString(NullValue{}))
	require.Equal(t, "[1, 2]", DisplayString(&ArrayValue{Elements: []Value{NumberValue(1), NumberValue(2)}}))
}
