package lumen

import (
	"context"
	"fmt"
	"log/slog"
)

// Evaluator tree-walks the AST against a runtime environment (spec §4.5).
// It carries no state of its own: every call owns its own environment
// chain, per the single-threaded, reentrant resource model (spec §5).
type Evaluator struct{}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator { return &Evaluator{} }

// DefaultRuntimeEnv returns a runtime environment with one entry per
// built-in, pointing at its native implementation (spec §4.5).
func DefaultRuntimeEnv() *RuntimeEnv {
	env := NewRuntimeEnv()
	for _, b := range Builtins() {
		env.Define(b.Name, &BuiltinValue{Name: b.Name, Arity: b.Arity, Impl: b.Impl})
	}
	return env
}

// Evaluate runs every item of program in sequence under env (DefaultRuntimeEnv
// if nil) and returns the value of the last item (spec §6: "evaluate(program)
// -> Value | RuntimeError").
func Evaluate(ctx context.Context, program *Program, env *RuntimeEnv) (Value, error) {
	if env == nil {
		env = DefaultRuntimeEnv()
	}
	ev := NewEvaluator()
	var last Value = NullValue{}
	for _, item := range program.Items {
		if group, ok := item.(*LetGroup); ok {
			newEnv, v, err := ev.evalLetGroup(ctx, env, group)
			if err != nil {
				return nil, err
			}
			env = newEnv
			last = v
			continue
		}
		v, err := ev.eval(ctx, env, item)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (ev *Evaluator) eval(ctx context.Context, env *RuntimeEnv, node Expr) (Value, error) {
	switch n := node.(type) {
	case *NumberLit:
		return NumberValue(n.Value), nil
	case *StringLit:
		return StringValue(n.Value), nil
	case *BoolLit:
		return BooleanValue(n.Value), nil
	case *NullLit:
		return NullValue{}, nil
	case *UndefinedLit:
		return UndefinedValue{}, nil
	case *Identifier:
		v, ok := env.Lookup(n.Name)
		if !ok {
			slog.DebugContext(ctx, "undefined variable at runtime", "name", n.Name)
			return nil, &RuntimeError{Msg: fmt.Sprintf("undefined variable %q", n.Name), Span: n.Span()}
		}
		if _, pending := v.(pendingValue); pending {
			return nil, &RuntimeError{Msg: fmt.Sprintf("%q referenced before initialization", n.Name), Span: n.Span()}
		}
		return v, nil
	case *ArrayLit:
		elems := make([]Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := ev.eval(ctx, env, e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &ArrayValue{Elements: elems}, nil
	case *DictLit:
		entries := make([]DictEntryValue, len(n.Entries))
		for i, e := range n.Entries {
			k, err := ev.eval(ctx, env, e.Key)
			if err != nil {
				return nil, err
			}
			v, err := ev.eval(ctx, env, e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = DictEntryValue{Key: k, Value: v}
		}
		return &DictValue{Entries: entries}, nil
	case *RecordLit:
		fields := make([]RecordFieldValue, len(n.Fields))
		for i, f := range n.Fields {
			v, err := ev.eval(ctx, env, f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = RecordFieldValue{Name: f.Name, Value: v}
		}
		return &RecordValue{Fields: fields}, nil
	case *FuncLit:
		return &Closure{Params: n.Params, Body: n.Body, Env: env}, nil
	case *Call:
		return ev.evalCall(ctx, env, n)
	case *Binary:
		return ev.evalBinary(ctx, env, n)
	case *Unary:
		return ev.evalUnary(ctx, env, n)
	case *Conditional:
		return ev.evalConditional(ctx, env, n)
	case *Block:
		return ev.evalBlock(ctx, env, n)
	case *Member:
		return ev.evalMember(ctx, env, n)
	case *Index:
		return ev.evalIndex(ctx, env, n)
	case *Match:
		return ev.evalMatch(ctx, env, n)
	case *LetGroup:
		_, v, err := ev.evalLetGroup(ctx, env, n)
		return v, err
	default:
		return nil, &RuntimeError{Msg: fmt.Sprintf("evaluation not implemented for %T", node), Span: node.Span()}
	}
}

func (ev *Evaluator) evalCall(ctx context.Context, env *RuntimeEnv, n *Call) (Value, error) {
	callee, err := ev.eval(ctx, env, n.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.eval(ctx, env, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch fn := callee.(type) {
	case *BuiltinValue:
		return fn.Impl(args)
	case *Closure:
		if len(args) != len(fn.Params) {
			return nil, &RuntimeError{
				Msg:  fmt.Sprintf("arity mismatch: expected %d argument(s), got %d", len(fn.Params), len(args)),
				Span: n.Span(),
			}
		}
		callEnv := fn.Env.Child()
		for i, p := range fn.Params {
			callEnv.Define(p.Name, args[i])
		}
		return ev.eval(ctx, callEnv, fn.Body)
	default:
		return nil, &RuntimeError{Msg: fmt.Sprintf("cannot call non-function value %s", DisplayString(callee)), Span: n.Span()}
	}
}

func (ev *Evaluator) evalBinary(ctx context.Context, env *RuntimeEnv, n *Binary) (Value, error) {
	if n.Op == OpAnd {
		left, err := ev.eval(ctx, env, n.Left)
		if err != nil {
			return nil, err
		}
		if !Truthy(left) {
			return BooleanValue(false), nil
		}
		right, err := ev.eval(ctx, env, n.Right)
		if err != nil {
			return nil, err
		}
		return BooleanValue(Truthy(right)), nil
	}
	if n.Op == OpOr {
		left, err := ev.eval(ctx, env, n.Left)
		if err != nil {
			return nil, err
		}
		if Truthy(left) {
			return BooleanValue(true), nil
		}
		right, err := ev.eval(ctx, env, n.Right)
		if err != nil {
			return nil, err
		}
		return BooleanValue(Truthy(right)), nil
	}

	left, err := ev.eval(ctx, env, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(ctx, env, n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpEq:
		return BooleanValue(ValuesEqual(left, right)), nil
	case OpNotEq:
		return BooleanValue(!ValuesEqual(left, right)), nil
	case OpAdd:
		ln, lok := left.(NumberValue)
		rn, rok := right.(NumberValue)
		if lok && rok {
			return ln + rn, nil
		}
		_, lIsStr := left.(StringValue)
		_, rIsStr := right.(StringValue)
		if lIsStr || rIsStr {
			return StringValue(DisplayString(left) + DisplayString(right)), nil
		}
		return nil, &RuntimeError{Msg: "'+' requires two numbers or a string operand", Span: n.Span()}
	case OpSub, OpMul, OpDiv, OpMod, OpLt, OpLe, OpGt, OpGe:
		ln, lok := left.(NumberValue)
		rn, rok := right.(NumberValue)
		if !lok || !rok {
			return nil, &RuntimeError{Msg: fmt.Sprintf("operator %q requires two numbers", n.Op), Span: n.Span()}
		}
		switch n.Op {
		case OpSub:
			return ln - rn, nil
		case OpMul:
			return ln * rn, nil
		case OpDiv:
			if rn == 0 {
				return nil, &RuntimeError{Msg: "division by zero", Span: n.Span()}
			}
			return ln / rn, nil
		case OpMod:
			if rn == 0 {
				return nil, &RuntimeError{Msg: "division by zero", Span: n.Span()}
			}
			return NumberValue(floatMod(float64(ln), float64(rn))), nil
		case OpLt:
			return BooleanValue(ln < rn), nil
		case OpLe:
			return BooleanValue(ln <= rn), nil
		case OpGt:
			return BooleanValue(ln > rn), nil
		case OpGe:
			return BooleanValue(ln >= rn), nil
		}
	}
	return nil, &RuntimeError{Msg: fmt.Sprintf("unknown binary operator %q", n.Op), Span: n.Span()}
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func (ev *Evaluator) evalUnary(ctx context.Context, env *RuntimeEnv, n *Unary) (Value, error) {
	operand, err := ev.eval(ctx, env, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpNeg:
		num, ok := operand.(NumberValue)
		if !ok {
			return nil, &RuntimeError{Msg: "unary '-' requires a number", Span: n.Span()}
		}
		return -num, nil
	case OpNot:
		return BooleanValue(!Truthy(operand)), nil
	default:
		return nil, &RuntimeError{Msg: fmt.Sprintf("unknown unary operator %q", n.Op), Span: n.Span()}
	}
}

func (ev *Evaluator) evalConditional(ctx context.Context, env *RuntimeEnv, n *Conditional) (Value, error) {
	cond, err := ev.eval(ctx, env, n.Cond)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return ev.eval(ctx, env, n.Then)
	}
	if n.Else != nil {
		return ev.eval(ctx, env, n.Else)
	}
	return NullValue{}, nil
}

func (ev *Evaluator) evalBlock(ctx context.Context, env *RuntimeEnv, n *Block) (Value, error) {
	child := env.Child()
	for _, s := range n.Stmts {
		if s.Let != nil {
			newEnv, _, err := ev.evalLetGroup(ctx, child, s.Let)
			if err != nil {
				return nil, err
			}
			child = newEnv
			continue
		}
		if _, err := ev.eval(ctx, child, s.Expr); err != nil {
			return nil, err
		}
	}
	return ev.eval(ctx, child, n.Final)
}

func (ev *Evaluator) evalMember(ctx context.Context, env *RuntimeEnv, n *Member) (Value, error) {
	obj, err := ev.eval(ctx, env, n.Object)
	if err != nil {
		return nil, err
	}
	switch t := obj.(type) {
	case NullValue, UndefinedValue:
		return nil, &RuntimeError{Msg: fmt.Sprintf("cannot access field %q on null/undefined", n.Field), Span: n.Span()}
	case *RecordValue:
		if v, ok := recordField(t, n.Field); ok {
			return v, nil
		}
		return nil, &RuntimeError{Msg: fmt.Sprintf("missing field %q", n.Field), Span: n.Span()}
	default:
		return nil, &RuntimeError{Msg: fmt.Sprintf("cannot access field %q on non-record value %s", n.Field, DisplayString(obj)), Span: n.Span()}
	}
}

func (ev *Evaluator) evalIndex(ctx context.Context, env *RuntimeEnv, n *Index) (Value, error) {
	container, err := ev.eval(ctx, env, n.Container)
	if err != nil {
		return nil, err
	}
	idx, err := ev.eval(ctx, env, n.IndexExpr)
	if err != nil {
		return nil, err
	}
	switch c := container.(type) {
	case *ArrayValue:
		num, ok := idx.(NumberValue)
		if !ok {
			return nil, &RuntimeError{Msg: "array index must be a number", Span: n.Span()}
		}
		i := int(num)
		if i < 0 || i >= len(c.Elements) {
			return nil, &RuntimeError{Msg: fmt.Sprintf("index %d out of bounds (length %d)", i, len(c.Elements)), Span: n.Span()}
		}
		return c.Elements[i], nil
	case *DictValue:
		if v, ok := dictLookup(c, idx); ok {
			return v, nil
		}
		return UndefinedValue{}, nil
	default:
		return nil, &RuntimeError{Msg: fmt.Sprintf("cannot index non-container value %s", DisplayString(container)), Span: n.Span()}
	}
}

func (ev *Evaluator) evalMatch(ctx context.Context, env *RuntimeEnv, n *Match) (Value, error) {
	disc, err := ev.eval(ctx, env, n.Discriminant)
	if err != nil {
		return nil, err
	}
	for _, c := range n.Cases {
		caseEnv, matched, err := matchPattern(ctx, env, c.Pattern, disc)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		if c.Guard != nil {
			guardVal, err := ev.eval(ctx, caseEnv, c.Guard)
			if err != nil {
				return nil, err
			}
			if !Truthy(guardVal) {
				continue
			}
		}
		return ev.eval(ctx, caseEnv, c.Body)
	}
	return nil, &RuntimeError{Msg: "no matching pattern", Span: n.Span()}
}

// matchPattern attempts to match pat against v. Literal patterns compare
// with structural equality; identifier patterns always match and bind;
// wildcard always matches (spec §4.5, "Match").
func matchPattern(ctx context.Context, env *RuntimeEnv, pat Pattern, v Value) (*RuntimeEnv, bool, error) {
	switch p := pat.(type) {
	case PatternWildcard:
		return env, true, nil
	case PatternIdent:
		child := env.Child()
		child.Define(p.Name, v)
		return child, true, nil
	case PatternLiteral:
		litVal, err := NewEvaluator().eval(ctx, env, p.Value)
		if err != nil {
			return nil, false, err
		}
		return env, ValuesEqual(litVal, v), nil
	default:
		return nil, false, &RuntimeError{Msg: fmt.Sprintf("unknown pattern kind %T", pat)}
	}
}

// evalLetGroup implements the pending-sentinel recursive-binding mechanism
// (spec §4.5, "Recursive binding"; spec §9). Every name in the group is
// pre-declared as pending before any initializer runs, so mutually
// recursive function literals can reference each other; a non-function
// initializer that reads its own (still-pending) name fails immediately.
func (ev *Evaluator) evalLetGroup(ctx context.Context, env *RuntimeEnv, group *LetGroup) (*RuntimeEnv, Value, error) {
	child := env.Child()
	for _, b := range group.Bindings {
		child.Define(b.Name, pendingValue{name: b.Name})
	}
	var last Value
	for _, b := range group.Bindings {
		v, err := ev.eval(ctx, child, b.Init)
		if err != nil {
			return nil, nil, err
		}
		child.Define(b.Name, v)
		last = v
	}
	return child, last, nil
}
