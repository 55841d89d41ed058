package lumen

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lumen-lang/lumen/pkg/hm"
	"github.com/pkg/errors"
)

// Inferencer implements HM type inference extended with row-polymorphic
// records and directional subtyping (spec §4.4). It owns the two
// accumulators described there: a list of equality constraints and a list
// of deferred field-access constraints, plus the two independent
// fresh-variable counters (spec invariant: "separate counters").
type Inferencer struct {
	tvFresh  *hm.TypeVarFresher
	rowFresh *hm.RowVarFresher

	equalities  []eqConstraint
	fieldAccess []fieldAccessConstraint
}

type eqConstraint struct {
	A, B hm.Type
}

type fieldAccessConstraint struct {
	Object hm.Type
	Field  string
	Result hm.Type
}

// NewInferencer creates an Inferencer with fresh, empty counters.
func NewInferencer() *Inferencer {
	return &Inferencer{tvFresh: hm.NewTypeVarFresher(), rowFresh: hm.NewRowVarFresher()}
}

func (inf *Inferencer) fresh() hm.TypeVariable   { return inf.tvFresh.Fresh() }
func (inf *Inferencer) freshRow() hm.RowVariable { return inf.rowFresh.FreshRow() }

func (inf *Inferencer) addEq(a, b hm.Type) {
	inf.equalities = append(inf.equalities, eqConstraint{a, b})
}

func (inf *Inferencer) addFieldAccess(object hm.Type, field string, result hm.Type) {
	inf.fieldAccess = append(inf.fieldAccess, fieldAccessConstraint{object, field, result})
}

// DefaultTypeEnv returns a type environment with a scheme for every
// built-in (spec §4.4.6: "the initial Γ₀ contains schemes for every
// built-in").
func DefaultTypeEnv() *TypeEnv {
	env := NewTypeEnv()
	for _, b := range Builtins() {
		env.Bind(b.Name, b.Scheme)
	}
	return env
}

// InferAndSolve iterates program items in order, solving constraints after
// each one and threading the resulting substitution through Γ (spec
// §4.4.6). baseEnv may be nil, in which case DefaultTypeEnv is used.
func InferAndSolve(ctx context.Context, program *Program, baseEnv *TypeEnv) (*TypeEnv, error) {
	env := baseEnv
	if env == nil {
		env = DefaultTypeEnv()
	}
	inf := NewInferencer()
	for _, item := range program.Items {
		if group, ok := item.(*LetGroup); ok {
			newEnv, _, err := inf.inferLetGroup(ctx, env, group)
			if err != nil {
				return nil, err
			}
			env = newEnv
			continue
		}
		_, err := inf.infer(ctx, env, item)
		if err != nil {
			return nil, err
		}
		subs, err := inf.solve()
		if err != nil {
			return nil, err
		}
		env = env.Apply(subs).(*TypeEnv)
	}
	return env, nil
}

// InferExpression infers a single expression's type under env, solving
// immediately (spec §6: "used for single-expression type queries").
func InferExpression(ctx context.Context, expr Expr, env *TypeEnv) (hm.Type, error) {
	inf := NewInferencer()
	t, err := inf.infer(ctx, env, expr)
	if err != nil {
		return nil, err
	}
	subs, err := inf.solve()
	if err != nil {
		return nil, err
	}
	return subs.Apply(t), nil
}

// infer dispatches on node's concrete type (spec §4.4, "Inference rules").
func (inf *Inferencer) infer(ctx context.Context, env *TypeEnv, node Expr) (hm.Type, error) {
	switch n := node.(type) {
	case *NumberLit:
		return NumberType{}, nil
	case *StringLit:
		return StringType{}, nil
	case *BoolLit:
		return BooleanType{}, nil
	case *NullLit:
		return NullType{}, nil
	case *UndefinedLit:
		return UndefinedType{}, nil
	case *Identifier:
		scheme, ok := env.SchemeOf(n.Name)
		if !ok {
			slog.DebugContext(ctx, "unbound identifier during inference", "name", n.Name)
			return nil, &TypeError{Msg: fmt.Sprintf("undefined identifier %q", n.Name), Span: n.Span()}
		}
		return hm.Instantiate(inf.tvFresh, scheme), nil
	case *ArrayLit:
		return inf.inferArrayLit(ctx, env, n)
	case *DictLit:
		return inf.inferDictLit(ctx, env, n)
	case *RecordLit:
		return inf.inferRecordLit(ctx, env, n)
	case *FuncLit:
		return inf.inferFuncLit(ctx, env, n)
	case *Call:
		return inf.inferCall(ctx, env, n)
	case *Binary:
		return inf.inferBinary(ctx, env, n)
	case *Unary:
		return inf.inferUnary(ctx, env, n)
	case *Conditional:
		return inf.inferConditional(ctx, env, n)
	case *Block:
		return inf.inferBlock(ctx, env, n)
	case *Member:
		return inf.inferMember(ctx, env, n)
	case *Index:
		return inf.inferIndex(ctx, env, n)
	case *Match:
		return inf.inferMatch(ctx, env, n)
	case *LetGroup:
		_, last, err := inf.inferLetGroup(ctx, env, n)
		if err != nil {
			return nil, err
		}
		return last, nil
	default:
		return nil, &TypeError{Msg: fmt.Sprintf("inference not implemented for %T", node), Span: node.Span()}
	}
}

func (inf *Inferencer) inferArrayLit(ctx context.Context, env *TypeEnv, n *ArrayLit) (hm.Type, error) {
	if len(n.Elements) == 0 {
		return ArrayType{Elem: inf.fresh()}, nil
	}
	first, err := inf.infer(ctx, env, n.Elements[0])
	if err != nil {
		return nil, err
	}
	for _, elem := range n.Elements[1:] {
		t, err := inf.infer(ctx, env, elem)
		if err != nil {
			return nil, err
		}
		inf.addEq(first, t)
	}
	return ArrayType{Elem: first}, nil
}

func (inf *Inferencer) inferDictLit(ctx context.Context, env *TypeEnv, n *DictLit) (hm.Type, error) {
	if len(n.Entries) == 0 {
		return DictType{Key: inf.fresh(), Value: inf.fresh()}, nil
	}
	firstK, err := inf.infer(ctx, env, n.Entries[0].Key)
	if err != nil {
		return nil, err
	}
	firstV, err := inf.infer(ctx, env, n.Entries[0].Value)
	if err != nil {
		return nil, err
	}
	for _, e := range n.Entries[1:] {
		k, err := inf.infer(ctx, env, e.Key)
		if err != nil {
			return nil, err
		}
		v, err := inf.infer(ctx, env, e.Value)
		if err != nil {
			return nil, err
		}
		inf.addEq(firstK, k)
		inf.addEq(firstV, v)
	}
	return DictType{Key: firstK, Value: firstV}, nil
}

func (inf *Inferencer) inferRecordLit(ctx context.Context, env *TypeEnv, n *RecordLit) (hm.Type, error) {
	fields := make(map[string]hm.Type, len(n.Fields))
	for _, f := range n.Fields {
		t, err := inf.infer(ctx, env, f.Value)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = t
	}
	return RecordType{Row: Row{Fields: fields}}, nil
}

func (inf *Inferencer) inferFuncLit(ctx context.Context, env *TypeEnv, n *FuncLit) (hm.Type, error) {
	tvEnv := map[string]hm.Type{}
	child := env.Child()
	params := make([]hm.Type, len(n.Params))
	for i, p := range n.Params {
		var t hm.Type
		if p.Type != nil {
			resolved, err := inf.resolveTypeExpr(p.Type, tvEnv)
			if err != nil {
				return nil, err
			}
			t = resolved
		} else {
			t = inf.fresh()
		}
		params[i] = t
		child.Bind(p.Name, hm.NewScheme(nil, t))
	}
	bodyType, err := inf.infer(ctx, child, n.Body)
	if err != nil {
		return nil, err
	}
	ret := bodyType
	if n.ReturnType != nil {
		annotated, err := inf.resolveTypeExpr(n.ReturnType, tvEnv)
		if err != nil {
			return nil, err
		}
		inf.addEq(bodyType, annotated)
		ret = annotated
	}
	return FunctionType{Params: params, Ret: ret}, nil
}

func (inf *Inferencer) inferCall(ctx context.Context, env *TypeEnv, n *Call) (hm.Type, error) {
	calleeType, err := inf.infer(ctx, env, n.Callee)
	if err != nil {
		return nil, err
	}
	argTypes := make([]hm.Type, len(n.Args))
	for i, a := range n.Args {
		t, err := inf.infer(ctx, env, a)
		if err != nil {
			return nil, err
		}
		argTypes[i] = t
	}
	retVar := inf.fresh()
	synth := FunctionType{Params: argTypes, Ret: retVar}
	if err := inf.assignable(calleeType, synth); err != nil {
		return nil, err
	}
	return retVar, nil
}

func (inf *Inferencer) inferBinary(ctx context.Context, env *TypeEnv, n *Binary) (hm.Type, error) {
	left, err := inf.infer(ctx, env, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := inf.infer(ctx, env, n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		inf.addEq(left, NumberType{})
		inf.addEq(right, NumberType{})
		return NumberType{}, nil
	case OpLt, OpLe, OpGt, OpGe:
		inf.addEq(left, NumberType{})
		inf.addEq(right, NumberType{})
		return BooleanType{}, nil
	case OpEq, OpNotEq:
		inf.addEq(left, right)
		return BooleanType{}, nil
	case OpAnd, OpOr:
		inf.addEq(left, BooleanType{})
		inf.addEq(right, BooleanType{})
		return BooleanType{}, nil
	default:
		return nil, &TypeError{Msg: fmt.Sprintf("unknown binary operator %q", n.Op), Span: n.Span()}
	}
}

func (inf *Inferencer) inferUnary(ctx context.Context, env *TypeEnv, n *Unary) (hm.Type, error) {
	operand, err := inf.infer(ctx, env, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpNeg:
		inf.addEq(operand, NumberType{})
		return NumberType{}, nil
	case OpNot:
		inf.addEq(operand, BooleanType{})
		return BooleanType{}, nil
	default:
		return nil, &TypeError{Msg: fmt.Sprintf("unknown unary operator %q", n.Op), Span: n.Span()}
	}
}

func (inf *Inferencer) inferConditional(ctx context.Context, env *TypeEnv, n *Conditional) (hm.Type, error) {
	cond, err := inf.infer(ctx, env, n.Cond)
	if err != nil {
		return nil, err
	}
	inf.addEq(cond, BooleanType{})

	thenType, err := inf.infer(ctx, env, n.Then)
	if err != nil {
		return nil, err
	}
	if n.Else == nil {
		inf.addEq(thenType, UnitType{})
		return UnitType{}, nil
	}
	elseType, err := inf.infer(ctx, env, n.Else)
	if err != nil {
		return nil, err
	}
	thenRec, thenOK := thenType.(RecordType)
	elseRec, elseOK := elseType.(RecordType)
	if thenOK && elseOK {
		joined, hasCommon := structuralJoin(thenRec, elseRec, inf)
		if hasCommon {
			return joined, nil
		}
	}
	inf.addEq(thenType, elseType)
	return thenType, nil
}

// structuralJoin computes the common-field join of two record types (spec
// §4.4, "Conditional"). Returns ok=false when there are no common fields,
// in which case the caller falls back to a plain equality constraint.
func structuralJoin(a, b RecordType, inf *Inferencer) (hm.Type, bool) {
	fields := map[string]hm.Type{}
	for name, at := range a.Row.Fields {
		bt, ok := b.Row.Fields[name]
		if !ok {
			continue
		}
		aRec, aIsRec := at.(RecordType)
		bRec, bIsRec := bt.(RecordType)
		if aIsRec && bIsRec {
			nested, ok := structuralJoin(aRec, bRec, inf)
			if ok {
				fields[name] = nested
				continue
			}
		}
		inf.addEq(at, bt)
		fields[name] = at
	}
	if len(fields) == 0 {
		return nil, false
	}
	return RecordType{Row: Row{Fields: fields}}, true
}

func (inf *Inferencer) inferBlock(ctx context.Context, env *TypeEnv, n *Block) (hm.Type, error) {
	child := env.Child()
	for _, s := range n.Stmts {
		if s.Let != nil {
			newEnv, _, err := inf.inferLetGroup(ctx, child, s.Let)
			if err != nil {
				return nil, err
			}
			child = newEnv
			continue
		}
		if _, err := inf.infer(ctx, child, s.Expr); err != nil {
			return nil, err
		}
	}
	return inf.infer(ctx, child, n.Final)
}

func (inf *Inferencer) inferMember(ctx context.Context, env *TypeEnv, n *Member) (hm.Type, error) {
	objType, err := inf.infer(ctx, env, n.Object)
	if err != nil {
		return nil, err
	}
	switch obj := objType.(type) {
	case RecordType:
		if t, ok := obj.Row.Fields[n.Field]; ok {
			return t, nil
		}
		if obj.Row.Tail != nil {
			return inf.fresh(), nil
		}
		return nil, &TypeError{Msg: fmt.Sprintf("no field %q on record type %s", n.Field, obj), Span: n.Span()}
	case hm.TypeVariable:
		result := inf.fresh()
		inf.addFieldAccess(obj, n.Field, result)
		return result, nil
	default:
		return nil, &TypeError{Msg: fmt.Sprintf("cannot access field %q on non-record type %s", n.Field, objType), Span: n.Span()}
	}
}

func (inf *Inferencer) inferIndex(ctx context.Context, env *TypeEnv, n *Index) (hm.Type, error) {
	containerType, err := inf.infer(ctx, env, n.Container)
	if err != nil {
		return nil, err
	}
	indexType, err := inf.infer(ctx, env, n.IndexExpr)
	if err != nil {
		return nil, err
	}
	_, indexIsString := n.IndexExpr.(*StringLit)
	_, containerIsDictLit := n.Container.(*DictLit)
	if indexIsString || containerIsDictLit {
		result := inf.fresh()
		inf.addEq(containerType, DictType{Key: indexType, Value: result})
		return result, nil
	}
	result := inf.fresh()
	inf.addEq(containerType, ArrayType{Elem: result})
	inf.addEq(indexType, NumberType{})
	return result, nil
}

func (inf *Inferencer) inferMatch(ctx context.Context, env *TypeEnv, n *Match) (hm.Type, error) {
	discType, err := inf.infer(ctx, env, n.Discriminant)
	if err != nil {
		return nil, err
	}
	var resultType hm.Type
	for i, c := range n.Cases {
		caseEnv := env.Child()
		if err := inf.bindPattern(ctx, caseEnv, c.Pattern, discType); err != nil {
			return nil, err
		}
		if c.Guard != nil {
			guardType, err := inf.infer(ctx, caseEnv, c.Guard)
			if err != nil {
				return nil, err
			}
			inf.addEq(guardType, BooleanType{})
		}
		bodyType, err := inf.infer(ctx, caseEnv, c.Body)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			resultType = bodyType
		} else {
			inf.addEq(resultType, bodyType)
		}
	}
	return resultType, nil
}

// bindPattern extends env with the bindings a pattern introduces. An
// identifier pattern generalizes the discriminant type so bound names are
// polymorphic over it within guards and the case body (spec §4.4,
// "Match").
func (inf *Inferencer) bindPattern(ctx context.Context, env *TypeEnv, pat Pattern, discType hm.Type) error {
	switch p := pat.(type) {
	case PatternWildcard:
		return nil
	case PatternLiteral:
		litType, err := inf.infer(ctx, env, p.Value)
		if err != nil {
			return err
		}
		inf.addEq(litType, discType)
		return nil
	case PatternIdent:
		env.Bind(p.Name, hm.Generalize(env, discType))
		return nil
	default:
		return &TypeError{Msg: fmt.Sprintf("unknown pattern kind %T", pat)}
	}
}

// inferLetGroup types a binding group as a unit (spec §4.4.1). It returns
// the extended environment and the type of the group's last binding (used
// when a LetGroup appears in expression position or as a program's last item).
func (inf *Inferencer) inferLetGroup(ctx context.Context, env *TypeEnv, group *LetGroup) (*TypeEnv, hm.Type, error) {
	child := env.Child()
	placeholders := make([]hm.Type, len(group.Bindings))
	tvEnv := map[string]hm.Type{}
	for i, b := range group.Bindings {
		var placeholder hm.Type
		if b.Type != nil {
			resolved, err := inf.resolveTypeExpr(b.Type, tvEnv)
			if err != nil {
				return nil, nil, err
			}
			placeholder = resolved
		} else {
			placeholder = inf.fresh()
		}
		placeholders[i] = placeholder
		child.Bind(b.Name, hm.NewScheme(nil, placeholder))
	}

	var last hm.Type
	for i, b := range group.Bindings {
		inferred, err := inf.infer(ctx, child, b.Init)
		if err != nil {
			return nil, nil, err
		}
		inf.addEq(inferred, placeholders[i])
		if b.Type != nil {
			if err := inf.assignable(inferred, placeholders[i]); err != nil {
				return nil, nil, err
			}
		}
		last = inferred
	}

	subs, err := inf.solve()
	if err != nil {
		return nil, nil, err
	}
	env = env.Apply(subs).(*TypeEnv)

	result := env.Child()
	for i, b := range group.Bindings {
		solved := subs.Apply(placeholders[i])
		scheme := hm.Generalize(env, solved)
		result.Bind(b.Name, scheme)
	}
	return result, subs.Apply(last), nil
}

// resolveTypeExpr turns a parsed TypeExpr into a concrete hm.Type. Every
// occurrence of the same type-variable name within one tvEnv (one per
// function literal or let group) resolves to the same fresh TypeVariable.
func (inf *Inferencer) resolveTypeExpr(t TypeExpr, tvEnv map[string]hm.Type) (hm.Type, error) {
	switch te := t.(type) {
	case NamedTypeExpr:
		switch te.Name {
		case "number":
			return NumberType{}, nil
		case "string":
			return StringType{}, nil
		case "boolean":
			return BooleanType{}, nil
		case "null":
			return NullType{}, nil
		case "undefined":
			return UndefinedType{}, nil
		case "unit":
			return UnitType{}, nil
		default:
			return nil, errors.Errorf("unknown primitive type %q", te.Name)
		}
	case VarTypeExpr:
		if existing, ok := tvEnv[te.Name]; ok {
			return existing, nil
		}
		fresh := inf.fresh()
		tvEnv[te.Name] = fresh
		return fresh, nil
	case ArrayTypeExpr:
		elem, err := inf.resolveTypeExpr(te.Elem, tvEnv)
		if err != nil {
			return nil, err
		}
		return ArrayType{Elem: elem}, nil
	case DictTypeExpr:
		key, err := inf.resolveTypeExpr(te.Key, tvEnv)
		if err != nil {
			return nil, err
		}
		val, err := inf.resolveTypeExpr(te.Value, tvEnv)
		if err != nil {
			return nil, err
		}
		return DictType{Key: key, Value: val}, nil
	case FuncTypeExpr:
		params := make([]hm.Type, len(te.Params))
		for i, p := range te.Params {
			resolved, err := inf.resolveTypeExpr(p, tvEnv)
			if err != nil {
				return nil, err
			}
			params[i] = resolved
		}
		ret, err := inf.resolveTypeExpr(te.Ret, tvEnv)
		if err != nil {
			return nil, err
		}
		return FunctionType{Params: params, Ret: ret}, nil
	default:
		return nil, errors.Errorf("unknown type expression %T", t)
	}
}

// assignable implements directional subtyping `a ≤ b` (spec §4.4.2). It
// returns an error only for definite mismatches (arity, missing field);
// everything else that can't be decided immediately is deferred to the
// equality-constraint list for the unifier to settle.
func (inf *Inferencer) assignable(a, b hm.Type) error {
	if a.Eq(b) {
		return nil
	}
	af, aIsFunc := a.(FunctionType)
	bf, bIsFunc := b.(FunctionType)
	if aIsFunc && bIsFunc {
		if len(af.Params) != len(bf.Params) {
			return &TypeError{Msg: fmt.Sprintf("function arity mismatch: %s vs %s", a, b)}
		}
		for i := range af.Params {
			if err := inf.assignable(bf.Params[i], af.Params[i]); err != nil {
				return err
			}
		}
		return inf.assignable(af.Ret, bf.Ret)
	}
	ar, aIsRec := a.(RecordType)
	br, bIsRec := b.(RecordType)
	if aIsRec && bIsRec {
		var missing []string
		for name, bt := range br.Row.Fields {
			at, ok := ar.Row.Fields[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			if err := inf.assignable(at, bt); err != nil {
				return err
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return &TypeError{Msg: fmt.Sprintf("missing field(s) %v required by %s", missing, b)}
		}
		return nil
	}
	aa, aIsArr := a.(ArrayType)
	ba, bIsArr := b.(ArrayType)
	if aIsArr && bIsArr {
		inf.addEq(aa.Elem, ba.Elem)
		return nil
	}
	ad, aIsDict := a.(DictType)
	bd, bIsDict := b.(DictType)
	if aIsDict && bIsDict {
		inf.addEq(ad.Key, bd.Key)
		inf.addEq(ad.Value, bd.Value)
		return nil
	}
	inf.addEq(a, b)
	return nil
}

// solve runs constraint solving to a fixed substitution (spec §4.4.3) and
// clears both accumulators.
func (inf *Inferencer) solve() (hm.Subs, error) {
	subs := hm.NewSubs()
	for _, c := range inf.equalities {
		a := subs.Apply(c.A)
		b := subs.Apply(c.B)
		s, err := inf.unify(a, b)
		if err != nil {
			return hm.Subs{}, err
		}
		subs = subs.Compose(s)
	}

	groups := map[hm.TypeVariable][]fieldAccessConstraint{}
	var order []hm.TypeVariable
	for _, fc := range inf.fieldAccess {
		obj := subs.Apply(fc.Object)
		tv, ok := obj.(hm.TypeVariable)
		if !ok {
			continue
		}
		if _, seen := groups[tv]; !seen {
			order = append(order, tv)
		}
		groups[tv] = append(groups[tv], fieldAccessConstraint{obj, fc.Field, subs.Apply(fc.Result)})
	}
	for _, tv := range order {
		fields := map[string]hm.Type{}
		for _, fc := range groups[tv] {
			if existing, ok := fields[fc.Field]; ok {
				s, err := inf.unify(subs.Apply(existing), subs.Apply(fc.Result))
				if err != nil {
					return hm.Subs{}, err
				}
				subs = subs.Compose(s)
				continue
			}
			fields[fc.Field] = fc.Result
		}
		rowTail := inf.freshRow()
		record := RecordType{Row: Row{Fields: fields, Tail: &rowTail}}
		s, err := inf.unify(tv, record)
		if err != nil {
			return hm.Subs{}, err
		}
		subs = subs.Compose(s)
	}

	inf.equalities = nil
	inf.fieldAccess = nil
	return subs, nil
}

// unify is symmetric structural unification (spec §4.4.4), distinct from
// assignable's directional, call-site-only subtyping.
func (inf *Inferencer) unify(a, b hm.Type) (hm.Subs, error) {
	if a.Eq(b) {
		return hm.NewSubs(), nil
	}
	if tv, ok := a.(hm.TypeVariable); ok {
		return inf.bindTypeVar(tv, b)
	}
	if tv, ok := b.(hm.TypeVariable); ok {
		return inf.bindTypeVar(tv, a)
	}
	switch at := a.(type) {
	case FunctionType:
		bt, ok := b.(FunctionType)
		if !ok || len(at.Params) != len(bt.Params) {
			return hm.Subs{}, hm.UnificationError{Have: a, Want: b}
		}
		subs := hm.NewSubs()
		for i := range at.Params {
			p1 := subs.Apply(at.Params[i])
			p2 := subs.Apply(bt.Params[i])
			s, err := inf.unify(p1, p2)
			if err != nil {
				return hm.Subs{}, err
			}
			subs = subs.Compose(s)
		}
		r1 := subs.Apply(at.Ret)
		r2 := subs.Apply(bt.Ret)
		s, err := inf.unify(r1, r2)
		if err != nil {
			return hm.Subs{}, err
		}
		return subs.Compose(s), nil
	case ArrayType:
		bt, ok := b.(ArrayType)
		if !ok {
			return hm.Subs{}, hm.UnificationError{Have: a, Want: b}
		}
		return inf.unify(at.Elem, bt.Elem)
	case DictType:
		bt, ok := b.(DictType)
		if !ok {
			return hm.Subs{}, hm.UnificationError{Have: a, Want: b}
		}
		subs, err := inf.unify(at.Key, bt.Key)
		if err != nil {
			return hm.Subs{}, err
		}
		s2, err := inf.unify(subs.Apply(at.Value), subs.Apply(bt.Value))
		if err != nil {
			return hm.Subs{}, err
		}
		return subs.Compose(s2), nil
	case RecordType:
		bt, ok := b.(RecordType)
		if !ok {
			return hm.Subs{}, hm.UnificationError{Have: a, Want: b}
		}
		return inf.unifyRecords(at, bt)
	default:
		return hm.Subs{}, hm.UnificationError{Have: a, Want: b}
	}
}

// bindTypeVar binds tv to t after an occurs check, except that the occurs
// check is suppressed when t is a record type (spec §4.4.5, §9): this lets
// a type variable bound to an open record whose field types mention the
// same variable resolve rather than be rejected.
func (inf *Inferencer) bindTypeVar(tv hm.TypeVariable, t hm.Type) (hm.Subs, error) {
	if ot, ok := t.(hm.TypeVariable); ok && tv == ot {
		return hm.NewSubs(), nil
	}
	if _, isRecord := t.(RecordType); !isRecord {
		if hm.OccursIn(tv, t) {
			return hm.Subs{}, hm.OccursCheckError{Var: tv, In: t}
		}
	}
	subs := hm.NewSubs()
	subs.AddType(tv, t)
	return subs, nil
}

func (inf *Inferencer) unifyRecords(a, b RecordType) (hm.Subs, error) {
	subs := hm.NewSubs()
	var aOnly, bOnly []string
	for name := range a.Row.Fields {
		if _, ok := b.Row.Fields[name]; !ok {
			aOnly = append(aOnly, name)
			continue
		}
		s, err := inf.unify(subs.Apply(a.Row.Fields[name]), subs.Apply(b.Row.Fields[name]))
		if err != nil {
			return hm.Subs{}, err
		}
		subs = subs.Compose(s)
	}
	for name := range b.Row.Fields {
		if _, ok := a.Row.Fields[name]; !ok {
			bOnly = append(bOnly, name)
		}
	}
	if len(aOnly) > 0 && b.Row.Tail == nil {
		sort.Strings(aOnly)
		return hm.Subs{}, &TypeError{Msg: fmt.Sprintf("missing field(s) %v in second object", aOnly)}
	}
	if len(bOnly) > 0 && a.Row.Tail == nil {
		sort.Strings(bOnly)
		return hm.Subs{}, &TypeError{Msg: fmt.Sprintf("missing field(s) %v in first object", bOnly)}
	}
	if a.Row.Tail != nil && b.Row.Tail != nil {
		subs = subs.Compose(hm.BindRowVar(*a.Row.Tail, *b.Row.Tail))
	}
	return subs, nil
}
