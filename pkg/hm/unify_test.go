package hm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindTypeVarToItselfIsNoOp(t *testing.T) {
	subs, err := BindTypeVar(0, TypeVariable(0))
	require.NoError(t, err)
	require.Empty(t, subs.Types)
}

func TestBindTypeVarProducesSingletonSubstitution(t *testing.T) {
	subs, err := BindTypeVar(0, dummyType{"number"})
	require.NoError(t, err)
	typ, ok := subs.GetType(0)
	require.True(t, ok)
	require.Equal(t, dummyType{"number"}, typ)
}

// selfReferentialType is a Type whose FreeTypeVar reports a fixed variable,
// simulating a constructor (e.g. a function type) that embeds the variable
// being bound — the case the occurs check exists to reject.
type selfReferentialType struct{ v TypeVariable }

func (s selfReferentialType) Name() string             { return "self" }
func (s selfReferentialType) String() string           { return "self(" + s.v.String() + ")" }
func (s selfReferentialType) Eq(o Type) bool            { ot, ok := o.(selfReferentialType); return ok && ot.v == s.v }
func (s selfReferentialType) Apply(Subs) Substitutable { return s }
func (s selfReferentialType) FreeTypeVar() TypeVarSet   { return NewTypeVarSet(s.v) }

func TestBindTypeVarFailsOccursCheck(t *testing.T) {
	_, err := BindTypeVar(0, selfReferentialType{v: 0})
	require.Error(t, err)
	var occ OccursCheckError
	require.ErrorAs(t, err, &occ)
	require.Equal(t, TypeVariable(0), occ.Var)
}

func TestOccursInDetectsFreeVariable(t *testing.T) {
	require.True(t, OccursIn(0, selfReferentialType{v: 0}))
	require.False(t, OccursIn(1, selfReferentialType{v: 0}))
}

func TestBindRowVarToItselfIsNoOp(t *testing.T) {
	subs := BindRowVar(0, 0)
	require.Empty(t, subs.Rows)
}

func TestBindRowVarProducesSingletonSubstitution(t *testing.T) {
	subs := BindRowVar(0, 1)
	require.Equal(t, RowVariable(1), subs.Rows[0])
}

func TestUnificationErrorMessage(t *testing.T) {
	err := UnificationError{Have: dummyType{"number"}, Want: dummyType{"string"}}
	require.Contains(t, err.Error(), "number")
	require.Contains(t, err.Error(), "string")
}

func TestOccursCheckErrorMessage(t *testing.T) {
	err := OccursCheckError{Var: 0, In: selfReferentialType{v: 0}}
	require.Contains(t, err.Error(), "occurs check failed")
}
