package frontend_test

import (
	"testing"

	"github.com/cottand/recpat/frontend"
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hierarchy declares
//
//	sealed interface I permits A, B
//	record A() implements I
//	record B() implements I
//	record R(int x)
//	record Pair(I first, I second)
//	record Holder(Integer value)
func hierarchy() *types.Hierarchy {
	return types.NewBuilder().Add(
		types.Interface("I").Permitting("A", "B"),
		types.Record("A").Implementing(types.Ref("I")),
		types.Record("B").Implementing(types.Ref("I")),
		types.Record("R", types.Comp("x", types.IntT)),
		types.Record("Pair", types.Comp("first", types.Ref("I")), types.Comp("second", types.Ref("I"))),
		types.Record("Holder", types.Comp("value", types.IntegerT)),
	).MustBuild()
}

func unguarded(p ast.Pattern) ast.Case { return ast.Case{Pattern: p} }

func constGuard(p ast.Pattern, value bool) ast.Case {
	return ast.Case{Pattern: p, Guard: &ast.Guard{Source: "false", Const: &value}}
}

func TestSealedInterfaceCovered(t *testing.T) {
	list := ast.NewCaseList(ast.SwitchExpression, types.Ref("I"),
		unguarded(ast.Bind(types.Ref("A"), "a")),
		unguarded(ast.Bind(types.Ref("B"), "b")),
	)
	r := frontend.Analyze(hierarchy(), list)

	require.False(t, r.Errors.HasError(), r.Errors.String())
	assert.True(t, r.Exhaustive)
	assert.Empty(t, r.DominatedIndices())
	assert.False(t, r.NeedsFailurePath)
	assert.True(t, r.NullFails)
}

func TestSealedInterfaceMissingLeaf(t *testing.T) {
	h := hierarchy()
	list := ast.NewCaseList(ast.SwitchExpression, types.Ref("I"),
		unguarded(ast.Bind(types.Ref("A"), "a")),
	)
	r := frontend.Analyze(h, list)

	assert.False(t, r.Exhaustive)
	assert.Equal(t, []string{"B"}, r.Missing)
	assert.Equal(t, []ilerr.ErrCode{ilerr.NonExhaustive}, r.Errors.Codes())
	assert.True(t, r.NeedsFailurePath)

	// old-style switch statements may leave values unmatched
	list = ast.NewCaseList(ast.SwitchStatement, types.Ref("I"), unguarded(ast.Bind(types.Ref("A"), "a")))
	r = frontend.Analyze(h, list)
	assert.False(t, r.Errors.HasError(), r.Errors.String())
	assert.True(t, r.NeedsFailurePath)

	// as does a default
	r = frontend.Analyze(h, list.WithDefault())
	assert.False(t, r.Errors.HasError(), r.Errors.String())
	assert.False(t, r.Exhaustive)
	assert.True(t, r.Covered())
	assert.False(t, r.NeedsFailurePath)
}

func TestNullComponentsNeedFailurePath(t *testing.T) {
	h := hierarchy()
	pair := types.Ref("Pair")
	list := ast.NewCaseList(ast.SwitchExpression, pair,
		unguarded(ast.Rec(pair, ast.Bind(types.Ref("A"), "a"), ast.Bind(types.Ref("I"), "x"))),
		unguarded(ast.Rec(pair, ast.Bind(types.Ref("B"), "b"), ast.Bind(types.Ref("I"), "y"))),
	)
	r := frontend.Analyze(h, list)

	require.False(t, r.Errors.HasError(), r.Errors.String())
	assert.True(t, r.Exhaustive)
	// Pair(null, x) matches neither case
	assert.True(t, r.Remainder)
	assert.True(t, r.NeedsFailurePath)

	r = frontend.Analyze(h, list.WithDefault())
	assert.False(t, r.NeedsFailurePath)

	list = ast.NewCaseList(ast.SwitchExpression, pair,
		unguarded(ast.Rec(pair, ast.Bind(types.Ref("A"), "a"), ast.Var("x"))),
		unguarded(ast.Rec(pair, ast.Var("first"), ast.Var("second"))),
	)
	r = frontend.Analyze(h, list)
	require.False(t, r.Errors.HasError(), r.Errors.String())
	assert.False(t, r.Remainder)
	assert.False(t, r.NeedsFailurePath)
}

func TestUnboxedComponentDoesNotDominateBoxed(t *testing.T) {
	h := hierarchy()
	holder := types.Ref("Holder")
	list := ast.NewCaseList(ast.SwitchExpression, holder,
		unguarded(ast.Rec(holder, ast.Prim(types.Int, "i"))),
		unguarded(ast.Rec(holder, ast.Bind(types.IntegerT, "j"))),
	)
	r := frontend.Analyze(h, list)

	require.False(t, r.Errors.HasError(), r.Errors.String())
	assert.Empty(t, r.DominatedIndices())
	assert.True(t, r.Exhaustive)
	assert.False(t, r.Remainder)

	list = ast.NewCaseList(ast.SwitchStatement, types.Object,
		unguarded(ast.Prim(types.Long, "l")),
		unguarded(ast.Prim(types.Int, "j")),
	)
	r = frontend.Analyze(h, list)
	require.False(t, r.Errors.HasError(), r.Errors.String())
	assert.Empty(t, r.Unreachable())
}

func TestTypePatternDominatesRecordPattern(t *testing.T) {
	rType := types.Ref("R")
	list := ast.NewCaseList(ast.SwitchExpression, rType,
		unguarded(ast.Bind(rType, "r")),
		unguarded(ast.Rec(rType, ast.Var("a"))),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.True(t, r.Exhaustive)
	assert.Equal(t, []int{1}, r.DominatedIndices())
	assert.Equal(t, []ilerr.ErrCode{ilerr.DominatedCase}, r.Errors.Codes())
}

func TestConstantFalseGuard(t *testing.T) {
	rType := types.Ref("R")
	list := ast.NewCaseList(ast.SwitchExpression, rType,
		constGuard(ast.Rec(rType, ast.Prim(types.Int, "x")), false),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.False(t, r.Exhaustive)
	assert.Equal(t, []int{0}, r.AlwaysFalse)
	assert.True(t, r.Errors.Has(ilerr.AlwaysFalseGuard))
	assert.True(t, r.Errors.Has(ilerr.NonExhaustive))
	assert.Equal(t, []int{0}, r.Unreachable())
}

func TestObjectIsOpen(t *testing.T) {
	list := ast.NewCaseList(ast.SwitchExpression, types.Object,
		unguarded(ast.Rec(types.Ref("R"), ast.Prim(types.Int, "x"))),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.False(t, r.Exhaustive)
	assert.Equal(t, []string{"Object"}, r.Missing)
	assert.True(t, r.Errors.Has(ilerr.NonExhaustive))
}

func TestDefaultWithUnconditionalPattern(t *testing.T) {
	list := ast.NewCaseList(ast.SwitchStatement, types.Ref("I"),
		unguarded(ast.Bind(types.Ref("A"), "a")),
		unguarded(ast.Var("i")),
	).WithDefault()
	r := frontend.Analyze(hierarchy(), list)

	assert.Equal(t, []ilerr.ErrCode{ilerr.DefaultWithUnconditional}, r.Errors.Codes())
	assert.True(t, r.Exhaustive)
}

func TestInvalidCasesAreLeftOut(t *testing.T) {
	list := ast.NewCaseList(ast.SwitchExpression, types.Ref("I"),
		unguarded(ast.Bind(types.Ref("R"), "r")),
		unguarded(ast.Bind(types.Ref("A"), "a")),
		unguarded(ast.Bind(types.Ref("B"), "b")),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.Equal(t, []ilerr.ErrCode{ilerr.TypeIncompatible}, r.Errors.Codes())
	require.Len(t, r.Checked, 3)
	assert.Nil(t, r.Checked[0])
	assert.NotNil(t, r.Checked[1])
	assert.True(t, r.Exhaustive)
}

func TestUnknownSelector(t *testing.T) {
	list := ast.NewCaseList(ast.SwitchExpression, types.Ref("Nope"),
		unguarded(ast.Var("x")),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.True(t, r.Errors.Has(ilerr.UnknownType))
	assert.False(t, r.Exhaustive)
	assert.Len(t, r.Checked, 1)
}

func TestInstanceofNeverFails(t *testing.T) {
	list := ast.NewCaseList(ast.Instanceof, types.Object,
		unguarded(ast.Rec(types.Ref("R"), ast.Var("x"))),
	)
	r := frontend.Analyze(hierarchy(), list)

	assert.False(t, r.Errors.HasError(), r.Errors.String())
	assert.False(t, r.NeedsFailurePath)
	assert.False(t, r.NullFails)
}

func TestAnalysisIsDeterministic(t *testing.T) {
	h := hierarchy()
	list := ast.NewCaseList(ast.SwitchExpression, types.Object,
		unguarded(ast.Bind(types.Ref("I"), "i")),
		unguarded(ast.Bind(types.Ref("A"), "a")),
		constGuard(ast.Rec(types.Ref("R"), ast.Var("x")), false),
		unguarded(ast.Rec(types.Ref("R"), ast.Prim(types.Byte, "b"))),
	)
	first := frontend.Analyze(h, list)
	for range 5 {
		again := frontend.Analyze(h, list)
		assert.Equal(t, first.Exhaustive, again.Exhaustive)
		assert.Equal(t, first.Missing, again.Missing)
		assert.Equal(t, first.Dominated, again.Dominated)
		assert.Equal(t, first.Unreachable(), again.Unreachable())
		assert.Equal(t, first.Errors.Codes(), again.Errors.Codes())
	}
	assert.Equal(t, []int{1, 2}, first.Unreachable())
}
