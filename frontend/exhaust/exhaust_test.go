package exhaust_test

import (
	"testing"

	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/exhaust"
	"github.com/cottand/recpat/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hierarchy declares
//
//	sealed interface I permits A, B
//	record A() implements I
//	record B() implements I
//	record Pair(I first, I second)
//	sealed interface Shape permits Circle, Square, Poly
//	record Circle(double r) implements Shape
//	record Square(double side) implements Shape
//	sealed interface Poly extends Shape permits Tri
//	record Tri(int a, int b, int c) implements Poly
//	record Box(int value)
//	sealed interface Option<T> permits Some, None, Fixed
//	record Some<T>(T value) implements Option<T>
//	record None<T>() implements Option<T>
//	record Fixed(int value) implements Option<Integer>
//	sealed class Animal permits Dog
//	final class Dog extends Animal
func hierarchy() *types.Hierarchy {
	tParam := types.TypeParam{Name: "T"}
	return types.NewBuilder().Add(
		types.Interface("I").Permitting("A", "B"),
		types.Record("A").Implementing(types.Ref("I")),
		types.Record("B").Implementing(types.Ref("I")),
		types.Record("Pair", types.Comp("first", types.Ref("I")), types.Comp("second", types.Ref("I"))),

		types.Interface("Shape").Permitting("Circle", "Square", "Poly"),
		types.Record("Circle", types.Comp("r", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Record("Square", types.Comp("side", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Interface("Poly").Implementing(types.Ref("Shape")).Permitting("Tri"),
		types.Record("Tri", types.Comp("a", types.IntT), types.Comp("b", types.IntT), types.Comp("c", types.IntT)).Implementing(types.Ref("Poly")),
		types.Record("Box", types.Comp("value", types.IntT)),

		types.Interface("Option").WithParams(tParam).Permitting("Some", "None", "Fixed"),
		types.Record("Some", types.Comp("value", tParam.Var())).WithParams(tParam).Implementing(types.Ref("Option", tParam.Var())),
		types.Record("None").WithParams(tParam).Implementing(types.Ref("Option", tParam.Var())),
		types.Record("Fixed", types.Comp("value", types.IntT)).Implementing(types.Ref("Option", types.IntegerT)),

		types.Class("Animal").Permitting("Dog"),
		types.Class("Dog").Extending(types.Ref("Animal")).AsFinal(),
	).MustBuild()
}

func unguarded(t *testing.T, h *types.Hierarchy, selector types.Type, patterns ...ast.Pattern) []exhaust.Case {
	out := make([]exhaust.Case, len(patterns))
	for i, p := range patterns {
		checked, errs := check.Check(h, p, selector)
		require.False(t, errs.HasError(), errs.String())
		out[i] = exhaust.Case{Node: checked.Root}
	}
	return out
}

func a(name string) ast.Pattern { return ast.Bind(types.Ref("A"), name) }
func b(name string) ast.Pattern { return ast.Bind(types.Ref("B"), name) }
func i(name string) ast.Pattern { return ast.Bind(types.Ref("I"), name) }
func pair(first, second ast.Pattern) ast.Pattern {
	return ast.Rec(types.Ref("Pair"), first, second)
}

func TestSealedInterface(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("I")

	result := exhaust.Analyze(h, selector, unguarded(t, h, selector, a("a"), b("b")))
	assert.True(t, result.Exhaustive)
	assert.Empty(t, result.Missing)

	result = exhaust.Analyze(h, selector, unguarded(t, h, selector, a("a")))
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"B"}, result.Missing)

	assert.False(t, exhaust.IsExhaustive(h, selector, nil))
}

func TestEveryLeafIsNeeded(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Shape")
	leaves := []ast.Pattern{
		ast.Bind(types.Ref("Circle"), "c"),
		ast.Bind(types.Ref("Square"), "s"),
		ast.Rec(types.Ref("Tri"), ast.Var("x"), ast.Var("y"), ast.Var("z")),
	}
	require.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, leaves...)))

	for removed := range leaves {
		var remaining []ast.Pattern
		for j, p := range leaves {
			if j != removed {
				remaining = append(remaining, p)
			}
		}
		result := exhaust.Analyze(h, selector, unguarded(t, h, selector, remaining...))
		assert.False(t, result.Exhaustive, "without %v", leaves[removed])
		assert.Len(t, result.Missing, 1)
	}
}

func TestIntermediateSealedType(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Shape")
	cases := unguarded(t, h, selector,
		ast.Bind(types.Ref("Circle"), "c"),
		ast.Bind(types.Ref("Poly"), "p"),
		ast.Bind(types.Ref("Square"), "s"),
	)
	assert.True(t, exhaust.IsExhaustive(h, selector, cases))

	result := exhaust.Analyze(h, selector, unguarded(t, h, selector, ast.Bind(types.Ref("Circle"), "c")))
	assert.Equal(t, []string{"Square", "Tri"}, result.Missing)
}

func TestSingleRecordCase(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Pair")

	assert.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, pair(i("x"), i("y")))))
	assert.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, pair(ast.Var("x"), ast.Any()))))
	assert.False(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, pair(a("x"), i("y")))))

	// Tri(int, int, int) with each component unconditional
	tri := types.Ref("Tri")
	assert.True(t, exhaust.IsExhaustive(h, tri, unguarded(t, h, tri,
		ast.Rec(tri, ast.Prim(types.Int, "x"), ast.Prim(types.Long, "y"), ast.Bind(types.IntegerT, "z")))))
	assert.False(t, exhaust.IsExhaustive(h, tri, unguarded(t, h, tri,
		ast.Rec(tri, ast.Prim(types.Int, "x"), ast.Prim(types.Float, "y"), ast.Var("z")))))
}

func TestRecordCrossProduct(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Pair")

	all := []ast.Pattern{
		pair(a("x"), a("y")),
		pair(a("x"), b("y")),
		pair(b("x"), a("y")),
		pair(b("x"), b("y")),
	}
	assert.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, all...)))

	result := exhaust.Analyze(h, selector, unguarded(t, h, selector, all[:3]...))
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Pair(I, I)"}, result.Missing)

	assert.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector,
		pair(a("x"), i("y")),
		pair(b("x"), i("y")),
	)))
}

func TestRecordMergeNeedingSubtyping(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Pair")
	cases := unguarded(t, h, selector,
		pair(a("x"), i("y")),
		pair(b("x"), a("y")),
		pair(i("x"), b("y")),
	)
	assert.True(t, exhaust.IsExhaustive(h, selector, cases))

	cases = unguarded(t, h, selector,
		pair(a("x"), i("y")),
		pair(i("x"), b("y")),
	)
	assert.False(t, exhaust.IsExhaustive(h, selector, cases))
}

func TestNestedRecordsUnderSealedSelector(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Shape")
	cases := unguarded(t, h, selector,
		ast.Rec(types.Ref("Circle"), ast.Prim(types.Double, "r")),
		ast.Rec(types.Ref("Square"), ast.Var("side")),
		ast.Rec(types.Ref("Tri"), ast.Var("x"), ast.Var("y"), ast.Var("z")),
	)
	assert.True(t, exhaust.IsExhaustive(h, selector, cases))

	// float is not an exact view of every double
	cases = unguarded(t, h, selector,
		ast.Rec(types.Ref("Circle"), ast.Prim(types.Float, "r")),
		ast.Rec(types.Ref("Square"), ast.Var("side")),
		ast.Bind(types.Ref("Poly"), "p"),
	)
	result := exhaust.Analyze(h, selector, cases)
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Circle"}, result.Missing)
}

func TestGuardedCasesNeverCover(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Box")
	cases := unguarded(t, h, selector, ast.Rec(selector, ast.Prim(types.Int, "x")))
	require.True(t, exhaust.IsExhaustive(h, selector, cases))

	cases[0].Guarded = true
	result := exhaust.Analyze(h, selector, cases)
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Box"}, result.Missing)
}

func TestObjectIsOpen(t *testing.T) {
	h := hierarchy()
	cases := unguarded(t, h, types.Object, ast.Rec(types.Ref("Box"), ast.Prim(types.Int, "x")))
	result := exhaust.Analyze(h, types.Object, cases)
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Object"}, result.Missing)

	assert.True(t, exhaust.IsExhaustive(h, types.Object, unguarded(t, h, types.Object, ast.Var("o"))))
	assert.True(t, exhaust.IsExhaustive(h, types.Object, unguarded(t, h, types.Object, ast.Bind(types.Object, "o"))))
}

func TestOpenSelectorNeedsUnconditionalPattern(t *testing.T) {
	h := hierarchy()
	require.False(t, h.IsClosed(types.NumberT))

	cases := unguarded(t, h, types.NumberT,
		ast.Bind(types.IntegerT, "i"),
		ast.Bind(types.Boxed{Kind: types.Long}, "l"),
		ast.Bind(types.Boxed{Kind: types.Double}, "d"),
	)
	result := exhaust.Analyze(h, types.NumberT, cases)
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Number"}, result.Missing)

	cases = unguarded(t, h, types.NumberT, ast.Bind(types.IntegerT, "i"), ast.Bind(types.NumberT, "n"))
	assert.True(t, exhaust.IsExhaustive(h, types.NumberT, cases))
}

func TestGenericSealedInterface(t *testing.T) {
	h := hierarchy()

	strings := types.Ref("Option", types.StringT)
	cases := unguarded(t, h, strings,
		ast.Rec(types.Ref("Some"), ast.Bind(types.StringT, "s")),
		ast.Rec(types.Ref("None")),
	)
	assert.True(t, exhaust.IsExhaustive(h, strings, cases), "Fixed can never be an Option<String>")

	integers := types.Ref("Option", types.IntegerT)
	cases = unguarded(t, h, integers,
		ast.Rec(types.Ref("Some"), ast.Prim(types.Int, "i")),
		ast.Rec(types.Ref("None")),
	)
	result := exhaust.Analyze(h, integers, cases)
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Fixed"}, result.Missing)
}

func TestNonAbstractSealedClassNeedsItself(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Animal")

	result := exhaust.Analyze(h, selector, unguarded(t, h, selector, ast.Bind(types.Ref("Dog"), "d")))
	assert.False(t, result.Exhaustive)
	assert.Equal(t, []string{"Animal"}, result.Missing)

	assert.True(t, exhaust.IsExhaustive(h, selector, unguarded(t, h, selector, ast.Bind(types.Ref("Animal"), "a"))))
}

func TestPrimitiveSelectors(t *testing.T) {
	h := hierarchy()

	assert.True(t, exhaust.IsExhaustive(h, types.IntegerT, unguarded(t, h, types.IntegerT, ast.Prim(types.Int, "i"))))
	assert.True(t, exhaust.IsExhaustive(h, types.IntT, unguarded(t, h, types.IntT, ast.Prim(types.Double, "d"))))
	assert.False(t, exhaust.IsExhaustive(h, types.IntT, unguarded(t, h, types.IntT, ast.Prim(types.Byte, "b"))))
	assert.False(t, exhaust.IsExhaustive(h, types.LongT, unguarded(t, h, types.LongT, ast.Prim(types.Double, "d"))))
}

func TestAnalysisIsDeterministic(t *testing.T) {
	h := hierarchy()
	selector := types.Ref("Pair")
	cases := unguarded(t, h, selector,
		pair(a("x"), a("y")),
		pair(b("x"), i("y")),
	)
	first := exhaust.Analyze(h, selector, cases)
	for range 5 {
		assert.Equal(t, first, exhaust.Analyze(h, selector, cases))
	}
}
