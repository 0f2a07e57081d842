package types_test

import (
	"errors"
	"testing"

	"github.com/cottand/recpat/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shapes declares
//
//	sealed interface Shape permits Circle, Square, Poly
//	record Circle(double r) implements Shape
//	record Square(double side) implements Shape
//	sealed interface Poly extends Shape permits Tri
//	record Tri(int a, int b, int c) implements Poly
//	interface Drawable
func shapes(t *testing.T) *types.Hierarchy {
	h, err := types.NewBuilder().Add(
		types.Interface("Shape").Permitting("Circle", "Square", "Poly"),
		types.Record("Circle", types.Comp("r", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Record("Square", types.Comp("side", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Interface("Poly").Implementing(types.Ref("Shape")).Permitting("Tri"),
		types.Record("Tri", types.Comp("a", types.IntT), types.Comp("b", types.IntT), types.Comp("c", types.IntT)).Implementing(types.Ref("Poly")),
		types.Interface("Drawable"),
	).Build()
	require.NoError(t, err)
	return h
}

// options declares
//
//	sealed interface Option<T> permits Some, None
//	record Some<T>(T value) implements Option<T>
//	record None<T>() implements Option<T>
//	record Ints(int value) implements Option<Integer>  -- not permitted, see below
func options(t *testing.T) *types.Hierarchy {
	tParam := types.TypeParam{Name: "T"}
	h, err := types.NewBuilder().Add(
		types.Interface("Option").WithParams(tParam).Permitting("Some", "None", "Fixed"),
		types.Record("Some", types.Comp("value", tParam.Var())).WithParams(tParam).
			Implementing(types.Ref("Option", tParam.Var())),
		types.Record("None").WithParams(tParam).Implementing(types.Ref("Option", tParam.Var())),
		types.Record("Fixed", types.Comp("value", types.IntT)).Implementing(types.Ref("Option", types.IntegerT)),
	).Build()
	require.NoError(t, err)
	return h
}

func TestBuildRejectsInvalidHierarchies(t *testing.T) {
	cases := map[string]struct {
		decls    []*types.Decl
		expected string
	}{
		"unknown permitted subtype": {
			decls:    []*types.Decl{types.Interface("I").Permitting("A")},
			expected: "permitted subtype A is not declared",
		},
		"permitted subtype that does not extend": {
			decls: []*types.Decl{
				types.Interface("I").Permitting("A"),
				types.Record("A"),
			},
			expected: "does not directly extend I",
		},
		"subtype missing from permits": {
			decls: []*types.Decl{
				types.Interface("I").Permitting("A"),
				types.Record("A").Implementing(types.Ref("I")),
				types.Record("B").Implementing(types.Ref("I")),
			},
			expected: "B is not allowed in the sealed hierarchy of I",
		},
		"extending a record": {
			decls: []*types.Decl{
				types.Record("R"),
				types.Class("C").Extending(types.Ref("R")),
			},
			expected: "R is not a class",
		},
		"duplicate component": {
			decls:    []*types.Decl{types.Record("R", types.Comp("x", types.IntT), types.Comp("x", types.LongT))},
			expected: "record component x is already defined",
		},
		"cycle": {
			decls: []*types.Decl{
				types.Interface("A").Implementing(types.Ref("B")),
				types.Interface("B").Implementing(types.Ref("A")),
			},
			expected: "cyclic inheritance",
		},
		"reserved name": {
			decls:    []*types.Decl{types.Record("Integer")},
			expected: "reserved type name",
		},
		"wrong type argument count": {
			decls: []*types.Decl{
				types.Record("Box", types.Comp("v", &types.TypeVar{Name: "T"})).WithParams(types.TypeParam{Name: "T"}),
				types.Record("R", types.Comp("b", types.Ref("Box", types.IntegerT, types.IntegerT))),
			},
			expected: "wrong number of type arguments",
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := types.NewBuilder().Add(c.decls...).Build()
			require.Error(t, err)
			var buildErr *types.BuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Contains(t, err.Error(), c.expected)
		})
	}
}

func TestSubtyping(t *testing.T) {
	h := shapes(t)

	assert.True(t, h.IsSubtype(types.Ref("Tri"), types.Ref("Shape")))
	assert.True(t, h.IsSubtype(types.Ref("Tri"), types.Object))
	assert.True(t, h.IsSubtype(types.IntegerT, types.NumberT))
	assert.True(t, h.IsSubtype(types.IntegerT, types.Object))
	assert.False(t, h.IsSubtype(types.Ref("Shape"), types.Ref("Tri")))
	assert.False(t, h.IsSubtype(types.IntT, types.Object))
	assert.False(t, h.IsSubtype(types.Boxed{Kind: types.Boolean}, types.NumberT))
	assert.False(t, h.IsSubtype(types.Object, types.Ref("Shape")))

	bounded := &types.TypeVar{Name: "S", Bound: types.Ref("Poly")}
	assert.True(t, h.IsSubtype(bounded, types.Ref("Shape")))
}

func TestCastability(t *testing.T) {
	h := shapes(t)

	assert.True(t, h.Castable(types.Ref("Shape"), types.Ref("Circle")))
	assert.True(t, h.Castable(types.Object, types.Ref("Circle")))
	// a record is final, and Circle does not implement Drawable
	assert.False(t, h.Castable(types.Ref("Drawable"), types.Ref("Circle")))
	// every permitted subtype of Shape is a record, none is Drawable
	assert.False(t, h.Castable(types.Ref("Shape"), types.Ref("Drawable")))
	assert.False(t, h.Castable(types.Ref("Circle"), types.Ref("Square")))
	assert.False(t, h.Castable(types.IntegerT, types.Boxed{Kind: types.Long}))
	assert.False(t, h.Castable(types.Ref("Shape"), types.StringT))
	assert.True(t, h.Castable(types.NumberT, types.IntegerT))
}

func TestClosedness(t *testing.T) {
	h := shapes(t)

	assert.True(t, h.IsClosed(types.Ref("Shape")))
	assert.True(t, h.IsClosed(types.Ref("Circle")))
	assert.False(t, h.IsClosed(types.Ref("Drawable")))
	assert.False(t, h.IsClosed(types.Object))
	assert.False(t, h.IsClosed(types.NumberT))
}

func TestPermittedAreInstantiated(t *testing.T) {
	h := options(t)

	permitted := h.Permitted(types.Ref("Option", types.StringT))
	names := make([]string, len(permitted))
	for i, p := range permitted {
		names[i] = p.TypeName()
	}
	// Fixed is an Option<Integer>, so it can never be an Option<String>
	assert.Equal(t, []string{"Some<String>", "None<String>"}, names)

	permitted = h.Permitted(types.Ref("Option", types.IntegerT))
	assert.Len(t, permitted, 3)
}

func TestInferArgs(t *testing.T) {
	h := options(t)

	inferred, ok := h.InferArgs("Some", types.Ref("Option", types.StringT))
	require.True(t, ok)
	assert.Equal(t, "Some<String>", inferred.TypeName())

	// unbounded, the inferred argument is the bound rather than unknown
	inferred, ok = h.InferArgs("Some", types.Object)
	require.True(t, ok)
	assert.Equal(t, "Some<Object>", inferred.TypeName())

	// a type variable selector is replaced by its bound first
	bounded := &types.TypeVar{Name: "O", Bound: types.Ref("Option", types.IntegerT)}
	inferred, ok = h.InferArgs("Some", bounded)
	require.True(t, ok)
	assert.Equal(t, "Some<Integer>", inferred.TypeName())

	_, ok = h.InferArgs("Fixed", types.Ref("Option", types.StringT))
	assert.False(t, ok)

	components, ok := h.Components(types.Ref("Some", types.StringT))
	require.True(t, ok)
	assert.True(t, types.Identical(types.StringT, components[0].Type))
}
