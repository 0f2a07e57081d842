package scope_test

import (
	"testing"

	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/frontend/scope"
	"github.com/cottand/recpat/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func test(p ast.Pattern) scope.Test { return scope.Test{Pattern: p} }

var (
	circle = test(ast.Bind(types.Ref("Circle"), "c"))
	square = test(ast.Bind(types.Ref("Square"), "s"))
	point  = test(ast.Rec(types.Ref("Point"), ast.Var("x"), ast.Any()))
)

func TestConditions(t *testing.T) {
	cases := map[string]struct {
		cond      scope.Cond
		whenTrue  []string
		whenFalse []string
	}{
		"test":              {circle, []string{"c"}, nil},
		"nested bindings":   {point, []string{"x"}, nil},
		"negated":           {scope.Not{Cond: circle}, nil, []string{"c"}},
		"and":               {scope.And{Left: circle, Right: point}, []string{"c", "x"}, nil},
		"and with opaque":   {scope.And{Left: circle, Right: scope.Opaque{}}, []string{"c"}, nil},
		"or":                {scope.Or{Left: circle, Right: square}, nil, nil},
		"or of negations":   {scope.Or{Left: scope.Not{Cond: circle}, Right: scope.Not{Cond: square}}, nil, []string{"c", "s"}},
		"de morgan":         {scope.Not{Cond: scope.Or{Left: scope.Not{Cond: circle}, Right: scope.Not{Cond: square}}}, []string{"c", "s"}, nil},
		"group":             {scope.Group{Cond: scope.Not{Cond: circle}}, nil, []string{"c"}},
		"double negation":   {scope.Not{Cond: scope.Not{Cond: circle}}, []string{"c"}, nil},
		"opaque":            {scope.Opaque{}, nil, nil},
		"negated and":       {scope.Not{Cond: scope.And{Left: circle, Right: square}}, nil, []string{"c", "s"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s, errs := scope.Analyze(tc.cond)
			require.False(t, errs.HasError(), errs.String())
			assert.Equal(t, tc.whenTrue, nilIfEmpty(s.WhenTrue))
			assert.Equal(t, tc.whenFalse, nilIfEmpty(s.WhenFalse))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestConflictingBindings(t *testing.T) {
	other := test(ast.Bind(types.Ref("Square"), "c"))

	// c is already in scope on the right of &&
	_, errs := scope.Analyze(scope.And{Left: circle, Right: other})
	assert.True(t, errs.Has(ilerr.DuplicateBinding))

	// either side of || may have matched, so c would be bound twice
	_, errs = scope.Analyze(scope.Or{Left: circle, Right: other})
	assert.True(t, errs.Has(ilerr.DuplicateBinding))

	_, errs = scope.Analyze(scope.And{Left: scope.Not{Cond: circle}, Right: scope.Not{Cond: other}})
	assert.True(t, errs.Has(ilerr.DuplicateBinding))

	// bound when true on one side and when false on the other is fine
	_, errs = scope.Analyze(scope.Or{Left: circle, Right: scope.Not{Cond: other}})
	assert.False(t, errs.HasError(), errs.String())

	// within a single pattern
	twice := test(ast.Rec(types.Ref("Point"), ast.Var("x"), ast.Var("x")))
	s, errs := scope.Analyze(twice)
	assert.Equal(t, []ilerr.ErrCode{ilerr.DuplicateBinding}, errs.Codes())
	assert.Equal(t, []string{"x"}, s.WhenTrue)

	s, errs = scope.Analyze(scope.Not{Cond: twice})
	assert.True(t, errs.Has(ilerr.DuplicateBinding))
	assert.Equal(t, []string{"x"}, s.WhenFalse)
}

func TestIfScopes(t *testing.T) {
	// if (!(o instanceof Circle c)) return; ... c is in scope after
	s, errs := scope.IfScopes(scope.Not{Cond: circle}, false, true)
	require.False(t, errs.HasError())
	assert.Equal(t, []string{"c"}, s.After)
	assert.Equal(t, []string{"c"}, s.Else)
	assert.Empty(t, s.Then)

	// if (o instanceof Circle c) { ... } with a then branch that completes
	s, _ = scope.IfScopes(circle, true, true)
	assert.Equal(t, []string{"c"}, s.Then)
	assert.Empty(t, s.After)

	// if (o instanceof Circle c) {...} else { throw ... }
	s, _ = scope.IfScopes(circle, true, false)
	assert.Equal(t, []string{"c"}, s.After)

	// neither branch completes, so nothing follows
	s, _ = scope.IfScopes(circle, false, false)
	assert.Empty(t, s.After)
}

func TestShorthands(t *testing.T) {
	assert.Equal(t, []string{"c"}, scope.WhenTrue(circle))
	assert.Equal(t, []string{"c"}, scope.WhenFalse(scope.Not{Cond: circle}))
}
