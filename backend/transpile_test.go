package backend

import (
	"log/slog"
	"testing"

	"github.com/cottand/recpat/frontend"
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/runtime/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traefik/yaegi/interp"
)

// shapes declares
//
//	sealed interface Shape permits Circle, Square
//	record Circle(double r) implements Shape
//	record Square(double side) implements Shape
//	record Box(Object content)
//	record Pair(Shape first, Shape second)
func shapes() *types.Hierarchy {
	return types.NewBuilder().Add(
		types.Interface("Shape").Permitting("Circle", "Square"),
		types.Record("Circle", types.Comp("r", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Record("Square", types.Comp("side", types.DoubleT)).Implementing(types.Ref("Shape")),
		types.Record("Box", types.Comp("content", types.Object)),
		types.Record("Pair", types.Comp("first", types.Ref("Shape")), types.Comp("second", types.Ref("Shape"))),
	).MustBuild()
}

var (
	shape  = types.Ref("Shape")
	circle = types.Ref("Circle")
	square = types.Ref("Square")
	box    = types.Ref("Box")
	pair   = types.Ref("Pair")
)

func sw(h *types.Hierarchy, name string, list ast.CaseList) Switch {
	return Switch{Name: name, Report: frontend.Analyze(h, list)}
}

func guarded(p ast.Pattern, src string) ast.Case {
	return ast.Case{Pattern: p, Guard: &ast.Guard{Source: src}}
}

func unguarded(p ast.Pattern) ast.Case { return ast.Case{Pattern: p} }

// interpret generates package main for h and switches and loads it in yaegi
func interpret(t *testing.T, h *types.Hierarchy, switches ...Switch) *interp.Interpreter {
	src, err := Generate(h, "main", switches...)
	require.NoError(t, err)

	i := interp.New(interp.Options{})
	_, err = i.Eval(string(src))
	if err != nil {
		slog.Warn("had errors while evaluating", "err", err.Error(), "body", string(src))
	}
	require.NoError(t, err)
	return i
}

func evalInt(t *testing.T, i *interp.Interpreter, expr string) int {
	t.Helper()
	res, err := i.Eval(expr)
	require.NoError(t, err, expr)
	return int(res.Int())
}

func TestHierarchyEvaluates(t *testing.T) {
	i := interpret(t, shapes())

	res, err := i.Eval("func() bool { var s Shape = &Circle{R: 1}; _, ok := s.(*Circle); return ok }()")
	require.NoError(t, err)
	assert.True(t, res.Bool())

	res, err = i.Eval("func() bool { var n any = NewInteger(1); _, ok := n.(Number); return ok }()")
	require.NoError(t, err)
	assert.True(t, res.Bool())
}

func TestGeneratedSource(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchExpression, shape,
		unguarded(ast.Bind(circle, "c")),
		unguarded(ast.Bind(square, "s")),
	)
	src, err := Generate(h, "shapes", sw(h, "Area", list))
	require.NoError(t, err)

	code := string(src)
	assert.Contains(t, code, "package shapes")
	assert.Contains(t, code, "func Area(sel Shape) int")
	assert.Contains(t, code, "func (*Circle) isShape()")
	assert.Contains(t, code, `panic("NullPointerException")`)
	assert.NotContains(t, code, "MatchException")
}

func TestDispatchRecords(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchExpression, shape,
		guarded(ast.Rec(circle, ast.Prim(types.Double, "r")), "r > 1"),
		unguarded(ast.Bind(circle, "c")),
		unguarded(ast.Rec(square, ast.Var("s"))),
	)
	i := interpret(t, h, sw(h, "Area", list))

	assert.Equal(t, 0, evalInt(t, i, "Area(&Circle{R: 2})"))
	assert.Equal(t, 1, evalInt(t, i, "Area(&Circle{R: 0.5})"))
	assert.Equal(t, 2, evalInt(t, i, "Area(&Square{Side: 1})"))

	_, err := i.Eval("Area(nil)")
	assert.ErrorContains(t, err, "NullPointerException")
}

func TestNullCase(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchExpression, shape,
		unguarded(ast.Bind(shape, "s")),
	).WithNullCase()
	i := interpret(t, h, sw(h, "Name", list))

	assert.Equal(t, match.NullIndex, evalInt(t, i, "Name(nil)"))
	assert.Equal(t, 0, evalInt(t, i, "Name(&Square{})"))
}

func TestStatementFailure(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchStatement, shape,
		unguarded(ast.Bind(circle, "c")),
	)
	i := interpret(t, h, sw(h, "Describe", list))

	assert.Equal(t, 0, evalInt(t, i, "Describe(&Circle{})"))
	_, err := i.Eval("Describe(&Square{})")
	assert.ErrorContains(t, err, "MatchException")
}

func TestDefaultAndNestedNull(t *testing.T) {
	h := shapes()
	strings := ast.NewCaseList(ast.SwitchExpression, types.Object,
		unguarded(ast.Rec(box, ast.Bind(types.StringT, "s"))),
	).WithDefault()
	anything := ast.NewCaseList(ast.SwitchExpression, box,
		unguarded(ast.Rec(box, ast.Var("o"))),
	)
	i := interpret(t, h, sw(h, "Contents", strings), sw(h, "Unpack", anything))

	assert.Equal(t, 0, evalInt(t, i, `Contents(&Box{Content: NewString("x")})`))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "Contents(&Box{Content: NewInteger(1)})"))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "Contents(&Box{})"))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "Contents(NewInteger(3))"))

	// an unconditional nested pattern also matches null
	assert.Equal(t, 0, evalInt(t, i, "Unpack(&Box{})"))
}

func TestExhaustiveRecordsRejectNullComponents(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchExpression, pair,
		unguarded(ast.Rec(pair, ast.Bind(circle, "c"), ast.Bind(shape, "x"))),
		unguarded(ast.Rec(pair, ast.Bind(square, "s"), ast.Bind(shape, "y"))),
	)
	s := sw(h, "Left", list)
	require.True(t, s.Report.Exhaustive)
	i := interpret(t, h, s)

	assert.Equal(t, 0, evalInt(t, i, "Left(&Pair{First: &Circle{}, Second: &Square{}})"))
	assert.Equal(t, 1, evalInt(t, i, "Left(&Pair{First: &Square{}})"))

	_, err := i.Eval("Left(&Pair{Second: &Circle{}})")
	assert.ErrorContains(t, err, "MatchException")
}

func TestPrimitiveNarrowingIsExact(t *testing.T) {
	h := shapes()
	toInt := ast.NewCaseList(ast.SwitchExpression, types.DoubleT,
		unguarded(ast.Prim(types.Int, "i")),
	).WithDefault()
	toByte := ast.NewCaseList(ast.SwitchExpression, types.LongT,
		unguarded(ast.Prim(types.Byte, "b")),
	).WithDefault()
	i := interpret(t, h, sw(h, "ToInt", toInt), sw(h, "ToByte", toByte))

	assert.Equal(t, 0, evalInt(t, i, "ToInt(2.0)"))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "ToInt(2.5)"))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "ToInt(1e10)"))

	assert.Equal(t, 0, evalInt(t, i, "ToByte(127)"))
	assert.Equal(t, 0, evalInt(t, i, "ToByte(-128)"))
	assert.Equal(t, match.DefaultIndex, evalInt(t, i, "ToByte(128)"))
}

func TestInstanceof(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.Instanceof, shape,
		unguarded(ast.Bind(circle, "c")),
	)
	i := interpret(t, h, sw(h, "IsCircle", list))

	assert.Equal(t, 0, evalInt(t, i, "IsCircle(&Circle{})"))
	assert.Equal(t, match.NoMatchIndex, evalInt(t, i, "IsCircle(&Square{})"))
	assert.Equal(t, match.NoMatchIndex, evalInt(t, i, "IsCircle(nil)"))
}

func TestRejectsReportsWithErrors(t *testing.T) {
	h := shapes()
	list := ast.NewCaseList(ast.SwitchExpression, shape,
		unguarded(ast.Bind(circle, "c")),
	)
	_, err := Generate(h, "main", sw(h, "Partial", list))
	assert.ErrorContains(t, err, "does not check")
}
