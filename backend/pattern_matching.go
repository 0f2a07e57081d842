package backend

import (
	"fmt"
	goast "go/ast"
	"go/token"

	"github.com/cottand/recpat/frontend"
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/runtime/match"
	"github.com/cottand/recpat/util"
	"github.com/pkg/errors"
)

const selectorName = "sel"

// Switch is an analyzed case list to lower to a Go dispatch function
type Switch struct {
	Name   string
	Report *frontend.Report
}

// transpileSwitch lowers s to `func Name(sel T) int`, which returns the
// index of the case selected by sel, match.NullIndex for the null case
// and match.DefaultIndex for the default.
//
// Cases are tested in order, each one in its own block. The pattern of a
// case becomes nested if statements that test and bind sub-patterns
// outside-in, with the guard and the return innermost, so a value that
// fails any test falls through to the next case.
func (tp *Transpiler) transpileSwitch(s Switch) (*goast.FuncDecl, error) {
	r := s.Report
	if r.Errors.HasError() {
		return nil, errors.Errorf("switch %s does not check: %v", s.Name, r.Errors)
	}
	list := r.List
	selGo, err := tp.goTypeName(list.Selector)
	if err != nil {
		return nil, errors.Wrapf(err, "selector of switch %s", s.Name)
	}
	selType, _ := tp.goType(list.Selector)

	var body []goast.Stmt
	if !isGoPrimitive(selGo) {
		var onNull goast.Stmt
		switch {
		case list.HasNullCase:
			onNull = returnInt(match.NullIndex)
		case list.Form == ast.Instanceof:
			onNull = returnInt(match.NoMatchIndex)
		default:
			onNull = panicWith("NullPointerException")
		}
		body = append(body, &goast.IfStmt{
			Cond: &goast.BinaryExpr{X: goast.NewIdent(selectorName), Op: token.EQL, Y: goast.NewIdent("nil")},
			Body: &goast.BlockStmt{List: []goast.Stmt{onNull}},
		})
	}

	for i, c := range list.All() {
		if c.Guard.IsConstFalse() {
			continue
		}
		checked := r.Checked[i]
		if checked == nil {
			return nil, errors.Errorf("case %d of switch %s was not checked", i, s.Name)
		}
		inner := []goast.Stmt{returnInt(i)}
		if c.Guard != nil && c.Guard.Const == nil {
			cond, err := parseExpr(c.Guard.Source)
			if err != nil {
				return nil, errors.Wrapf(err, "guard of case %d of switch %s", i, s.Name)
			}
			inner = []goast.Stmt{&goast.IfStmt{Cond: cond, Body: &goast.BlockStmt{List: inner}}}
		}
		m := &caseMatcher{tp: tp, index: i}
		stmts, err := m.emit(checked.Root, goast.NewIdent(selectorName), selGo, inner)
		if err != nil {
			return nil, errors.Wrapf(err, "case %d of switch %s", i, s.Name)
		}
		body = append(body, &goast.BlockStmt{List: stmts})
	}

	switch {
	case list.HasDefault:
		body = append(body, returnInt(match.DefaultIndex))
	case list.Form == ast.Instanceof:
		body = append(body, returnInt(match.NoMatchIndex))
	case r.NeedsFailurePath:
		body = append(body, panicWith(fmt.Sprintf("MatchException: no case of %s matches the %v", s.Name, list.Selector)))
	default:
		// exhaustive: Go still wants a terminating statement
		body = append(body, panicWith("unreachable"))
	}

	tp.Debug("lowered switch", "name", s.Name, "cases", list.Len(), "failurePath", r.NeedsFailurePath)
	return &goast.FuncDecl{
		Name: goast.NewIdent(s.Name),
		Type: &goast.FuncType{
			Params: &goast.FieldList{List: []*goast.Field{{
				Names: []*goast.Ident{goast.NewIdent(selectorName)},
				Type:  selType,
			}}},
			Results: &goast.FieldList{List: []*goast.Field{{Type: goast.NewIdent("int")}}},
		},
		Body: &goast.BlockStmt{List: body},
	}, nil
}

type caseMatcher struct {
	tp    *Transpiler
	index int
}

func (m *caseMatcher) ident(n *check.Node, name string) string {
	return util.MangledIdent(m.index, n.Path, name)
}

// emit returns the statements that test n against x, whose Go type is
// xGo, and run inner with the bindings of n in scope when it matches
func (m *caseMatcher) emit(n *check.Node, x goast.Expr, xGo string, inner []goast.Stmt) ([]goast.Stmt, error) {
	inputGo, err := m.tp.goTypeName(n.Input)
	if err != nil {
		return nil, err
	}
	if xGo != inputGo && !n.MatchesNull() {
		// components of erased generic records are less precise than the
		// component type the pattern was checked against
		narrowed := m.ident(n, "arg")
		inputType, _ := m.tp.goType(n.Input)
		stmts, err := m.emit(n, goast.NewIdent(narrowed), inputGo, inner)
		if err != nil {
			return nil, err
		}
		return []goast.Stmt{assertion(narrowed, m.ident(n, "argok"), x, inputType, stmts)}, nil
	}

	if n.IsRecord() {
		return m.emitRecord(n, x, inputGo, inner)
	}
	if _, ok := n.Resolved.(types.Primitive); ok {
		return m.emitPrimitive(n, x, inner)
	}
	return m.emitReference(n, x, xGo, inner)
}

func binding(n *check.Node) string {
	var name string
	switch p := n.Pattern.(type) {
	case *ast.TypePattern:
		name = p.Binding
	case *ast.PrimitivePattern:
		name = p.Binding
	}
	if ast.IsUnnamed(name) {
		return ""
	}
	return name
}

func (m *caseMatcher) emitRecord(n *check.Node, x goast.Expr, inputGo string, inner []goast.Stmt) ([]goast.Stmt, error) {
	named, ok := types.Erasure(n.Resolved).(*types.Named)
	if !ok {
		return nil, errors.Errorf("record pattern of type %v", n.Resolved)
	}
	decl, ok := m.tp.h.Lookup(named.Name)
	if !ok || len(decl.Components) != len(n.Components) {
		return nil, errors.Errorf("record %v does not match its pattern", named)
	}

	rec := m.ident(n, "rec")
	if len(n.Components) == 0 {
		rec = "_"
	}
	stmts := inner
	for i := len(n.Components) - 1; i >= 0; i-- {
		fieldGo, err := m.tp.goTypeName(decl.Components[i].Type)
		if err != nil {
			return nil, err
		}
		field := &goast.SelectorExpr{X: goast.NewIdent(rec), Sel: goast.NewIdent(util.Exported(decl.Components[i].Name))}
		stmts, err = m.emit(n.Components[i], field, fieldGo, stmts)
		if err != nil {
			return nil, err
		}
	}

	if inputGo == "*"+decl.Name {
		// the static type is the record itself, so only null fails
		if rec != "_" {
			stmts = append([]goast.Stmt{define(rec, x), use(rec)}, stmts...)
		}
		return []goast.Stmt{&goast.IfStmt{
			Cond: &goast.BinaryExpr{X: x, Op: token.NEQ, Y: goast.NewIdent("nil")},
			Body: &goast.BlockStmt{List: stmts},
		}}, nil
	}
	recType := &goast.StarExpr{X: goast.NewIdent(decl.Name)}
	return []goast.Stmt{assertion(rec, m.ident(n, "ok"), x, recType, stmts)}, nil
}

func (m *caseMatcher) emitReference(n *check.Node, x goast.Expr, xGo string, inner []goast.Stmt) ([]goast.Stmt, error) {
	name := binding(n)
	targetGo, err := m.tp.goTypeName(n.Resolved)
	if err != nil {
		return nil, err
	}
	target, _ := m.tp.goType(n.Resolved)

	if n.Unconditional {
		value := x
		switch {
		case n.Conversion == types.Boxing || n.Conversion == types.BoxingWidening:
			prim := n.Input.(types.Primitive)
			value = &goast.CallExpr{Fun: goast.NewIdent("New" + prim.Kind.BoxName()), Args: []goast.Expr{x}}
		case xGo != targetGo && isInterface(xGo) && targetGo != "any":
			// a null component of an erased generic record
			if name == "" {
				return inner, nil
			}
			asserted := &goast.AssignStmt{
				Lhs: []goast.Expr{goast.NewIdent(name), goast.NewIdent("_")},
				Tok: token.DEFINE,
				Rhs: []goast.Expr{&goast.TypeAssertExpr{X: x, Type: target}},
			}
			return append([]goast.Stmt{asserted, use(name)}, inner...), nil
		}
		if name == "" {
			return inner, nil
		}
		return append([]goast.Stmt{define(name, value), use(name)}, inner...), nil
	}

	if !isInterface(xGo) {
		return nil, errors.Errorf("cannot test %s values for %v at runtime", xGo, n.Resolved)
	}
	bound := name
	if bound == "" {
		bound = "_"
	}
	return []goast.Stmt{assertion(bound, m.ident(n, "ok"), x, target, inner)}, nil
}

func (m *caseMatcher) emitPrimitive(n *check.Node, x goast.Expr, inner []goast.Stmt) ([]goast.Stmt, error) {
	target := n.Resolved.(types.Primitive).Kind

	// wrap places the statements testing the primitive value px inside
	// the tests needed to reach px from x
	var source types.PrimKind
	var px goast.Expr
	var wrap func([]goast.Stmt) []goast.Stmt
	switch input := n.Input.(type) {
	case types.Primitive:
		source, px = input.Kind, x
		wrap = func(stmts []goast.Stmt) []goast.Stmt { return stmts }
	case types.Boxed:
		source = input.Kind
		px = convert(goPrimitive(source), &goast.StarExpr{X: x})
		wrap = func(stmts []goast.Stmt) []goast.Stmt {
			return []goast.Stmt{&goast.IfStmt{
				Cond: &goast.BinaryExpr{X: x, Op: token.NEQ, Y: goast.NewIdent("nil")},
				Body: &goast.BlockStmt{List: stmts},
			}}
		}
	default:
		// a checked cast to the box of the target, then unboxing
		source = target
		box := m.ident(n, "box")
		px = convert(goPrimitive(source), &goast.StarExpr{X: goast.NewIdent(box)})
		boxType := &goast.StarExpr{X: goast.NewIdent(target.BoxName())}
		wrap = func(stmts []goast.Stmt) []goast.Stmt {
			return []goast.Stmt{assertion(box, m.ident(n, "ok"), x, boxType, stmts)}
		}
	}

	name := binding(n)
	targetGo := goPrimitive(target)
	if source == target || types.ExactWidening(source, target) {
		value := px
		if source != target {
			value = convert(targetGo, px)
		}
		if name == "" {
			return wrap(inner), nil
		}
		return wrap(append([]goast.Stmt{define(name, value), use(name)}, inner...)), nil
	}

	bound := name
	if bound == "" {
		bound = m.ident(n, "prim")
	}
	cond, err := m.exact(source, target, bound, px)
	if err != nil {
		return nil, err
	}
	return wrap([]goast.Stmt{&goast.IfStmt{
		Init: define(bound, convert(targetGo, px)),
		Cond: cond,
		Body: &goast.BlockStmt{List: inner},
	}}), nil
}

// exact builds the condition under which converting x of kind from to
// the variable b of kind to lost no information
func (m *caseMatcher) exact(from, to types.PrimKind, b string, x goast.Expr) (goast.Expr, error) {
	src, err := m.tp.render(x)
	if err != nil {
		return nil, err
	}
	if from == types.Boolean || to == types.Boolean {
		return nil, errors.Errorf("no conversion from %v to %v", from, to)
	}
	fromGo := goPrimitive(from)
	var cond string
	switch {
	case from.IsIntegral() && to.IsIntegral():
		cond = fmt.Sprintf("%s(%s) == %s", fromGo, b, src)
	case from.IsIntegral():
		cond = fmt.Sprintf("float64(%s) < 9223372036854775808.0 && int64(%s) == int64(%s)", b, b, src)
	case to.IsFloating():
		cond = fmt.Sprintf("float64(%s) == float64(%s) || %s != %s", b, src, src, src)
	default:
		low, high := integralRange(to)
		cond = fmt.Sprintf("float64(%[2]s) >= %[3]s && float64(%[2]s) %[4]s && float64(%[1]s) == float64(%[2]s) && (%[2]s != 0 || 1/float64(%[2]s) > 0)",
			b, src, low, high)
	}
	return parseExpr(cond)
}

// integralRange renders the bounds of an integral kind as float constants
func integralRange(k types.PrimKind) (low string, high string) {
	switch k {
	case types.Byte:
		return "-128.0", "<= 127.0"
	case types.Short:
		return "-32768.0", "<= 32767.0"
	case types.Char:
		return "0.0", "<= 65535.0"
	case types.Int:
		return "-2147483648.0", "<= 2147483647.0"
	}
	return "-9223372036854775808.0", "< 9223372036854775808.0"
}
