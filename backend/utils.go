package backend

import (
	"bytes"
	goast "go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/pkg/errors"
)

const goVersion = "1.23.3"

func intLit(i int) goast.Expr {
	if i < 0 {
		return &goast.UnaryExpr{Op: token.SUB, X: &goast.BasicLit{Kind: token.INT, Value: strconv.Itoa(-i)}}
	}
	return &goast.BasicLit{Kind: token.INT, Value: strconv.Itoa(i)}
}

func stringLit(s string) goast.Expr {
	return &goast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

func returnInt(i int) goast.Stmt {
	return &goast.ReturnStmt{Results: []goast.Expr{intLit(i)}}
}

func panicWith(msg string) goast.Stmt {
	return &goast.ExprStmt{X: &goast.CallExpr{Fun: goast.NewIdent("panic"), Args: []goast.Expr{stringLit(msg)}}}
}

// define is `name := value`
func define(name string, value goast.Expr) goast.Stmt {
	return &goast.AssignStmt{
		Lhs: []goast.Expr{goast.NewIdent(name)},
		Tok: token.DEFINE,
		Rhs: []goast.Expr{value},
	}
}

// use is `_ = name`, which keeps Go from rejecting bindings nothing reads
func use(name string) goast.Stmt {
	return &goast.AssignStmt{
		Lhs: []goast.Expr{goast.NewIdent("_")},
		Tok: token.ASSIGN,
		Rhs: []goast.Expr{goast.NewIdent(name)},
	}
}

// assertion is `if name, ok := x.(t); ok { _ = name; body }`
func assertion(name, ok string, x goast.Expr, t goast.Expr, body []goast.Stmt) goast.Stmt {
	if name != "_" {
		body = append([]goast.Stmt{use(name)}, body...)
	}
	return &goast.IfStmt{
		Init: &goast.AssignStmt{
			Lhs: []goast.Expr{goast.NewIdent(name), goast.NewIdent(ok)},
			Tok: token.DEFINE,
			Rhs: []goast.Expr{&goast.TypeAssertExpr{X: x, Type: t}},
		},
		Cond: goast.NewIdent(ok),
		Body: &goast.BlockStmt{List: body},
	}
}

func convert(goType string, x goast.Expr) goast.Expr {
	return &goast.CallExpr{Fun: goast.NewIdent(goType), Args: []goast.Expr{x}}
}

func (tp *Transpiler) render(node goast.Node) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := format.Node(buf, tp.fset, node); err != nil {
		return "", errors.Wrap(err, "rendering Go expression")
	}
	return buf.String(), nil
}

func parseExpr(src string) (goast.Expr, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing Go expression `%s`", src)
	}
	return expr, nil
}
