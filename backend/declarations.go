package backend

import (
	goast "go/ast"
	"go/parser"
	"go/token"

	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/util"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// prelude declares the Go types of the built-in reference types
const prelude = `package prelude

type Number interface{ isNumber() }

type Boolean bool
type Byte int8
type Short int16
type Character uint16
type Integer int32
type Long int64
type Float float32
type Double float64
type String string

func (*Byte) isNumber()    {}
func (*Short) isNumber()   {}
func (*Integer) isNumber() {}
func (*Long) isNumber()    {}
func (*Float) isNumber()   {}
func (*Double) isNumber()  {}

func NewBoolean(v bool) *Boolean     { b := Boolean(v); return &b }
func NewByte(v int8) *Byte           { b := Byte(v); return &b }
func NewShort(v int16) *Short        { b := Short(v); return &b }
func NewCharacter(v uint16) *Character { b := Character(v); return &b }
func NewInteger(v int32) *Integer    { b := Integer(v); return &b }
func NewLong(v int64) *Long          { b := Long(v); return &b }
func NewFloat(v float32) *Float      { b := Float(v); return &b }
func NewDouble(v float64) *Double    { b := Double(v); return &b }
func NewString(v string) *String     { b := String(v); return &b }
`

func (tp *Transpiler) preludeDecls() ([]goast.Decl, error) {
	f, err := parser.ParseFile(tp.fset, "prelude.go", prelude, 0)
	if err != nil {
		return nil, errors.Wrap(err, "parsing prelude")
	}
	return f.Decls, nil
}

func marker(name string) string { return "is" + name }

// instanceName is the Go struct of the instances of a concrete class
func instanceName(decl *types.Decl) string {
	return decl.Name + "Instance"
}

// transpileHierarchy declares a Go type for every declaration of the hierarchy.
//
// Records become structs. Interfaces and classes become Go interfaces with
// a marker method, embedding the interfaces of their supertypes, and every
// record or concrete class implements the markers of all its supertypes.
func (tp *Transpiler) transpileHierarchy() ([]goast.Decl, error) {
	var decls []goast.Decl
	for decl := range tp.h.Decls() {
		if decl.Name == types.NumberName || decl.Name == types.StringName {
			continue
		}
		if decl.IsRecord() {
			record, err := tp.transpileRecord(decl)
			if err != nil {
				return nil, err
			}
			decls = append(decls, record)
		} else {
			decls = append(decls, tp.transpileAbstraction(decl))
			if !decl.IsAbstract() {
				decls = append(decls, typeDecl(instanceName(decl), &goast.StructType{Fields: &goast.FieldList{}}))
			}
		}
		decls = append(decls, tp.markers(decl)...)
	}
	return decls, nil
}

func typeDecl(name string, t goast.Expr) *goast.GenDecl {
	return &goast.GenDecl{
		Tok: token.TYPE,
		Specs: []goast.Spec{&goast.TypeSpec{
			Name: goast.NewIdent(name),
			Type: t,
		}},
	}
}

func (tp *Transpiler) transpileRecord(decl *types.Decl) (*goast.GenDecl, error) {
	fields := &goast.FieldList{}
	for _, c := range decl.Components {
		fieldType, err := tp.goType(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "component %s of record %s", c.Name, decl.Name)
		}
		fields.List = append(fields.List, &goast.Field{
			Names: []*goast.Ident{goast.NewIdent(util.Exported(c.Name))},
			Type:  fieldType,
		})
	}
	return typeDecl(decl.Name, &goast.StructType{Fields: fields}), nil
}

func (tp *Transpiler) transpileAbstraction(decl *types.Decl) *goast.GenDecl {
	methods := &goast.FieldList{}
	for _, super := range tp.h.DirectSupertypes(&types.Named{Name: decl.Name}) {
		// embedding keeps subtypes assignable to their supertypes in Go
		methods.List = append(methods.List, &goast.Field{Type: goast.NewIdent(super.Name)})
	}
	methods.List = append(methods.List, &goast.Field{
		Names: []*goast.Ident{goast.NewIdent(marker(decl.Name))},
		Type:  &goast.FuncType{Params: &goast.FieldList{}},
	})
	return typeDecl(decl.Name, &goast.InterfaceType{Methods: methods})
}

// markers implements, for the Go type of the instances of decl, the
// marker methods of decl and all its supertypes
func (tp *Transpiler) markers(decl *types.Decl) []goast.Decl {
	var receiver string
	switch {
	case decl.IsRecord():
		receiver = decl.Name
	case !decl.IsAbstract():
		receiver = instanceName(decl)
	default:
		return nil
	}

	var names []string
	if !decl.IsRecord() {
		names = append(names, decl.Name)
	}
	visited := set.New[string](4)
	queue := tp.h.DirectSupertypes(&types.Named{Name: decl.Name})
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visited.Insert(current.Name) {
			continue
		}
		names = append(names, current.Name)
		queue = append(queue, tp.h.DirectSupertypes(&types.Named{Name: current.Name})...)
	}

	decls := make([]goast.Decl, 0, len(names))
	for _, name := range names {
		decls = append(decls, &goast.FuncDecl{
			Recv: &goast.FieldList{List: []*goast.Field{{
				Type: &goast.StarExpr{X: goast.NewIdent(receiver)},
			}}},
			Name: goast.NewIdent(marker(name)),
			Type: &goast.FuncType{Params: &goast.FieldList{}},
			Body: &goast.BlockStmt{},
		})
	}
	return decls
}
