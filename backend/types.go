package backend

import (
	goast "go/ast"

	"github.com/cottand/recpat/frontend/types"
	"github.com/pkg/errors"
)

// primitive kinds map to the Go type of the same size
func goPrimitive(k types.PrimKind) string {
	switch k {
	case types.Boolean:
		return "bool"
	case types.Byte:
		return "int8"
	case types.Short:
		return "int16"
	case types.Char:
		return "uint16"
	case types.Int:
		return "int32"
	case types.Long:
		return "int64"
	case types.Float:
		return "float32"
	case types.Double:
		return "float64"
	}
	return "invalid"
}

// goTypeName renders the Go type of values of t.
//
// Reference types are nilable in Go, to represent null: records are
// pointers to structs, interfaces and classes are Go interfaces, boxes
// and String are pointers to named types, and Object is any. Type
// arguments are erased.
func (tp *Transpiler) goTypeName(t types.Type) (string, error) {
	erased := types.Erasure(t)
	switch t := erased.(type) {
	case types.Primitive:
		return goPrimitive(t.Kind), nil
	case types.Boxed:
		return "*" + t.Kind.BoxName(), nil
	case *types.Named:
		switch t.Name {
		case types.StringName:
			return "*String", nil
		case types.NumberName:
			return "Number", nil
		}
		decl, ok := tp.h.Lookup(t.Name)
		if !ok {
			return "", errors.Errorf("unknown type %v", t)
		}
		if decl.IsRecord() {
			return "*" + decl.Name, nil
		}
		return decl.Name, nil
	}
	if erased == types.Object {
		return "any", nil
	}
	return "", errors.Errorf("no Go type for %v", t)
}

func (tp *Transpiler) goType(t types.Type) (goast.Expr, error) {
	name, err := tp.goTypeName(t)
	if err != nil {
		return nil, err
	}
	if len(name) > 0 && name[0] == '*' {
		return &goast.StarExpr{X: goast.NewIdent(name[1:])}, nil
	}
	return goast.NewIdent(name), nil
}

// isInterface is true for Go types that are interfaces, which can be type asserted
func isInterface(goName string) bool {
	return goName != "" && goName[0] != '*' && !isGoPrimitive(goName)
}

func isGoPrimitive(goName string) bool {
	for _, k := range types.AllPrimKinds {
		if goPrimitive(k) == goName {
			return true
		}
	}
	return false
}
