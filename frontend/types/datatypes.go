package types

import (
	"fmt"
	"hash/fnv"
	"strings"
)

type typeName = string

// Type is a reference to a (possibly parameterised) type, as it appears in a
// declaration, a pattern, or as the static type of a switch selector.
//
// The declarations a Named type refers to live in a Hierarchy, so that
// Type values stay small, comparable and free of cycles.
type Type interface {
	fmt.Stringer
	// TypeName is the source-like rendering of the type, ie `Box<String>`
	TypeName() string
	Hash() uint64
	isType()
}

var (
	_ Type = Primitive{}
	_ Type = Boxed{}
	_ Type = (*Named)(nil)
	_ Type = (*TypeVar)(nil)
	_ Type = objectType{}
	_ Type = (*inferenceVar)(nil)
)

func hashOf(t Type) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.TypeName()))
	return h.Sum64()
}

// Primitive is a value type such as int or boolean
type Primitive struct {
	Kind PrimKind
}

func (p Primitive) TypeName() string { return p.Kind.String() }
func (p Primitive) String() string   { return p.TypeName() }
func (p Primitive) Hash() uint64     { return hashOf(p) }
func (Primitive) isType()            {}

// Boxed is the reference counterpart of a primitive, such as Integer for int
type Boxed struct {
	Kind PrimKind
}

func (b Boxed) TypeName() string { return b.Kind.BoxName() }
func (b Boxed) String() string   { return b.TypeName() }
func (b Boxed) Hash() uint64     { return hashOf(b) }
func (Boxed) isType()            {}

// Named refers to a record, interface or class declared in a Hierarchy.
//
// Args are the type arguments of a generic declaration. A Named with no Args
// that refers to a generic declaration is raw: its arguments were omitted
// and are either inferred (for record patterns) or taken as the declared bounds.
type Named struct {
	Name typeName
	Args []Type
}

// Ref is shorthand for a Named type
func Ref(name string, args ...Type) *Named {
	return &Named{Name: name, Args: args}
}

func (n *Named) TypeName() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	sb := strings.Builder{}
	sb.WriteString(n.Name)
	sb.WriteByte('<')
	for i, arg := range n.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.TypeName())
	}
	sb.WriteByte('>')
	return sb.String()
}
func (n *Named) String() string { return n.TypeName() }
func (n *Named) Hash() uint64   { return hashOf(n) }
func (*Named) isType()          {}

// IsRaw is true when no type arguments were given
func (n *Named) IsRaw() bool { return len(n.Args) == 0 }

// TypeVar is a type parameter in scope, such as the T of `record Box<T>(T t)`
type TypeVar struct {
	Name typeName
	// Bound is the upper bound of the parameter; nil means Object
	Bound Type
}

func (v *TypeVar) TypeName() string { return v.Name }
func (v *TypeVar) String() string   { return v.Name }
func (v *TypeVar) Hash() uint64     { return hashOf(v) }
func (*TypeVar) isType()            {}

// UpperBound returns Bound, or Object when the parameter is unbounded
func (v *TypeVar) UpperBound() Type {
	if v.Bound == nil {
		return Object
	}
	return v.Bound
}

type objectType struct{}

// Object is the top of the reference type hierarchy. It is open: it has
// infinitely many unknown subtypes, so it can never be covered by cases on
// its subtypes alone.
var Object Type = objectType{}

func (objectType) TypeName() string { return "Object" }
func (objectType) String() string   { return "Object" }
func (o objectType) Hash() uint64   { return hashOf(o) }
func (objectType) isType()          {}

// inferenceVar stands for a type argument being solved during inference
type inferenceVar struct {
	index int
	param TypeParam
}

func (v *inferenceVar) TypeName() string { return "?" + v.param.Name }
func (v *inferenceVar) String() string   { return v.TypeName() }
func (v *inferenceVar) Hash() uint64     { return hashOf(v) }
func (*inferenceVar) isType()            {}

// IsReference is true for every type that can hold null
func IsReference(t Type) bool {
	_, isPrim := t.(Primitive)
	return !isPrim && t != nil
}

// Identical reports whether a and b denote the same type
func Identical(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a := a.(type) {
	case Primitive:
		b, ok := b.(Primitive)
		return ok && a.Kind == b.Kind
	case Boxed:
		b, ok := b.(Boxed)
		return ok && a.Kind == b.Kind
	case objectType:
		_, ok := b.(objectType)
		return ok
	case *TypeVar:
		b, ok := b.(*TypeVar)
		return ok && a.Name == b.Name
	case *inferenceVar:
		b, ok := b.(*inferenceVar)
		return ok && a.index == b.index
	case *Named:
		b, ok := b.(*Named)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Identical(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// subst replaces type variables by name (and inference variables by index)
func subst(t Type, byName map[typeName]Type) Type {
	if len(byName) == 0 {
		return t
	}
	switch t := t.(type) {
	case *TypeVar:
		if replacement, ok := byName[t.Name]; ok {
			return replacement
		}
		return t
	case *Named:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = subst(arg, byName)
		}
		return &Named{Name: t.Name, Args: args}
	}
	return t
}

// containsVars is true when t mentions a type or inference variable
func containsVars(t Type) bool {
	switch t := t.(type) {
	case *TypeVar, *inferenceVar:
		return true
	case *Named:
		for _, arg := range t.Args {
			if containsVars(arg) {
				return true
			}
		}
	}
	return false
}
