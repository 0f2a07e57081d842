package types

import (
	"fmt"
	"slices"
)

type DeclKind uint8

const (
	_ DeclKind = iota
	// KindRecord is a final, fixed-arity type made of named components
	KindRecord
	KindInterface
	KindClass
)

func (k DeclKind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindInterface:
		return "interface"
	case KindClass:
		return "class"
	default:
		return "invalid"
	}
}

// TypeParam is a declared type parameter
type TypeParam struct {
	Name  string
	Bound Type
}

func (p TypeParam) upperBound() Type {
	if p.Bound == nil {
		return Object
	}
	return p.Bound
}

// Var returns the TypeVar that refers to p inside its declaration
func (p TypeParam) Var() *TypeVar {
	return &TypeVar{Name: p.Name, Bound: p.Bound}
}

// Component is a record component, read through its accessor
type Component struct {
	Name string
	Type Type
}

// Decl is a nominal type declaration. Supertypes are expressed in terms of
// the declaration's own type parameters, ie `record Some<T>(T value) implements Option<T>`
// has Interfaces = [Option<T>].
type Decl struct {
	Kind   DeclKind
	Name   typeName
	Params []TypeParam

	// Components of a record, in declaration order
	Components []Component

	// Super is the superclass of a class; nil means Object
	Super *Named
	// Interfaces are the implemented (for records and classes) or
	// extended (for interfaces) interfaces
	Interfaces []*Named

	// Sealed declarations only admit the subtypes listed in Permits
	Sealed  bool
	Permits []typeName

	// Abstract classes have no instances of their own; interfaces are always abstract
	Abstract bool
	// Final classes have no subtypes; records are always final
	Final bool
}

func (d *Decl) String() string {
	return fmt.Sprintf("%v %v", d.Kind, d.Self().TypeName())
}

// Self is the declared type seen from inside the declaration, ie Box<T>
func (d *Decl) Self() *Named {
	args := make([]Type, len(d.Params))
	for i, p := range d.Params {
		args[i] = p.Var()
	}
	return &Named{Name: d.Name, Args: args}
}

func (d *Decl) IsRecord() bool { return d.Kind == KindRecord }

// IsFinal is true when the declaration can have no subtypes at all
func (d *Decl) IsFinal() bool {
	return d.Kind == KindRecord || d.Final
}

// IsAbstract is true when no value has exactly this declaration as its runtime class
func (d *Decl) IsAbstract() bool {
	return d.Kind == KindInterface || d.Abstract
}

// directSupers lists the declared supertypes, Object excluded
func (d *Decl) directSupers() []*Named {
	supers := make([]*Named, 0, len(d.Interfaces)+1)
	if d.Super != nil {
		supers = append(supers, d.Super)
	}
	return append(supers, d.Interfaces...)
}

// bindArgs maps the declaration's parameters to args; a raw reference binds
// each parameter to its bound
func (d *Decl) bindArgs(args []Type) map[typeName]Type {
	if len(d.Params) == 0 {
		return nil
	}
	bound := make(map[typeName]Type, len(d.Params))
	for i, p := range d.Params {
		if i < len(args) {
			bound[p.Name] = args[i]
		} else {
			bound[p.Name] = p.upperBound()
		}
	}
	return bound
}

// Record declares a record type
func Record(name string, components ...Component) *Decl {
	return &Decl{Kind: KindRecord, Name: name, Components: components, Final: true}
}

// Interface declares an open interface; use Permitting to seal it
func Interface(name string) *Decl {
	return &Decl{Kind: KindInterface, Name: name, Abstract: true}
}

// Class declares an open, concrete class
func Class(name string) *Decl {
	return &Decl{Kind: KindClass, Name: name}
}

// Comp is shorthand for a record Component
func Comp(name string, t Type) Component {
	return Component{Name: name, Type: t}
}

func (d *Decl) WithParams(params ...TypeParam) *Decl {
	d.Params = params
	return d
}

func (d *Decl) Implementing(interfaces ...*Named) *Decl {
	d.Interfaces = append(d.Interfaces, interfaces...)
	return d
}

func (d *Decl) Extending(super *Named) *Decl {
	d.Super = super
	return d
}

// Permitting seals the declaration to the given direct subtypes
func (d *Decl) Permitting(names ...string) *Decl {
	d.Sealed = true
	d.Permits = slices.Clone(names)
	return d
}

func (d *Decl) AsAbstract() *Decl {
	d.Abstract = true
	return d
}

func (d *Decl) AsFinal() *Decl {
	d.Final = true
	return d
}
