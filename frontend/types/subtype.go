package types

import (
	"github.com/hashicorp/go-set/v3"
)

// Erasure drops type arguments and replaces type variables by the erasure of their bound
func Erasure(t Type) Type {
	switch t := t.(type) {
	case *Named:
		if len(t.Args) == 0 {
			return t
		}
		return &Named{Name: t.Name}
	case *TypeVar:
		return Erasure(t.UpperBound())
	case *inferenceVar:
		return Erasure(t.param.upperBound())
	}
	return t
}

// upper replaces a type variable by its bound until t is not a variable
func upper(t Type) Type {
	for {
		switch v := t.(type) {
		case *TypeVar:
			t = v.UpperBound()
		case *inferenceVar:
			t = v.param.upperBound()
		default:
			return t
		}
	}
}

// DirectSupertypes returns the declared supertypes of t, instantiated with t's arguments
func (h *Hierarchy) DirectSupertypes(t *Named) []*Named {
	decl, ok := h.decls.Get(t.Name)
	if !ok {
		return nil
	}
	raw := t.IsRaw() && len(decl.Params) > 0
	bound := decl.bindArgs(t.Args)
	supers := decl.directSupers()
	out := make([]*Named, 0, len(supers))
	for _, super := range supers {
		if raw {
			// supertypes of a raw type are raw, too
			out = append(out, &Named{Name: super.Name})
			continue
		}
		out = append(out, subst(super, bound).(*Named))
	}
	return out
}

// AsSuper views t as an instance of the declaration called ancestor, ie
// AsSuper(Some<Integer>, "Option") is Option<Integer>. It returns nil when
// ancestor is not a supertype of t.
func (h *Hierarchy) AsSuper(t *Named, ancestor string) *Named {
	return h.asSuper(t, ancestor, set.New[typeName](4))
}

func (h *Hierarchy) asSuper(t *Named, ancestor string, visited *set.Set[typeName]) *Named {
	if t.Name == ancestor {
		return t
	}
	if !visited.Insert(t.Name) {
		return nil
	}
	for _, super := range h.DirectSupertypes(t) {
		if found := h.asSuper(super, ancestor, visited); found != nil {
			return found
		}
	}
	return nil
}

// IsSubtype reports whether every value of s is also a value of t.
// Type arguments are compared invariantly; raw types are compatible with
// any instantiation of the same declaration.
func (h *Hierarchy) IsSubtype(s, t Type) bool {
	if Identical(s, t) {
		return true
	}
	if _, isPrim := s.(Primitive); isPrim {
		return false
	}
	if _, isPrim := t.(Primitive); isPrim {
		return false
	}
	if t == Object {
		return true
	}
	switch s := s.(type) {
	case *TypeVar, *inferenceVar:
		return h.IsSubtype(upper(s), t)
	case objectType:
		return false
	case Boxed:
		named, ok := t.(*Named)
		return ok && named.Name == NumberName && s.Kind.IsNumeric()
	case *Named:
		target, ok := t.(*Named)
		if !ok {
			return false
		}
		super := h.AsSuper(s, target.Name)
		if super == nil {
			return false
		}
		if super.IsRaw() || target.IsRaw() {
			return true
		}
		for i := range target.Args {
			if i >= len(super.Args) || !Identical(super.Args[i], target.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Castable reports whether a checked reference cast (or instanceof test)
// from s to t is legal, that is, whether some value could be both an s and a t.
func (h *Hierarchy) Castable(s, t Type) bool {
	if !IsReference(s) || !IsReference(t) {
		return false
	}
	if h.IsSubtype(s, t) || h.IsSubtype(t, s) {
		return !h.provablyDistinctArgs(s, t)
	}
	s, t = upper(s), upper(t)
	if s == Object || t == Object {
		return true
	}
	if h.IsSubtype(s, t) || h.IsSubtype(t, s) {
		return !h.provablyDistinctArgs(s, t)
	}
	return !h.disjoint(s, t, set.New[[2]typeName](4)) && !h.provablyDistinctArgs(s, t)
}

// disjoint implements the disjointness rules for reference types: two
// classes are disjoint unless related, and a class and an interface are
// disjoint when the class is final, or sealed with every permitted subtype disjoint.
func (h *Hierarchy) disjoint(s, t Type, visited *set.Set[[2]typeName]) bool {
	if h.IsSubtype(Erasure(s), Erasure(t)) || h.IsSubtype(Erasure(t), Erasure(s)) {
		return false
	}
	sDecl, sNamed, sOk := h.declOf(s)
	tDecl, tNamed, tOk := h.declOf(t)
	_, sBoxed := s.(Boxed)
	_, tBoxed := t.(Boxed)
	switch {
	case sBoxed || tBoxed:
		// boxes are final classes
		return true
	case !sOk || !tOk:
		return false
	}
	if !visited.Insert([2]typeName{sNamed.Name, tNamed.Name}) {
		return false
	}
	sClass, tClass := sDecl.Kind != KindInterface, tDecl.Kind != KindInterface
	if sClass && tClass {
		return true
	}
	// when exactly one of the two is an interface, make s the class (if any)
	if !sClass {
		sDecl, tDecl = tDecl, sDecl
		sNamed, tNamed = tNamed, sNamed
	}
	if sDecl.IsFinal() {
		return true
	}
	if sDecl.Sealed {
		for _, permitted := range sDecl.Permits {
			if !h.disjoint(&Named{Name: permitted}, tNamed, visited) {
				return false
			}
		}
		return true
	}
	if sDecl.Kind == KindInterface && tDecl.Sealed {
		for _, permitted := range tDecl.Permits {
			if !h.disjoint(sNamed, &Named{Name: permitted}, visited) {
				return false
			}
		}
		return true
	}
	return false
}

// provablyDistinctArgs is true when s and t are instantiations that can
// never describe the same value, ie Box<String> and Box<Integer>
func (h *Hierarchy) provablyDistinctArgs(s, t Type) bool {
	sNamed, sOk := s.(*Named)
	tNamed, tOk := t.(*Named)
	if !sOk || !tOk || sNamed.IsRaw() || tNamed.IsRaw() {
		return false
	}
	lower, higher := sNamed, tNamed
	if h.AsSuper(lower, higher.Name) == nil {
		lower, higher = tNamed, sNamed
	}
	viewed := h.AsSuper(lower, higher.Name)
	if viewed == nil || viewed.IsRaw() {
		return false
	}
	for i := range higher.Args {
		if i >= len(viewed.Args) {
			return false
		}
		a, b := viewed.Args[i], higher.Args[i]
		if containsVars(a) || containsVars(b) {
			continue
		}
		if !Identical(a, b) {
			return true
		}
	}
	return false
}

// Components returns the components of record type t with t's type arguments substituted
func (h *Hierarchy) Components(t *Named) ([]Component, bool) {
	decl, ok := h.decls.Get(t.Name)
	if !ok || !decl.IsRecord() {
		return nil, false
	}
	bound := decl.bindArgs(t.Args)
	out := make([]Component, len(decl.Components))
	for i, c := range decl.Components {
		out[i] = Component{Name: c.Name, Type: subst(c.Type, bound)}
	}
	return out, true
}

// IsRecord reports whether t refers to a record declaration
func (h *Hierarchy) IsRecord(t Type) bool {
	decl, _, ok := h.declOf(t)
	return ok && decl.IsRecord()
}

// Permitted returns the permitted direct subtypes of the sealed type t,
// instantiated to match t's type arguments. Permitted subtypes that cannot
// possibly be instances of t (because their type arguments conflict with t's)
// are left out.
func (h *Hierarchy) Permitted(t *Named) []*Named {
	decl, ok := h.decls.Get(t.Name)
	if !ok || !decl.Sealed {
		return nil
	}
	out := make([]*Named, 0, len(decl.Permits))
	for _, name := range decl.Permits {
		instance, ok := h.InferArgs(name, t)
		if !ok {
			logger.Debug("permitted subtype excluded by type arguments", "sealed", t, "permitted", name)
			continue
		}
		out = append(out, instance)
	}
	return out
}

// IsClosed reports whether t has a statically enumerable set of values'
// runtime classes: records, and sealed types whose permitted subtypes are
// themselves closed. Open types, including Object, are never closed.
func (h *Hierarchy) IsClosed(t Type) bool {
	return h.isClosed(t, set.New[typeName](4))
}

func (h *Hierarchy) isClosed(t Type, visited *set.Set[typeName]) bool {
	switch t := upper(t).(type) {
	case Primitive, Boxed:
		return true
	case *Named:
		decl, ok := h.decls.Get(t.Name)
		if !ok {
			return false
		}
		if decl.IsFinal() {
			return true
		}
		if !decl.Sealed || !visited.Insert(t.Name) {
			return false
		}
		for _, sub := range h.Permitted(t) {
			if !h.isClosed(sub, visited) {
				return false
			}
		}
		return true
	}
	return false
}
