package types

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/recpat/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "types")

// Hierarchy is a read-only model of the declared nominal types.
//
// A Hierarchy is built once, through a Builder, and is never mutated
// afterwards: every analysis receives it as an explicit argument, and it is
// safe to share between goroutines.
type Hierarchy struct {
	decls *immutable.SortedMap[typeName, *Decl]
	// subtypes indexes the declarations that name each type as a direct supertype
	subtypes *immutable.SortedMap[typeName, []typeName]
}

// Lookup returns the declaration called name
func (h *Hierarchy) Lookup(name string) (*Decl, bool) {
	return h.decls.Get(name)
}

// Decls iterates over all declarations, sorted by name
func (h *Hierarchy) Decls() iter.Seq[*Decl] {
	return func(yield func(*Decl) bool) {
		itr := h.decls.Iterator()
		for !itr.Done() {
			_, decl, _ := itr.Next()
			if !yield(decl) {
				return
			}
		}
	}
}

// DirectSubtypes returns the declarations that directly extend or implement name
func (h *Hierarchy) DirectSubtypes(name string) []string {
	subs, _ := h.subtypes.Get(name)
	return subs
}

// declOf returns the declaration behind t, if t is a Named type
func (h *Hierarchy) declOf(t Type) (*Decl, *Named, bool) {
	named, ok := t.(*Named)
	if !ok {
		return nil, nil, false
	}
	decl, ok := h.decls.Get(named.Name)
	return decl, named, ok
}

// Validate checks that every name mentioned by t is declared with the right number of type arguments
func (h *Hierarchy) Validate(t Type) error {
	switch t := t.(type) {
	case *Named:
		decl, ok := h.decls.Get(t.Name)
		if !ok {
			return &UnknownTypeError{Name: t.Name}
		}
		if len(t.Args) != 0 && len(t.Args) != len(decl.Params) {
			return fmt.Errorf("wrong number of type arguments for %v: expected %d but found %d", decl.Name, len(decl.Params), len(t.Args))
		}
		for _, arg := range t.Args {
			if err := h.Validate(arg); err != nil {
				return err
			}
		}
	case *TypeVar:
		if t.Bound != nil {
			return h.Validate(t.Bound)
		}
	}
	return nil
}

// UnknownTypeError is returned when a name does not refer to any declaration
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("cannot find symbol: type %v", e.Name)
}

// BuildError gathers every problem found while validating declarations
type BuildError struct {
	Problems []error
}

func (e *BuildError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("invalid type hierarchy:\n  %s", strings.Join(msgs, "\n  "))
}

func (e *BuildError) Unwrap() []error { return e.Problems }

// Builder accumulates declarations for a Hierarchy
type Builder struct {
	decls []*Decl
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(decls ...*Decl) *Builder {
	b.decls = append(b.decls, decls...)
	return b
}

// Build validates the declarations and freezes them into a Hierarchy.
// All problems are reported together in a *BuildError.
func (b *Builder) Build() (*Hierarchy, error) {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	builder := immutable.NewSortedMapBuilder[typeName, *Decl](nil)
	for _, decl := range universe() {
		builder.Set(decl.Name, decl)
	}
	for _, decl := range b.decls {
		if reservedName(decl.Name) {
			report("%v is a reserved type name", decl.Name)
			continue
		}
		if _, exists := builder.Get(decl.Name); exists {
			report("duplicate declaration of %v", decl.Name)
			continue
		}
		builder.Set(decl.Name, decl)
	}
	h := &Hierarchy{decls: builder.Map()}

	subtypes := make(map[typeName][]typeName)
	for decl := range h.Decls() {
		problems = append(problems, h.validateDecl(decl)...)
		for _, super := range decl.directSupers() {
			subtypes[super.Name] = append(subtypes[super.Name], decl.Name)
		}
	}
	subBuilder := immutable.NewSortedMapBuilder[typeName, []typeName](nil)
	for name, subs := range subtypes {
		slices.Sort(subs)
		subBuilder.Set(name, subs)
	}
	h.subtypes = subBuilder.Map()

	for decl := range h.Decls() {
		if h.hasCycle(decl.Name, set.New[typeName](4)) {
			report("cyclic inheritance involving %v", decl.Name)
			continue
		}
		for _, sub := range h.DirectSubtypes(decl.Name) {
			if decl.IsFinal() {
				report("%v cannot inherit from final %v", sub, decl.Name)
			}
			if decl.Sealed && !slices.Contains(decl.Permits, sub) {
				report("%v is not allowed in the sealed hierarchy of %v", sub, decl.Name)
			}
		}
	}

	if len(problems) != 0 {
		return nil, &BuildError{Problems: problems}
	}
	logger.Debug("built type hierarchy", "declarations", h.decls.Len())
	return h, nil
}

func (h *Hierarchy) validateDecl(decl *Decl) []error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%v: "+format, append([]any{decl.Name}, args...)...))
	}
	validate := func(t Type) {
		if t == nil {
			report("missing type")
			return
		}
		if err := h.Validate(t); err != nil {
			report("%v", err)
		}
	}

	params := set.New[string](len(decl.Params))
	for _, p := range decl.Params {
		if !params.Insert(p.Name) {
			report("duplicate type parameter %v", p.Name)
		}
		if p.Bound != nil {
			validate(p.Bound)
		}
	}

	switch decl.Kind {
	case KindRecord:
		if decl.Super != nil {
			report("records cannot extend classes")
		}
		if decl.Sealed {
			report("records are implicitly final and cannot be sealed")
		}
		names := set.New[string](len(decl.Components))
		for _, c := range decl.Components {
			if !names.Insert(c.Name) {
				report("record component %v is already defined", c.Name)
			}
			validate(c.Type)
		}
	case KindInterface:
		if decl.Super != nil {
			report("interfaces cannot extend classes")
		}
		if len(decl.Components) != 0 {
			report("only records have components")
		}
	case KindClass:
		if len(decl.Components) != 0 {
			report("only records have components")
		}
		if decl.Final && decl.Sealed {
			report("a class cannot be both final and sealed")
		}
		if decl.Super != nil {
			validate(decl.Super)
			if super, ok := h.decls.Get(decl.Super.Name); ok && super.Kind != KindClass {
				report("%v is not a class", super.Name)
			}
		}
	default:
		report("unknown declaration kind")
	}

	for _, iface := range decl.Interfaces {
		validate(iface)
		if super, ok := h.decls.Get(iface.Name); ok && super.Kind != KindInterface {
			report("%v is not an interface", super.Name)
		}
	}
	if decl.Sealed && len(decl.Permits) == 0 {
		report("sealed declaration must permit at least one subtype")
	}
	for _, permitted := range decl.Permits {
		sub, ok := h.decls.Get(permitted)
		if !ok {
			report("permitted subtype %v is not declared", permitted)
			continue
		}
		if !slices.ContainsFunc(sub.directSupers(), func(n *Named) bool { return n.Name == decl.Name }) {
			report("permitted subtype %v does not directly extend %v", permitted, decl.Name)
		}
	}
	return problems
}

func (h *Hierarchy) hasCycle(name typeName, visiting *set.Set[typeName]) bool {
	if !visiting.Insert(name) {
		return true
	}
	defer visiting.Remove(name)
	decl, ok := h.decls.Get(name)
	if !ok {
		return false
	}
	for _, super := range decl.directSupers() {
		if h.hasCycle(super.Name, visiting) {
			return true
		}
	}
	return false
}

// MustBuild is Build for tests and static fixtures, it panics on invalid declarations
func (b *Builder) MustBuild() *Hierarchy {
	h, err := b.Build()
	if err != nil {
		panic(errors.Join(errors.New("MustBuild"), err))
	}
	return h
}
