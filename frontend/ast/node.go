package ast

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/cottand/recpat/frontend/types"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	Hash() uint64
}

// Pattern is a node of a pattern tree, as found after `instanceof` or in a
// `case` label. The variants are TypePattern, PrimitivePattern and RecordPattern.
type Pattern interface {
	Node
	fmt.Stringer
	// Bindings returns the variable names bound by this node only, not by its children
	Bindings() []string
	patternNode() // Marker method to distinguish patterns
}

var (
	_ Pattern = (*TypePattern)(nil)
	_ Pattern = (*PrimitivePattern)(nil)
	_ Pattern = (*RecordPattern)(nil)
)

// TypePattern tests that a value is an instance of Type and binds it to Binding.
//
// A nil Type is a `var` pattern: its type is the type of whatever it is
// matched against, so it is always unconditional.
type TypePattern struct {
	Range
	Type    types.Type
	Binding string
}

func (p *TypePattern) patternNode() {}

func (p *TypePattern) Bindings() []string {
	return bindingOf(p.Binding)
}

// IsVar is true for `var x` and the unnamed `_` pattern
func (p *TypePattern) IsVar() bool { return p.Type == nil }

func (p *TypePattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("TypePattern" + p.Binding)
	if p.Type != nil {
		arr = binary.LittleEndian.AppendUint64(arr, p.Type.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, p.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (p *TypePattern) String() string {
	name := "var"
	if p.Type != nil {
		name = p.Type.TypeName()
	}
	if p.Type == nil && IsUnnamed(p.Binding) {
		return "_"
	}
	if IsUnnamed(p.Binding) {
		return name + " _"
	}
	return name + " " + p.Binding
}

// PrimitivePattern tests that a value is representable as a primitive of
// Kind, converting it if needed (ie `case byte b` on an int selector).
type PrimitivePattern struct {
	Range
	Kind    types.PrimKind
	Binding string
}

func (p *PrimitivePattern) patternNode() {}

func (p *PrimitivePattern) Bindings() []string {
	return bindingOf(p.Binding)
}

// Type returns the primitive type claimed by the pattern
func (p *PrimitivePattern) Type() types.Type {
	return types.Primitive{Kind: p.Kind}
}

func (p *PrimitivePattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("PrimitivePattern" + p.Binding)
	arr = append(arr, byte(p.Kind))
	arr = binary.LittleEndian.AppendUint64(arr, p.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (p *PrimitivePattern) String() string {
	if IsUnnamed(p.Binding) {
		return p.Kind.String() + " _"
	}
	return p.Kind.String() + " " + p.Binding
}

// RecordPattern deconstructs a record into its components, matching each
// against the corresponding nested pattern. Record patterns bind no name
// of their own.
//
// Type may omit the type arguments of a generic record, in which case they
// are inferred from the type the pattern is matched against.
type RecordPattern struct {
	Range
	Type       *types.Named
	Components []Pattern
}

func (p *RecordPattern) patternNode() {}

func (p *RecordPattern) Bindings() []string { return nil }

func (p *RecordPattern) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("RecordPattern")
	arr = binary.LittleEndian.AppendUint64(arr, p.Type.Hash())
	for _, c := range p.Components {
		arr = binary.LittleEndian.AppendUint64(arr, c.Hash())
	}
	arr = binary.LittleEndian.AppendUint64(arr, p.Range.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (p *RecordPattern) String() string {
	sb := strings.Builder{}
	sb.WriteString(p.Type.TypeName())
	sb.WriteByte('(')
	for i, c := range p.Components {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsUnnamed is true for bindings that introduce no variable
func IsUnnamed(binding string) bool {
	return binding == "" || binding == "_"
}

func bindingOf(binding string) []string {
	if IsUnnamed(binding) {
		return nil
	}
	return []string{binding}
}

// Walk visits p and every nested pattern depth-first, in component order,
// together with its Path from p. It stops early when visit returns false.
func Walk(p Pattern, visit func(path Path, node Pattern) bool) {
	walk(p, nil, visit)
}

func walk(p Pattern, path Path, visit func(Path, Pattern) bool) bool {
	if !visit(path, p) {
		return false
	}
	rec, ok := p.(*RecordPattern)
	if !ok {
		return true
	}
	for i, c := range rec.Components {
		if !walk(c, path.Child(i), visit) {
			return false
		}
	}
	return true
}

// At returns the sub-pattern of p found at path, if any
func At(p Pattern, path Path) (Pattern, bool) {
	current := p
	for _, idx := range path {
		rec, ok := current.(*RecordPattern)
		if !ok || idx < 0 || idx >= len(rec.Components) {
			return nil, false
		}
		current = rec.Components[idx]
	}
	return current, true
}

// AllBindings returns every name bound in the tree of p, in Walk order,
// including repeats.
func AllBindings(p Pattern) []string {
	var names []string
	Walk(p, func(_ Path, node Pattern) bool {
		names = append(names, node.Bindings()...)
		return true
	})
	return names
}

// Bind is shorthand for a type pattern `t name`
func Bind(t types.Type, name string) *TypePattern {
	return &TypePattern{Type: t, Binding: name}
}

// Var is shorthand for a `var name` pattern
func Var(name string) *TypePattern {
	return &TypePattern{Binding: name}
}

// Any is shorthand for the unnamed pattern `_`
func Any() *TypePattern {
	return &TypePattern{Binding: "_"}
}

// Prim is shorthand for a primitive pattern `kind name`
func Prim(kind types.PrimKind, name string) *PrimitivePattern {
	return &PrimitivePattern{Kind: kind, Binding: name}
}

// Rec is shorthand for a record pattern `T(components...)`
func Rec(t *types.Named, components ...Pattern) *RecordPattern {
	if components == nil {
		components = []Pattern{}
	}
	return &RecordPattern{Type: t, Components: components}
}
