// Package check validates pattern trees against the static type of the
// value they are matched against, and resolves the type of every node.
package check

import (
	"errors"
	"fmt"

	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = ast.PatternLogger(log.DefaultLogger.With("section", "check"))

// Node is the typed mirror of an ast.Pattern node
type Node struct {
	Pattern ast.Pattern
	Path    ast.Path
	// Input is the static type of the values this node is matched against:
	// the selector for the root, the instantiated component type otherwise
	Input types.Type
	// Resolved is the type this node tests for, after inference. For `var`
	// patterns it is Input, for generic record patterns the inferred instance.
	Resolved   types.Type
	Conversion types.Conversion
	// Unconditional is true when the node matches every non-null value of
	// Input without any runtime test. Record patterns are never unconditional.
	Unconditional bool
	// Components holds the checked nested patterns of a record pattern, in order.
	// It is nil when the record pattern could not be checked.
	Components []*Node
}

// IsRecord is true for nodes checking a record pattern
func (n *Node) IsRecord() bool {
	_, ok := n.Pattern.(*ast.RecordPattern)
	return ok
}

// IsPrimitive is true when the node tests for a primitive type
func (n *Node) IsPrimitive() bool {
	_, ok := n.Resolved.(types.Primitive)
	return ok
}

// MatchesNull is true for the nodes that also match a null component:
// unconditional type patterns of a reference type below the root
func (n *Node) MatchesNull() bool {
	return !n.IsRecord() && !n.IsPrimitive() && n.Unconditional && !n.Path.IsRoot()
}

// Walk visits n and its checked descendants depth-first
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.Components {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// At returns the checked node found at path below n
func (n *Node) At(path ast.Path) (*Node, bool) {
	current := n
	for _, idx := range path {
		if idx < 0 || idx >= len(current.Components) {
			return nil, false
		}
		current = current.Components[idx]
	}
	return current, true
}

// Binding is a pattern variable introduced by a match
type Binding struct {
	Name string
	Type types.Type
	Path ast.Path
}

// Checked is the result of checking one pattern tree
type Checked struct {
	Root     *Node
	Bindings []Binding
}

// Binding returns the binding called name, if the pattern introduces one
func (c *Checked) Binding(name string) (Binding, bool) {
	for _, b := range c.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return Binding{}, false
}

type checker struct {
	h    *types.Hierarchy
	errs *ilerr.Errors
}

// Check validates pattern p against values of static type scrutinee.
//
// All problems are reported, not only the first: a component that fails to
// check does not prevent its siblings from being checked. The returned
// Checked is always non-nil, but its nodes are only meaningful when no
// error was reported.
func Check(h *types.Hierarchy, p ast.Pattern, scrutinee types.Type) (*Checked, *ilerr.Errors) {
	c := &checker{h: h}
	root := c.check(p, scrutinee, nil)
	bindings := c.bindings(root, set.New[string](4))
	logger.Debug("checked pattern", "pattern", p, "scrutinee", scrutinee, "errors", c.errs)
	return &Checked{Root: root, Bindings: bindings}, c.errs
}

// CheckCases checks the pattern of every case of list against its selector
func CheckCases(h *types.Hierarchy, list ast.CaseList) ([]*Checked, *ilerr.Errors) {
	var errs *ilerr.Errors
	if err := h.Validate(list.Selector); err != nil {
		errs = errs.With(typeError(nil, nil, list.Selector, err))
	}
	checked := make([]*Checked, 0, list.Len())
	for _, c := range list.All() {
		result, caseErrs := Check(h, c.Pattern, list.Selector)
		checked = append(checked, result)
		errs = errs.Merge(caseErrs)
	}
	return checked, errs
}

func (c *checker) report(err ilerr.IleError) {
	c.errs = c.errs.With(err)
}

func typeError(pos ast.Positioner, path ast.Path, t types.Type, err error) ilerr.IleError {
	var unknown *types.UnknownTypeError
	if errors.As(err, &unknown) {
		return ilerr.New(ilerr.NewUnknownType{Positioner: pos, Path: path, Cause: err})
	}
	return ilerr.New(ilerr.NewShapeTypeArgs{Positioner: pos, Path: path, Type: t, Reason: err.Error()})
}

func (c *checker) check(p ast.Pattern, input types.Type, path ast.Path) *Node {
	node := &Node{Pattern: p, Path: path, Input: input, Resolved: input}
	switch p := p.(type) {
	case *ast.TypePattern:
		if p.Type == nil {
			node.Conversion = types.Identity
			node.Unconditional = true
			return node
		}
		c.checkTypeLike(node, p.Type)
	case *ast.PrimitivePattern:
		c.checkTypeLike(node, p.Type())
	case *ast.RecordPattern:
		c.checkRecord(node, p)
	default:
		panic(fmt.Sprintf("unexpected pattern %T", p))
	}
	return node
}

// checkTypeLike checks type patterns and primitive patterns, which only
// differ in the kind of type they claim
func (c *checker) checkTypeLike(node *Node, claimed types.Type) {
	node.Resolved = claimed
	if err := c.h.Validate(claimed); err != nil {
		c.report(typeError(node.Pattern, node.Path, claimed, err))
		return
	}
	node.Conversion = c.h.PatternConversion(node.Input, claimed)
	if !node.Conversion.Legal() {
		c.report(ilerr.New(ilerr.NewTypeIncompatible{
			Positioner: node.Pattern,
			Path:       node.Path,
			Expected:   node.Input,
			Actual:     claimed,
		}))
		return
	}
	node.Unconditional = c.h.Unconditional(node.Input, claimed)
}

func (c *checker) checkRecord(node *Node, p *ast.RecordPattern) {
	node.Resolved = p.Type
	decl, ok := c.h.Lookup(p.Type.Name)
	if !ok {
		c.report(typeError(p, node.Path, p.Type, &types.UnknownTypeError{Name: p.Type.Name}))
		return
	}
	if !decl.IsRecord() {
		c.report(ilerr.New(ilerr.NewShapeNotRecord{Positioner: p, Path: node.Path, Found: p.Type}))
		return
	}
	if err := c.h.Validate(p.Type); err != nil {
		c.report(typeError(p, node.Path, p.Type, err))
		return
	}

	resolved := p.Type
	if resolved.IsRaw() && len(decl.Params) > 0 {
		inferred, ok := c.h.InferArgs(p.Type.Name, node.Input)
		if !ok {
			c.report(ilerr.New(ilerr.NewTypeIncompatible{
				Positioner: p,
				Path:       node.Path,
				Expected:   node.Input,
				Actual:     p.Type,
			}))
			return
		}
		resolved = inferred
	}
	node.Resolved = resolved

	node.Conversion = c.h.PatternConversion(node.Input, resolved)
	switch node.Conversion {
	case types.Identity, types.WideningReference, types.NarrowingReference:
	default:
		c.report(ilerr.New(ilerr.NewTypeIncompatible{
			Positioner: p,
			Path:       node.Path,
			Expected:   node.Input,
			Actual:     resolved,
		}))
		return
	}

	components, _ := c.h.Components(resolved)
	if len(components) != len(p.Components) {
		c.report(ilerr.New(ilerr.NewShapeArity{
			Positioner: p,
			Path:       node.Path,
			Record:     resolved,
			Expected:   len(components),
			Actual:     len(p.Components),
		}))
		return
	}
	node.Components = make([]*Node, len(components))
	for i, component := range components {
		node.Components[i] = c.check(p.Components[i], component.Type, node.Path.Child(i))
	}
}

// bindings collects the variables bound in the tree of root, reporting
// the names already present in seen (which is updated). Bindings are
// collected from the pattern itself so that repeats are found even below
// record patterns that failed to check.
func (c *checker) bindings(root *Node, seen *set.Set[string]) []Binding {
	var out []Binding
	ast.Walk(root.Pattern, func(path ast.Path, p ast.Pattern) bool {
		for _, name := range p.Bindings() {
			if !seen.Insert(name) {
				c.report(ilerr.New(ilerr.NewDuplicateBinding{Positioner: p, Path: path, Name: name}))
				continue
			}
			binding := Binding{Name: name, Path: path}
			if node, ok := root.At(path); ok {
				binding.Type = node.Resolved
			}
			out = append(out, binding)
		}
		return true
	})
	return out
}
