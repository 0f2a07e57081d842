package match

import (
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
)

var logger = log.DefaultLogger.With("section", "match")

// Bindings maps the names bound by a successful match to their values
type Bindings map[string]Value

// Matches tests value against the checked pattern c, and returns the
// values of its bindings when it matches.
//
// A null value never matches: null only reaches nested type patterns that
// are unconditional on their component type. The error is a *MatchError
// when a record component accessor failed.
func Matches(h *types.Hierarchy, c *check.Checked, value Value) (Bindings, bool, error) {
	if _, isNull := value.(Null); isNull || value == nil {
		return nil, false, nil
	}
	m := &matcher{h: h, bindings: Bindings{}}
	ok, err := m.match(c.Root, value)
	if err != nil {
		return nil, false, &MatchError{Selector: value, Cause: err}
	}
	if !ok {
		return nil, false, nil
	}
	return m.bindings, true, nil
}

type matcher struct {
	h        *types.Hierarchy
	bindings Bindings
}

func (m *matcher) bind(p ast.Pattern, v Value) {
	for _, name := range p.Bindings() {
		m.bindings[name] = v
	}
}

func (m *matcher) match(n *check.Node, v Value) (bool, error) {
	if _, isNull := v.(Null); isNull || v == nil {
		if !n.MatchesNull() {
			return false, nil
		}
		m.bind(n.Pattern, Null{})
		return true, nil
	}
	if n.IsRecord() {
		return m.matchRecord(n, v)
	}
	converted, ok := m.convert(n, v)
	if !ok {
		return false, nil
	}
	m.bind(n.Pattern, converted)
	return true, nil
}

func (m *matcher) matchRecord(n *check.Node, v Value) (bool, error) {
	instance, ok := v.(*Instance)
	if !ok || !m.instanceOf(v, n.Resolved) {
		return false, nil
	}
	for i, component := range n.Components {
		value, err := instance.Component(i)
		if err != nil {
			logger.Debug("component accessor failed", "record", instance.Class, "component", i, "error", err)
			return false, err
		}
		ok, err := m.match(component, value)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// convert applies the conversion of n to v, as seen at runtime: reference
// types are tested against the runtime class of v, and primitive
// conversions must be exact
func (m *matcher) convert(n *check.Node, v Value) (Value, bool) {
	if target, ok := n.Resolved.(types.Primitive); ok {
		var p Prim
		switch v := v.(type) {
		case Prim:
			p = v
		case Box:
			// a checked cast to the box of the target comes first
			if n.Conversion == types.NarrowingUnboxing && v.Prim.Kind != target.Kind {
				return nil, false
			}
			p = v.Prim
		default:
			return nil, false
		}
		converted, exact := Convert(p, target.Kind)
		if !exact {
			return nil, false
		}
		return converted, true
	}

	if p, ok := v.(Prim); ok {
		v = Box{Prim: p}
	}
	if n.Unconditional {
		return v, true
	}
	return v, m.instanceOf(v, n.Resolved)
}

// instanceOf is the runtime type test. Type arguments are not known at
// runtime, so only the class is checked.
func (m *matcher) instanceOf(v Value, t types.Type) bool {
	runtime := RuntimeType(v)
	if runtime == nil {
		return false
	}
	if _, isPrim := runtime.(types.Primitive); isPrim {
		return false
	}
	return m.h.IsSubtype(runtime, types.Erasure(t))
}
