package match

import (
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/types"
	"github.com/pkg/errors"
)

const (
	// NullIndex is the Outcome index of the null case
	NullIndex = -1
	// DefaultIndex is the Outcome index of the default label
	DefaultIndex = -2
	// NoMatchIndex is the Outcome index of a failed instanceof test
	NoMatchIndex = -3
)

// Outcome is the case selected by a dispatch
type Outcome struct {
	// Index is the index of the selected case, or one of NullIndex, DefaultIndex and NoMatchIndex
	Index    int
	Bindings Bindings
}

// GuardEvaluator decides the guard of case index, given the bindings of its pattern
type GuardEvaluator interface {
	Eval(index int, guard *ast.Guard, bindings Bindings) (bool, error)
}

// GuardFunc adapts a function to a GuardEvaluator
type GuardFunc func(index int, guard *ast.Guard, bindings Bindings) (bool, error)

func (f GuardFunc) Eval(index int, guard *ast.Guard, bindings Bindings) (bool, error) {
	return f(index, guard, bindings)
}

// ConstGuards evaluates constant guards only, and fails on any other guard
var ConstGuards GuardEvaluator = GuardFunc(func(index int, guard *ast.Guard, _ Bindings) (bool, error) {
	return false, errors.Errorf("guard '%s' of case %d is not constant", guard.Source, index)
})

// Dispatcher selects the case of a case list that a value matches
type Dispatcher struct {
	h       *types.Hierarchy
	list    ast.CaseList
	checked []*check.Checked
}

// NewDispatcher checks the patterns of list once, so that values can be
// dispatched repeatedly. It fails if any pattern does not check.
func NewDispatcher(h *types.Hierarchy, list ast.CaseList) (*Dispatcher, error) {
	checked, errs := check.CheckCases(h, list)
	if errs.HasError() {
		return nil, errors.Errorf("case list does not check: %v", errs)
	}
	return &Dispatcher{h: h, list: list, checked: checked}, nil
}

// Dispatch is NewDispatcher followed by Dispatcher.Dispatch
func Dispatch(h *types.Hierarchy, list ast.CaseList, value Value, guards GuardEvaluator) (Outcome, error) {
	d, err := NewDispatcher(h, list)
	if err != nil {
		return Outcome{}, err
	}
	return d.Dispatch(value, guards)
}

// Dispatch evaluates the cases in order, and returns the first one whose
// pattern matches value and whose guard passes. Constant guards are not
// passed to guards.
//
// value must already be evaluated: each failure is reported once, as the
// returned error. Null selects the null case, or fails with a
// *NullDispatchError. A value that selects no case selects the default,
// or fails with a *MatchError. An instanceof test never fails.
func (d *Dispatcher) Dispatch(value Value, guards GuardEvaluator) (Outcome, error) {
	if _, isNull := value.(Null); isNull || value == nil {
		switch {
		case d.list.HasNullCase:
			return Outcome{Index: NullIndex}, nil
		case d.list.Form == ast.Instanceof:
			return Outcome{Index: NoMatchIndex}, nil
		}
		return Outcome{}, &NullDispatchError{}
	}

	for i, c := range d.list.All() {
		bindings, ok, err := Matches(d.h, d.checked[i], value)
		if err != nil {
			return Outcome{}, err
		}
		if !ok {
			continue
		}
		pass, err := d.guard(i, c.Guard, bindings, guards)
		if err != nil {
			return Outcome{}, errors.Wrapf(err, "evaluating guard of case %d", i)
		}
		if pass {
			logger.Debug("dispatched", "value", value, "case", i)
			return Outcome{Index: i, Bindings: bindings}, nil
		}
	}

	switch {
	case d.list.HasDefault:
		return Outcome{Index: DefaultIndex}, nil
	case d.list.Form == ast.Instanceof:
		return Outcome{Index: NoMatchIndex}, nil
	}
	return Outcome{}, &MatchError{Selector: value}
}

func (d *Dispatcher) guard(i int, g *ast.Guard, bindings Bindings, guards GuardEvaluator) (bool, error) {
	switch {
	case g == nil:
		return true, nil
	case g.Const != nil:
		return *g.Const, nil
	case guards == nil:
		return ConstGuards.Eval(i, g, bindings)
	}
	return guards.Eval(i, g, bindings)
}
