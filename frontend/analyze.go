// Package frontend runs every static analysis on a case list and gathers
// the verdicts into a Report.
package frontend

import (
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/dominance"
	"github.com/cottand/recpat/frontend/exhaust"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
)

var logger = log.DefaultLogger.With("section", "frontend")

// Report is the outcome of analysing one CaseList
type Report struct {
	List ast.CaseList
	// Checked holds the checked pattern of every case, in order.
	// Entries are nil for cases whose pattern failed to check.
	Checked []*check.Checked

	// Exhaustive is true when the patterns of the cases, ignoring any
	// default, cover every non-null value of the selector
	Exhaustive bool
	// Missing describes what is not covered when Exhaustive is false
	Missing   []string
	Dominated []dominance.Pair
	// AlwaysFalse lists the cases whose guard is constant false
	AlwaysFalse []int

	// Remainder is true when the cases are exhaustive but a value with a null
	// component may still match none of them, ie Pair(A a, I x) on Pair(null, x)
	Remainder bool
	// NeedsFailurePath is true when a non-null value may match no case,
	// so the dispatch must end by raising a match failure
	NeedsFailurePath bool
	// NullFails is true when dispatching null raises a null dispatch failure
	NullFails bool

	Errors *ilerr.Errors
}

// Covered is true when every non-null value selects a case or the default
func (r *Report) Covered() bool {
	return r.Exhaustive || r.List.HasDefault
}

// DominatedIndices returns the sorted indices of the dominated cases
func (r *Report) DominatedIndices() []int {
	indices := make([]int, len(r.Dominated))
	for i, p := range r.Dominated {
		indices[i] = p.Dominated
	}
	return dominance.Indices(indices...)
}

// Unreachable returns the sorted indices of the cases that can never be
// selected, either dominated or guarded by a constant false guard
func (r *Report) Unreachable() []int {
	return dominance.Union(r.DominatedIndices(), dominance.Indices(r.AlwaysFalse...))
}

// Analyze checks every pattern of list against its selector, then decides
// exhaustiveness and dominance for the cases that checked.
//
// Analysis is not aborted by errors: every diagnostic found is in
// Report.Errors, and cases that failed to check are left out of the
// exhaustiveness and dominance verdicts.
func Analyze(h *types.Hierarchy, list ast.CaseList) *Report {
	r := &Report{List: list}
	if err := h.Validate(list.Selector); err != nil {
		// nothing can be checked against a selector that does not exist
		_, r.Errors = check.CheckCases(h, list)
		r.Checked = make([]*check.Checked, list.Len())
		r.NeedsFailurePath = list.Form != ast.Instanceof && !list.HasDefault
		r.NullFails = list.Form != ast.Instanceof && !list.HasNullCase
		return r
	}

	r.Checked = make([]*check.Checked, list.Len())
	exhaustCases := make([]exhaust.Case, list.Len())
	dominanceCases := make([]dominance.Case, list.Len())
	for i, c := range list.All() {
		checked, errs := check.Check(h, c.Pattern, list.Selector)
		r.Errors = r.Errors.Merge(errs)
		if !errs.HasError() {
			r.Checked[i] = checked
			exhaustCases[i] = exhaust.Case{Node: checked.Root, Guarded: !c.Unguarded()}
			dominanceCases[i] = dominance.Case{Node: checked.Root, Guarded: !c.Unguarded()}
		}
		if c.Guard.IsConstFalse() {
			r.AlwaysFalse = append(r.AlwaysFalse, i)
			r.Errors = r.Errors.With(ilerr.New(ilerr.NewAlwaysFalseGuard{
				Positioner: c.Guard,
				Index:      i,
				Guard:      c.Guard.Source,
			}))
		}
	}

	result := exhaust.Analyze(h, list.Selector, exhaustCases)
	r.Exhaustive, r.Missing = result.Exhaustive, result.Missing

	r.Dominated = dominance.Analyze(h, dominanceCases)
	for _, p := range r.Dominated {
		dominated := list.Case(p.Dominated)
		r.Errors = r.Errors.With(ilerr.New(ilerr.NewDominatedCase{
			Positioner: dominated.Pattern,
			Index:      p.Dominated,
			Dominator:  p.Dominator,
			Pattern:    dominated.Pattern,
		}))
	}

	if list.HasDefault {
		if i, ok := dominance.FirstUnconditional(dominanceCases); ok {
			r.Errors = r.Errors.With(ilerr.New(ilerr.NewDefaultWithUnconditional{
				Positioner: list.Case(i).Pattern,
				Index:      i,
			}))
		}
	}

	if !r.Covered() && list.Form.RequiresExhaustive() {
		r.Errors = r.Errors.With(ilerr.New(ilerr.NewNonExhaustive{
			Form:     list.Form,
			Selector: list.Selector,
			Missing:  r.Missing,
		}))
	}

	r.Remainder = r.Exhaustive && leavesRemainder(list, r.Checked)
	// an instanceof test that does not match evaluates to false
	r.NeedsFailurePath = list.Form != ast.Instanceof && !list.HasDefault && (!r.Exhaustive || r.Remainder)
	r.NullFails = list.Form != ast.Instanceof && !list.HasNullCase

	logger.Debug("analyzed case list",
		"form", list.Form,
		"selector", list.Selector,
		"exhaustive", r.Exhaustive,
		"remainder", r.Remainder,
		"dominated", r.DominatedIndices(),
		"errors", r.Errors,
	)
	return r
}

// leavesRemainder is true when some case rejects a null component that may
// reach it, and no unguarded case matches every value of the selector
func leavesRemainder(list ast.CaseList, checked []*check.Checked) bool {
	for i, c := range checked {
		if c != nil && list.Case(i).Unguarded() && matchesAll(c.Root) {
			return false
		}
	}
	for _, c := range checked {
		if c == nil {
			continue
		}
		acceptsNulls := c.Root.Walk(func(n *check.Node) bool {
			if n.Path.IsRoot() || n.MatchesNull() {
				return true
			}
			_, primitiveInput := n.Input.(types.Primitive)
			return primitiveInput
		})
		if !acceptsNulls {
			return true
		}
	}
	return false
}

// matchesAll is true for a root pattern matched by every non-null selector,
// whatever its components hold
func matchesAll(root *check.Node) bool {
	if !root.IsRecord() {
		return root.Unconditional
	}
	if root.Conversion != types.Identity || root.Components == nil {
		return false
	}
	for _, c := range root.Components {
		if !c.MatchesNull() {
			if _, primitiveInput := c.Input.(types.Primitive); !primitiveInput || !c.Unconditional {
				return false
			}
		}
	}
	return true
}
