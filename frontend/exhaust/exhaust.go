// Package exhaust decides whether the cases of a switch cover every value
// of its selector type.
//
// Patterns are reduced to descriptions, and descriptions are rewritten to
// broader ones until nothing changes:
//   - bindings covering every permitted subtype of a sealed abstract type
//     are merged into a binding of the sealed type
//   - record patterns that agree on all components but one are merged when
//     that component's patterns can themselves be merged
//   - a record pattern whose components are all covered becomes a binding
//     of the record type
//
// The cases are exhaustive once a binding covers the selector type.
package exhaust

import (
	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "exhaust")

// Case is a checked case pattern as seen by the analysis
type Case struct {
	Node *check.Node
	// Guarded cases may fail for any value they match, so they never contribute coverage
	Guarded bool
}

type Result struct {
	Exhaustive bool
	// Missing describes, for display, the types whose values are not all covered.
	// It is empty when Exhaustive is true.
	Missing []string
}

// IsExhaustive reports whether cases cover every non-null value of selector
func IsExhaustive(h *types.Hierarchy, selector types.Type, cases []Case) bool {
	return Analyze(h, selector, cases).Exhaustive
}

// Analyze computes coverage of selector by cases, as IsExhaustive, and
// describes what is missing when cases are not exhaustive
func Analyze(h *types.Hierarchy, selector types.Type, cases []Case) Result {
	a := &analyzer{h: h}
	patterns := newPatternSet()
	for _, c := range cases {
		if c.Guarded || c.Node == nil {
			continue
		}
		if d := a.describe(c.Node); d != nil {
			patterns.Insert(d)
		}
	}
	if a.open(selector) {
		// no set of subtypes covers an open type, only a pattern unconditional on it
		if a.covered(selector, patterns) {
			return Result{Exhaustive: true}
		}
		return Result{Missing: []string{selector.TypeName()}}
	}
	covered, reduced := a.coverage(selector, patterns)
	logger.Debug("computed coverage", "selector", selector, "exhaustive", covered, "patterns", reduced)
	if covered {
		return Result{Exhaustive: true}
	}
	return Result{Missing: a.missing(selector, reduced)}
}

type analyzer struct {
	h *types.Hierarchy
}

// describe returns nil for patterns that cannot contribute to coverage:
// conditional primitive patterns, which depend on the value and not only
// on its type, and record patterns containing one
func (a *analyzer) describe(n *check.Node) description {
	if n.IsRecord() {
		named, ok := n.Resolved.(*types.Named)
		if !ok || n.Components == nil {
			return nil
		}
		components, _ := a.h.Components(named)
		r := &record{t: named, components: make([]types.Type, len(components)), nested: make([]description, len(components))}
		for i, c := range n.Components {
			nested := a.describe(c)
			if nested == nil {
				return nil
			}
			r.components[i] = components[i].Type
			r.nested[i] = nested
		}
		return r
	}
	if !n.Conversion.Legal() {
		return nil
	}
	if n.Unconditional {
		return &binding{t: n.Input}
	}
	if n.IsPrimitive() || !types.IsReference(n.Input) {
		return nil
	}
	return &binding{t: n.Resolved}
}

func (a *analyzer) coverage(selector types.Type, patterns patternSet) (bool, patternSet) {
	useHashes := true
	for {
		updated := a.reduceBindings(selector, patterns)
		updated = a.reduceNested(updated, useHashes)
		updated = a.reduceRecords(updated)
		updated = a.removeCoveredRecords(updated)
		if a.covered(selector, patterns) {
			return true, patterns
		}
		if updated.same(patterns) {
			// exact grouping of record patterns misses merges that need
			// subtyping between components, ie R(S1, B) and R(S2, S2)
			// when B permits S1 and S2, so retry without it before giving up
			if !useHashes {
				return a.covered(selector, updated), updated
			}
			useHashes = false
		} else {
			useHashes = true
		}
		patterns = updated
	}
}

// covers is true when every value of target is matched by a binding of bound
func (a *analyzer) covers(target, bound types.Type) bool {
	return a.h.Unconditional(types.Erasure(target), types.Erasure(bound))
}

func (a *analyzer) covered(target types.Type, patterns patternSet) bool {
	for _, b := range patterns.bindings() {
		if a.covers(target, b.t) {
			return true
		}
	}
	return false
}

// accept is false for permitted subtypes that cannot be values of target,
// like Fixed, an Option<Integer>, for a target of Option<String>
func (a *analyzer) accept(name string, target types.Type) bool {
	instance, ok := a.h.InferArgs(name, target)
	return ok && a.h.Castable(target, instance)
}

// permittedLeaves lists the subtypes that must be covered to cover the
// sealed abstract root: its permitted subtypes, replacing the sealed
// abstract ones by their own permitted subtypes
func (a *analyzer) permittedLeaves(root *types.Decl, target types.Type) []*types.Named {
	var leaves []*types.Named
	visited := set.New[string](4)
	queue := []*types.Decl{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if !visited.Insert(current.Name) {
			continue
		}
		for _, name := range current.Permits {
			if !a.accept(name, target) {
				continue
			}
			sub, ok := a.h.Lookup(name)
			if !ok {
				continue
			}
			if sub.Sealed && sub.IsAbstract() {
				queue = append(queue, sub)
				continue
			}
			leaves = append(leaves, &types.Named{Name: name})
		}
	}
	return leaves
}

// open is true for a selector whose runtime classes cannot be enumerated
// and that cannot be split into permitted subtypes, like Object or Number
func (a *analyzer) open(t types.Type) bool {
	if a.h.IsClosed(t) {
		return false
	}
	named, ok := types.Erasure(t).(*types.Named)
	if !ok {
		return true
	}
	decl, _ := a.h.Lookup(named.Name)
	return !isSealedAbstract(decl)
}

func isSealedAbstract(decl *types.Decl) bool {
	return decl != nil && decl.Sealed && decl.IsAbstract()
}

// reduceBindings adds a binding of each sealed abstract type all of whose
// permitted subtypes are covered by bindings in patterns
func (a *analyzer) reduceBindings(target types.Type, patterns patternSet) patternSet {
	bindings := patterns.bindings()
	existing := set.New[string](len(bindings))
	for _, b := range bindings {
		existing.Insert(types.Erasure(b.t).TypeName())
	}

	toAdd := newPatternSet()
	for _, b := range bindings {
		named, ok := types.Erasure(b.t).(*types.Named)
		if !ok {
			continue
		}
		for _, super := range a.h.DirectSupertypes(named) {
			decl, _ := a.h.Lookup(super.Name)
			if !isSealedAbstract(decl) || existing.Contains(super.Name) {
				continue
			}
			if a.allCovered(a.permittedLeaves(decl, target), bindings) {
				toAdd.Insert(&binding{t: &types.Named{Name: super.Name}})
			}
		}
	}
	if toAdd.Size() == 0 {
		return patterns
	}
	out := patterns.clone()
	for d := range toAdd.Items() {
		out.Insert(d)
	}
	return out
}

func (a *analyzer) allCovered(leaves []*types.Named, bindings []*binding) bool {
	for _, leaf := range leaves {
		covered := false
		for _, b := range bindings {
			if a.h.IsSubtype(leaf, types.Erasure(b.t)) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// reduceNested merges record patterns of the same record that only differ
// in one component, when the patterns of that component reduce to
// something broader. It returns patterns as soon as one record
// declaration's patterns changed.
func (a *analyzer) reduceNested(patterns patternSet, useHashes bool) patternSet {
	byRecord := make(map[string][]*record)
	var order []string
	for _, d := range patterns.sorted() {
		r, ok := d.(*record)
		if !ok {
			continue
		}
		if _, seen := byRecord[r.t.Name]; !seen {
			order = append(order, r.t.Name)
		}
		byRecord[r.t.Name] = append(byRecord[r.t.Name], r)
	}

	for _, name := range order {
		group := byRecord[name]
		original := newPatternSet()
		for _, r := range group {
			original.Insert(r)
		}
		current := original.clone()
		arity := len(group[0].nested)

		for mismatching := 0; mismatching < arity; mismatching++ {
			for _, candidates := range a.candidates(current, mismatching, useHashes) {
				for first, one := range candidates {
					join := []*record{one}
					for next, other := range candidates {
						if first != next && a.joinable(one, other, mismatching, useHashes) {
							join = append(join, other)
						}
					}

					nested := newPatternSet()
					for _, r := range join {
						nested.Insert(r.nested[mismatching])
					}
					updated := a.reduceNested(nested, useHashes)
					updated = a.reduceRecords(updated)
					updated = a.removeCoveredRecords(updated)
					updated = a.reduceBindings(one.components[mismatching], updated)
					if updated.same(nested) {
						continue
					}
					if useHashes {
						for _, r := range join {
							current.Remove(r)
						}
					}
					for _, d := range updated.sorted() {
						current.Insert(one.with(mismatching, d))
					}
				}
			}
		}

		if !current.same(original) {
			out := patterns.clone()
			for _, r := range group {
				out.Remove(r)
			}
			for d := range current.Items() {
				out.Insert(d)
			}
			return out
		}
	}
	return patterns
}

// candidates groups the records of current that may be joined on component
// mismatching. With hashes, only records identical on every other
// component are grouped together.
func (a *analyzer) candidates(current patternSet, mismatching int, useHashes bool) [][]*record {
	var records []*record
	for _, d := range current.sorted() {
		if r, ok := d.(*record); ok && len(r.nested) > mismatching {
			records = append(records, r)
		}
	}
	if !useHashes {
		return [][]*record{records}
	}
	groups := make(map[string][]*record)
	var order []string
	for _, r := range records {
		key := r.hashExcept(mismatching)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	out := make([][]*record, len(order))
	for i, key := range order {
		out[i] = groups[key]
	}
	return out
}

// joinable is true when other matches at least the values of one on every
// component except mismatching
func (a *analyzer) joinable(one, other *record, mismatching int, useHashes bool) bool {
	if one.t.Name != other.t.Name || len(one.nested) != len(other.nested) {
		return false
	}
	for i := range one.nested {
		if i == mismatching || one.nested[i].Hash() == other.nested[i].Hash() {
			continue
		}
		if useHashes {
			return false
		}
		bOne, okOne := one.nested[i].(*binding)
		bOther, okOther := other.nested[i].(*binding)
		if !okOne || !okOther || !a.h.IsSubtype(types.Erasure(bOne.t), types.Erasure(bOther.t)) {
			return false
		}
	}
	return true
}

// reduceRecords replaces record patterns whose components are all covered
// by a binding of the record type
func (a *analyzer) reduceRecords(patterns patternSet) patternSet {
	changed := false
	reduced := make([]description, 0, patterns.Size())
	for _, d := range patterns.sorted() {
		r := a.reduceRecord(d)
		if r != d {
			changed = true
		}
		reduced = append(reduced, r)
	}
	if !changed {
		return patterns
	}
	return newPatternSet(reduced...)
}

func (a *analyzer) reduceRecord(d description) description {
	r, ok := d.(*record)
	if !ok {
		return d
	}
	covered := true
	var reducedNested []description
	for i, n := range r.nested {
		reduced := a.reduceRecord(n)
		if reduced != n {
			if reducedNested == nil {
				reducedNested = make([]description, len(r.nested))
				copy(reducedNested, r.nested)
			}
			reducedNested[i] = reduced
		}
		b, isBinding := reduced.(*binding)
		covered = covered && isBinding && a.covers(r.components[i], b.t)
	}
	if covered {
		return &binding{t: r.t}
	}
	if reducedNested != nil {
		return &record{t: r.t, components: r.components, nested: reducedNested}
	}
	return d
}

// removeCoveredRecords drops record patterns already covered by a binding
func (a *analyzer) removeCoveredRecords(patterns patternSet) patternSet {
	bindings := patterns.bindings()
	var out patternSet
	for _, d := range patterns.sorted() {
		r, ok := d.(*record)
		if !ok {
			continue
		}
		for _, b := range bindings {
			if a.h.IsSubtype(types.Erasure(r.t), types.Erasure(b.t)) {
				if out.HashSet == nil {
					out = patterns.clone()
				}
				out.Remove(r)
				break
			}
		}
	}
	if out.HashSet == nil {
		return patterns
	}
	return out
}
