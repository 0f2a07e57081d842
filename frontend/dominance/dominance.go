// Package dominance finds the cases of a switch that can never be selected
// because an earlier case matches every value they match.
package dominance

import (
	"slices"
	"sort"

	"github.com/cottand/recpat/frontend/check"
	"github.com/cottand/recpat/frontend/types"
	"github.com/cottand/recpat/internal/log"
	"github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "dominance")

// Case is a checked case pattern as seen by the analysis
type Case struct {
	Node *check.Node
	// Guarded cases dominate nothing: their guard may fail for any value they match
	Guarded bool
}

// Pair records that case Dominated is unreachable because of case Dominator
type Pair struct {
	Dominated int
	Dominator int
}

// Analyze returns, for every dominated case, the first earlier case that
// dominates it. Pairs are sorted by Dominated. Cases with a nil Node, which
// failed to check, are ignored.
func Analyze(h *types.Hierarchy, cases []Case) []Pair {
	var pairs []Pair
	for j, later := range cases {
		if later.Node == nil {
			continue
		}
		for i, earlier := range cases[:j] {
			if earlier.Guarded || earlier.Node == nil {
				continue
			}
			if Dominates(h, earlier.Node, later.Node) {
				logger.Debug("case is dominated", "dominated", j, "by", i)
				pairs = append(pairs, Pair{Dominated: j, Dominator: i})
				break
			}
		}
	}
	return pairs
}

// FindDominated returns the sorted indices of the dominated cases
func FindDominated(h *types.Hierarchy, cases []Case) []int {
	pairs := Analyze(h, cases)
	indices := make([]int, len(pairs))
	for i, p := range pairs {
		indices[i] = p.Dominated
	}
	return Indices(indices...)
}

// Indices returns the given case indices sorted, without repeats
func Indices(indices ...int) []int {
	out := slices.Clone(indices)
	sort.Ints(out)
	return out[:set.Uniq(sort.IntSlice(out))]
}

// Union merges two sets of indices as returned by Indices
func Union(a, b []int) []int {
	data := make([]int, 0, len(a)+len(b))
	data = append(data, a...)
	data = append(data, b...)
	return data[:set.Union(sort.IntSlice(data), len(a))]
}

// Dominates reports whether the pattern of earlier matches every value
// matched by the pattern of later. Both are matched against the same type.
//
// A record pattern only dominates record patterns of the same record whose
// components it dominates one by one. It never dominates a type pattern.
// A pattern that rejects null components never dominates one that accepts them.
func Dominates(h *types.Hierarchy, earlier, later *check.Node) bool {
	if earlier.IsRecord() {
		if !later.IsRecord() || earlier.Components == nil || later.Components == nil {
			return false
		}
		earlierType, _ := earlier.Resolved.(*types.Named)
		laterType, _ := later.Resolved.(*types.Named)
		if earlierType == nil || laterType == nil || earlierType.Name != laterType.Name {
			return false
		}
		if len(earlier.Components) != len(later.Components) {
			return false
		}
		for k := range earlier.Components {
			if !Dominates(h, earlier.Components[k], later.Components[k]) {
				return false
			}
		}
		return true
	}
	if !earlier.Conversion.Legal() || !later.Conversion.Legal() {
		return false
	}
	// a null component reaching later must not slip past earlier
	if later.MatchesNull() && !earlier.MatchesNull() {
		return false
	}
	if earlier.Unconditional {
		return true
	}
	// a primitive pattern on a reference input only matches boxes of its own kind
	if earlier.Conversion == types.NarrowingUnboxing {
		kind := earlier.Resolved.(types.Primitive).Kind
		switch t := later.Resolved.(type) {
		case types.Primitive:
			return t.Kind == kind
		case types.Boxed:
			return t.Kind == kind
		}
		return false
	}
	if later.Conversion == types.NarrowingUnboxing {
		kind := later.Resolved.(types.Primitive).Kind
		return h.IsSubtype(types.Boxed{Kind: kind}, types.Erasure(earlier.Resolved))
	}
	return h.Unconditional(later.Resolved, earlier.Resolved)
}

// FirstUnconditional returns the index of the first unguarded case whose
// pattern matches every non-null value of the selector
func FirstUnconditional(cases []Case) (int, bool) {
	for i, c := range cases {
		if !c.Guarded && c.Node != nil && !c.Node.IsRecord() && c.Node.Unconditional {
			return i, true
		}
	}
	return 0, false
}
