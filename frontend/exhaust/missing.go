package exhaust

import (
	"strings"

	"github.com/cottand/recpat/frontend/types"
	"github.com/hashicorp/go-set/v3"
)

// missing describes the values of target left uncovered by patterns, the
// result of a failed coverage computation. Sealed abstract types are split
// into their uncovered permitted subtypes, records that are only partly
// covered by record patterns are rendered with their component types.
func (a *analyzer) missing(target types.Type, patterns patternSet) []string {
	seen := set.New[string](4)
	var out []string
	for _, m := range a.missingIn(target, patterns) {
		if seen.Insert(m) {
			out = append(out, m)
		}
	}
	return out
}

func (a *analyzer) missingIn(target types.Type, patterns patternSet) []string {
	if a.covered(target, patterns) {
		return nil
	}
	named, ok := types.Erasure(target).(*types.Named)
	if !ok {
		return []string{target.TypeName()}
	}
	decl, _ := a.h.Lookup(named.Name)
	if isSealedAbstract(decl) {
		var out []string
		for _, leaf := range a.permittedLeaves(decl, target) {
			out = append(out, a.missingIn(leaf, patterns)...)
		}
		return out
	}
	if decl != nil && decl.IsRecord() && a.partlyCovered(named.Name, patterns) {
		components, _ := a.h.Components(named)
		parts := make([]string, len(components))
		for i, c := range components {
			parts[i] = c.Type.TypeName()
		}
		return []string{named.Name + "(" + strings.Join(parts, ", ") + ")"}
	}
	return []string{target.TypeName()}
}

func (a *analyzer) partlyCovered(recordName string, patterns patternSet) bool {
	for _, d := range patterns.sorted() {
		if r, ok := d.(*record); ok && r.t.Name == recordName {
			return true
		}
	}
	return false
}
