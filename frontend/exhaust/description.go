package exhaust

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/cottand/recpat/frontend/types"
	"github.com/hashicorp/go-set/v3"
)

// description is the part of a pattern that matters for coverage: either
// every non-null value of a type (binding), or a record deconstructed into
// nested descriptions (record).
//
// Two descriptions with the same Hash describe the same values.
type description interface {
	Hash() string
	String() string
}

type binding struct {
	t types.Type
}

func (b *binding) Hash() string   { return "b:" + b.t.TypeName() }
func (b *binding) String() string { return b.t.TypeName() }

type record struct {
	t *types.Named
	// components are the instantiated component types of t
	components []types.Type
	nested     []description
}

func (r *record) Hash() string {
	return "r:" + r.t.TypeName() + "(" + r.hashExcept(-1) + ")"
}

// hashExcept hashes every nested description but the one at index skip
func (r *record) hashExcept(skip int) string {
	parts := make([]string, len(r.nested))
	for i, n := range r.nested {
		if i == skip {
			parts[i] = "*"
			continue
		}
		parts[i] = n.Hash()
	}
	return strings.Join(parts, ",")
}

func (r *record) String() string {
	parts := make([]string, len(r.nested))
	for i, n := range r.nested {
		parts[i] = n.String()
	}
	return r.t.TypeName() + "(" + strings.Join(parts, ", ") + ")"
}

// with returns a copy of r where the nested description at index i is replaced by d
func (r *record) with(i int, d description) *record {
	nested := slices.Clone(r.nested)
	nested[i] = d
	return &record{t: r.t, components: r.components, nested: nested}
}

// patternSet is a set of descriptions. Its iteration order is
// unspecified, so every traversal that can influence the result goes
// through sorted.
type patternSet struct {
	*set.HashSet[description, string]
}

func newPatternSet(items ...description) patternSet {
	s := patternSet{set.NewHashSet[description, string](len(items))}
	for _, item := range items {
		s.Insert(item)
	}
	return s
}

func (s patternSet) clone() patternSet {
	return patternSet{s.HashSet.Copy()}
}

// sorted returns the descriptions ordered by hash
func (s patternSet) sorted() []description {
	out := make([]description, 0, s.Size())
	for d := range s.Items() {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b description) int { return strings.Compare(a.Hash(), b.Hash()) })
	return out
}

func (s patternSet) same(other patternSet) bool {
	if s.Size() != other.Size() {
		return false
	}
	for d := range s.Items() {
		if !other.Contains(d) {
			return false
		}
	}
	return true
}

func (s patternSet) bindings() []*binding {
	var out []*binding
	for _, d := range s.sorted() {
		if b, ok := d.(*binding); ok {
			out = append(out, b)
		}
	}
	return out
}

func (s patternSet) LogValue() slog.Value {
	descs := s.sorted()
	rendered := make([]string, len(descs))
	for i, d := range descs {
		rendered[i] = d.String()
	}
	return slog.StringValue("{" + strings.Join(rendered, ", ") + "}")
}
