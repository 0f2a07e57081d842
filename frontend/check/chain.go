package check

import (
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/cottand/recpat/frontend/types"
	"github.com/hashicorp/go-set/v3"
)

// Link is one `expr instanceof Pattern` test of a chain
type Link struct {
	Pattern   ast.Pattern
	Scrutinee types.Type
}

// CheckChain checks patterns that are all in scope at once, such as
// `a instanceof A(var x) && b instanceof B(var y)`. A name may only be
// bound once across the whole chain, and may not shadow inScope, the
// variables already visible where the chain appears.
func CheckChain(h *types.Hierarchy, links []Link, inScope ...string) ([]*Checked, *ilerr.Errors) {
	c := &checker{h: h}
	seen := set.From(inScope)
	out := make([]*Checked, len(links))
	for i, link := range links {
		root := c.check(link.Pattern, link.Scrutinee, nil)
		out[i] = &Checked{Root: root, Bindings: c.bindings(root, seen)}
	}
	return out, c.errs
}
