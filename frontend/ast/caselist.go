package ast

import (
	"iter"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/recpat/frontend/types"
)

// Guard is the side condition of a `case p when <guard>` label.
// Guards are opaque expressions: only their source and, when the host
// compiler could fold it, their constant value are known.
type Guard struct {
	Range
	Source string
	// Const is the compile-time value of the guard, or nil when it is not constant
	Const *bool
}

// IsConstFalse is true for guards that can never pass
func (g *Guard) IsConstFalse() bool {
	return g != nil && g.Const != nil && !*g.Const
}

// Case is one pattern label of a switch, or the pattern of an instanceof test
type Case struct {
	Pattern Pattern
	// Guard is nil for unguarded cases
	Guard *Guard
}

// Unguarded is true when the case matches as soon as its pattern does
func (c Case) Unguarded() bool { return c.Guard == nil }

func (c Case) String() string {
	if c.Guard == nil {
		return "case " + c.Pattern.String()
	}
	return "case " + c.Pattern.String() + " when " + c.Guard.Source
}

// Form is the kind of construct a CaseList comes from
type Form uint8

const (
	// SwitchStatement is an old-style switch statement, which may leave values unmatched
	SwitchStatement Form = iota
	// EnhancedSwitchStatement is a switch statement using patterns or a null label,
	// which must be exhaustive
	EnhancedSwitchStatement
	SwitchExpression
	Instanceof
)

func (f Form) String() string {
	switch f {
	case SwitchStatement:
		return "switch statement"
	case EnhancedSwitchStatement:
		return "enhanced switch statement"
	case SwitchExpression:
		return "switch expression"
	case Instanceof:
		return "instanceof"
	default:
		return "unknown form"
	}
}

// RequiresExhaustive reports whether a construct of this form that does
// not cover its selector is a static error
func (f Form) RequiresExhaustive() bool {
	return f == SwitchExpression || f == EnhancedSwitchStatement
}

// CaseList is the ordered list of cases of one construct, together with
// the static type of its selector.
//
// A CaseList is immutable: the With* methods return modified copies, and
// the underlying list is persistent, so copies share structure.
type CaseList struct {
	Selector    types.Type
	Form        Form
	HasDefault  bool
	HasNullCase bool
	cases       *immutable.List[Case]
}

// NewCaseList builds a CaseList in the order cases are given
func NewCaseList(form Form, selector types.Type, cases ...Case) CaseList {
	b := immutable.NewListBuilder[Case]()
	for _, c := range cases {
		b.Append(c)
	}
	return CaseList{Selector: selector, Form: form, cases: b.List()}
}

// WithDefault returns a copy of l with an explicit `default` label
func (l CaseList) WithDefault() CaseList {
	l.HasDefault = true
	return l
}

// WithNullCase returns a copy of l with an explicit `case null` label
func (l CaseList) WithNullCase() CaseList {
	l.HasNullCase = true
	return l
}

// Append returns a copy of l with c added as its last case
func (l CaseList) Append(c Case) CaseList {
	if l.cases == nil {
		l.cases = immutable.NewList[Case]()
	}
	l.cases = l.cases.Append(c)
	return l
}

func (l CaseList) Len() int {
	if l.cases == nil {
		return 0
	}
	return l.cases.Len()
}

// Case returns the case at index i; it panics when i is out of range
func (l CaseList) Case(i int) Case {
	return l.cases.Get(i)
}

// All iterates over the cases with their indices, in source order
func (l CaseList) All() iter.Seq2[int, Case] {
	return func(yield func(int, Case) bool) {
		if l.cases == nil {
			return
		}
		itr := l.cases.Iterator()
		for !itr.Done() {
			i, c := itr.Next()
			if !yield(i, c) {
				return
			}
		}
	}
}

// Patterns returns the pattern of every case, in source order
func (l CaseList) Patterns() []Pattern {
	out := make([]Pattern, 0, l.Len())
	for _, c := range l.All() {
		out = append(out, c.Pattern)
	}
	return out
}
