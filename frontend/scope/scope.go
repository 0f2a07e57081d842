// Package scope computes where the variables bound by patterns in
// boolean conditions are in scope, following the flow of the condition:
// `x instanceof Circle c && c.r > 0` binds c when true, so c is usable on
// the right of &&, and `!(x instanceof Circle c)` binds c when false.
package scope

import (
	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/ilerr"
	"github.com/hashicorp/go-set/v3"
)

// Cond is a boolean condition, seen only through the patterns it tests.
// The variants are Test, Not, And, Or, Group and Opaque.
type Cond interface {
	isCond()
}

// Test is `expr instanceof Pattern`
type Test struct {
	Pattern ast.Pattern
}

type Not struct {
	Cond Cond
}

// And is the conditional `&&`
type And struct {
	Left, Right Cond
}

// Or is the conditional `||`
type Or struct {
	Left, Right Cond
}

// Group is a parenthesized condition
type Group struct {
	Cond Cond
}

// Opaque is any condition without patterns, which binds nothing
type Opaque struct{}

func (Test) isCond()   {}
func (Not) isCond()    {}
func (And) isCond()    {}
func (Or) isCond()     {}
func (Group) isCond()  {}
func (Opaque) isCond() {}

type variable struct {
	name string
	at   ast.Positioner
}

// introduced lists variables in the order they are bound
type introduced []variable

func (vs introduced) names() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.name
	}
	return out
}

// Scopes holds the variables a condition introduces when it evaluates to true and to false
type Scopes struct {
	WhenTrue  []string
	WhenFalse []string
}

// Analyze returns the variables introduced by c, and reports variables
// that c would introduce twice
func Analyze(c Cond) (Scopes, *ilerr.Errors) {
	a := &analyzer{}
	whenTrue, whenFalse := a.analyze(c)
	return Scopes{WhenTrue: whenTrue.names(), WhenFalse: whenFalse.names()}, a.errs
}

// WhenTrue returns the variables definitely matched when c is true
func WhenTrue(c Cond) []string {
	s, _ := Analyze(c)
	return s.WhenTrue
}

// WhenFalse returns the variables definitely matched when c is false
func WhenFalse(c Cond) []string {
	s, _ := Analyze(c)
	return s.WhenFalse
}

type analyzer struct {
	errs *ilerr.Errors
}

func (a *analyzer) analyze(c Cond) (whenTrue, whenFalse introduced) {
	switch c := c.(type) {
	case Test:
		var bound introduced
		for _, name := range ast.AllBindings(c.Pattern) {
			bound = append(bound, variable{name: name, at: c.Pattern})
		}
		// a pattern binding a name twice is reported once per repeat
		return a.union(nil, bound), nil
	case Not:
		whenTrue, whenFalse = a.analyze(c.Cond)
		return whenFalse, whenTrue
	case And:
		leftTrue, leftFalse := a.analyze(c.Left)
		rightTrue, rightFalse := a.analyze(c.Right)
		a.conflicts(leftFalse, rightFalse)
		return a.union(leftTrue, rightTrue), nil
	case Or:
		leftTrue, leftFalse := a.analyze(c.Left)
		rightTrue, rightFalse := a.analyze(c.Right)
		a.conflicts(leftTrue, rightTrue)
		return nil, a.union(leftFalse, rightFalse)
	case Group:
		return a.analyze(c.Cond)
	case Opaque, nil:
		return nil, nil
	}
	return nil, nil
}

// union joins variables bound on both sides of an operator; a name bound
// by both is reported, as the right side is already in scope of the left
func (a *analyzer) union(left, right introduced) introduced {
	seen := set.New[string](len(left) + len(right))
	out := make(introduced, 0, len(left)+len(right))
	for _, v := range append(append(introduced{}, left...), right...) {
		if !seen.Insert(v.name) {
			a.report(v)
			continue
		}
		out = append(out, v)
	}
	return out
}

// conflicts reports names introduced by both sides in the same outcome,
// even if the operator does not introduce them itself
func (a *analyzer) conflicts(left, right introduced) {
	names := set.New[string](len(left))
	for _, v := range left {
		names.Insert(v.name)
	}
	for _, v := range right {
		if names.Contains(v.name) {
			a.report(v)
		}
	}
}

func (a *analyzer) report(v variable) {
	a.errs = a.errs.With(ilerr.New(ilerr.NewDuplicateBinding{Positioner: v.at, Name: v.name}))
}

// IfScope holds the variables in scope around an if statement
type IfScope struct {
	Then []string
	Else []string
	// After are the variables in scope after the statement, in the enclosing block
	After []string
}

// IfScopes returns the variables bound by cond that are in scope in the
// branches of `if (cond) then else els`, and after it.
//
// thenCompletes and elseCompletes tell whether each branch can complete
// normally, as opposed to always returning, throwing or breaking. An if
// statement without else has an else branch that completes.
func IfScopes(cond Cond, thenCompletes, elseCompletes bool) (IfScope, *ilerr.Errors) {
	s, errs := Analyze(cond)
	scope := IfScope{Then: s.WhenTrue, Else: s.WhenFalse}
	switch {
	case thenCompletes && !elseCompletes:
		scope.After = s.WhenTrue
	case !thenCompletes && elseCompletes:
		scope.After = s.WhenFalse
	}
	return scope, errs
}
