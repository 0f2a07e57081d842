package ilerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cottand/recpat/frontend/ast"
	"github.com/cottand/recpat/frontend/types"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	ShapeNotRecord
	ShapeArity
	ShapeTypeArgs
	TypeIncompatible
	DuplicateBinding
	NonExhaustive
	DominatedCase
	AlwaysFalseGuard
	DefaultWithUnconditional
	UnknownType
)

func (c ErrCode) String() string {
	switch c {
	case ShapeNotRecord:
		return "ShapeNotRecord"
	case ShapeArity:
		return "ShapeArity"
	case ShapeTypeArgs:
		return "ShapeTypeArgs"
	case TypeIncompatible:
		return "TypeIncompatible"
	case DuplicateBinding:
		return "DuplicateBinding"
	case NonExhaustive:
		return "NonExhaustive"
	case DominatedCase:
		return "DominatedCase"
	case AlwaysFalseGuard:
		return "AlwaysFalseGuard"
	case DefaultWithUnconditional:
		return "DefaultWithUnconditional"
	case UnknownType:
		return "UnknownType"
	default:
		return "Unclassified"
	}
}

// IleError is a static diagnostic about a pattern or a case list.
// Diagnostics never abort analysis: they are accumulated in Errors.
type IleError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

// positioned returns p, or an empty Range when p is nil, so that
// diagnostics built without a position can still be asked for one
func positioned(p ast.Positioner) ast.Positioner {
	if p == nil {
		return ast.Range{}
	}
	return p
}

// at renders where in a pattern a diagnostic applies
func at(path ast.Path) string {
	if path.IsRoot() {
		return ""
	}
	return " (at " + path.String() + ")"
}

// NewShapeNotRecord is raised when a record pattern names a type that is not a record
type NewShapeNotRecord struct {
	ast.Positioner
	Path  ast.Path
	Found types.Type
	stack []byte
}

func (e NewShapeNotRecord) Error() string {
	return fmt.Sprintf("%v is not a record: only record types are permitted in a record pattern%s", e.Found, at(e.Path))
}
func (e NewShapeNotRecord) Code() ErrCode    { return ShapeNotRecord }
func (e NewShapeNotRecord) getStack() []byte { return e.stack }
func (e NewShapeNotRecord) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewShapeArity struct {
	ast.Positioner
	Path     ast.Path
	Record   types.Type
	Expected int
	Actual   int
	stack    []byte
}

func (e NewShapeArity) Error() string {
	return fmt.Sprintf("incorrect number of nested patterns for %v: found %d but %d should match the signature of the record declaration%s",
		e.Record, e.Actual, e.Expected, at(e.Path))
}
func (e NewShapeArity) Code() ErrCode    { return ShapeArity }
func (e NewShapeArity) getStack() []byte { return e.stack }
func (e NewShapeArity) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

// NewShapeTypeArgs is raised when a pattern gives the wrong number of type arguments
type NewShapeTypeArgs struct {
	ast.Positioner
	Path   ast.Path
	Type   types.Type
	Reason string
	stack  []byte
}

func (e NewShapeTypeArgs) Error() string {
	return fmt.Sprintf("invalid type %v: %s%s", e.Type, e.Reason, at(e.Path))
}
func (e NewShapeTypeArgs) Code() ErrCode    { return ShapeTypeArgs }
func (e NewShapeTypeArgs) getStack() []byte { return e.stack }
func (e NewShapeTypeArgs) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

// NewTypeIncompatible is raised when no legal conversion exists from the type a
// pattern is matched against (Expected) to the type it claims (Actual)
type NewTypeIncompatible struct {
	ast.Positioner
	Path     ast.Path
	Expected types.Type
	Actual   types.Type
	stack    []byte
}

func (e NewTypeIncompatible) Error() string {
	if e.Path.IsRoot() {
		return fmt.Sprintf("incompatible types: %v cannot be converted to %v", e.Expected, e.Actual)
	}
	return fmt.Sprintf("record component with type %v is not compatible with type %v%s", e.Expected, e.Actual, at(e.Path))
}
func (e NewTypeIncompatible) Code() ErrCode    { return TypeIncompatible }
func (e NewTypeIncompatible) getStack() []byte { return e.stack }
func (e NewTypeIncompatible) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewDuplicateBinding struct {
	ast.Positioner
	Path  ast.Path
	Name  string
	stack []byte
}

func (e NewDuplicateBinding) Error() string {
	return fmt.Sprintf("pattern variable with the same name '%s' already defined%s", e.Name, at(e.Path))
}
func (e NewDuplicateBinding) Code() ErrCode    { return DuplicateBinding }
func (e NewDuplicateBinding) getStack() []byte { return e.stack }
func (e NewDuplicateBinding) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewNonExhaustive struct {
	ast.Positioner
	Form     ast.Form
	Selector types.Type
	// Missing describes values left uncovered, for display
	Missing []string
	stack   []byte
}

func (e NewNonExhaustive) Error() string {
	msg := fmt.Sprintf("the %v does not cover all possible input values of type %v", e.Form, e.Selector)
	if len(e.Missing) > 0 {
		msg += ": missing " + strings.Join(e.Missing, ", ")
	}
	return msg
}
func (e NewNonExhaustive) Code() ErrCode    { return NonExhaustive }
func (e NewNonExhaustive) getStack() []byte { return e.stack }
func (e NewNonExhaustive) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewDominatedCase struct {
	ast.Positioner
	Index     int
	Dominator int
	Pattern   ast.Pattern
	stack     []byte
}

func (e NewDominatedCase) Error() string {
	return fmt.Sprintf("case %d (%v) is dominated by a preceding case label (case %d)", e.Index, e.Pattern, e.Dominator)
}
func (e NewDominatedCase) Code() ErrCode    { return DominatedCase }
func (e NewDominatedCase) getStack() []byte { return e.stack }
func (e NewDominatedCase) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewAlwaysFalseGuard struct {
	ast.Positioner
	Index int
	Guard string
	stack []byte
}

func (e NewAlwaysFalseGuard) Error() string {
	return fmt.Sprintf("this case label has a guard '%s' that is a constant expression with value 'false' (case %d)", e.Guard, e.Index)
}
func (e NewAlwaysFalseGuard) Code() ErrCode    { return AlwaysFalseGuard }
func (e NewAlwaysFalseGuard) getStack() []byte { return e.stack }
func (e NewAlwaysFalseGuard) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewDefaultWithUnconditional struct {
	ast.Positioner
	Index int
	stack []byte
}

func (e NewDefaultWithUnconditional) Error() string {
	return fmt.Sprintf("switch has both an unconditional pattern (case %d) and a default label", e.Index)
}
func (e NewDefaultWithUnconditional) Code() ErrCode    { return DefaultWithUnconditional }
func (e NewDefaultWithUnconditional) getStack() []byte { return e.stack }
func (e NewDefaultWithUnconditional) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}

type NewUnknownType struct {
	ast.Positioner
	Path  ast.Path
	Cause error
	stack []byte
}

func (e NewUnknownType) Error() string {
	return e.Cause.Error() + at(e.Path)
}
func (e NewUnknownType) Code() ErrCode    { return UnknownType }
func (e NewUnknownType) getStack() []byte { return e.stack }
func (e NewUnknownType) withStack(stack []byte) IleError {
	e.Positioner = positioned(e.Positioner)
	e.stack = stack
	return e
}
