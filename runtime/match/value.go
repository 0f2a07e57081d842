// Package match evaluates checked patterns against runtime values, and
// dispatches a value to the case of a case list that selects it.
package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cottand/recpat/frontend/types"
	"github.com/pkg/errors"
)

// Value is a runtime value: Null, a Prim, a Box, a Str or an Instance
type Value interface {
	fmt.Stringer
	isValue()
}

type Null struct{}

func (Null) String() string { return "null" }
func (Null) isValue()       {}

// Prim is a primitive value. Integral kinds use Int, floating kinds use
// Float, and Boolean uses Bool.
type Prim struct {
	Kind  types.PrimKind
	Int   int64
	Float float64
	Bool  bool
}

func (p Prim) isValue() {}

func (p Prim) String() string {
	switch {
	case p.Kind == types.Boolean:
		return strconv.FormatBool(p.Bool)
	case p.Kind == types.Char:
		return strconv.QuoteRune(rune(p.Int))
	case p.Kind.IsFloating():
		bits := 64
		if p.Kind == types.Float {
			bits = 32
		}
		return strconv.FormatFloat(p.Float, 'g', -1, bits)
	}
	return strconv.FormatInt(p.Int, 10)
}

func OfBool(b bool) Prim      { return Prim{Kind: types.Boolean, Bool: b} }
func OfByte(b int8) Prim      { return Prim{Kind: types.Byte, Int: int64(b)} }
func OfShort(s int16) Prim    { return Prim{Kind: types.Short, Int: int64(s)} }
func OfChar(c uint16) Prim    { return Prim{Kind: types.Char, Int: int64(c)} }
func OfInt(i int32) Prim      { return Prim{Kind: types.Int, Int: int64(i)} }
func OfLong(l int64) Prim     { return Prim{Kind: types.Long, Int: l} }
func OfFloat(f float32) Prim  { return Prim{Kind: types.Float, Float: float64(f)} }
func OfDouble(d float64) Prim { return Prim{Kind: types.Double, Float: d} }
func BoxOf(p Prim) Box        { return Box{Prim: p} }
func OfString(s string) Str   { return Str(s) }

// Box is a boxed primitive, like an Integer
type Box struct {
	Prim Prim
}

func (b Box) String() string { return b.Prim.Kind.BoxName() + "(" + b.Prim.String() + ")" }
func (Box) isValue()         {}

type Str string

func (s Str) String() string { return strconv.Quote(string(s)) }
func (Str) isValue()         {}

// Accessor reads component i of a record instance. Accessors are user
// code, so they may fail.
type Accessor func(i int) (Value, error)

// Instance is an object whose runtime class is Class.
//
// For records, the components are read with Accessor when it is set, and
// taken from Fields otherwise.
type Instance struct {
	Class    *types.Named
	Fields   []Value
	Accessor Accessor
}

// New is shorthand for an Instance of class name with the given fields
func New(name string, fields ...Value) *Instance {
	return &Instance{Class: types.Ref(name), Fields: fields}
}

func (i *Instance) isValue() {}

func (i *Instance) String() string {
	if len(i.Fields) == 0 && i.Accessor != nil {
		return i.Class.Name + "(...)"
	}
	parts := make([]string, len(i.Fields))
	for k, f := range i.Fields {
		parts[k] = f.String()
	}
	return i.Class.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Component returns component k of the record i
func (i *Instance) Component(k int) (Value, error) {
	if i.Accessor != nil {
		return i.Accessor(k)
	}
	if k < 0 || k >= len(i.Fields) {
		return nil, errors.Errorf("%s has no component %d", i.Class.Name, k)
	}
	return i.Fields[k], nil
}

// RuntimeType is the class of v, or nil for Null
func RuntimeType(v Value) types.Type {
	switch v := v.(type) {
	case Prim:
		return types.Primitive{Kind: v.Kind}
	case Box:
		return types.Boxed{Kind: v.Prim.Kind}
	case Str:
		return types.StringT
	case *Instance:
		return &types.Named{Name: v.Class.Name}
	}
	return nil
}

// Convert converts p to kind, and reports whether the conversion is exact,
// meaning that no information was lost. Converting between boolean and the
// numeric kinds is never exact.
func Convert(p Prim, kind types.PrimKind) (Prim, bool) {
	if p.Kind == kind {
		return p, true
	}
	if p.Kind == types.Boolean || kind == types.Boolean {
		return Prim{}, false
	}
	if p.Kind.IsIntegral() {
		switch kind {
		case types.Float:
			f := float32(p.Int)
			if float64(f) >= 0x1p63 || int64(f) != p.Int {
				return Prim{}, false
			}
			return Prim{Kind: kind, Float: float64(f)}, true
		case types.Double:
			f := float64(p.Int)
			if f >= 0x1p63 || int64(f) != p.Int {
				return Prim{}, false
			}
			return Prim{Kind: kind, Float: f}, true
		}
		if !inRange(p.Int, kind) {
			return Prim{}, false
		}
		return Prim{Kind: kind, Int: p.Int}, true
	}

	f := p.Float
	switch kind {
	case types.Double:
		return Prim{Kind: kind, Float: f}, true
	case types.Float:
		if math.IsNaN(f) || float64(float32(f)) == f {
			return Prim{Kind: kind, Float: float64(float32(f))}, true
		}
		return Prim{}, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < -0x1p63 || f >= 0x1p63 {
		return Prim{}, false
	}
	// -0.0 has no integral counterpart
	if f == 0 && math.Signbit(f) {
		return Prim{}, false
	}
	i := int64(f)
	if !inRange(i, kind) {
		return Prim{}, false
	}
	return Prim{Kind: kind, Int: i}, true
}

func inRange(i int64, kind types.PrimKind) bool {
	switch kind {
	case types.Byte:
		return i >= math.MinInt8 && i <= math.MaxInt8
	case types.Short:
		return i >= math.MinInt16 && i <= math.MaxInt16
	case types.Char:
		return i >= 0 && i <= math.MaxUint16
	case types.Int:
		return i >= math.MinInt32 && i <= math.MaxInt32
	case types.Long:
		return true
	}
	return false
}
