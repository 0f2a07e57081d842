package types

// PrimKind enumerates the primitive value types
type PrimKind uint8

const (
	_ PrimKind = iota
	Boolean
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

var AllPrimKinds = []PrimKind{Boolean, Byte, Short, Char, Int, Long, Float, Double}

func (k PrimKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Char:
		return "char"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return "invalid"
	}
}

// BoxName is the name of the reference type that boxes k
func (k PrimKind) BoxName() string {
	switch k {
	case Boolean:
		return "Boolean"
	case Byte:
		return "Byte"
	case Short:
		return "Short"
	case Char:
		return "Character"
	case Int:
		return "Integer"
	case Long:
		return "Long"
	case Float:
		return "Float"
	case Double:
		return "Double"
	default:
		return "invalid"
	}
}

func (k PrimKind) IsIntegral() bool {
	return k == Byte || k == Short || k == Char || k == Int || k == Long
}

func (k PrimKind) IsFloating() bool {
	return k == Float || k == Double
}

// IsNumeric is true for the kinds whose boxes extend Number
func (k PrimKind) IsNumeric() bool {
	return k.IsIntegral() && k != Char || k.IsFloating()
}

// PrimKindNamed looks up a primitive by its keyword, ie "int"
func PrimKindNamed(name string) (PrimKind, bool) {
	for _, k := range AllPrimKinds {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// BoxedKindNamed looks up a primitive by the name of its box, ie "Integer"
func BoxedKindNamed(name string) (PrimKind, bool) {
	for _, k := range AllPrimKinds {
		if k.BoxName() == name {
			return k, true
		}
	}
	return 0, false
}

// primitive widening, as in JLS 5.1.2
var widening = map[PrimKind][]PrimKind{
	Byte:  {Short, Int, Long, Float, Double},
	Short: {Int, Long, Float, Double},
	Char:  {Int, Long, Float, Double},
	Int:   {Long, Float, Double},
	Long:  {Float, Double},
	Float: {Double},
}

// widenings that may lose precision
var inexactWidening = map[[2]PrimKind]bool{
	{Int, Float}:   true,
	{Long, Float}:  true,
	{Long, Double}: true,
}

// primitive narrowing, as in JLS 5.1.3
var narrowing = map[PrimKind][]PrimKind{
	Short:  {Byte, Char},
	Char:   {Byte, Short},
	Int:    {Byte, Short, Char},
	Long:   {Byte, Short, Char, Int},
	Float:  {Byte, Short, Char, Int, Long},
	Double: {Byte, Short, Char, Int, Long, Float},
}

func contains(kinds []PrimKind, k PrimKind) bool {
	for _, each := range kinds {
		if each == k {
			return true
		}
	}
	return false
}

// PrimitiveConversion classifies the conversion between two primitive kinds
func PrimitiveConversion(from, to PrimKind) Conversion {
	switch {
	case from == to:
		return Identity
	case contains(widening[from], to):
		return WideningPrimitive
	case contains(narrowing[from], to):
		return NarrowingPrimitive
	case from == Byte && to == Char:
		return WideningNarrowingPrimitive
	}
	return NoConversion
}

// ExactWidening reports whether the widening from -> to never loses information
func ExactWidening(from, to PrimKind) bool {
	return PrimitiveConversion(from, to) == WideningPrimitive && !inexactWidening[[2]PrimKind{from, to}]
}
