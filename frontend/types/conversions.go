package types

// Conversion classifies how a value of a pattern's input type reaches the
// type the pattern claims.
type Conversion uint8

const (
	NoConversion Conversion = iota
	Identity
	WideningPrimitive
	NarrowingPrimitive
	// WideningNarrowingPrimitive is byte to char
	WideningNarrowingPrimitive
	Boxing
	// BoxingWidening is boxing followed by a widening reference conversion, ie int to Number
	BoxingWidening
	Unboxing
	UnboxingWidening
	UnboxingNarrowing
	WideningReference
	NarrowingReference
	// NarrowingUnboxing is a checked cast to a box followed by unboxing, ie Object to int
	NarrowingUnboxing
)

func (c Conversion) String() string {
	switch c {
	case NoConversion:
		return "none"
	case Identity:
		return "identity"
	case WideningPrimitive:
		return "widening primitive"
	case NarrowingPrimitive:
		return "narrowing primitive"
	case WideningNarrowingPrimitive:
		return "widening and narrowing primitive"
	case Boxing:
		return "boxing"
	case BoxingWidening:
		return "boxing then widening reference"
	case Unboxing:
		return "unboxing"
	case UnboxingWidening:
		return "unboxing then widening primitive"
	case UnboxingNarrowing:
		return "unboxing then narrowing primitive"
	case WideningReference:
		return "widening reference"
	case NarrowingReference:
		return "narrowing reference"
	case NarrowingUnboxing:
		return "narrowing reference then unboxing"
	default:
		return "invalid"
	}
}

// Legal is false only for NoConversion: unlike assignment, a pattern may
// narrow, because the narrowing is checked at runtime.
func (c Conversion) Legal() bool {
	return c != NoConversion
}

// PatternConversion classifies the conversion from a pattern's input type to the type it tests for.
func (h *Hierarchy) PatternConversion(from, to Type) Conversion {
	fromPrim, fromIsPrim := from.(Primitive)
	toPrim, toIsPrim := to.(Primitive)
	switch {
	case fromIsPrim && toIsPrim:
		return PrimitiveConversion(fromPrim.Kind, toPrim.Kind)

	case fromIsPrim:
		box := Boxed{Kind: fromPrim.Kind}
		if Identical(box, to) {
			return Boxing
		}
		if h.IsSubtype(box, to) {
			return BoxingWidening
		}
		return NoConversion

	case toIsPrim:
		if fromBox, ok := upper(from).(Boxed); ok {
			switch PrimitiveConversion(fromBox.Kind, toPrim.Kind) {
			case Identity:
				return Unboxing
			case WideningPrimitive:
				return UnboxingWidening
			case NarrowingPrimitive, WideningNarrowingPrimitive:
				return UnboxingNarrowing
			}
			return NoConversion
		}
		if h.Castable(from, Boxed{Kind: toPrim.Kind}) {
			return NarrowingUnboxing
		}
		return NoConversion
	}

	if Identical(from, to) {
		return Identity
	}
	if h.IsSubtype(from, to) && !h.provablyDistinctArgs(from, to) {
		return WideningReference
	}
	if h.Castable(from, to) {
		return NarrowingReference
	}
	return NoConversion
}

// Unconditional reports whether a pattern testing for `to` matches every
// non-null value whose static type is `from`, so that no runtime test is needed.
func (h *Hierarchy) Unconditional(from, to Type) bool {
	switch h.PatternConversion(from, to) {
	case Identity, Boxing, BoxingWidening, WideningReference, Unboxing:
		return true
	case WideningPrimitive:
		return ExactWidening(from.(Primitive).Kind, to.(Primitive).Kind)
	case UnboxingWidening:
		return ExactWidening(upper(from).(Boxed).Kind, to.(Primitive).Kind)
	}
	return false
}
