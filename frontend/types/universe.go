package types

const (
	NumberName = "Number"
	StringName = "String"
)

// universe holds the declarations every Hierarchy starts with. Boxed
// primitives are not declarations: they are final and extend Number
// (numeric kinds) or Object directly.
func universe() []*Decl {
	return []*Decl{
		Class(NumberName).AsAbstract(),
		Class(StringName).AsFinal(),
	}
}

// reservedName reports names that cannot be declared by users
func reservedName(name string) bool {
	if name == "Object" {
		return true
	}
	if _, ok := PrimKindNamed(name); ok {
		return true
	}
	_, ok := BoxedKindNamed(name)
	return ok
}

// Resolve turns a bare type name into a Type: primitives, boxes, Object or
// a reference to a declaration (which is not checked to exist).
func Resolve(name string, args ...Type) Type {
	if name == "Object" && len(args) == 0 {
		return Object
	}
	if k, ok := PrimKindNamed(name); ok && len(args) == 0 {
		return Primitive{Kind: k}
	}
	if k, ok := BoxedKindNamed(name); ok && len(args) == 0 {
		return Boxed{Kind: k}
	}
	return Ref(name, args...)
}

var (
	BooleanT = Primitive{Kind: Boolean}
	ByteT    = Primitive{Kind: Byte}
	ShortT   = Primitive{Kind: Short}
	CharT    = Primitive{Kind: Char}
	IntT     = Primitive{Kind: Int}
	LongT    = Primitive{Kind: Long}
	FloatT   = Primitive{Kind: Float}
	DoubleT  = Primitive{Kind: Double}

	IntegerT = Boxed{Kind: Int}
	NumberT  = Ref(NumberName)
	StringT  = Ref(StringName)
)
