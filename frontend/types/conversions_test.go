package types_test

import (
	"fmt"
	"testing"

	"github.com/cottand/recpat/frontend/types"
	"github.com/stretchr/testify/assert"
)

func TestPatternConversions(t *testing.T) {
	h := shapes(t)
	cases := []struct {
		from, to      types.Type
		expected      types.Conversion
		unconditional bool
	}{
		{types.IntT, types.IntT, types.Identity, true},
		{types.ByteT, types.IntT, types.WideningPrimitive, true},
		{types.IntT, types.ByteT, types.NarrowingPrimitive, false},
		{types.IntT, types.FloatT, types.WideningPrimitive, false},
		{types.FloatT, types.IntT, types.NarrowingPrimitive, false},
		{types.ByteT, types.CharT, types.WideningNarrowingPrimitive, false},
		{types.BooleanT, types.IntT, types.NoConversion, false},
		{types.IntT, types.IntegerT, types.Boxing, true},
		{types.IntT, types.NumberT, types.BoxingWidening, true},
		{types.IntT, types.Object, types.BoxingWidening, true},
		{types.IntT, types.Boxed{Kind: types.Long}, types.NoConversion, false},
		{types.IntegerT, types.IntT, types.Unboxing, true},
		{types.IntegerT, types.LongT, types.UnboxingWidening, true},
		{types.IntegerT, types.ByteT, types.UnboxingNarrowing, false},
		{types.Object, types.IntT, types.NarrowingUnboxing, false},
		{types.NumberT, types.DoubleT, types.NarrowingUnboxing, false},
		{types.Ref("Shape"), types.IntT, types.NoConversion, false},
		{types.Ref("Circle"), types.Ref("Shape"), types.WideningReference, true},
		{types.Ref("Shape"), types.Ref("Circle"), types.NarrowingReference, false},
		{types.Ref("Circle"), types.Ref("Square"), types.NoConversion, false},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%v to %v", c.from, c.to), func(t *testing.T) {
			assert.Equal(t, c.expected, h.PatternConversion(c.from, c.to))
			assert.Equal(t, c.unconditional, h.Unconditional(c.from, c.to))
		})
	}
}

// primitive patterns are legal in both directions, only exactness differs
func TestPrimitivePatternsAreSymmetric(t *testing.T) {
	h := shapes(t)
	pairs := [][2]types.Type{
		{types.ByteT, types.IntT},
		{types.IntT, types.FloatT},
		{types.LongT, types.DoubleT},
		{types.CharT, types.ShortT},
	}
	for _, pair := range pairs {
		assert.True(t, h.PatternConversion(pair[0], pair[1]).Legal(), "%v to %v", pair[0], pair[1])
		assert.True(t, h.PatternConversion(pair[1], pair[0]).Legal(), "%v to %v", pair[1], pair[0])
	}
}
