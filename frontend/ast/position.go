package ast

import (
	"encoding/binary"
	"fmt"
	"go/token"
	"hash/fnv"
	"strconv"
	"strings"
)

// Positioner allows finding the location in the original source file.
// Positions are opaque to this module: they are produced by the host parser
// and only carried through to diagnostics.
type Positioner interface {
	Pos() token.Pos // position of first character belonging to the node
	End() token.Pos // position of first character immediately after the node
}

// Range represents a range of positions in the source code.
type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

// Hash returns a hash value for the Range
func (r Range) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte{}
	arr = binary.LittleEndian.AppendUint64(arr, uint64(r.PosStart))
	arr = binary.LittleEndian.AppendUint64(arr, uint64(r.PosEnd))
	_, _ = h.Write(arr)
	return h.Sum64()
}

func (r Range) Pos() token.Pos { return r.PosStart }
func (r Range) End() token.Pos { return r.PosEnd }

func (r Range) String() string {
	if r.PosStart == r.PosEnd {
		return fmt.Sprintf("%v", r.PosStart)
	}
	return fmt.Sprintf("%v-%v", r.PosStart, r.PosEnd)
}

// RangeOf creates a Range from a Positioner.
func RangeOf(expr Positioner) Range {
	if expr == nil {
		return Range{}
	}
	if asRange, ok := expr.(Range); ok {
		return asRange
	}
	return Range{expr.Pos(), expr.End()}
}

// Path locates a sub-pattern inside a pattern tree: each element is the
// index of a record component, starting from the root pattern.
// The empty Path is the root itself.
type Path []int

// Child returns a new Path one component deeper
func (p Path) Child(component int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, component)
}

func (p Path) IsRoot() bool { return len(p) == 0 }

func (p Path) String() string {
	if len(p) == 0 {
		return "pattern"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "component " + strings.Join(parts, ".")
}
