// Package fixed provides unsigned integers of a configurable bit width that
// wrap around on overflow, the way a hardware register does.
package fixed

import (
	"fmt"
	"math"
	"strconv"
)

// MaxWidth is the widest supported register.
const MaxWidth Width = 64

// Width is the number of bits a Value keeps.
type Width uint8

// Valid reports whether the width is in [1, MaxWidth].
func (w Width) Valid() bool {
	return w >= 1 && w <= MaxWidth
}

// Mask returns the bit mask that keeps the low w bits.
func (w Width) Mask() uint64 {
	if w >= MaxWidth {
		return math.MaxUint64
	}

	return 1<<w - 1
}

// Zero returns the additive identity of the width.
func (w Width) Zero() Value {
	return Value{width: w}
}

// Of truncates v to the width.
func (w Width) Of(v uint64) Value {
	if !w.Valid() {
		panic(fmt.Sprintf("fixed: invalid width %d", w))
	}

	return Value{bits: v & w.Mask(), width: w}
}

// Values truncates every element of vs.
func (w Width) Values(vs ...uint64) []Value {
	ret := make([]Value, len(vs))
	for i, v := range vs {
		ret[i] = w.Of(v)
	}

	return ret
}

// Matrix truncates every element of rows.
func (w Width) Matrix(rows [][]uint64) [][]Value {
	ret := make([][]Value, len(rows))
	for i, row := range rows {
		ret[i] = w.Values(row...)
	}

	return ret
}

// Value is an unsigned integer held in a register of a fixed width.
type Value struct {
	bits  uint64
	width Width
}

// Uint64 returns the raw register content.
func (v Value) Uint64() uint64 {
	return v.bits
}

// Width returns the register width of the value.
func (v Value) Width() Width {
	return v.width
}

// IsZero reports whether all bits are clear.
func (v Value) IsZero() bool {
	return v.bits == 0
}

// Add returns v+o modulo 2^width. The uint64 sum wraps modulo 2^64, so
// masking it afterwards is the same as reducing modulo 2^width.
func (v Value) Add(o Value) Value {
	v.mustMatch(o)
	return v.width.Of(v.bits + o.bits)
}

// Mul returns v*o modulo 2^width.
func (v Value) Mul(o Value) Value {
	v.mustMatch(o)
	return v.width.Of(v.bits * o.bits)
}

// MulAdd returns v*b+c modulo 2^width.
func (v Value) MulAdd(b, c Value) Value {
	return v.Mul(b).Add(c)
}

func (v Value) String() string {
	return strconv.FormatUint(v.bits, 10)
}

func (v Value) mustMatch(o Value) {
	if v.width != o.width {
		panic(fmt.Sprintf("fixed: width mismatch %d vs %d", v.width, o.width))
	}
}
