// Package valgen contains helpers using closures to generate fixed-width
// values.
package valgen

import (
	"math"
	"math/rand"

	"github.com/samber/lo"
	"github.com/sarchlab/systolic/fixed"
)

// A Gen returns a new value every time it is called.
type Gen func() fixed.Value

// MakeConstGen always returns v.
func MakeConstGen(v fixed.Value) Gen {
	return func() fixed.Value {
		return v
	}
}

// MakeIncreasingGen returns start+1, start+2, ... wrapping at the width of
// start.
func MakeIncreasingGen(start fixed.Value) Gen {
	current := start
	one := start.Width().Of(1)

	return func() fixed.Value {
		current = current.Add(one)
		return current
	}
}

// MakeRandomGen returns a reproducible sequence of values no larger than
// limit. A zero limit, or one the width cannot exceed, uses the whole width.
func MakeRandomGen(seed int64, width fixed.Width, limit uint64) Gen {
	r := rand.New(rand.NewSource(seed))
	full := limit == 0 || limit >= width.Mask() || limit >= math.MaxInt64

	return func() fixed.Value {
		if full {
			return width.Of(r.Uint64())
		}

		return width.Of(uint64(r.Int63n(int64(limit) + 1)))
	}
}

// Vector draws n values from gen.
func Vector(gen Gen, n int) []fixed.Value {
	return lo.Times(n, func(int) fixed.Value {
		return gen()
	})
}

// Matrix draws an n by n matrix from gen in row-major order.
func Matrix(gen Gen, n int) [][]fixed.Value {
	return lo.Times(n, func(int) []fixed.Value {
		return Vector(gen, n)
	})
}
