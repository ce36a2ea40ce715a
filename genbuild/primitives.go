package genbuild

import (
	"math"

	"pgregory.net/rapid"

	"github.com/cottand/typegen/typeast"
)

// lift wraps a typed rapid generator into the typeast.GeneratorHandle every
// builder function returns, erasing V to any via rapid.Custom.
func lift[V any](g *rapid.Generator[V], label string) typeast.GeneratorHandle {
	return typeast.NewGeneratorHandle(rapid.Custom(func(t *rapid.T) any {
		return g.Draw(t, label)
	}))
}

// constantGen always draws the same value, used for singleton literal types
// and for Nil/EmptyMap.
func constantGen[V any](v V) typeast.GeneratorHandle {
	return lift(rapid.Just(v), "literal")
}

func anyGen() typeast.GeneratorHandle {
	// any() draws from a small closed universe of representative shapes
	// rather than attempting a genuinely unconstrained draw, which rapid's
	// combinator surface has no direct primitive for.
	return oneOfHandles([]typeast.GeneratorHandle{
		intGen(), floatGen(), atomGen(), boolGen(),
		lift(rapid.SliceOfN(rapid.Int(), 0, 3), "any_list"),
	})
}

func atomGen() typeast.GeneratorHandle {
	return lift(rapid.Map(rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`), func(s string) any {
		return typeast.Atom(s)
	}), "atom")
}

func intGen() typeast.GeneratorHandle {
	return lift(rapid.Int64(), "int")
}

func posIntGen() typeast.GeneratorHandle {
	return lift(rapid.Int64Range(1, math.MaxInt64), "pos_int")
}

func negIntGen() typeast.GeneratorHandle {
	return lift(rapid.Int64Range(math.MinInt64, -1), "neg_int")
}

func nonNegIntGen() typeast.GeneratorHandle {
	return lift(rapid.Int64Range(0, math.MaxInt64), "non_neg_int")
}

func rangeGen(lo, hi int64) typeast.GeneratorHandle {
	return lift(rapid.Int64Range(lo, hi), "range")
}

func floatGen() typeast.GeneratorHandle {
	return lift(rapid.Float64(), "float")
}

func boolGen() typeast.GeneratorHandle {
	return lift(rapid.Map(rapid.Bool(), func(b bool) any {
		if b {
			return typeast.Atom("true")
		}
		return typeast.Atom("false")
	}), "bool")
}

func binaryGen() typeast.GeneratorHandle {
	return lift(rapid.SliceOfN(rapid.Byte(), 0, 32), "binary")
}

func bitstringGen() typeast.GeneratorHandle {
	return lift(rapid.Custom(func(t *rapid.T) typeast.Bits {
		bitLen := rapid.IntRange(0, 256).Draw(t, "bitlen")
		bytes := rapid.SliceOfN(rapid.Byte(), (bitLen+7)/8, (bitLen+7)/8).Draw(t, "bytes")
		maskTrailingBits(bytes, bitLen)
		return typeast.Bits{Bytes: bytes, BitLen: bitLen}
	}), "bitstring")
}

// binaryPatternGen honours a <<_:size, _:_*unit>> constraint by drawing a
// non-negative repeat count k and producing size + k*unit bits.
func binaryPatternGen(size, unit int64) typeast.GeneratorHandle {
	if size == 0 && unit == 0 {
		return constantGen(typeast.Bits{})
	}
	return lift(rapid.Custom(func(t *rapid.T) typeast.Bits {
		var bitLen int64 = size
		if unit > 0 {
			k := rapid.Int64Range(0, 8).Draw(t, "repeat")
			bitLen += k * unit
		}
		byteLen := (bitLen + 7) / 8
		bytes := rapid.SliceOfN(rapid.Byte(), int(byteLen), int(byteLen)).Draw(t, "bytes")
		maskTrailingBits(bytes, int(bitLen))
		return typeast.Bits{Bytes: bytes, BitLen: int(bitLen)}
	}), "binary_pattern")
}

func maskTrailingBits(bytes []byte, bitLen int) {
	if bitLen%8 == 0 || len(bytes) == 0 {
		return
	}
	keep := bitLen % 8
	bytes[len(bytes)-1] &= byte(0xFF << (8 - keep))
}

func refGen() typeast.GeneratorHandle {
	return lift(rapid.Custom(func(t *rapid.T) any {
		return typeast.NewRef()
	}), "ref")
}

func mapAnyGen() typeast.GeneratorHandle {
	return lift(rapid.Custom(func(t *rapid.T) map[any]any {
		n := rapid.IntRange(0, 4).Draw(t, "map_any_size")
		m := make(map[any]any, n)
		for i := 0; i < n; i++ {
			k := atomGen().Draw(t, "map_any_key")
			v := anyGen().Draw(t, "map_any_val")
			trySetMapKey(m, k, v)
		}
		return m
	}), "map_any")
}

func timeoutGen() typeast.GeneratorHandle {
	// Biased 9:1 toward a finite non-negative integer over :infinity, per
	// the practical observation that most timeout values seen in the wild
	// are finite.
	return lift(rapid.Custom(func(t *rapid.T) any {
		if rapid.IntRange(0, 9).Draw(t, "timeout_choice") == 0 {
			return typeast.Atom("infinity")
		}
		return nonNegIntGen().Draw(t, "timeout_value")
	}), "timeout")
}

// trySetMapKey inserts k => v into m, silently discarding the pair if k is
// not a Go-comparable value (e.g. a generated List, which is a []any and
// therefore unhashable): Go's map type requires comparable keys where the
// structural type language does not, so a small number of generated map
// entries are dropped rather than this panicking mid-draw.
func trySetMapKey(m map[any]any, k, v any) {
	defer func() { _ = recover() }()
	m[k] = v
}

// setMapKeyIfAbsent inserts k => v only when k is not already present,
// guarding against non-comparable generated keys the same way trySetMapKey
// does. Used by buildMap's field composition so an earlier field's draw
// always wins a key collision with a later one (§4.2's left-merge rule).
func setMapKeyIfAbsent(m map[any]any, k, v any) {
	defer func() { _ = recover() }()
	if _, exists := m[k]; exists {
		return
	}
	m[k] = v
}

func oneOfHandles(gens []typeast.GeneratorHandle) typeast.GeneratorHandle {
	rg := make([]*rapid.Generator[any], len(gens))
	for i, g := range gens {
		rg[i] = g.Rapid()
	}
	return typeast.NewGeneratorHandle(rapid.OneOf(rg...))
}
