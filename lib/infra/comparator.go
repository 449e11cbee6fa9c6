package infra

import (
	"bytes"
	"math"
)

// NaturalCompare is the three-way comparison over the language ordering
// of K. For floating-point kinds it inherits IEEE semantics (NaN is
// unordered); use Float32Compare/Float64Compare for a total order.
func NaturalCompare[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// Float32Compare is a total order over float32 suitable for map keys.
// NaNs are split by sign bit and sort to the two ends of the ordering,
// -0.0 sorts before +0.0, and the remaining values compare naturally.
// Note that this deliberately differs from IEEE comparison.
func Float32Compare(x, y float32) int64 {
	xNaN, yNaN := x != x, y != y
	sx, sy := floatSign(math.Float32bits(x)>>31 == 1), floatSign(math.Float32bits(y)>>31 == 1)

	switch {
	case xNaN && yNaN:
		return NaturalCompare(sx, sy)
	case xNaN:
		return sx
	case yNaN:
		return -sy
	case x == 0 && y == 0:
		return NaturalCompare(sx, sy)
	}
	return NaturalCompare(x, y)
}

// Float64Compare is the float64 counterpart of Float32Compare.
func Float64Compare(x, y float64) int64 {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	sx, sy := floatSign(math.Signbit(x)), floatSign(math.Signbit(y))

	switch {
	case xNaN && yNaN:
		return NaturalCompare(sx, sy)
	case xNaN:
		return sx
	case yNaN:
		return -sy
	case x == 0 && y == 0:
		return NaturalCompare(sx, sy)
	}
	return NaturalCompare(x, y)
}

func floatSign(negative bool) int64 {
	if negative {
		return -1
	}
	return 1
}

// BytesCompare is the lexicographic three-way comparison over raw key
// payloads.
func BytesCompare(x, y []byte) int64 {
	return int64(bytes.Compare(x, y))
}

// DefaultComparator returns the canonical comparator for K: the total
// float order for the predeclared float kinds, the natural ordering
// otherwise.
func DefaultComparator[K OrderedKey]() OrderedKeyComparator[K] {
	var zero K
	switch any(zero).(type) {
	case float32:
		return func(i, j K) int64 {
			return Float32Compare(any(i).(float32), any(j).(float32))
		}
	case float64:
		return func(i, j K) int64 {
			return Float64Compare(any(i).(float64), any(j).(float64))
		}
	default:
		return NaturalCompare[K]
	}
}
