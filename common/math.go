package common

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Only use this for element types whose Go layout is known to match the GPU layout
// (e.g. []uint32 index data). Records with a documented byte contract should be
// serialized through their own Marshal methods instead.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Clamp restricts v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t. t is not clamped.
//
// Parameters:
//   - a: the value at t = 0
//   - b: the value at t = 1
//   - t: the interpolation factor
//
// Returns:
//   - T: a + (b - a) * t
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Smoothstep performs cubic Hermite interpolation of t, matching the WGSL
// built-in smoothstep for the [0, 1] edge pair: 3t² - 2t³.
// t is expected to be within [0, 1]; callers clamp beforehand when needed.
//
// Parameters:
//   - t: the interpolation factor
//
// Returns:
//   - T: the smoothed factor
func Smoothstep[T constraints.Float](t T) T {
	return t * t * (3 - 2*t)
}

// Floor32 returns the greatest integer value less than or equal to v as float32.
func Floor32(v float32) float32 {
	return float32(math.Floor(float64(v)))
}

// DivCeil returns the smallest integer q such that q * d >= n.
// Used to turn an invocation count into a workgroup count.
//
// Parameters:
//   - n: the dividend
//   - d: the divisor (must be non-zero)
//
// Returns:
//   - T: ceil(n / d)
func DivCeil[T constraints.Integer](n, d T) T {
	return (n + d - 1) / d
}
