package common

// Coalesce picks the first value that is not the zero value of T, e.g. a configured title
// over a built-in default.
//
// Returns:
//   - T: the first non-zero value, or the zero value when every value is zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
