package common

import "math/bits"

// NextPowerOfTwo returns the smallest power of two that is greater than or equal to n.
// Zero and one both return one.
//
// Parameters:
//   - n: the value to round up
//
// Returns:
//   - uint: the next power of two
func NextPowerOfTwo(n uint) uint {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(n-1)
}

// RoundUp rounds value up to the next multiple of alignment.
// Alignment must be a power of two; zero leaves the value unchanged.
func RoundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}
