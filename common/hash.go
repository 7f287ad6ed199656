package common

import "hash/fnv"

// StringHash returns a 32-bit FNV-1a hash of s. The empty string always hashes to zero so
// callers can use zero as the "nothing extra" key.
//
// Parameters:
//   - s: the string to hash
//
// Returns:
//   - uint32: the hash of s, or 0 for the empty string
func StringHash(s string) uint32 {
	if s == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
