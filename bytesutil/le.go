// Package bytesutil holds the low-level byte-view primitives every decoder
// in chainscan is built on: little-endian integer reads, Bitcoin's
// variable-length integer encoding, and double-SHA256 hashing with the
// node's reversed-hex display convention.
package bytesutil

// Uint32LE decodes a 4-byte little-endian unsigned integer starting at the
// front of b. b must be at least 4 bytes long.
func Uint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Uint64LE decodes an 8-byte little-endian unsigned integer starting at the
// front of b. b must be at least 8 bytes long.
func Uint64LE(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// UintLE decodes an n-byte (1-8) little-endian unsigned integer starting at
// the front of b. b must be at least n bytes long.
func UintLE(b []byte, n int) uint64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// ReverseBytes returns a reversed copy of b, leaving b untouched.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
