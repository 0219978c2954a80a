package bytesutil

import "github.com/bsv-blockchain/go-bt/v2/chainhash"

// HashSize is the length in bytes of a double-SHA256 digest.
const HashSize = chainhash.HashSize

// Hash is a 32-byte double-SHA256 digest. It aliases chainhash.Hash so
// block and tx hashes render with the node's reversed-hex display
// convention via String().
type Hash = chainhash.Hash

// DoubleSHA256 computes SHA-256 twice over b, returning the raw 32-byte
// digest in the order it was produced (not reversed).
func DoubleSHA256(b []byte) Hash {
	return chainhash.DoubleHashH(b)
}

// HashHex renders h as hex of its reversed byte sequence, matching the
// display convention used by node explorers and RPC output.
func HashHex(h Hash) string {
	return h.String()
}
