package utxo

import "github.com/fungibit/chainscan/bytesutil"

// DefaultPrefixSize is the number of leading txid bytes used as the
// tracker's map key. 8 bytes is documented collision-free for the entire
// chain; the tracker accepts a construction-time override in case that
// margin must widen.
const DefaultPrefixSize = 8

// maxPrefixSize bounds Key to a native uint64.
const maxPrefixSize = 8

// Key is the tracker's primary key: the leading bytes of a txid, packed
// into a uint64. Defining it in one place keeps the prefix size
// adjustable without touching the map's value type.
type Key uint64

// KeyFromTxID derives the map key from txid's leading prefixSize bytes.
func KeyFromTxID(txid bytesutil.Hash, prefixSize int) Key {
	if prefixSize > maxPrefixSize {
		prefixSize = maxPrefixSize
	}

	var k uint64
	for i := 0; i < prefixSize; i++ {
		k = k<<8 | uint64(txid[i])
	}
	return Key(k)
}
