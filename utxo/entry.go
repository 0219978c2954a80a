package utxo

// spentSentinel marks an output record as already spent. It is not a
// legal satoshi value (max supply is far below 2^64-1), so double-spends
// of the same output are detectable without a separate bitset.
const spentSentinel = 0xFFFFFFFFFFFFFFFF

// entry is the per-tx record: a flat, exactly-sized array of per-output
// values (and, if scripts are tracked, their script bytes), a count of
// outputs still unspent, and the height the tx was added at.
type entry struct {
	values    []uint64
	scripts   [][]byte // nil when scripts are not tracked
	remaining int
	height    int32
}

func newEntry(values []uint64, scripts [][]byte, height int32) *entry {
	return &entry{
		values:    values,
		scripts:   scripts,
		remaining: len(values),
		height:    height,
	}
}
