// Package utxo maintains the in-memory unspent-output index consumed as a
// height-ordered block stream is walked: every output created but not yet
// spent, keyed by a compact txid prefix so the index can hold hundreds of
// millions of entries without storing a full txid per entry.
package utxo

import (
	"github.com/dolthub/swiss"

	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/errors"
	"github.com/fungibit/chainscan/model"
)

// Tracker is single-writer: its operations are not safe to interleave
// with each other. Callers that want parallelism must partition work at
// block boundaries above the tracker.
type Tracker struct {
	prefixSize   int
	trackScripts bool
	m            *swiss.Map[Key, *entry]
}

// Option configures a Tracker at construction time.
type Option func(*Tracker)

// WithPrefixSize overrides DefaultPrefixSize.
func WithPrefixSize(n int) Option {
	return func(t *Tracker) { t.prefixSize = n }
}

// WithScripts enables with-scripts mode: the tracker additionally retains
// each output's locking-script bytes, owned by the entry until spent.
func WithScripts() Option {
	return func(t *Tracker) { t.trackScripts = true }
}

// New builds a Tracker, sized with an initial capacity hint.
func New(capacityHint int, opts ...Option) *Tracker {
	t := &Tracker{prefixSize: DefaultPrefixSize}
	for _, o := range opts {
		o(t)
	}
	t.m = swiss.NewMap[Key, *entry](uint32(capacityHint))
	return t
}

// Len returns the number of tx entries currently tracked.
func (t *Tracker) Len() int {
	return t.m.Count()
}

// Iter visits every tracked entry, exposing its key and its per-output
// values for external snapshotting; slots already spent hold the spent
// sentinel 0xFFFFFFFFFFFFFFFF. The snapshot's on-disk format
// is left to the caller; this only guarantees a consistent walk of the
// live set at call time. Stops early if fn returns false.
func (t *Tracker) Iter(fn func(key Key, values []uint64, height int32) bool) {
	t.m.Iter(func(k Key, e *entry) bool {
		return fn(k, e.values, e.height)
	})
}

// AddFromTx records every output of tx as unspent, at blockHeight. A tx
// with zero outputs is not inserted: there is no unspent state to track.
func (t *Tracker) AddFromTx(tx *model.Tx, blockHeight int32) {
	if len(tx.Outputs) == 0 {
		return
	}

	values := make([]uint64, len(tx.Outputs))
	var scripts [][]byte
	if t.trackScripts {
		scripts = make([][]byte, len(tx.Outputs))
	}

	for i, out := range tx.Outputs {
		values[i] = out.Value
		if t.trackScripts {
			scripts[i] = out.Script
		}
	}

	key := KeyFromTxID(tx.TxID, t.prefixSize)
	t.m.Put(key, newEntry(values, scripts, blockHeight))
}

// Spend resolves the output at (spentTxID, outIdx) to its SpendingInfo,
// marks it spent, and releases the owning entry once every output of that
// tx has been spent. Fails with NotFound when the entry is absent or the
// slot is already spent (a double spend, or a spend of an output this
// tracker never saw created).
func (t *Tracker) Spend(spentTxID bytesutil.Hash, outIdx uint32) (model.SpendingInfo, error) {
	key := KeyFromTxID(spentTxID, t.prefixSize)

	e, ok := t.m.Get(key)
	if !ok {
		return model.SpendingInfo{}, errors.NewNotFound("utxo entry for %s not found", bytesutil.HashHex(spentTxID))
	}

	idx := int(outIdx)
	if idx < 0 || idx >= len(e.values) {
		return model.SpendingInfo{}, errors.NewNotFound("output index %d out of range for %s", outIdx, bytesutil.HashHex(spentTxID))
	}

	if e.values[idx] == spentSentinel {
		return model.SpendingInfo{}, errors.NewNotFound("output %d of %s already spent", outIdx, bytesutil.HashHex(spentTxID))
	}

	output := model.TxOutput{Value: e.values[idx]}
	if e.scripts != nil {
		output.Script = e.scripts[idx] // ownership transferred to the caller
		e.scripts[idx] = nil
	}

	info := model.SpendingInfo{Output: output, BlockHeight: e.height}

	e.values[idx] = spentSentinel
	e.remaining--

	if e.remaining == 0 {
		e.scripts = nil // drop any remaining script refs, if with-scripts was toggled mid-flight
		t.m.Delete(key)
	}

	return info, nil
}
