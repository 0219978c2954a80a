// Package model defines the typed block and transaction records chainscan
// decodes from raw node files, and the decoders that produce them.
package model

import (
	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/errors"
)

// coinbaseSentinelIndex is the spent-output-index value that marks a tx
// input as spending the coinbase sentinel rather than a real outpoint.
const coinbaseSentinelIndex = 0xFFFFFFFF

// TxOutput is one output of a transaction: an amount in satoshis and its
// locking script.
type TxOutput struct {
	Value  uint64
	Script []byte
}

// TxInput is one input of a transaction. The coinbase input of a block's
// first tx carries the all-zero SpentTxID and the sentinel
// coinbaseSentinelIndex; IsCoinbase reports that case.
type TxInput struct {
	SpentTxID        bytesutil.Hash
	SpentOutputIndex uint32
	Script           []byte
	Sequence         uint32

	// Spending is filled in by the UTXO tracker when this input's spend
	// is resolved against a previously produced output. Nil until then.
	Spending *SpendingInfo
}

// IsCoinbase reports whether this input carries the coinbase sentinel
// (spent-output-index 0xFFFFFFFF).
func (in *TxInput) IsCoinbase() bool {
	return in.SpentOutputIndex == coinbaseSentinelIndex
}

// SpendingInfo is attached to a TxInput once the UTXO tracker resolves the
// output it spends.
type SpendingInfo struct {
	Output      TxOutput
	BlockHeight int32
}

// Tx is a single decoded transaction.
type Tx struct {
	Version  uint32
	Inputs   []TxInput
	Outputs  []TxOutput
	LockTime uint32
	TxID     bytesutil.Hash

	// Size is the number of raw bytes consumed decoding this tx.
	Size int

	// Raw holds the exact byte span this tx was decoded from, when the
	// caller asked for it to be retained.
	Raw []byte
}

// IsCoinbase reports whether this tx's first input carries the coinbase
// sentinel. A tx with no inputs is never coinbase.
func (tx *Tx) IsCoinbase() bool {
	if len(tx.Inputs) == 0 {
		return false
	}
	return tx.Inputs[0].IsCoinbase()
}

// TotalOutputValue sums the tx's output values.
func (tx *Tx) TotalOutputValue() uint64 {
	var total uint64
	for _, o := range tx.Outputs {
		total += o.Value
	}
	return total
}

// TotalInputValue sums the values of resolved inputs. Only meaningful
// once every input's Spending has been filled in by the UTXO tracker;
// coinbase and unresolved inputs contribute 0.
func (tx *Tx) TotalInputValue() uint64 {
	var total uint64
	for _, in := range tx.Inputs {
		if in.Spending != nil {
			total += in.Spending.Output.Value
		}
	}
	return total
}

// FeePaid returns TotalInputValue minus TotalOutputValue. Meaningless for
// a coinbase tx, and for any tx whose inputs are not fully resolved.
func (tx *Tx) FeePaid() int64 {
	return int64(tx.TotalInputValue()) - int64(tx.TotalOutputValue())
}

// DecodeTx parses one transaction from the front of b. It returns the
// decoded Tx and the number of bytes consumed. When keepRaw is true, the
// returned Tx.Raw aliases the consumed span of b.
func DecodeTx(b []byte, keepRaw bool) (Tx, int, error) {
	start := 0
	pos := 0

	if len(b) < 4 {
		return Tx{}, 0, errors.NewMalformedTx("truncated version")
	}
	version := bytesutil.Uint32LE(b[pos:])
	pos += 4

	nIn, n, err := bytesutil.VarInt(b[pos:])
	if err != nil {
		return Tx{}, 0, errors.NewMalformedTx("reading input count", err)
	}
	pos += n

	// each input needs at least 41 bytes: txid, index, script length, sequence.
	if nIn > uint64(len(b)-pos)/41 {
		return Tx{}, 0, errors.NewMalformedTx("input count %d exceeds remaining %d bytes", nIn, len(b)-pos)
	}

	inputs := make([]TxInput, nIn)
	for i := uint64(0); i < nIn; i++ {
		if len(b)-pos < 36 {
			return Tx{}, 0, errors.NewMalformedTx("truncated input %d", i)
		}

		var spentTxID bytesutil.Hash
		copy(spentTxID[:], b[pos:pos+32])
		pos += 32

		spentIndex := bytesutil.Uint32LE(b[pos:])
		pos += 4

		scriptLen, n, err := bytesutil.VarInt(b[pos:])
		if err != nil {
			return Tx{}, 0, errors.NewMalformedTx("reading input %d script length", i, err)
		}
		pos += n

		if uint64(len(b)-pos) < scriptLen {
			return Tx{}, 0, errors.NewMalformedTx("truncated input %d script", i)
		}
		script := b[pos : pos+int(scriptLen)]
		pos += int(scriptLen)

		if len(b)-pos < 4 {
			return Tx{}, 0, errors.NewMalformedTx("truncated input %d sequence", i)
		}
		sequence := bytesutil.Uint32LE(b[pos:])
		pos += 4

		inputs[i] = TxInput{
			SpentTxID:        spentTxID,
			SpentOutputIndex: spentIndex,
			Script:           script,
			Sequence:         sequence,
		}
	}

	nOut, n, err := bytesutil.VarInt(b[pos:])
	if err != nil {
		return Tx{}, 0, errors.NewMalformedTx("reading output count", err)
	}
	pos += n

	// each output needs at least 9 bytes: value and script length.
	if nOut > uint64(len(b)-pos)/9 {
		return Tx{}, 0, errors.NewMalformedTx("output count %d exceeds remaining %d bytes", nOut, len(b)-pos)
	}

	outputs := make([]TxOutput, nOut)
	for i := uint64(0); i < nOut; i++ {
		if len(b)-pos < 8 {
			return Tx{}, 0, errors.NewMalformedTx("truncated output %d", i)
		}
		value := bytesutil.Uint64LE(b[pos:])
		pos += 8

		scriptLen, n, err := bytesutil.VarInt(b[pos:])
		if err != nil {
			return Tx{}, 0, errors.NewMalformedTx("reading output %d script length", i, err)
		}
		pos += n

		if uint64(len(b)-pos) < scriptLen {
			return Tx{}, 0, errors.NewMalformedTx("truncated output %d script", i)
		}
		script := b[pos : pos+int(scriptLen)]
		pos += int(scriptLen)

		outputs[i] = TxOutput{Value: value, Script: script}
	}

	if len(b)-pos < 4 {
		return Tx{}, 0, errors.NewMalformedTx("truncated locktime")
	}
	lockTime := bytesutil.Uint32LE(b[pos:])
	pos += 4

	consumed := pos - start
	txid := bytesutil.DoubleSHA256(b[start:pos])

	tx := Tx{
		Version:  version,
		Inputs:   inputs,
		Outputs:  outputs,
		LockTime: lockTime,
		TxID:     txid,
		Size:     consumed,
	}
	if keepRaw {
		tx.Raw = b[start:pos]
	}

	return tx, consumed, nil
}
