package model

import (
	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/errors"
)

const headerSize = 80

// BlockHeader is the fixed 80-byte prefix of a block.
type BlockHeader struct {
	Version    uint32
	PrevHash   bytesutil.Hash
	MerkleRoot bytesutil.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// NewBlockHeaderFromBytes parses the 80-byte header out of headerBytes.
func NewBlockHeaderFromBytes(headerBytes []byte) (BlockHeader, error) {
	if len(headerBytes) != headerSize {
		return BlockHeader{}, errors.NewCorruption("header must be %d bytes, got %d", headerSize, len(headerBytes))
	}

	var prevHash, merkleRoot bytesutil.Hash
	copy(prevHash[:], headerBytes[4:36])
	copy(merkleRoot[:], headerBytes[36:68])

	return BlockHeader{
		Version:    bytesutil.Uint32LE(headerBytes[0:4]),
		PrevHash:   prevHash,
		MerkleRoot: merkleRoot,
		Timestamp:  bytesutil.Uint32LE(headerBytes[68:72]),
		Bits:       bytesutil.Uint32LE(headerBytes[72:76]),
		Nonce:      bytesutil.Uint32LE(headerBytes[76:80]),
	}, nil
}

// Bytes re-serializes the header to its canonical 80-byte wire form.
func (h BlockHeader) Bytes() []byte {
	b := make([]byte, headerSize)
	putUint32LE(b[0:4], h.Version)
	copy(b[4:36], h.PrevHash[:])
	copy(b[36:68], h.MerkleRoot[:])
	putUint32LE(b[68:72], h.Timestamp)
	putUint32LE(b[72:76], h.Bits)
	putUint32LE(b[76:80], h.Nonce)
	return b
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Block is a single decoded block. It holds only the typed header plus a
// borrowed view of the raw payload; transactions are reparsed lazily on
// each call to Transactions.
type Block struct {
	Header BlockHeader

	// Height is the block's 0-based distance from genesis along the
	// longest chain, assigned by the fork resolver. -1 when unknown.
	Height int32

	raw          []byte // full framed payload: header + tx section
	txSectionOff int

	hash      bytesutil.Hash
	hashKnown bool
}

// DecodeBlock parses a block's framed payload (header plus tx-count varint
// plus tx section) previously yielded by the raw-file reader.
func DecodeBlock(payload []byte) (*Block, error) {
	if len(payload) < headerSize {
		return nil, errors.NewCorruption("block payload shorter than header: %d bytes", len(payload))
	}

	header, err := NewBlockHeaderFromBytes(payload[:headerSize])
	if err != nil {
		return nil, err
	}

	_, n, err := bytesutil.VarInt(payload[headerSize:])
	if err != nil {
		return nil, errors.NewCorruption("reading tx count", err)
	}

	return &Block{
		Header:       header,
		Height:       -1,
		raw:          payload,
		txSectionOff: headerSize + n,
	}, nil
}

// Hash returns the block-hash: double-SHA256 of the 80-byte header,
// memoized on first call.
func (b *Block) Hash() bytesutil.Hash {
	if !b.hashKnown {
		b.hash = bytesutil.DoubleSHA256(b.Header.Bytes())
		b.hashKnown = true
	}
	return b.hash
}

// TxCount returns the number of transactions declared in the block's
// tx-count varint.
func (b *Block) TxCount() uint64 {
	n, _, _ := bytesutil.VarInt(b.raw[headerSize:])
	return n
}

// TxIterator walks a block's transaction section. Each Next call decodes
// the next tx in place; the iterator holds no retained tx objects.
type TxIterator struct {
	remaining []byte
	left      uint64
	keepRaw   bool
}

// Transactions returns a fresh, restartable iterator over the block's
// transactions. Calling Transactions again re-parses from the start of the
// tx section, independent of any iterator already in progress.
func (b *Block) Transactions(keepRaw bool) *TxIterator {
	return &TxIterator{
		remaining: b.raw[b.txSectionOff:],
		left:      b.TxCount(),
		keepRaw:   keepRaw,
	}
}

// Next decodes the next transaction, returning ok=false once every
// declared transaction has been consumed.
func (it *TxIterator) Next() (tx Tx, ok bool, err error) {
	if it.left == 0 {
		return Tx{}, false, nil
	}

	tx, n, err := DecodeTx(it.remaining, it.keepRaw)
	if err != nil {
		return Tx{}, false, err
	}

	it.remaining = it.remaining[n:]
	it.left--

	return tx, true, nil
}
