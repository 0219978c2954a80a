package blockchain

import (
	"github.com/fungibit/chainscan/chainstream"
	"github.com/fungibit/chainscan/model"
)

// Builder drives a BlockStream and records every block it yields into a
// BlockChain as it goes, so a consumer that wants both the stream and an
// indexed view doesn't have to wire the bookkeeping itself.
type Builder struct {
	blocks *chainstream.BlockStream
	chain  *BlockChain
}

// NewBuilder wraps blocks, building into a fresh BlockChain.
func NewBuilder(blocks *chainstream.BlockStream) *Builder {
	return &Builder{blocks: blocks, chain: New()}
}

// Chain returns the BlockChain being built. Safe to read between calls to
// Next; reflects every block yielded so far.
func (b *Builder) Chain() *BlockChain {
	return b.chain
}

// Next advances the underlying stream by one block, recording it into the
// chain before returning it.
func (b *Builder) Next() (block *model.Block, ok bool, err error) {
	blk, ok, err := b.blocks.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	b.chain.Add(blk)
	return blk, true, nil
}
