// Package blockchain indexes the blocks a stream has emitted so far,
// supporting lookup by hash or by height. It is a by-product of the fork
// resolver's output, not itself a decoding stage.
package blockchain

import (
	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/model"
)

// BlockChain is an in-memory index over emitted blocks: a mapping from
// block-hash to Block, a dense indexing by height, and pointers to the
// genesis block and the current tip.
type BlockChain struct {
	byHash   map[bytesutil.Hash]*model.Block
	byHeight []*model.Block
}

// New builds an empty BlockChain.
func New() *BlockChain {
	return &BlockChain{
		byHash: make(map[bytesutil.Hash]*model.Block),
	}
}

// Add records a block that was just emitted in height order. Blocks must
// be added in strictly increasing height starting from 0.
func (c *BlockChain) Add(b *model.Block) {
	c.byHash[b.Hash()] = b
	c.byHeight = append(c.byHeight, b)
}

// Pop removes and returns the most recently added block (the current
// tip). Returns false if the chain is empty.
func (c *BlockChain) Pop() (*model.Block, bool) {
	if len(c.byHeight) == 0 {
		return nil, false
	}
	last := len(c.byHeight) - 1
	b := c.byHeight[last]
	c.byHeight = c.byHeight[:last]
	delete(c.byHash, b.Hash())
	return b, true
}

// Len returns the number of blocks currently indexed.
func (c *BlockChain) Len() int {
	return len(c.byHeight)
}

// Height returns the height of the current tip, or -1 if the chain is
// empty (so that the next block to append, at height 0, is Height()+1).
func (c *BlockChain) Height() int32 {
	return int32(len(c.byHeight)) - 1
}

// Contains reports whether hash is already indexed.
func (c *BlockChain) Contains(hash bytesutil.Hash) bool {
	_, ok := c.byHash[hash]
	return ok
}

// ByHash looks up a block by its hash.
func (c *BlockChain) ByHash(hash bytesutil.Hash) (*model.Block, bool) {
	b, ok := c.byHash[hash]
	return b, ok
}

// ByHeight looks up a block by its 0-based height.
func (c *BlockChain) ByHeight(height int32) (*model.Block, bool) {
	if height < 0 || int(height) >= len(c.byHeight) {
		return nil, false
	}
	return c.byHeight[height], true
}

// Genesis returns the chain's genesis block, if any has been added.
func (c *BlockChain) Genesis() (*model.Block, bool) {
	if len(c.byHeight) == 0 {
		return nil, false
	}
	return c.byHeight[0], true
}

// Tip returns the highest-height block added so far.
func (c *BlockChain) Tip() (*model.Block, bool) {
	if len(c.byHeight) == 0 {
		return nil, false
	}
	return c.byHeight[len(c.byHeight)-1], true
}
