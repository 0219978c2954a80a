// Package fork turns the approximately-topological, fork-laden physical
// order blocks arrive in into the canonical height-ordered longest-chain
// sequence, using a confirmation-depth safety margin.
package fork

import (
	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/errors"
	"github.com/fungibit/chainscan/model"
)

var zeroHash bytesutil.Hash

// Resolver buffers decoded blocks keyed by hash, links children to
// parents, and emits blocks once buried by a safety margin (or
// immediately, in AllForks mode).
type Resolver struct {
	safetyMargin int
	allForks     bool

	byHash   map[bytesutil.Hash]*model.Block
	children map[bytesutil.Hash][]bytesutil.Hash

	// pendingRoots holds blocks whose parent is not yet known, keyed by
	// the missing parent hash.
	pendingRoots map[bytesutil.Hash][]bytesutil.Hash

	tip           bytesutil.Hash
	tipHeight     int32
	tipKnown      bool
	emittedHeight int32

	// lastEmitted is the most recently emitted main-chain block. It is
	// kept in byHash only as the walk anchor for the next drainFinalized
	// call (and as pruneSiblings' reference point); once superseded by
	// the next emission it is released.
	lastEmitted   bytesutil.Hash
	lastEmittedOK bool
}

// Option configures a Resolver at construction time.
type Option func(*Resolver)

// WithSafetyMargin overrides the default confirmation-depth safety margin.
func WithSafetyMargin(n int) Option {
	return func(r *Resolver) { r.safetyMargin = n }
}

// WithAllForks switches to "all forks in topological order" mode: every
// block is emitted as soon as its parent is available, ignoring the
// safety margin. Height is still assigned.
func WithAllForks() Option {
	return func(r *Resolver) { r.allForks = true }
}

// New builds a Resolver. Default safety margin is 6.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		safetyMargin:  6,
		byHash:        make(map[bytesutil.Hash]*model.Block),
		children:      make(map[bytesutil.Hash][]bytesutil.Hash),
		pendingRoots:  make(map[bytesutil.Hash][]bytesutil.Hash),
		emittedHeight: -1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Add buffers a newly decoded block and returns every block that becomes
// eligible for emission as a result, in height order.
func (r *Resolver) Add(b *model.Block) ([]*model.Block, error) {
	hash := b.Hash()
	prev := b.Header.PrevHash

	if _, exists := r.byHash[hash]; exists {
		return nil, nil // already seen; physical files may repeat near boundaries
	}

	r.byHash[hash] = b
	r.children[prev] = append(r.children[prev], hash)

	// A block is only ever treated as genesis (height 0) when its
	// previous-hash is exactly the all-zeros sentinel, so the "genesis
	// previous-hash mismatch" failure mode is structurally impossible
	// here: nothing else can produce height 0.
	isGenesis := prev == zeroHash
	if isGenesis {
		b.Height = 0
	} else if parent, ok := r.byHash[prev]; ok && parent.Height >= 0 {
		b.Height = parent.Height + 1
	} else {
		r.pendingRoots[prev] = append(r.pendingRoots[prev], hash)
		return nil, nil
	}

	assigned, err := r.assignDescendantHeights(hash)
	if err != nil {
		return nil, err
	}

	if !r.tipKnown || b.Height > r.tipHeight {
		r.tip, r.tipHeight, r.tipKnown = hash, b.Height, true
	}
	for _, h := range assigned {
		if blk := r.byHash[h]; blk != nil && blk.Height > r.tipHeight {
			r.tip, r.tipHeight = h, blk.Height
		}
	}

	if r.allForks {
		out := make([]*model.Block, 0, len(assigned)+1)
		out = append(out, b)
		for _, h := range assigned {
			out = append(out, r.byHash[h])
		}
		return out, nil
	}

	return r.drainFinalized(), nil
}

// assignDescendantHeights walks forward through blocks that were waiting
// on parentHash and assigns their heights now that it is known. Returns
// the hashes assigned, in assignment order. Detects cycles: a parent
// chain that revisits a hash already assigned in this walk.
func (r *Resolver) assignDescendantHeights(parentHash bytesutil.Hash) ([]bytesutil.Hash, error) {
	var assigned []bytesutil.Hash
	seen := map[bytesutil.Hash]bool{parentHash: true}

	queue := r.pendingRoots[parentHash]
	delete(r.pendingRoots, parentHash)

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		if seen[h] {
			return nil, errors.NewCorruption("cycle detected resolving parent chain at %s", bytesutil.HashHex(h))
		}
		seen[h] = true

		blk := r.byHash[h]
		parent := r.byHash[blk.Header.PrevHash]
		blk.Height = parent.Height + 1
		assigned = append(assigned, h)

		if waiting, ok := r.pendingRoots[h]; ok {
			queue = append(queue, waiting...)
			delete(r.pendingRoots, h)
		}
	}

	return assigned, nil
}

// drainFinalized walks back from the tip and emits every block, in height
// order, that has crossed the safety margin and has not yet been emitted.
// Sibling branches buried below the margin are dropped from byHash.
func (r *Resolver) drainFinalized() []*model.Block {
	if !r.tipKnown {
		return nil
	}

	finalHeight := r.tipHeight - int32(r.safetyMargin)
	if finalHeight < r.emittedHeight+1 {
		return nil
	}

	chain := make(map[int32]bytesutil.Hash, finalHeight-r.emittedHeight)
	cur := r.tip
	for {
		blk := r.byHash[cur]
		if blk == nil {
			break
		}
		if blk.Height <= finalHeight {
			chain[blk.Height] = cur
		}
		if blk.Height <= r.emittedHeight+1 {
			break
		}
		cur = blk.Header.PrevHash
	}

	var out []*model.Block
	for h := r.emittedHeight + 1; h <= finalHeight; h++ {
		hash, ok := chain[h]
		if !ok {
			break
		}
		out = append(out, r.byHash[hash])
		r.emittedHeight = h
		r.pruneSiblings(h, hash)

		// The previously emitted ancestor served as pruneSiblings' walk
		// anchor above; it is never consulted again, so release it now
		// rather than holding it (and its decoded tx/header data) for
		// the rest of the scan.
		if r.lastEmittedOK {
			r.releaseBlock(r.lastEmitted)
		}
		r.lastEmitted, r.lastEmittedOK = hash, true
	}

	return out
}

// releaseBlock drops a block that has already been emitted and is no
// longer needed as a walk anchor.
func (r *Resolver) releaseBlock(hash bytesutil.Hash) {
	delete(r.byHash, hash)
	delete(r.children, hash)
}

// pruneSiblings drops every block at height h other than keepHash, along
// with their descendants, since they have fallen below the safety margin
// on an abandoned branch.
func (r *Resolver) pruneSiblings(h int32, keepHash bytesutil.Hash) {
	parent := r.byHash[keepHash].Header.PrevHash
	for _, sibling := range r.children[parent] {
		if sibling == keepHash {
			continue
		}
		r.pruneSubtree(sibling)
	}
	r.children[parent] = []bytesutil.Hash{keepHash}
}

func (r *Resolver) pruneSubtree(hash bytesutil.Hash) {
	for _, child := range r.children[hash] {
		r.pruneSubtree(child)
	}
	delete(r.children, hash)
	delete(r.byHash, hash)
}
