// Package chainstream composes the raw-file reader, block decoder and
// fork resolver into the two public streams consumers iterate: blocks,
// and transactions flat-mapped over those blocks with optional UTXO
// tracking.
package chainstream

import (
	"time"

	"github.com/fungibit/chainscan/fork"
	"github.com/fungibit/chainscan/metrics"
	"github.com/fungibit/chainscan/model"
	"github.com/fungibit/chainscan/rawfile"
	"github.com/fungibit/chainscan/ulogger"
)

// BlockOption configures a BlockStream at construction time.
type BlockOption func(*blockConfig)

type blockConfig struct {
	tailing      bool
	tailInterval time.Duration
	allForks     bool
	safetyMargin int
	filter       Filter
	hasFilter    bool
	logger       ulogger.Logger
}

// WithTailing enables tailing mode: once the highest-numbered file is
// exhausted, the underlying reader polls for growth instead of stopping.
func WithTailing(interval time.Duration) BlockOption {
	return func(c *blockConfig) {
		c.tailing = true
		c.tailInterval = interval
	}
}

// WithAllForks switches the underlying resolver to "all forks in
// topological order" mode instead of longest-chain mode.
func WithAllForks() BlockOption {
	return func(c *blockConfig) { c.allForks = true }
}

// WithSafetyMargin overrides the resolver's confirmation-depth safety
// margin. Ignored in all-forks mode.
func WithSafetyMargin(n int) BlockOption {
	return func(c *blockConfig) { c.safetyMargin = n }
}

// WithFilter restricts emitted blocks to a height and/or block-time range.
func WithFilter(f Filter) BlockOption {
	return func(c *blockConfig) {
		c.filter = f
		c.hasFilter = true
	}
}

// WithBlockLogger attaches a logger to the underlying raw-file reader.
func WithBlockLogger(l ulogger.Logger) BlockOption {
	return func(c *blockConfig) { c.logger = l }
}

// BlockStream yields Blocks in the order chosen by the fork resolver:
// strictly increasing height in longest-chain mode, or parent-before-child
// topological order in all-forks mode.
type BlockStream struct {
	reader    *rawfile.Reader
	resolver  *fork.Resolver
	filter    Filter
	hasFilter bool
	allForks  bool

	queue []*model.Block
	done  bool
}

// NewBlockStream builds a BlockStream reading dataDir (files matching
// glob) through the fork resolver.
func NewBlockStream(dataDir, glob string, opts ...BlockOption) *BlockStream {
	cfg := blockConfig{safetyMargin: 6}
	for _, o := range opts {
		o(&cfg)
	}

	readerOpts := []rawfile.Option{}
	if cfg.tailing {
		readerOpts = append(readerOpts, rawfile.WithTailing(cfg.tailInterval))
	}
	if cfg.logger != nil {
		readerOpts = append(readerOpts, rawfile.WithLogger(cfg.logger))
	}

	resolverOpts := []fork.Option{fork.WithSafetyMargin(cfg.safetyMargin)}
	if cfg.allForks {
		resolverOpts = append(resolverOpts, fork.WithAllForks())
	}

	return &BlockStream{
		reader:    rawfile.New(dataDir, glob, readerOpts...),
		resolver:  fork.New(resolverOpts...),
		filter:    cfg.filter,
		hasFilter: cfg.hasFilter,
		allForks:  cfg.allForks,
	}
}

// Cancel requests the underlying raw-file reader unwind promptly, for use
// from outside the goroutine driving Next (e.g. tailing mode).
func (s *BlockStream) Cancel() {
	s.reader.Cancel()
}

// Close releases resources held by the underlying raw-file reader.
func (s *BlockStream) Close() error {
	return s.reader.Close()
}

// Next returns the next filtered block in stream order. ok is false once
// the stream is exhausted (non-tailing mode) or cancelled (tailing mode).
func (s *BlockStream) Next() (*model.Block, bool, error) {
	for {
		if len(s.queue) > 0 {
			b := s.queue[0]
			s.queue = s.queue[1:]

			// doneByHeight relies on strictly increasing heights, which
			// only holds in longest-chain mode: all-forks mode can emit a
			// high-height block from a fast branch before a lower-height
			// block from a slower one.
			if s.hasFilter && !s.allForks && s.filter.doneByHeight(b.Height) {
				s.done = true
				return nil, false, nil
			}
			if s.hasFilter && !s.filter.allows(b.Height, b.Header.Timestamp) {
				continue
			}
			if metrics.BlocksEmitted != nil {
				metrics.BlocksEmitted.Inc()
			}
			return b, true, nil
		}

		if s.done {
			return nil, false, nil
		}

		payload, ok, err := s.reader.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}

		b, err := model.DecodeBlock(payload)
		if err != nil {
			return nil, false, err
		}

		emitted, err := s.resolver.Add(b)
		if err != nil {
			return nil, false, err
		}
		s.queue = emitted
	}
}
