package chainstream

import (
	"github.com/fungibit/chainscan/metrics"
	"github.com/fungibit/chainscan/model"
	"github.com/fungibit/chainscan/utxo"
)

// TxOption configures a TxStream at construction time.
type TxOption func(*txConfig)

type txConfig struct {
	track        bool
	trackerOpts  []utxo.Option
	capacityHint int
}

// WithTracking wires a UTXO tracker into the stream: on each tx, its
// outputs are recorded before any of its own inputs are resolved (so
// intra-block spends of intra-block outputs resolve), then every
// non-coinbase input is resolved against it and the result attached.
func WithTracking(capacityHint int, opts ...utxo.Option) TxOption {
	return func(c *txConfig) {
		c.track = true
		c.capacityHint = capacityHint
		c.trackerOpts = opts
	}
}

// TxStream flat-maps a BlockStream over each block's transactions, in
// their serialized order.
type TxStream struct {
	blocks  *BlockStream
	tracker *utxo.Tracker
	keepRaw bool

	curBlock *model.Block
	curIter  *model.TxIterator
}

// NewTxStream builds a TxStream over blocks. keepRaw controls whether each
// yielded Tx retains its raw byte span.
func NewTxStream(blocks *BlockStream, keepRaw bool, opts ...TxOption) *TxStream {
	cfg := txConfig{capacityHint: 1 << 16}
	for _, o := range opts {
		o(&cfg)
	}

	s := &TxStream{blocks: blocks, keepRaw: keepRaw}
	if cfg.track {
		s.tracker = utxo.New(cfg.capacityHint, cfg.trackerOpts...)
	}
	return s
}

// Tracker returns the stream's UTXO tracker, or nil if tracking was not
// enabled. Useful for external snapshotting via Tracker.Iter.
func (s *TxStream) Tracker() *utxo.Tracker {
	return s.tracker
}

// Next returns the next transaction in stream order, paired with the
// block it belongs to. ok is false once the underlying block stream is
// exhausted or cancelled.
func (s *TxStream) Next() (tx model.Tx, block *model.Block, ok bool, err error) {
	for {
		if s.curIter == nil {
			b, ok, err := s.blocks.Next()
			if err != nil {
				return model.Tx{}, nil, false, err
			}
			if !ok {
				return model.Tx{}, nil, false, nil
			}
			s.curBlock = b
			s.curIter = b.Transactions(s.keepRaw)
		}

		tx, ok, err := s.curIter.Next()
		if err != nil {
			return model.Tx{}, nil, false, err
		}
		if !ok {
			s.curIter = nil
			continue
		}

		if s.tracker != nil {
			s.tracker.AddFromTx(&tx, s.curBlock.Height)
			for i := range tx.Inputs {
				in := &tx.Inputs[i]
				if in.IsCoinbase() {
					continue
				}
				info, err := s.tracker.Spend(in.SpentTxID, in.SpentOutputIndex)
				if err != nil {
					if metrics.UtxoSpendErrors != nil {
						metrics.UtxoSpendErrors.Inc()
					}
					return model.Tx{}, nil, false, err
				}
				in.Spending = &info
			}
			if metrics.UtxoTrackerSize != nil {
				metrics.UtxoTrackerSize.Set(float64(s.tracker.Len()))
			}
		}

		if metrics.TxsResolved != nil {
			metrics.TxsResolved.Inc()
		}

		return tx, s.curBlock, true, nil
	}
}
