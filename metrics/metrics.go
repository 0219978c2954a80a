// Package metrics exposes the Prometheus counters and gauges chainscan's
// streaming components report against.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BlocksEmitted   prometheus.Counter
	TxsResolved     prometheus.Counter
	UtxoSpendErrors prometheus.Counter
	UtxoTrackerSize prometheus.Gauge
	ReaderPolls     prometheus.Counter

	initOnce sync.Once
)

// Init registers every chainscan metric with the default Prometheus
// registry. Safe to call more than once; registration happens exactly
// once regardless of call count.
func Init() {
	initOnce.Do(initMetrics)
}

func initMetrics() {
	BlocksEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chainscan",
			Name:      "blocks_emitted_total",
			Help:      "Number of blocks yielded by the blocks stream after filtering",
		},
	)
	TxsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chainscan",
			Name:      "txs_resolved_total",
			Help:      "Number of transactions yielded by the transaction stream",
		},
	)
	UtxoSpendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chainscan",
			Name:      "utxo_spend_errors_total",
			Help:      "Number of failed UTXO spend lookups (missing or already spent)",
		},
	)
	UtxoTrackerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "chainscan",
			Name:      "utxo_tracker_entries",
			Help:      "Number of tx entries currently held by the UTXO tracker",
		},
	)
	ReaderPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "chainscan",
			Name:      "rawfile_polls_total",
			Help:      "Number of tailing-mode poll wakeups in the raw-file reader",
		},
	)
}
