// Command chainscan is a demonstration CLI over the blocks and
// transactions streams: it walks a node's blk*.dat directory and prints
// either decoded blocks or decoded transactions, optionally resolving
// spent outputs against an in-memory UTXO tracker.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/chainstream"
	"github.com/fungibit/chainscan/metrics"
	"github.com/fungibit/chainscan/settings"
	"github.com/fungibit/chainscan/ulogger"
	"github.com/fungibit/chainscan/utxo"
)

var logger = ulogger.New("chainscan")

func main() {
	app := &cli.App{
		Name:  "chainscan",
		Usage: "walk a Bitcoin node's raw block files as decoded blocks or transactions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "datadir", Usage: "directory containing blk*.dat files"},
			&cli.StringFlag{Name: "glob", Value: "blk*.dat", Usage: "file glob within datadir"},
			&cli.IntFlag{Name: "margin", Value: 6, Usage: "height safety margin"},
			&cli.BoolFlag{Name: "all-forks", Usage: "emit every block in topological order instead of longest-chain"},
			&cli.BoolFlag{Name: "tail", Usage: "keep polling for new blocks once caught up"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address while running"},
		},
		Commands: []*cli.Command{
			{
				Name:   "blocks",
				Usage:  "print height, hash and tx count for every emitted block",
				Action: runBlocks,
			},
			{
				Name:  "txs",
				Usage: "print each transaction; with --track, resolve spent outputs",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "track", Usage: "wire a UTXO tracker and resolve spent outputs"},
				},
				Action: runTxs,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func settingsFromFlags(c *cli.Context) *settings.Settings {
	s := settings.NewSettings()
	if v := c.String("datadir"); v != "" {
		s.DataDir = settings.ExpandHome(v)
	}
	if v := c.String("glob"); v != "" {
		s.FileGlob = v
	}
	s.HeightSafetyMargin = c.Int("margin")
	return s
}

func serveMetrics(addr string) {
	if addr == "" {
		return
	}
	metrics.Init()
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Errorf("metrics server: %v", err)
		}
	}()
}

func blockStreamFromFlags(c *cli.Context) *chainstream.BlockStream {
	s := settingsFromFlags(c)
	serveMetrics(c.String("metrics-addr"))

	opts := []chainstream.BlockOption{
		chainstream.WithSafetyMargin(s.HeightSafetyMargin),
		chainstream.WithBlockLogger(logger),
	}
	if c.Bool("all-forks") {
		opts = append(opts, chainstream.WithAllForks())
	}
	if c.Bool("tail") {
		opts = append(opts, chainstream.WithTailing(s.TailPollInterval))
	}

	return chainstream.NewBlockStream(s.DataDir, s.FileGlob, opts...)
}

func runBlocks(c *cli.Context) error {
	blocks := blockStreamFromFlags(c)
	defer blocks.Close()

	for {
		b, ok, err := blocks.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fmt.Printf("height=%d hash=%s txs=%d\n", b.Height, b.Hash().String(), b.TxCount())
	}
}

func runTxs(c *cli.Context) error {
	blocks := blockStreamFromFlags(c)
	defer blocks.Close()

	s := settingsFromFlags(c)

	var txOpts []chainstream.TxOption
	if c.Bool("track") {
		trackerOpts := []utxo.Option{utxo.WithPrefixSize(s.TxidPrefixSize)}
		if s.TrackScripts {
			trackerOpts = append(trackerOpts, utxo.WithScripts())
		}
		txOpts = append(txOpts, chainstream.WithTracking(1<<20, trackerOpts...))
	}

	txs := chainstream.NewTxStream(blocks, false, txOpts...)

	for {
		tx, block, ok, err := txs.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		fmt.Printf("height=%d txid=%s coinbase=%t\n", block.Height, tx.TxID.String(), tx.Inputs[0].IsCoinbase())
		for i, in := range tx.Inputs {
			if in.Spending != nil {
				fmt.Printf("  input[%d] spends %s value=%d from height=%d\n", i, bytesutil.HashHex(in.SpentTxID), in.Spending.Output.Value, in.Spending.BlockHeight)
			}
		}
	}
}
