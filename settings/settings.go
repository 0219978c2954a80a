// Package settings centralizes chainscan's runtime configuration, backed by
// gocore.Config() the way the rest of this codebase reads config: a key
// lookup with an explicit default, never a bare environment read scattered
// through business logic.
package settings

import "time"

// Settings holds every tunable chainscan reads at startup. Zero value is
// not meaningful; always construct via NewSettings.
type Settings struct {
	// DataDir is the directory raw blk*.dat files are read from.
	DataDir string
	// FileGlob selects which files in DataDir are raw block files.
	FileGlob string
	// HeightSafetyMargin is the confirmation depth beyond which a block
	// is considered final and safe to emit.
	HeightSafetyMargin int
	// TxidPrefixSize is the number of leading txid bytes used as the
	// UTXO tracker's map key.
	TxidPrefixSize int
	// TailPollInterval is how often the raw-file reader re-checks the
	// data directory for new bytes while tailing.
	TailPollInterval time.Duration
	// TrackScripts controls whether the UTXO tracker retains the
	// locking script bytes alongside each output's value.
	TrackScripts bool
	// LogLevel is the configured log level. ulogger.New does not read it:
	// loggers start at INFO unless built with ulogger.WithLevel.
	LogLevel string
}

// NewSettings builds Settings from gocore.Config(), falling back to the
// documented defaults for any key that is absent.
func NewSettings() *Settings {
	return &Settings{
		DataDir:            ExpandHome(getString("chainscan_dataDir", "~/.bitcoin/blocks/")),
		FileGlob:           getString("chainscan_fileGlob", "blk*.dat"),
		HeightSafetyMargin: getInt("chainscan_heightSafetyMargin", 6),
		TxidPrefixSize:     getInt("chainscan_txidPrefixSize", 8),
		TailPollInterval:   time.Duration(getInt("chainscan_tailPollIntervalMs", 2000)) * time.Millisecond,
		TrackScripts:       getBool("chainscan_trackScripts", false),
		LogLevel:           getString("logLevel", "INFO"),
	}
}
