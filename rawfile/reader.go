// Package rawfile walks a node's raw blk*.dat directory, yielding the
// framed byte span of each block in physical file order. It is the only
// component in chainscan allowed to block: on file I/O, and on the
// polling wait of tailing mode.
package rawfile

import (
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/rand"

	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/errors"
	"github.com/fungibit/chainscan/metrics"
	"github.com/fungibit/chainscan/ulogger"
)

// Magic is the expected 4-byte little-endian frame marker preceding every
// block in a blk*.dat file.
const Magic uint32 = 0xD9B4BEF9

const frameHeaderSize = 8 // magic(4) + size(4)

// Reader walks the ordered set of raw block files in a directory,
// yielding framed block byte-spans.
type Reader struct {
	dataDir  string
	glob     string
	tailing  bool
	interval time.Duration
	logger   ulogger.Logger

	files     []string
	fileIndex int
	data      []byte
	offset    int

	cancelled atomic.Bool
	watcher   *fsnotify.Watcher
}

// Option configures a Reader at construction time.
type Option func(*Reader)

// WithTailing enables tailing mode: after exhausting the highest-numbered
// file, the reader polls for growth or new files instead of stopping.
func WithTailing(interval time.Duration) Option {
	return func(r *Reader) {
		r.tailing = true
		r.interval = interval
	}
}

// WithLogger attaches a logger used for poll/skip diagnostics.
func WithLogger(l ulogger.Logger) Option {
	return func(r *Reader) {
		r.logger = l
	}
}

// New builds a Reader over dataDir, matching files against glob (typically
// "blk*.dat").
func New(dataDir, glob string, opts ...Option) *Reader {
	r := &Reader{
		dataDir: dataDir,
		glob:    glob,
		logger:  ulogger.New("rawfile"),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Cancel requests that any in-progress or future poll wait unwind
// promptly. Safe to call from outside the goroutine driving Next.
func (r *Reader) Cancel() {
	r.cancelled.Store(true)
}

// Next yields the next framed block payload (the bytes strictly inside the
// magic+size frame, not including the frame header). ok is false once the
// reader has exhausted all files (non-tailing mode) or been cancelled
// (tailing mode).
func (r *Reader) Next() (payload []byte, ok bool, err error) {
	for {
		if r.offset+frameHeaderSize > len(r.data) {
			advanced, err := r.advanceFile()
			if err != nil {
				return nil, false, err
			}
			if !advanced {
				more, err := r.waitForMore()
				if err != nil {
					return nil, false, err
				}
				if !more {
					return nil, false, nil
				}
				continue
			}
		}

		magic := bytesutil.Uint32LE(r.data[r.offset:])
		if magic == 0 {
			// end-of-data: the file was pre-allocated past the last block.
			advanced, err := r.advanceFile()
			if err != nil {
				return nil, false, err
			}
			if !advanced {
				more, err := r.waitForMore()
				if err != nil {
					return nil, false, err
				}
				if !more {
					return nil, false, nil
				}
			}
			continue
		}
		if magic != Magic {
			return nil, false, errors.NewCorruption("unexpected magic 0x%08X at %s:%d", magic, r.currentFile(), r.offset)
		}

		size := bytesutil.Uint32LE(r.data[r.offset+4:])
		frameEnd := r.offset + frameHeaderSize + int(size)
		if frameEnd > len(r.data) {
			// truncated frame: in tailing mode this may just be a
			// partial write; treat like end-of-data and wait.
			if !r.tailing {
				return nil, false, errors.NewCorruption("truncated frame at %s:%d", r.currentFile(), r.offset)
			}
			more, err := r.waitForMore()
			if err != nil {
				return nil, false, err
			}
			if !more {
				return nil, false, nil
			}
			continue
		}

		payload = r.data[r.offset+frameHeaderSize : frameEnd]
		r.offset = frameEnd
		return payload, true, nil
	}
}

// currentFile returns the path of the file Next is currently positioned
// in, or "" before the first file has been opened.
func (r *Reader) currentFile() string {
	if r.fileIndex-1 < 0 || r.fileIndex-1 >= len(r.files) {
		return ""
	}
	return r.files[r.fileIndex-1]
}

// Position reports the file the reader is currently positioned in and the
// byte offset within it, for a caller that wants to record where it left
// off. It carries no obligation on this package's part to resume from an
// arbitrary position; a fresh Reader always starts at the first file.
func (r *Reader) Position() (file string, offset int) {
	return r.currentFile(), r.offset
}

// advanceFile opens the next file in sequence, if any. Returns (false, nil)
// when there is no next file yet (the caller must wait or stop); returns a
// non-nil error, distinct from that case, on an actual I/O failure.
func (r *Reader) advanceFile() (bool, error) {
	if err := r.refreshFiles(); err != nil {
		return false, err
	}
	if r.fileIndex >= len(r.files) {
		return false, nil
	}

	data, err := os.ReadFile(r.files[r.fileIndex])
	if err != nil {
		return false, errors.NewIO("reading %s", r.files[r.fileIndex], err)
	}

	r.fileIndex++
	r.data = data
	r.offset = 0

	return true, nil
}

// refreshFiles re-globs dataDir, keeping fileIndex pointing at the same
// logical position so newly appeared files are picked up without
// re-processing files already consumed.
func (r *Reader) refreshFiles() error {
	matches, err := filepath.Glob(filepath.Join(r.dataDir, r.glob))
	if err != nil {
		return errors.NewIO("globbing %s", r.dataDir, err)
	}
	sort.Strings(matches)
	r.files = matches
	return nil
}

// waitForMore blocks (in tailing mode) until the current file grows or a
// new file appears, then re-reads the current file in place. Returns
// more=false when not tailing, or when cancelled.
func (r *Reader) waitForMore() (more bool, err error) {
	if !r.tailing {
		return false, nil
	}

	r.ensureWatcher()

	for {
		if r.cancelled.Load() {
			return false, errors.NewCancelled("rawfile reader cancelled")
		}

		r.sleepOrWake()

		if r.cancelled.Load() {
			return false, errors.NewCancelled("rawfile reader cancelled")
		}

		if err := r.refreshFiles(); err != nil {
			return false, err
		}

		if r.fileIndex < len(r.files) {
			// a new, higher-numbered file has appeared.
			return true, nil
		}

		if r.fileIndex == 0 {
			continue
		}

		cur := r.files[r.fileIndex-1]
		info, err := os.Stat(cur)
		if err != nil {
			r.logger.Warnf("stat %s: %v", cur, err)
			continue
		}
		if info.Size() > int64(len(r.data)) {
			data, err := os.ReadFile(cur)
			if err != nil {
				r.logger.Warnf("reread %s: %v", cur, err)
				continue
			}
			r.data = data
			return true, nil
		}
	}
}

// ensureWatcher starts an fsnotify watch on dataDir, if not already
// running. Watch failures are logged and ignored: the poll loop still
// makes progress without it, just on a fixed cadence.
func (r *Reader) ensureWatcher() {
	if r.watcher != nil {
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Warnf("fsnotify.NewWatcher: %v", err)
		return
	}
	if err := w.Add(r.dataDir); err != nil {
		r.logger.Warnf("fsnotify watch %s: %v", r.dataDir, err)
		_ = w.Close()
		return
	}
	r.watcher = w
}

// jitteredInterval adjusts the poll interval by up to ±10%, so that many
// readers polling the same directory (e.g. several tailing processes)
// don't all wake in lockstep.
func (r *Reader) jitteredInterval() time.Duration {
	if r.interval <= 0 {
		return r.interval
	}
	spread := int64(r.interval) / 5
	if spread <= 0 {
		return r.interval
	}
	adjustment := time.Duration(rand.Int63n(spread) - spread/2)
	return r.interval + adjustment
}

// sleepOrWake waits until either the poll interval elapses or fsnotify
// reports any event in dataDir, whichever comes first.
func (r *Reader) sleepOrWake() {
	if r.watcher == nil {
		time.Sleep(r.jitteredInterval())
		if metrics.ReaderPolls != nil {
			metrics.ReaderPolls.Inc()
		}
		return
	}

	timer := time.NewTimer(r.jitteredInterval())
	defer timer.Stop()

	select {
	case <-r.watcher.Events:
	case err := <-r.watcher.Errors:
		r.logger.Warnf("fsnotify: %v", err)
	case <-timer.C:
	}

	if metrics.ReaderPolls != nil {
		metrics.ReaderPolls.Inc()
	}
}

// Close releases the reader's fsnotify watch, if one was started.
func (r *Reader) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}
