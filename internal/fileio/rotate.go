// Package fileio implements the rotating file log writer for mqttsim.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingWriter is an io.Writer that rolls a log file to "<path>.1" once it
// exceeds maxBytes, starting a fresh file in its place. It is safe for
// concurrent use.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
}

// DefaultMaxBytes is the rotation threshold used when none is specified.
const DefaultMaxBytes = 10 * 1024 * 1024 // 10MiB

// OpenRotating opens (creating parent directories as needed) the log file at
// path for appending. A file that already exceeds maxBytes is rotated by the
// next Write, not at open.
func OpenRotating(path string, maxBytes int64) (*RotatingWriter, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &RotatingWriter{path: path, maxBytes: maxBytes}
	if err := w.openCurrent(); err != nil {
		return nil, err
	}
	return w, nil
}

// DefaultPath returns the fixed log path mqttsim writes to, relative to the
// current working directory: .mqtt-sim/logs/mqtt-sim.log
func DefaultPath() string {
	return filepath.Join(".mqtt-sim", "logs", "mqtt-sim.log")
}

func (w *RotatingWriter) openCurrent() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// Write implements io.Writer, rotating the underlying file first if this
// write would exceed maxBytes.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close log file before rotation: %w", err)
	}
	rolled := w.path + ".1"
	_ = os.Remove(rolled)
	if err := os.Rename(w.path, rolled); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return w.openCurrent()
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
