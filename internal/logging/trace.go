package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunInfo identifies one invocation in the trace file header.
type RunInfo struct {
	Version string
	Command string
}

// TraceFile is the on-disk copy of one run's diagnostic trace. Size limits
// are enforced only when the file is opened, so a run never spans two
// files; every run starts with a "run started" record.
type TraceFile struct {
	mu   sync.Mutex
	file *os.File
}

// OpenTraceFile rolls path over when it has reached maxSizeMB, keeping
// maxBackups old files, then appends a header record for run in format.
func OpenTraceFile(path string, maxSizeMB, maxBackups int, format string, run RunInfo) (*TraceFile, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("logging: create trace directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() >= int64(maxSizeMB)*1024*1024 {
		if err := rollOver(path, maxBackups); err != nil {
			return nil, fmt.Errorf("logging: roll over trace file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("logging: open trace file: %w", err)
	}
	tf := &TraceFile{file: f}

	header := slog.New(newHandler(format, tf, slog.LevelDebug))
	header.Info("run started",
		"version", run.Version,
		"command", run.Command,
		"pid", os.Getpid(),
		"started", time.Now().UTC().Format(time.RFC3339))

	return tf, nil
}

// Write implements io.Writer.
func (tf *TraceFile) Write(p []byte) (int, error) {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	if tf.file == nil {
		return 0, os.ErrClosed
	}
	return tf.file.Write(p)
}

// Close closes the underlying file.
func (tf *TraceFile) Close() error {
	tf.mu.Lock()
	defer tf.mu.Unlock()

	if tf.file == nil {
		return nil
	}
	err := tf.file.Close()
	tf.file = nil
	return err
}

// rollOver shifts path.N-1 to path.N, dropping the oldest, then moves path
// to path.1.
func rollOver(path string, maxBackups int) error {
	backup := func(i int) string { return fmt.Sprintf("%s.%d", path, i) }

	if err := os.Remove(backup(maxBackups)); err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := maxBackups; i >= 2; i-- {
		if err := os.Rename(backup(i-1), backup(i)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return os.Rename(path, backup(1))
}
