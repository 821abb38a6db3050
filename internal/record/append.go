package record

import (
	"os"
)

// Appender persists encoded records to the trace log. Every append is
// its own open-write-close cycle: each intercepted invocation runs in
// its own short-lived process, so there is no process that could hold a
// handle open across records.
type Appender struct {
	// Path is the trace-log destination.
	Path string

	// FileLock takes an advisory lock for the duration of the write.
	FileLock bool
}

// NewAppender returns an Appender for the configured trace log.
func NewAppender(cfg Config) *Appender {
	return &Appender{Path: cfg.LogPath, FileLock: cfg.FileLock}
}

// Append writes one encoded record to the trace log, creating the file
// if it does not exist. The record is written with exactly one write
// call so O_APPEND keeps it whole with respect to concurrent writers;
// the handle is closed before returning. All failures are I/O-class
// intercept errors.
func (a *Appender) Append(rec string) error {
	f, err := os.OpenFile(a.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return NewIOError("couldn't open trace log for append", a.Path, err)
	}

	if a.FileLock {
		if err := flock(f); err != nil {
			f.Close()
			return NewIOError("couldn't lock trace log", a.Path, err)
		}
		// Released by the close below.
	}

	n, err := f.WriteString(rec)
	if err != nil {
		f.Close()
		return NewIOError("couldn't write record", a.Path, err)
	}
	if n != len(rec) {
		f.Close()
		return NewIOError("short write", a.Path, nil)
	}

	if err := f.Close(); err != nil {
		return NewIOError("couldn't close trace log", a.Path, err)
	}
	return nil
}
