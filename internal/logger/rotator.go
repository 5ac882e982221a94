package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var _ io.WriteCloser = (*RotatingFile)(nil)

// RotatingFile appends to a log file and shifts it to numbered backups
// (name.1 is the newest) once it would grow past the size limit.
type RotatingFile struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int

	// maxBytes overrides MaxSizeMB.
	maxBytes int64

	mu   sync.Mutex
	file *os.File
	size int64
}

// OpenRotating opens (or creates) filename for appending.
func OpenRotating(filename string, maxSizeMB, maxBackups int) (*RotatingFile, error) {
	f := &RotatingFile{Filename: filename, MaxSizeMB: maxSizeMB, MaxBackups: maxBackups}
	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RotatingFile) limit() int64 {
	if f.maxBytes > 0 {
		return f.maxBytes
	}
	if f.MaxSizeMB <= 0 {
		return 1024 * 1024
	}
	return int64(f.MaxSizeMB) * 1024 * 1024
}

// Write implements io.Writer. A single write is never split across files.
func (f *RotatingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := f.open(); err != nil {
			return 0, err
		}
	}
	if f.size > 0 && f.size+int64(len(p)) > f.limit() {
		if err := f.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := f.file.Write(p)
	f.size += int64(n)
	return n, err
}

// Close implements io.Closer.
func (f *RotatingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

func (f *RotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(f.Filename), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(f.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	f.file = file
	f.size = info.Size()
	return nil
}

// rotate drops the oldest backup, shifts the rest up by one and starts a
// fresh file. With MaxBackups == 0 the current file is simply truncated.
func (f *RotatingFile) rotate() error {
	if err := f.file.Close(); err != nil {
		return err
	}
	f.file = nil

	if f.MaxBackups <= 0 {
		if err := os.Truncate(f.Filename, 0); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("truncate log file: %w", err)
		}
		return f.open()
	}

	os.Remove(f.backup(f.MaxBackups))
	for i := f.MaxBackups - 1; i >= 1; i-- {
		if err := os.Rename(f.backup(i), f.backup(i+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("shift log backup: %w", err)
		}
	}
	if err := os.Rename(f.Filename, f.backup(1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return f.open()
}

func (f *RotatingFile) backup(n int) string {
	return fmt.Sprintf("%s.%d", f.Filename, n)
}
