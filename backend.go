package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const _MEGABYTE = 1 << 20

// fileBackend is the size limited log file attached by Init. When the file
// grows past the limit it is renamed with a timestamp and a new one is
// started; one old file is kept.
//
// A goroutine may still hold the backend as its output after Shutdown
// swapped it out. Once closed, Write fails with ErrFileClosed instead of
// letting lumberjack reopen the file.
type fileBackend struct {
	mtx    sync.RWMutex
	closed bool
	lj     *lumberjack.Logger
}

// openFileBackend creates the directory of filename if needed and opens the
// file so that permission problems show up at Init, not at the first line.
// maxSize is in bytes and is rounded up to whole megabytes, 0 keeps the
// lumberjack default of 100 MB.
func openFileBackend(filename string, maxSize uint32) (*fileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	b := &fileBackend{lj: &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    int((uint64(maxSize) + _MEGABYTE - 1) / _MEGABYTE),
		MaxBackups: 1,
	}}
	if _, err := b.Write(nil); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *fileBackend) Write(p []byte) (int, error) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()
	if b.closed {
		return 0, ErrFileClosed
	}
	return b.lj.Write(p)
}

// Close waits for writes in progress and closes the file. Repeated calls
// return nil.
func (b *fileBackend) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.lj.Close()
}
