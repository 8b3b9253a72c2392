package store

import (
	"os"
	"path/filepath"
	"sync"
)

// locker serializes Update cycles.
type locker interface {
	lock() (unlock func(), err error)
}

type mutexLocker struct {
	mu sync.Mutex
}

func (m *mutexLocker) lock() (func(), error) {
	m.mu.Lock()
	return m.mu.Unlock, nil
}

// fileLocker takes an exclusive advisory lock on a sidecar file, which
// excludes other processes using the same store. The mutex covers
// goroutines of this process.
type fileLocker struct {
	path string
	mu   sync.Mutex
}

func (l *fileLocker) lock() (func(), error) {
	l.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(l.path), storeDirMode); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, storeFileMode)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		l.mu.Unlock()
		return nil, err
	}
	return func() {
		_ = unlockFile(f)
		f.Close()
		l.mu.Unlock()
	}, nil
}
