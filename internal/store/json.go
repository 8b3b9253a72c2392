package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/pkg/logger"
)

const (
	storeFileMode = 0644
	storeDirMode  = 0755
)

// JSONStore keeps reminders in a pretty-printed JSON array.
type JSONStore struct {
	fs   afero.Fs
	path string
	lock locker
	log  logger.Logger
}

// NewJSONStore creates a store at path on fs. On the OS filesystem,
// Update is guarded by an advisory lock on <path>.lock; other filesystems
// only get a process-local mutex.
func NewJSONStore(fs afero.Fs, path string, l logger.Logger) *JSONStore {
	if l == nil {
		l = logger.NewNopLogger()
	}
	var lk locker = &mutexLocker{}
	if _, ok := fs.(*afero.OsFs); ok {
		lk = &fileLocker{path: path + ".lock"}
	}
	return &JSONStore{fs: fs, path: path, lock: lk, log: l}
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Close() error { return nil }

// Load reads the store document. Missing and blank files are empty stores.
func (s *JSONStore) Load() ([]reminder.Reminder, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []reminder.Reminder{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []reminder.Reminder{}, nil
	}
	var rs []reminder.Reminder
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, &reminder.CorruptStoreError{Path: s.path, Err: err}
	}
	if rs == nil {
		rs = []reminder.Reminder{}
	}
	return rs, nil
}

// Save writes rs to a temporary file and renames it over the store.
func (s *JSONStore) Save(rs []reminder.Reminder) error {
	if rs == nil {
		rs = []reminder.Reminder{}
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return ioError("encode", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), storeDirMode); err != nil {
		return ioError("mkdir", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, storeFileMode); err != nil {
		_ = s.fs.Remove(tmp)
		return ioError("write", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return ioError("rename", err)
	}
	return nil
}

// Update runs fn under the store lock.
func (s *JSONStore) Update(fn UpdateFunc) error {
	unlock, err := s.lock.lock()
	if err != nil {
		return ioError("lock", err)
	}
	defer unlock()

	rs, err := s.Load()
	if err != nil {
		var cse *reminder.CorruptStoreError
		if !errors.As(err, &cse) {
			return err
		}
		s.quarantine(cse)
		rs = []reminder.Reminder{}
	}
	out, err := fn(rs)
	if err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return s.Save(out)
}

// quarantine moves a corrupt document aside so it can be inspected later.
func (s *JSONStore) quarantine(cse *reminder.CorruptStoreError) {
	dst := s.path + ".corrupt-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.fs.Rename(s.path, dst); err != nil {
		s.log.Error("Store is corrupt and could not be moved aside: %v (rename: %v)", cse, err)
		return
	}
	s.log.Warning("Store was corrupt, starting fresh (old data kept at %s): %v", dst, cse.Err)
}

var _ Store = (*JSONStore)(nil)
