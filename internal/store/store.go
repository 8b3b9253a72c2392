// Package store persists pending reminders as one whole document.
//
// Every mutation is "load, transform the full set, save". Update performs
// that cycle under an exclusive lock (a file lock for the JSON backend, an
// immediate transaction for SQLite) so the dispatcher and delivery workers,
// which run in separate processes, do not lose each other's writes.
package store

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/warpdl/reminder/internal/config"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/pkg/logger"
)

// ErrNoChange may be returned by an Update callback to skip the save.
// Update then returns nil.
var ErrNoChange = errors.New("store: no change")

// UpdateFunc transforms the full set of reminders.
type UpdateFunc func(rs []reminder.Reminder) ([]reminder.Reminder, error)

// Store is the durable collection of pending reminders.
type Store interface {
	// Load reads the whole collection. A missing store yields an empty
	// slice; an unparsable one yields *reminder.CorruptStoreError.
	Load() ([]reminder.Reminder, error)
	// Save overwrites the whole collection. Failures wrap reminder.ErrIO.
	Save(rs []reminder.Reminder) error
	// Update runs fn on the current collection and saves its result while
	// holding the store lock. A corrupt store is set aside and treated as
	// empty.
	Update(fn UpdateFunc) error
	// Path returns the store location.
	Path() string
	// Close releases backend resources.
	Close() error
}

// Open returns the store for backend at path. The JSON backend uses the
// real filesystem.
func Open(backend, path string, l logger.Logger) (Store, error) {
	switch backend {
	case config.BackendJSON, "":
		return NewJSONStore(afero.NewOsFs(), path, l), nil
	case config.BackendSQLite:
		return OpenSQLite(path, l)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
	}
}

// Backend returns the backend name of s, as accepted by Open.
func Backend(s Store) string {
	if _, ok := s.(*SQLiteStore); ok {
		return config.BackendSQLite
	}
	return config.BackendJSON
}

// Remove deletes the reminder with id, reporting whether it was present.
// Absence is not an error and leaves the store untouched.
func Remove(s Store, id string) (bool, error) {
	var found bool
	err := s.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		var out []reminder.Reminder
		out, found = reminder.Without(rs, id)
		if !found {
			return nil, ErrNoChange
		}
		return out, nil
	})
	return found, err
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", reminder.ErrIO, op, err)
}
