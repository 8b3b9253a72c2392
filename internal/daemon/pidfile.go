package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WritePidFile writes the current process ID to path.
func WritePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// ReadPidFile reads and returns the PID stored at path.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

// RemovePidFile removes the pidfile. A missing file is not an error.
func RemovePidFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// AcquirePidFile creates the pidfile exclusively. A file left behind by a
// dead process is replaced; one naming a live process yields
// ErrAlreadyRunning.
func AcquirePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			return errors.Join(werr, cerr)
		}
		if !os.IsExist(err) {
			return err
		}
		if pid, rerr := ReadPidFile(path); rerr == nil && pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("%w (PID %d)", ErrAlreadyRunning, pid)
		}
		if err := RemovePidFile(path); err != nil {
			return err
		}
	}
	return ErrAlreadyRunning
}

// Status reports the PID recorded at path and whether it is alive.
func Status(path string) (pid int, running bool, err error) {
	pid, err = ReadPidFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return pid, isProcessRunning(pid), nil
}
