//go:build !unix && !windows

package store

import "os"

// Platforms without advisory locks fall back to the in-process mutex only.
func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
