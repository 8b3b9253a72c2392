//go:build !windows

package cmd

import "github.com/warpdl/reminder/pkg/logger"

func platformLogger() logger.Logger {
	return nil
}
