// Package logger provides the logging interface shared by the reminder
// server, the delivery worker and the delivery daemon.
// Backends include console output, a structured JSON file sink and test
// recorders.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Logger defines the interface for logging across all reminder components.
type Logger interface {
	// Info logs an informational message (e.g., "Reminder created").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "Remote peer timed out").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "Failed to persist store").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger (e.g., an open log file).
	// Safe to call multiple times.
	Close() error
}

// StandardLogger wraps the stdlib *log.Logger for console output.
// The MCP server uses it on stderr since stdout carries protocol frames.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// NewConsoleLogger creates a StandardLogger writing to w with the given
// component prefix.
func NewConsoleLogger(w io.Writer, component string) *StandardLogger {
	return NewStandardLogger(log.New(w, component+": ", log.LstdFlags))
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op for StandardLogger.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records all log calls for verification in tests.
// It is safe for concurrent use since delivery runs on its own goroutines.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Contains reports whether any recorded message at any level contains sub.
func (m *MockLogger) Contains(sub string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, calls := range [][]string{m.InfoCalls, m.WarningCalls, m.ErrorCalls} {
		for _, c := range calls {
			if strings.Contains(c, sub) {
				return true
			}
		}
	}
	return false
}

// Errors returns a copy of the recorded error messages.
func (m *MockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ErrorCalls...)
}

// Warnings returns a copy of the recorded warning messages.
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarningCalls...)
}

var _ Logger = (*MockLogger)(nil)

// stdWriter forwards lines written by a *log.Logger to Logger.Info.
type stdWriter struct {
	l Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	w.l.Info("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// ToStdLogger adapts a Logger to a *log.Logger for libraries that expect
// the stdlib type. Everything is logged at info level.
func ToStdLogger(l Logger) *log.Logger {
	if sl, ok := l.(*StandardLogger); ok {
		return sl.logger
	}
	return log.New(stdWriter{l: l}, "", 0)
}
