package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger appends structured JSON lines to a log file. Detached workers
// and the delivery daemon have no console, so this is their log sink.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	f     *os.File
	once  sync.Once
}

// NewFileLogger opens (or creates) path in append mode and returns a
// logger writing one JSON object per message. component is attached to
// every entry so several processes can share one file.
func NewFileLogger(path, component string) (*ZapLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	l := zap.New(core).With(
		zap.String("component", component),
		zap.Int("pid", os.Getpid()),
	)
	return &ZapLogger{sugar: l.Sugar(), f: f}, nil
}

// Info logs an informational message.
func (z *ZapLogger) Info(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

// Warning logs a warning message.
func (z *ZapLogger) Warning(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (z *ZapLogger) Error(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Close flushes buffered entries and closes the file.
func (z *ZapLogger) Close() error {
	var err error
	z.once.Do(func() {
		_ = z.sugar.Sync()
		err = z.f.Close()
	})
	return err
}

var _ Logger = (*ZapLogger)(nil)
