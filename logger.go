package flashgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with storage-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithDevice adds a device identifier field to the logger.
func (l *Logger) WithDevice(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("device", name),
	}
}

// LogOpen logs an open attempt.
//
// Log methods take no context: the storage service is synchronous and
// non-cancellable, so there is no request context to thread through.
func (l *Logger) LogOpen(path string, opts OpenOptions, err error) {
	if err != nil {
		l.Error("open failed",
			"path", path,
			"access", opts.AccessMode(),
			"mode", opts.OpenMode(),
			"error", err,
		)
	} else {
		l.Debug("open completed",
			"path", path,
			"access", opts.AccessMode(),
			"mode", opts.OpenMode(),
		)
	}
}

// LogClose logs the release of a file handle.
func (l *Logger) LogClose(path string, err error) {
	if err != nil {
		l.Error("close failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("close completed",
			"path", path,
		)
	}
}

// LogSync logs a sync operation.
func (l *Logger) LogSync(path string, err error) {
	if err != nil {
		l.Error("sync failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("sync completed",
			"path", path,
		)
	}
}
