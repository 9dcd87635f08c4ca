// Package logger configures structured logging for uncomment.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	slogger *slog.Logger
	logFile *os.File
)

// Options configures the process-wide logger.
type Options struct {
	// Format is "text" (default) or "json".
	Format string
	// Level is a slog level name: debug, info, warn or error.
	Level string
	// Dir, when set, also appends logs to a dated file in this directory.
	Dir string
	// Output defaults to stderr. Stdout is reserved for command output and
	// the MCP stdio transport.
	Output io.Writer
}

// Init installs the logger described by opts as the slog default.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	writer := opts.Output
	if writer == nil {
		writer = os.Stderr
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		name := "uncomment-" + time.Now().Format("2006-01-02") + ".log"
		f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = f
		writer = io.MultiWriter(writer, f)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	slogger = slog.New(handler)
	slog.SetDefault(slogger)
	return nil
}

// Close closes the log file, if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

// Slog returns the configured logger, or the slog default before Init.
func Slog() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if slogger == nil {
		return slog.Default()
	}
	return slogger
}

func parseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

type contextKey string

// ContextKeyRequestID carries the per-request ID.
const ContextKeyRequestID contextKey = "request_id"

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// WithContext returns a logger carrying the context's request ID.
func WithContext(ctx context.Context) *slog.Logger {
	l := Slog()
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	return l
}
