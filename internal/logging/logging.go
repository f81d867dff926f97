// Package logging configures the process-wide slog logger and tags records
// with the ID of the current pipeline run.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RunIDKey is the context key for the ID of one pipeline run.
	RunIDKey ContextKey = "run_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
	// output is where InitLogger sends records. Stdout carries command output.
	output io.Writer = os.Stderr
)

func init() {
	// Initialize with a default logger (text format, Info level)
	InitLogger(LevelInfo, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel maps a config string (debug, info, warn, error) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps a config string (json, text) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// SetOutput changes the writer used by subsequent InitLogger calls.
func SetOutput(w io.Writer) {
	output = w
}

var slogLevels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// InitLogger replaces the global logger. Unknown levels log at info.
// Timestamps are written as RFC3339 without fractional seconds.
func InitLogger(level Level, format Format) {
	slogLevel, ok := slogLevels[level]
	if !ok {
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun attaches a new run ID to ctx and returns it.
func StartRun(ctx context.Context) (context.Context, string) {
	id := NewRunID()
	return WithRunID(ctx, id), id
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns the global logger, tagged with the run ID when
// ctx carries one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if runID := GetRunID(ctx); runID != "" {
		return defaultLogger.With(string(RunIDKey), runID)
	}
	return defaultLogger
}

// DebugContext logs at debug level with the run ID from ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Debug(msg, args...)
}

// InfoContext logs at info level with the run ID from ctx.
func InfoContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Info(msg, args...)
}

// WarnContext logs at warn level with the run ID from ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs at error level with the run ID from ctx.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	LoggerFromContext(ctx).Error(msg, args...)
}

// event logs a named pipeline event: fixed attributes first, then the
// caller's extras.
func event(ctx context.Context, level slog.Level, name string, attrs []any, extra []any) {
	LoggerFromContext(ctx).Log(ctx, level, name, append(attrs, extra...)...)
}

// ChapterSkipped logs a translation file that could not be parsed.
func ChapterSkipped(ctx context.Context, book, file string, err error, args ...any) {
	event(ctx, slog.LevelWarn, "chapter_skipped", []any{"book", book, "file", file, "error", err.Error()}, args)
}

// SourceUnavailable logs Greek source data that could not be loaded for a book.
func SourceUnavailable(ctx context.Context, book string, err error, args ...any) {
	event(ctx, slog.LevelWarn, "source_unavailable", []any{"book", book, "error", err.Error()}, args)
}

// BookExported logs a written output file.
func BookExported(ctx context.Context, book, path string, chapters int, args ...any) {
	event(ctx, slog.LevelInfo, "book_exported", []any{"book", book, "path", path, "chapters", chapters}, args)
}

// TermDivergences logs the divergence count computed for a glossary term.
func TermDivergences(ctx context.Context, termID string, verses int, args ...any) {
	event(ctx, slog.LevelDebug, "term_divergences", []any{"term", termID, "verses", verses}, args)
}
