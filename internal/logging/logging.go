// Package logging provides the dual-sink (file + stdout) structured logger
// every ambient entry point (A5 server, A6 CLI) is built on, ported from the
// teacher's logger package and its slog.JSONHandler idiom.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger embeds *slog.Logger so callers use the ordinary slog API
// (logger.Info("...", slog.String(...))) against an AmFn-configured sink.
type Logger struct {
	*slog.Logger
}

// New creates a structured logger that writes JSON lines to a dated file
// under logDir and, simultaneously, to stdout.
func New(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	multiWriter := io.MultiWriter(file, os.Stdout)
	handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})

	return &Logger{slog.New(handler)}, nil
}

// WithEvaluation scopes a logger to a single evaluate/expand/solve/convert
// call, so every line it emits carries the same request-scoped attributes.
func (l *Logger) WithEvaluation(requestID string, eventCount int) *Logger {
	return &Logger{l.Logger.With(
		slog.String("request_id", requestID),
		slog.Int("event_count", eventCount),
	)}
}
