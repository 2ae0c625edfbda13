package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/zap"
)

// SlogLogger adapts *slog.Logger to Logger.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// New builds the process logger for the given backend ("slog" or "zap").
// The returned func flushes buffered output and should be called on shutdown.
func New(backend string, w io.Writer) (Logger, func() error, error) {
	switch backend {
	case "", "slog":
		l := slog.New(slog.NewJSONHandler(w, nil))
		return NewSlogLogger(l), func() error { return nil }, nil
	case "zap":
		zl, err := zap.NewProduction()
		if err != nil {
			return nil, nil, fmt.Errorf("zap init: %w", err)
		}
		z := NewZapLogger(zl)
		return z, z.Sync, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
