package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// redactedKeys never reach the log output, whatever subsystem logs them.
var redactedKeys = map[string]bool{
	"password":          true,
	"token":             true,
	"secret":            true,
	"two_factor_secret": true,
	"code":              true,
}

// Handler wraps a JSON or text handler and masks sensitive attributes.
type Handler struct {
	next slog.Handler
}

// New builds the process logger from a level ("debug", "info", "warn", "error")
// and a format ("json" or "text").
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var next slog.Handler
	switch format {
	case "json":
		next = slog.NewJSONHandler(w, opts)
	case "text":
		next = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return slog.New(&Handler{next: next}), nil
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redact(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = redact(a)
	}
	return &Handler{next: h.next.WithAttrs(cleaned)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	if redactedKeys[a.Key] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
