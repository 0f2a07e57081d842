package ast

import (
	"context"
	"log/slog"
)

// Slog wraps a Pattern as a slog.LogValuer to not render pattern strings
// unless they definitely need to be logged
func Slog(p Pattern) slog.LogValuer {
	return patternLogValuer{p}
}

type patternLogValuer struct{ Pattern }

func (l patternLogValuer) LogValue() slog.Value {
	return slog.StringValue(l.Pattern.String())
}

// PatternHandler is a slog.Handler capable of lazy-printing pattern trees
func PatternHandler(underlying slog.Handler) slog.Handler {
	return &patternLogHandler{underlying: underlying}
}

func PatternLogger(underlying *slog.Logger) *slog.Logger {
	return slog.New(PatternHandler(underlying.Handler()))
}

type patternLogHandler struct {
	underlying slog.Handler
}

func (l *patternLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *patternLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrapPattern(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *patternLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapPattern(attr)
	}
	return PatternHandler(l.underlying.WithAttrs(wrapped))
}

func (l *patternLogHandler) WithGroup(name string) slog.Handler {
	return PatternHandler(l.underlying.WithGroup(name))
}

func wrapPattern(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	switch v := attr.Value.Any().(type) {
	case Pattern:
		return slog.Any(attr.Key, Slog(v))
	case Case:
		return slog.String(attr.Key, v.String())
	}
	return attr
}
