package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

// pseudonymizedKeys hold caller identifiers that are replaced by a stable
// digest before a record leaves the process.
var pseudonymizedKeys = map[string]bool{
	string(SearchUserIDKey): true,
}

// RedactHandler rewrites caller identifiers into short digests so logs can
// still be correlated per user without carrying the raw id.
type RedactHandler struct {
	next slog.Handler
}

func NewRedactHandler(next slog.Handler) *RedactHandler {
	return &RedactHandler{next: next}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactHandler{next: h.next.WithAttrs(redacted)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		redacted := make([]any, len(group))
		for i, g := range group {
			redacted[i] = redactAttr(g)
		}
		return slog.Group(a.Key, redacted...)
	}
	if pseudonymizedKeys[a.Key] {
		return slog.String(a.Key, Pseudonymize(a.Value.String()))
	}
	return a
}

// Pseudonymize returns a short stable digest of id.
func Pseudonymize(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return "u_" + hex.EncodeToString(sum[:6])
}
