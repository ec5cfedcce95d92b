// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides the console's slog setup: a text handler on stdout
// wrapped by RequestHandler, which adds request and trace identifiers to every
// record and tags warnings and errors with a category.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/olegiv/taskdesk/internal/middleware"
)

// Categories attached to warnings and errors.
const (
	CategoryAuth    = "auth"
	CategoryUser    = "user"
	CategoryProject = "project"
	CategoryTask    = "task"
	CategoryReport  = "report"
	CategoryCache   = "cache"
	CategorySystem  = "system"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(NewRequestHandler(inner))
}

// RequestHandler is a slog.Handler that wraps another handler and adds the
// request path, request id and trace id found in the record's context.
type RequestHandler struct {
	inner slog.Handler
	level slog.Level // Minimum level that gets a category (default: WARN)
}

// NewRequestHandler wraps inner.
func NewRequestHandler(inner slog.Handler) *RequestHandler {
	return &RequestHandler{inner: inner, level: slog.LevelWarn}
}

// Enabled implements slog.Handler.
func (h *RequestHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RequestHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if path := middleware.GetRequestPath(ctx); path != "" {
			r.AddAttrs(slog.String("path", path))
		}
		if id := chimw.GetReqID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			r.AddAttrs(slog.String("trace_id", sc.TraceID().String()))
		}
	}

	if r.Level >= h.level && !hasAttr(r, "category") {
		r.AddAttrs(slog.String("category", inferCategory(r.Message)))
	}

	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *RequestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RequestHandler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

// WithGroup implements slog.Handler.
func (h *RequestHandler) WithGroup(name string) slog.Handler {
	return &RequestHandler{inner: h.inner.WithGroup(name), level: h.level}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}

// inferCategory guesses a category from common words in the message.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "access denied") || strings.Contains(msg, "csrf"):
		return CategoryAuth
	case strings.Contains(msg, "report") || strings.Contains(msg, "export"):
		return CategoryReport
	case strings.Contains(msg, "project"):
		return CategoryProject
	case strings.Contains(msg, "task"):
		return CategoryTask
	case strings.Contains(msg, "user"):
		return CategoryUser
	case strings.Contains(msg, "cache") || strings.Contains(msg, "redis"):
		return CategoryCache
	default:
		return CategorySystem
	}
}
