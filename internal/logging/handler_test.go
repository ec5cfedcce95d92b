// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/olegiv/taskdesk/internal/middleware"
)

func newBufferLogger(level string) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, level), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRequestHandler_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("warn")

	logger.Info("reports loaded")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %q", buf.String())
	}

	logger.Warn("access denied")
	if !strings.Contains(buf.String(), "access denied") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestRequestHandler_ContextAttrs(t *testing.T) {
	logger, buf := newBufferLogger("debug")

	ctx := context.WithValue(context.Background(), middleware.ContextKeyRequestPath, "/dashboard/export")
	ctx = context.WithValue(ctx, chimw.RequestIDKey, "host/abc-000001")
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "report exported")

	out := buf.String()
	for _, want := range []string{
		"path=/dashboard/export",
		"request_id=host/abc-000001",
		"trace_id=4bf92f3577b34da6a3ce929d0e0e4736",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "category=") {
		t.Errorf("info record should not get a category: %q", out)
	}
}

func TestRequestHandler_NoContextValues(t *testing.T) {
	logger, buf := newBufferLogger("info")

	logger.Info("server starting")

	out := buf.String()
	for _, unwanted := range []string{"path=", "request_id=", "trace_id="} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output %q should not contain %q", out, unwanted)
		}
	}
}

func TestRequestHandler_Category(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"login failed", CategoryAuth},
		{"access denied", CategoryAuth},
		{"CSRF validation failed", CategoryAuth},
		{"failed to fetch reports", CategoryReport},
		{"scheduled export failed", CategoryReport},
		{"failed to update project", CategoryProject},
		{"failed to delete task", CategoryTask},
		{"failed to list users", CategoryUser},
		{"redis unavailable, falling back to memory cache", CategoryCache},
		{"something broke", CategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			logger, buf := newBufferLogger("info")
			logger.Error(tt.message)
			if !strings.Contains(buf.String(), "category="+tt.want) {
				t.Errorf("output %q, want category=%s", buf.String(), tt.want)
			}
		})
	}
}

func TestRequestHandler_ExplicitCategory(t *testing.T) {
	logger, buf := newBufferLogger("info")

	logger.Warn("login rate limit exceeded", "category", "custom")

	out := buf.String()
	if !strings.Contains(out, "category=custom") {
		t.Errorf("explicit category lost: %q", out)
	}
	if strings.Count(out, "category=") != 1 {
		t.Errorf("category added twice: %q", out)
	}
}

func TestRequestHandler_WithAttrsAndGroup(t *testing.T) {
	logger, buf := newBufferLogger("info")

	logger.With("component", "scheduler").Info("job started")
	if !strings.Contains(buf.String(), "component=scheduler") {
		t.Errorf("WithAttrs lost attribute: %q", buf.String())
	}

	buf.Reset()
	logger.WithGroup("job").Info("job finished", "name", "report-export")
	if !strings.Contains(buf.String(), "job.name=report-export") {
		t.Errorf("WithGroup lost group: %q", buf.String())
	}
}
