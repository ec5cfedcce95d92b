// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProvider_Disabled(t *testing.T) {
	shutdown, err := NewProvider(context.Background(), "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestHostPort(t *testing.T) {
	tests := map[string]string{
		"localhost:4318":          "localhost:4318",
		"http://collector:4318":   "collector:4318",
		"https://otel.example/":   "otel.example",
	}
	for in, want := range tests {
		assert.Equal(t, want, hostPort(in), in)
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exp, err := newStdoutExporter(&buf)
	require.NoError(t, err)

	tp := trace.NewTracerProvider(trace.WithSyncer(exp), trace.WithResource(newResource("1.2.3")))
	_, span := tp.Tracer("test").Start(context.Background(), "load reports")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "load reports")
	assert.Contains(t, buf.String(), ServiceName)
}

func TestMiddleware(t *testing.T) {
	h := Middleware("console")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
