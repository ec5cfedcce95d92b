// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// lateWrite is what a handler observed when it wrote after the deadline.
type lateWrite struct {
	ctxErr   error
	writeErr error
}

// slowHandler optionally writes a status, then blocks until the request
// context ends and release is closed. It then tries to respond and reports
// what happened.
func slowHandler(early int, release <-chan struct{}, result chan<- lateWrite) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if early != 0 {
			w.WriteHeader(early)
		}
		<-r.Context().Done()
		<-release
		w.WriteHeader(http.StatusTeapot)
		_, err := w.Write([]byte("late report"))
		result <- lateWrite{ctxErr: r.Context().Err(), writeErr: err}
	})
}

func TestTimeout_PassesThroughFastHandler(t *testing.T) {
	logs := captureLogs(t)
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline := r.Context().Deadline()
		assert.True(t, hasDeadline, "handlers see the request deadline")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.Empty(t, logs.String())
}

func TestTimeout_SilentHandlerGets503(t *testing.T) {
	logs := captureLogs(t)
	release := make(chan struct{})
	result := make(chan lateWrite, 1)
	h := Timeout(20 * time.Millisecond)(slowHandler(0, release, result))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/export", nil))
	close(release)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Request timeout", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	late := <-result
	assert.ErrorIs(t, late.ctxErr, context.DeadlineExceeded, "in-flight work is cancelled")
	assert.ErrorIs(t, late.writeErr, http.ErrHandlerTimeout)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "late WriteHeader is dropped")
	assert.NotContains(t, rec.Body.String(), "late report")

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="request timed out"`)
	assert.Contains(t, out, "path=/dashboard/export")
	assert.Contains(t, out, "timeout=20ms")
}

func TestTimeout_StartedResponseIsKept(t *testing.T) {
	logs := captureLogs(t)
	release := make(chan struct{})
	result := make(chan lateWrite, 1)
	h := Timeout(20 * time.Millisecond)(slowHandler(http.StatusAccepted, release, result))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	close(release)
	late := <-result

	assert.Equal(t, http.StatusAccepted, rec.Code, "a sent status is never replaced")
	assert.NoError(t, late.writeErr, "the body of a started response may still be written")
	assert.Equal(t, "late report", rec.Body.String())
	assert.NotContains(t, logs.String(), "request timed out")
}

func TestTimeoutWriter(t *testing.T) {
	t.Run("first status wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec}
		tw.WriteHeader(http.StatusNotFound)
		tw.WriteHeader(http.StatusOK)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("write implies 200", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec}
		n, err := tw.Write([]byte("ok"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, tw.wroteHeader)
	})

	t.Run("timed out before any output", func(t *testing.T) {
		rec := httptest.NewRecorder()
		tw := &timeoutWriter{ResponseWriter: rec, timedOut: true}
		tw.WriteHeader(http.StatusOK)
		_, err := tw.Write([]byte("x"))
		assert.ErrorIs(t, err, http.ErrHandlerTimeout)
		assert.False(t, tw.wroteHeader)
		assert.Empty(t, rec.Body.String())
	})
}
