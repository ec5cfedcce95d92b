// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/session"
	"github.com/olegiv/taskdesk/internal/version"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func healthRequest(sess *session.Session, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, RouteHealth+query, nil)
	if sess != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), *sess))
	}
	return req
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth_Anonymous(t *testing.T) {
	h := NewHealthHandler(fakePinger{}, "", version.New("v1.2.3", "", ""))

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(nil, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"status": "healthy"}, decodeHealth(t, rec))
}

func TestHealth_SignedIn(t *testing.T) {
	h := NewHealthHandler(fakePinger{}, "", version.New("v1.2.3", "", ""))

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(memberSession, "?verbose=true"))
	out := decodeHealth(t, rec)
	assert.Equal(t, "v1.2.3", out["version"])
	assert.NotContains(t, out, "checks")
	assert.NotContains(t, out, "system")

	rec = httptest.NewRecorder()
	h.Health(rec, healthRequest(adminSession, "?verbose=true"))
	out = decodeHealth(t, rec)
	require.Contains(t, out, "checks")
	assert.Contains(t, out["checks"], "database")
	assert.Contains(t, out, "system")
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(fakePinger{err: errors.New("disk I/O error")}, "", version.New("", "", ""))

	rec := httptest.NewRecorder()
	h.Health(rec, healthRequest(adminSession, ""))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	out := decodeHealth(t, rec)
	assert.Equal(t, "degraded", out["status"])
	checks := out["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["database"].(map[string]any)["status"])
}
