// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/session"
)

// noIDSession is signed in but the API never reported a user id.
var noIDSession = &session.Session{Username: "ghost", Role: model.RoleMember}

func TestAssigned_Projects(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	rec := env.serve(t, h.Projects, RouteAssignedProjects, httptest.NewRequest(http.MethodGet, RouteAssignedProjects, nil), memberSession)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Bridge")
	assert.Contains(t, body, `action="/assignedproject/1"`)
	assert.Contains(t, body, `<option value="in_progress" selected>`)
	assert.Contains(t, body, "Your Tasks", "member navigation")
	assert.NotContains(t, body, "Manage Users")
	assert.Len(t, env.api.callsTo(http.MethodGet, "/project/assigned/8"), 1)
}

func TestAssigned_MissingUserIDBlocks(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	rec := env.serve(t, h.Projects, RouteAssignedProjects, httptest.NewRequest(http.MethodGet, RouteAssignedProjects, nil), noIDSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUserIDNotFound)

	rec = env.serve(t, h.Tasks, RouteAssignedTasks, httptest.NewRequest(http.MethodGet, RouteAssignedTasks, nil), noIDSession)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUserIDNotFound)

	req := formRequest(http.MethodPost, "/assignedtask/11", url.Values{"status": {"Completed"}})
	rec = env.serve(t, h.UpdateTask, RouteAssignedTasks+RouteParamID, req, noIDSession)
	assert.Equal(t, msgUserIDNotFound, env.flashOf(t, rec))

	assert.Equal(t, 0, env.api.callCount())
}

func TestAssigned_UpdateProject(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)
	pattern := RouteAssignedProjects + RouteParamID

	req := multipartRequest(t, "/assignedproject/1",
		map[string]string{"status": "completed", "project_name": "Bridge"},
		upload{"progress.png", testPNG(t, 4, 4)})
	rec := env.serve(t, h.UpdateProject, pattern, req, memberSession)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteAssignedProjects, rec.Header().Get("Location"))
	assert.Equal(t, msgProjectUpdated, env.flashOf(t, rec))

	calls := env.api.callsTo(http.MethodPut, "/project/assigned/8")
	require.Len(t, calls, 1)
	assert.Equal(t, "completed", calls[0].Form.Get("status"))
	assert.Equal(t, "1", calls[0].Form.Get("project_id"))
	assert.Equal(t, []string{"progress.png"}, calls[0].Files)
}

func TestAssigned_UpdateProjectRequiresStatus(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	req := multipartRequest(t, "/assignedproject/1", map[string]string{"project_name": "Bridge"})
	rec := env.serve(t, h.UpdateProject, RouteAssignedProjects+RouteParamID, req, memberSession)

	assert.Equal(t, "Status is required for project Bridge.", env.flashOf(t, rec))
	assert.Empty(t, env.api.callsTo(http.MethodPut, "/project/assigned/8"))
}

func TestAssigned_UpdateProjectAPIError(t *testing.T) {
	env := newTestEnv(t)
	env.api.fail(http.MethodPut, "/project/assigned/8", http.StatusBadGateway)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	req := multipartRequest(t, "/assignedproject/1", map[string]string{"status": "delayed"})
	rec := env.serve(t, h.UpdateProject, RouteAssignedProjects+RouteParamID, req, memberSession)
	assert.Equal(t, "upstream said no", env.flashOf(t, rec))
}

func TestAssigned_Tasks(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	rec := env.serve(t, h.Tasks, RouteAssignedTasks, httptest.NewRequest(http.MethodGet, RouteAssignedTasks, nil), memberSession)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pour concrete")
	assert.Contains(t, body, "<td>alice</td>", "assigned by")
	assert.Contains(t, body, `action="/assignedtask/11"`)
	assert.Len(t, env.api.callsTo(http.MethodGet, "/tasks/assigned/8"), 1)
}

func TestAssigned_TasksError(t *testing.T) {
	env := newTestEnv(t)
	env.api.fail(http.MethodGet, "/tasks/assigned/8", http.StatusInternalServerError)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)

	rec := env.serve(t, h.Tasks, RouteAssignedTasks, httptest.NewRequest(http.MethodGet, RouteAssignedTasks, nil), memberSession)
	assert.Contains(t, rec.Body.String(), "Error fetching assigned tasks")
}

func TestAssigned_UpdateTask(t *testing.T) {
	env := newTestEnv(t)
	h := NewAssignedHandler(env.client, env.renderer, env.uploads)
	pattern := RouteAssignedTasks + RouteParamID

	req := formRequest(http.MethodPost, "/assignedtask/11", url.Values{"status": {"In Progress"}})
	rec := env.serve(t, h.UpdateTask, pattern, req, memberSession)
	assert.Equal(t, msgTaskStatusUpdated, env.flashOf(t, rec))

	calls := env.api.callsTo(http.MethodPut, "/tasks/11/status")
	require.Len(t, calls, 1)
	var sent map[string]string
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, "In Progress", sent["status"])

	req = formRequest(http.MethodPost, "/assignedtask/11", url.Values{"status": {"Archived"}})
	rec = env.serve(t, h.UpdateTask, pattern, req, memberSession)
	assert.Equal(t, "Invalid task status", env.flashOf(t, rec))
	assert.Len(t, env.api.callsTo(http.MethodPut, "/tasks/11/status"), 1)
}
