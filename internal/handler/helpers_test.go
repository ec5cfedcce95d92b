// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/cache"
	"github.com/olegiv/taskdesk/internal/imaging"
	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/session"
	"github.com/olegiv/taskdesk/internal/testutil"
	"github.com/olegiv/taskdesk/web"
)

// apiCall is one request received by the fake API.
type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Form   url.Values
	Files  []string
}

// fakeAPI is an in-process stand-in for the project-tracking API.
type fakeAPI struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls []apiCall

	users    []model.User
	projects []model.Project
	tasks    []model.Task
	failures map[string]int // "METHOD /path" -> status to answer with
	holds    map[string]*hold
}

// hold parks matching requests until released or abandoned by the client.
type hold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		users: []model.User{
			{ID: "7", Username: "alice", Email: "alice@example.com", Role: model.RoleAdmin},
			{ID: "8", Username: "bob", Email: "bob@example.com", Role: model.RoleEngineer},
		},
		projects: []model.Project{
			{ID: "1", ProjectName: "Bridge", Status: model.ProjectStatusInProgress, StartDate: "2024-03-01T00:00:00.000Z", AssignedUser: "8", Location: "Riverside"},
		},
		tasks: []model.Task{
			{ID: "11", Title: "Pour concrete", Status: model.TaskStatusPending, Priority: model.PriorityHigh, AssignedUser: "8", ProjectID: "1", CreatedBy: "7", CreatedByUsername: "alice"},
		},
		failures: map[string]int{},
		holds:    map[string]*hold{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// hold makes requests to method path wait. The returned channel receives once
// per parked request; release lets them all through and may be called twice.
func (f *fakeAPI) hold(method, path string) (<-chan struct{}, func()) {
	hd := &hold{arrived: make(chan struct{}, 16), release: make(chan struct{})}
	f.mu.Lock()
	f.holds[method+" "+path] = hd
	f.mu.Unlock()
	return hd.arrived, func() { hd.once.Do(func() { close(hd.release) }) }
}

func (f *fakeAPI) record(r *http.Request) apiCall {
	call := apiCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err == nil {
			call.Form = url.Values(r.MultipartForm.Value)
			for _, fh := range r.MultipartForm.File["images"] {
				call.Files = append(call.Files, fh.Filename)
			}
		}
	} else if r.Body != nil {
		call.Body, _ = io.ReadAll(r.Body)
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	return call
}

// callsTo returns the recorded calls matching method and path.
func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	call := f.record(r)

	f.mu.Lock()
	status, failing := f.failures[r.Method+" "+r.URL.Path]
	hd := f.holds[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if hd != nil {
		select {
		case hd.arrived <- struct{}{}:
		default:
		}
		select {
		case <-hd.release:
		case <-r.Context().Done():
			return
		}
	}
	if failing {
		writeJSON(w, status, map[string]string{"message": "upstream said no"})
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/users/login":
		var body map[string]string
		_ = json.Unmarshal(call.Body, &body)
		if body["identifier"] == "alice" && body["password"] == "x" {
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{
				"id": 7, "username": "alice", "email": "alice@example.com", "role": "admin",
			}})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		writeJSON(w, http.StatusOK, f.users)
	case r.Method == http.MethodGet && (r.URL.Path == "/projects/users" || r.URL.Path == "/tas/users"):
		writeJSON(w, http.StatusOK, f.users[1:])
	case r.Method == http.MethodGet && r.URL.Path == "/projects":
		writeJSON(w, http.StatusOK, f.projects)
	case r.Method == http.MethodGet && r.URL.Path == "/tas/projects":
		writeJSON(w, http.StatusOK, []model.ProjectRef{{ID: "1", ProjectName: "Bridge"}})
	case r.Method == http.MethodGet && r.URL.Path == "/tasks":
		writeJSON(w, http.StatusOK, f.tasks)
	case r.Method == http.MethodGet && r.URL.Path == "/tasks/11":
		writeJSON(w, http.StatusOK, f.tasks[0])
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/tasks/assigned/"):
		writeJSON(w, http.StatusOK, f.tasks)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/project/assigned/"):
		writeJSON(w, http.StatusOK, f.projects)
	case r.Method == http.MethodGet && r.URL.Path == reports.PathProjectOverview:
		writeJSON(w, http.StatusOK, []map[string]any{{
			"project_name": "Bridge", "status": "in_progress", "start_date": "2024-03-01",
			"end_date": "2024-09-30", "assigned_user": "bob", "task_completion_rate": 42.5,
		}})
	case r.Method == http.MethodGet && r.URL.Path == reports.PathUserPerformance:
		writeJSON(w, http.StatusOK, []map[string]any{{
			"username": "bob", "total_tasks": 4, "completed_tasks": 1, "delayed_tasks": 0, "completion_rate": 25,
		}})
	case r.Method == http.MethodGet && (r.URL.Path == reports.PathProjectStatus || r.URL.Path == reports.PathRecentUpdates):
		writeJSON(w, http.StatusOK, []any{})
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testEnv wires handlers to the fake API, the real templates and an
// in-memory session manager.
type testEnv struct {
	api        *fakeAPI
	client     *apiclient.Client
	sm         *scs.SessionManager
	sessions   *session.Store
	renderer   *render.Renderer
	dashboards *reports.Registry
	lookups    *cache.Lookups
	uploads    *Uploads
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := newFakeAPI(t)

	client, err := apiclient.New(apiclient.Options{BaseURL: api.srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)

	sm := scs.New()
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	require.NoError(t, err)

	mem := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mem.Close() })

	return &testEnv{
		api:        api,
		client:     client,
		sm:         sm,
		sessions:   session.NewStore(sm),
		renderer:   renderer,
		dashboards: reports.NewRegistry(client, testutil.TestLoggerSilent(), 0),
		lookups:    cache.NewLookups(client, mem, time.Minute, nil),
		uploads:    NewUploads(imaging.NewProcessor(1920), 10<<20),
	}
}

var (
	adminSession  = &session.Session{UserID: "7", Username: "alice", Role: model.RoleAdmin}
	memberSession = &session.Session{UserID: "8", Username: "bob", Role: model.RoleEngineer}
)

// serve runs h behind the session manager with sess loaded into the request
// context, optionally routed through pattern so chi URL params resolve.
func (e *testEnv) serve(t *testing.T, h http.HandlerFunc, pattern string, req *http.Request, sess *session.Session) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(e.sm.LoadAndSave)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if sess != nil {
				req = req.WithContext(middleware.WithSession(req.Context(), *sess))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Handle(pattern, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// flashOf follows a redirect response's session cookie and returns the flash
// message stored in it.
func (e *testEnv) flashOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == e.sm.Cookie.Name {
			token = c.Value
		}
	}
	require.NotEmpty(t, token, "response carries no session cookie")

	ctx, err := e.sm.Load(context.Background(), token)
	require.NoError(t, err)
	return e.sm.GetString(ctx, "flash")
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
