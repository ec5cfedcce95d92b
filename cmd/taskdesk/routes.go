// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/taskdesk/internal/config"
	"github.com/olegiv/taskdesk/internal/handler"
	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/nav"
	"github.com/olegiv/taskdesk/internal/session"
	"github.com/olegiv/taskdesk/internal/telemetry"
	"github.com/olegiv/taskdesk/web"
)

// requestTimeout bounds a request, including the report fan-out and PDF render.
const requestTimeout = 30 * time.Second

// handlers groups every page handler the router mounts.
type handlers struct {
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	users     *handler.UsersHandler
	projects  *handler.ProjectsHandler
	tasks     *handler.TasksHandler
	assigned  *handler.AssignedHandler
	health    *handler.HealthHandler
}

// routerDeps is what newRouter needs besides the handlers.
type routerDeps struct {
	cfg      *config.Config
	sm       *scs.SessionManager
	sessions *session.Store
	lp       *middleware.LoginProtection
	limiter  *middleware.UserRateLimiter
	nav      *nav.Table
}

// crudHandlers defines the standard CRUD handler methods.
type crudHandlers struct {
	List     http.HandlerFunc
	NewForm  http.HandlerFunc
	Create   http.HandlerFunc
	EditForm http.HandlerFunc
	Update   http.HandlerFunc
	Delete   http.HandlerFunc
}

// registerCRUD registers the admin routes of a resource.
// Routes: GET base, GET base/new, POST base, GET base/{id}/edit,
// POST base/{id}, POST base/{id}/delete
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + handler.RouteParamID
	r.Get(base, h.List)
	r.Get(base+handler.RouteSuffixNew, h.NewForm)
	r.Post(base, h.Create)
	r.Get(baseID+handler.RouteSuffixEdit, h.EditForm)
	r.Post(baseID, h.Update) // HTML forms can't send PUT
	r.Post(baseID+handler.RouteSuffixDelete, h.Delete)
}

// apiOrigin returns scheme://host of the API, which serves project images.
func apiOrigin(apiBaseURL string) string {
	u, err := url.Parse(apiBaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// newRouter builds the console's route tree. The nav table is checked against
// the declared routes so a sidebar entry can never point at a 404.
func newRouter(d routerDeps, h handlers) (chi.Router, error) {
	isDev := d.cfg.IsDevelopment()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RedirectSlashes)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev, apiOrigin(d.cfg.APIBaseURL))))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(telemetry.Middleware("taskdesk"))

	// Static assets skip sessions and CSRF.
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return nil, fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Group(func(r chi.Router) {
		r.Use(d.sm.LoadAndSave)
		r.Use(middleware.LoadSession(d.sessions))
		r.Use(middleware.SkipCSRF(handler.RouteHealth))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(d.cfg.SessionSecret), isDev, d.cfg.ServerAddr())))

		r.Get(handler.RouteHealth, h.health.Health)

		r.Get(handler.RouteRoot, h.auth.Root)
		r.Get(handler.RouteLogin, h.auth.LoginForm)
		r.With(d.lp.Middleware()).Post(handler.RouteLogin, h.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(d.limiter.Middleware())

			r.Post(handler.RouteLogout, h.auth.Logout)

			r.Get(handler.RouteDashboard, h.dashboard.Dashboard)
			r.Post(handler.RouteDashboardClear, h.dashboard.ClearFilter)
			r.Get(handler.RouteDashboardExport, h.dashboard.Export)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get(handler.RouteDashboardExports, h.dashboard.Exports)
				r.Get(handler.RouteDashboardExports+"/{name}", h.dashboard.DownloadExport)

				registerCRUD(r, handler.RouteUsers, crudHandlers{
					List:     h.users.List,
					NewForm:  h.users.NewForm,
					Create:   h.users.Create,
					EditForm: h.users.EditForm,
					Update:   h.users.Update,
					Delete:   h.users.Delete,
				})
				registerCRUD(r, handler.RouteProjects, crudHandlers{
					List:     h.projects.List,
					NewForm:  h.projects.NewForm,
					Create:   h.projects.Create,
					EditForm: h.projects.EditForm,
					Update:   h.projects.Update,
					Delete:   h.projects.Delete,
				})
				registerCRUD(r, handler.RouteTasks, crudHandlers{
					List:     h.tasks.List,
					NewForm:  h.tasks.NewForm,
					Create:   h.tasks.Create,
					EditForm: h.tasks.EditForm,
					Update:   h.tasks.Update,
					Delete:   h.tasks.Delete,
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireMember())

				r.Get(handler.RouteAssignedProjects, h.assigned.Projects)
				r.Post(handler.RouteAssignedProjects+handler.RouteParamID, h.assigned.UpdateProject)
				r.Get(handler.RouteAssignedTasks, h.assigned.Tasks)
				r.Post(handler.RouteAssignedTasks+handler.RouteParamID, h.assigned.UpdateTask)
			})
		})
	})

	routes, err := routePatterns(r)
	if err != nil {
		return nil, err
	}
	if err := d.nav.Validate(routes); err != nil {
		return nil, err
	}
	return r, nil
}

// routePatterns lists the GET route patterns of r.
func routePatterns(r chi.Routes) ([]string, error) {
	var patterns []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodGet {
			patterns = append(patterns, strings.TrimSuffix(route, "/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking routes: %w", err)
	}
	return patterns, nil
}
