// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the console's HTML templates and executes them with
// the per-request page data: session, sidebar entries and flash message.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/nav"
	"github.com/olegiv/taskdesk/internal/session"
	"github.com/olegiv/taskdesk/internal/uikit"
	"github.com/olegiv/taskdesk/internal/util"
)

// Flash types understood by the flash partial.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// blankLinesRegex collapses runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`\r?\n([ \t]*\r?\n)+`)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	nav            *nav.Table
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Nav            *nav.Table
	IsDev          bool
}

// NavLink is a sidebar entry with its highlight state for the current page.
type NavLink struct {
	nav.Entry
	Active bool
}

// PageData holds data passed to templates.
type PageData struct {
	Title       string
	Session     session.Session
	SignedIn    bool
	Nav         []NavLink
	CurrentPath string
	Breadcrumbs []uikit.Breadcrumb
	Flash       string
	FlashType   string
	CurrentYear int
	Data        any
}

// IsAdmin reports whether the signed-in user has the admin role.
func (p PageData) IsAdmin() bool {
	return p.SignedIn && p.Session.Role == model.RoleAdmin
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		nav:            cfg.Nav,
		isDev:          cfg.IsDev,
	}
	if r.nav == nil {
		r.nav = nav.Default()
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page under admin/ with the admin layout and
// every page under auth/ with the auth layout. Pages are keyed "dir/name".
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	groups := []struct {
		dir    string
		layout string
	}{
		{"admin", "layouts/admin.html"},
		{"auth", "layouts/auth.html"},
	}

	for _, g := range groups {
		pages, err := templateFiles(templatesFS, g.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", g.dir, err)
		}

		for _, tmplPath := range pages {
			name := g.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			// Parse in order: base layout, group layout, partials, page template
			files := []string{"layouts/base.html", g.layout}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.TemplateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no templates found")
	}
	return nil
}

// templateFiles returns all .html files in a directory. A missing directory
// yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// TemplateFuncs returns the uikit helpers plus the console's own functions.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()

	funcs["statusLabel"] = util.StatusLabel
	funcs["statusClass"] = util.StatusClass
	funcs["priorityClass"] = util.PriorityClass
	funcs["progressClass"] = util.ProgressClass
	funcs["markdown"] = util.RenderMarkdown
	funcs["percent"] = func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	}
	funcs["roleLabel"] = func(role model.Role) string {
		if role == "" {
			return "-"
		}
		return util.StatusLabel(string(role))
	}
	funcs["isDev"] = func() bool { return r.isDev }

	return funcs
}

// Has reports whether a page template with name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data PageData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page template with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data PageData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	r.fill(req, &data)

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n")))
	return err
}

// fill adds the request-derived fields every page needs.
func (r *Renderer) fill(req *http.Request, data *PageData) {
	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path

	if sess, ok := middleware.GetSession(req); ok {
		data.Session = sess
		data.SignedIn = true
		data.Nav = r.navLinks(sess.NavRole(), req.URL.Path)
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), flashTypeKey)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}
}

func (r *Renderer) navLinks(role model.Role, currentPath string) []NavLink {
	entries := r.nav.ForRole(role)
	links := make([]NavLink, len(entries))
	for i, e := range entries {
		links[i] = NavLink{Entry: e, Active: nav.IsActive(e, currentPath)}
	}
	return links
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), flashKey, message)
		r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
	}
}
