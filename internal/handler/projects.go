// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/cache"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/uikit"
)

// ProjectsHandler handles project management routes.
type ProjectsHandler struct {
	api      *apiclient.Client
	renderer *render.Renderer
	lookups  *cache.Lookups
	uploads  *Uploads
}

// NewProjectsHandler creates a new ProjectsHandler. lookups may be nil, in
// which case assignee lists are fetched on every request.
func NewProjectsHandler(api *apiclient.Client, renderer *render.Renderer, lookups *cache.Lookups, uploads *Uploads) *ProjectsHandler {
	return &ProjectsHandler{api: api, renderer: renderer, lookups: lookups, uploads: uploads}
}

// ProjectRow is a project with its assignee resolved to a name.
type ProjectRow struct {
	model.Project
	AssignedName string
}

// ProjectsListData holds data for the projects list template.
type ProjectsListData struct {
	Projects   []ProjectRow
	Pagination uikit.Pagination
	Error      string
}

// ProjectFormData holds data for the project form template.
type ProjectFormData struct {
	ID       string
	Project  model.ProjectInput
	Images   []string
	Users    []model.User
	Statuses []string
	IsEdit   bool
	Error    string
}

// List handles GET /projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	var data ProjectsListData

	projects, err := h.api.ListProjects(r.Context())
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		data.Error = "Error fetching projects"
	}

	var names map[model.ID]string
	if users, err := h.assignees(r.Context()); err != nil {
		slog.Warn("failed to load project assignees", "error", err)
	} else {
		names = usernames(users)
	}

	page, pagination := uikit.Paginate(r, projects, RouteProjects)
	data.Pagination = pagination
	data.Projects = make([]ProjectRow, 0, len(page))
	for _, p := range page {
		data.Projects = append(data.Projects, ProjectRow{Project: p, AssignedName: nameOr(names, p.AssignedUser)})
	}

	renderPage(w, r, h.renderer, tmplProjects, render.PageData{
		Title:       "Manage Projects",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Projects", RouteProjects),
		Data:        data,
	})
}

// NewForm handles GET /projects/new.
func (h *ProjectsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, ProjectFormData{
		Project: model.ProjectInput{Status: model.ProjectStatusPlanning},
	})
}

// Create handles POST /projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, images, ok := h.readForm(w, r, ProjectFormData{})
	if !ok {
		return
	}

	if err := h.api.CreateProject(r.Context(), in, images); err != nil {
		slog.Error("failed to create project", "error", err, "project", in.ProjectName)
		h.renderForm(w, r, http.StatusUnprocessableEntity, ProjectFormData{
			Project: in,
			Error:   apiclient.Message(err, "Error adding project"),
		})
		return
	}

	h.invalidate(r)
	slog.Info("project created", "project", in.ProjectName, "images", len(images), "created_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectProjects, "Project added successfully")
}

// EditForm handles GET /projects/{id}/edit.
func (h *ProjectsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	projects, err := h.api.ListProjects(r.Context())
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		flashError(w, r, h.renderer, redirectProjects, "Error fetching projects")
		return
	}
	p, ok := findByID(projects, id, func(p model.Project) model.ID { return p.ID })
	if !ok {
		flashError(w, r, h.renderer, redirectProjects, "Project not found")
		return
	}

	h.renderForm(w, r, http.StatusOK, ProjectFormData{
		ID:      id,
		IsEdit:  true,
		Images:  p.Images,
		Project: projectInput(p),
	})
}

// Update handles POST /projects/{id}.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	in, images, ok := h.readForm(w, r, ProjectFormData{ID: id, IsEdit: true})
	if !ok {
		return
	}

	if err := h.api.UpdateProject(r.Context(), id, in, images); err != nil {
		slog.Error("failed to update project", "error", err, "project_id", id)
		h.renderForm(w, r, http.StatusUnprocessableEntity, ProjectFormData{
			ID:      id,
			IsEdit:  true,
			Project: in,
			Error:   apiclient.Message(err, "Error updating project"),
		})
		return
	}

	h.invalidate(r)
	slog.Info("project updated", "project_id", id, "images", len(images), "updated_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectProjects, "Project updated successfully")
}

// Delete handles POST /projects/{id}/delete.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	if err := h.api.DeleteProject(r.Context(), id); err != nil {
		slog.Error("failed to delete project", "error", err, "project_id", id)
		flashError(w, r, h.renderer, redirectProjects, apiclient.Message(err, "Error deleting project"))
		return
	}

	h.invalidate(r)
	slog.Info("project deleted", "project_id", id, "deleted_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectProjects, "Project deleted successfully")
}

// readForm parses the multipart project form and normalizes its images.
// On failure it re-renders the form described by base and returns false.
func (h *ProjectsHandler) readForm(w http.ResponseWriter, r *http.Request, base ProjectFormData) (model.ProjectInput, []apiclient.File, bool) {
	if err := h.uploads.Parse(w, r); err != nil {
		slog.Warn("invalid project form", "error", err)
		base.Error = msgInvalidForm
		h.renderForm(w, r, http.StatusBadRequest, base)
		return model.ProjectInput{}, nil, false
	}

	in := projectInputFromForm(r)
	base.Project = in

	if in.ProjectName == "" {
		base.Error = "Project name is required"
		h.renderForm(w, r, http.StatusUnprocessableEntity, base)
		return in, nil, false
	}
	if !model.ValidProjectStatus(in.Status) {
		base.Error = "Invalid project status"
		h.renderForm(w, r, http.StatusUnprocessableEntity, base)
		return in, nil, false
	}

	images, err := h.uploads.Images(r)
	if err != nil {
		slog.Warn("rejected project image", "error", err)
		base.Error = "Images must be JPEG, PNG, GIF or WebP files"
		h.renderForm(w, r, http.StatusUnprocessableEntity, base)
		return in, nil, false
	}
	return in, images, true
}

func (h *ProjectsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data ProjectFormData) {
	data.Statuses = model.ProjectStatuses
	users, err := h.assignees(r.Context())
	if err != nil {
		slog.Error("failed to load project assignees", "error", err)
		if data.Error == "" {
			data.Error = "Error fetching users"
		}
	}
	data.Users = users

	title, crumb := "Add New Project", "New"
	if data.IsEdit {
		title, crumb = "Edit Project", "Edit"
	}
	renderPageStatus(w, r, h.renderer, status, tmplProjectForm, render.PageData{
		Title:       title,
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Projects", RouteProjects, crumb, r.URL.Path),
		Data:        data,
	})
}

func (h *ProjectsHandler) assignees(ctx context.Context) ([]model.User, error) {
	if h.lookups != nil {
		return h.lookups.ProjectAssignees(ctx)
	}
	return h.api.ProjectAssignableUsers(ctx)
}

func (h *ProjectsHandler) invalidate(r *http.Request) {
	if h.lookups != nil {
		h.lookups.InvalidateProjects(r.Context())
	}
}

func projectInputFromForm(r *http.Request) model.ProjectInput {
	return model.ProjectInput{
		ProjectName:    strings.TrimSpace(r.FormValue("project_name")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Status:         r.FormValue("status"),
		StartDate:      r.FormValue("start_date"),
		EndDate:        r.FormValue("end_date"),
		Budget:         strings.TrimSpace(r.FormValue("budget")),
		ProjectManager: strings.TrimSpace(r.FormValue("project_manager")),
		Location:       strings.TrimSpace(r.FormValue("location")),
		AssignedUser:   r.FormValue("assigned_user"),
	}
}

// projectInput pre-fills the edit form from a stored project.
func projectInput(p model.Project) model.ProjectInput {
	return model.ProjectInput{
		ProjectName:    p.ProjectName,
		Description:    p.Description,
		Status:         p.Status,
		StartDate:      uikit.InputDate(p.StartDate),
		EndDate:        uikit.InputDate(p.EndDate),
		Budget:         p.Budget,
		ProjectManager: p.ProjectManager,
		Location:       p.Location,
		AssignedUser:   p.AssignedUser.String(),
	}
}
