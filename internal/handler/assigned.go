// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/uikit"
)

// AssignedHandler serves the member and engineer self-service pages.
type AssignedHandler struct {
	api      *apiclient.Client
	renderer *render.Renderer
	uploads  *Uploads
}

// NewAssignedHandler creates a new AssignedHandler.
func NewAssignedHandler(api *apiclient.Client, renderer *render.Renderer, uploads *Uploads) *AssignedHandler {
	return &AssignedHandler{api: api, renderer: renderer, uploads: uploads}
}

// AssignedProjectsData holds data for the assigned projects template.
type AssignedProjectsData struct {
	Projects []model.Project
	Statuses []string
	Error    string
}

// AssignedTasksData holds data for the assigned tasks template.
type AssignedTasksData struct {
	Tasks    []model.Task
	Statuses []string
	Error    string
}

// Projects handles GET /assignedproject.
func (h *AssignedHandler) Projects(w http.ResponseWriter, r *http.Request) {
	data := AssignedProjectsData{Statuses: model.ProjectStatuses}

	userID := currentSession(r).UserID
	if userID == "" {
		data.Error = msgUserIDNotFound
	} else {
		projects, err := h.api.AssignedProjects(r.Context(), userID.String())
		if err != nil {
			slog.Error("failed to list assigned projects", "error", err, "user_id", userID)
			data.Error = "Error fetching assigned projects"
		}
		data.Projects = projects
	}

	renderPage(w, r, h.renderer, tmplAssignedProjects, render.PageData{
		Title:       "Your Projects",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Your Projects", RouteAssignedProjects),
		Data:        data,
	})
}

// UpdateProject handles POST /assignedproject/{id}.
func (h *AssignedHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	userID := currentSession(r).UserID
	if userID == "" {
		flashError(w, r, h.renderer, RouteAssignedProjects, msgUserIDNotFound)
		return
	}

	if err := h.uploads.Parse(w, r); err != nil {
		slog.Warn("invalid assigned project form", "error", err, "project_id", id)
		flashError(w, r, h.renderer, RouteAssignedProjects, msgInvalidForm)
		return
	}

	label := r.FormValue("project_name")
	if label == "" {
		label = "#" + id
	}

	status := r.FormValue("status")
	if status == "" {
		flashError(w, r, h.renderer, RouteAssignedProjects, fmt.Sprintf("Status is required for project %s.", label))
		return
	}
	if !model.ValidProjectStatus(status) {
		flashError(w, r, h.renderer, RouteAssignedProjects, fmt.Sprintf("Invalid status for project %s.", label))
		return
	}

	images, err := h.uploads.Images(r)
	if err != nil {
		slog.Warn("rejected assigned project image", "error", err, "project_id", id)
		flashError(w, r, h.renderer, RouteAssignedProjects, "Images must be JPEG, PNG, GIF or WebP files")
		return
	}

	if err := h.api.UpdateAssignedProject(r.Context(), userID.String(), id, status, images); err != nil {
		slog.Error("failed to update assigned project", "error", err, "project_id", id, "user_id", userID)
		flashError(w, r, h.renderer, RouteAssignedProjects,
			apiclient.Message(err, fmt.Sprintf("Error updating project %s.", label)))
		return
	}

	slog.Info("assigned project updated", "project_id", id, "status", status, "images", len(images), "user_id", userID)
	flashSuccess(w, r, h.renderer, RouteAssignedProjects, msgProjectUpdated)
}

// Tasks handles GET /assignedtask.
func (h *AssignedHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	data := AssignedTasksData{Statuses: model.TaskStatuses}

	userID := currentSession(r).UserID
	if userID == "" {
		data.Error = msgUserIDNotFound
	} else {
		tasks, err := h.api.AssignedTasks(r.Context(), userID.String())
		if err != nil {
			slog.Error("failed to list assigned tasks", "error", err, "user_id", userID)
			data.Error = "Error fetching assigned tasks"
		}
		data.Tasks = tasks
	}

	renderPage(w, r, h.renderer, tmplAssignedTasks, render.PageData{
		Title:       "Your Tasks",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Your Tasks", RouteAssignedTasks),
		Data:        data,
	})
}

// UpdateTask handles POST /assignedtask/{id}.
func (h *AssignedHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	userID := currentSession(r).UserID
	if userID == "" {
		flashError(w, r, h.renderer, RouteAssignedTasks, msgUserIDNotFound)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, RouteAssignedTasks) {
		return
	}

	status := r.FormValue("status")
	if !model.ValidTaskStatus(status) {
		flashError(w, r, h.renderer, RouteAssignedTasks, "Invalid task status")
		return
	}

	if err := h.api.UpdateTaskStatus(r.Context(), id, status); err != nil {
		slog.Error("failed to update task status", "error", err, "task_id", id, "user_id", userID)
		flashError(w, r, h.renderer, RouteAssignedTasks, apiclient.Message(err, "Error updating task status"))
		return
	}

	slog.Info("task status updated", "task_id", id, "status", status, "user_id", userID)
	flashSuccess(w, r, h.renderer, RouteAssignedTasks, msgTaskStatusUpdated)
}
