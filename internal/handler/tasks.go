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

// TasksHandler handles task management routes.
type TasksHandler struct {
	api      *apiclient.Client
	renderer *render.Renderer
	lookups  *cache.Lookups
}

// NewTasksHandler creates a new TasksHandler. lookups may be nil.
func NewTasksHandler(api *apiclient.Client, renderer *render.Renderer, lookups *cache.Lookups) *TasksHandler {
	return &TasksHandler{api: api, renderer: renderer, lookups: lookups}
}

// TaskRow is a task with its assignee and project resolved to names.
type TaskRow struct {
	model.Task
	AssignedName string
	ProjectName  string
}

// TasksListData holds data for the tasks list template.
type TasksListData struct {
	Tasks      []TaskRow
	Pagination uikit.Pagination
	Error      string
}

// TaskFormData holds data for the task form template.
type TaskFormData struct {
	ID         string
	Task       model.TaskInput
	Users      []model.User
	Projects   []model.ProjectRef
	Statuses   []string
	Priorities []string
	IsEdit     bool
	Error      string
}

// List handles GET /tasks.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	var data TasksListData

	tasks, err := h.api.ListTasks(r.Context())
	if err != nil {
		slog.Error("failed to list tasks", "error", err)
		data.Error = "Error fetching tasks"
	}

	users, projects := h.pickers(r.Context())
	userNames := usernames(users)
	projectNames := make(map[model.ID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.ProjectName
	}

	page, pagination := uikit.Paginate(r, tasks, RouteTasks)
	data.Pagination = pagination
	data.Tasks = make([]TaskRow, 0, len(page))
	for _, t := range page {
		data.Tasks = append(data.Tasks, TaskRow{
			Task:         t,
			AssignedName: nameOr(userNames, t.AssignedUser),
			ProjectName:  nameOr(projectNames, t.ProjectID),
		})
	}

	renderPage(w, r, h.renderer, tmplTasks, render.PageData{
		Title:       "Manage Tasks",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Tasks", RouteTasks),
		Data:        data,
	})
}

// NewForm handles GET /tasks/new.
func (h *TasksHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, TaskFormData{Task: model.TaskInput{}.WithDefaults()})
}

// Create handles POST /tasks.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteTasks+RouteSuffixNew) {
		return
	}

	in := taskInputFromForm(r).WithDefaults()
	in.CreatedBy = currentSession(r).UserID.String()
	if msg := validateTask(in); msg != "" {
		h.renderForm(w, r, http.StatusUnprocessableEntity, TaskFormData{Task: in, Error: msg})
		return
	}

	if err := h.api.CreateTask(r.Context(), in); err != nil {
		slog.Error("failed to create task", "error", err, "title", in.Title)
		h.renderForm(w, r, http.StatusUnprocessableEntity, TaskFormData{
			Task:  in,
			Error: apiclient.Message(err, "Error saving task"),
		})
		return
	}

	slog.Info("task created", "title", in.Title, "created_by", in.CreatedBy)
	flashSuccess(w, r, h.renderer, redirectTasks, "Task added successfully")
}

// EditForm handles GET /tasks/{id}/edit.
func (h *TasksHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	task, err := h.api.GetTask(r.Context(), id)
	if err != nil {
		slog.Error("failed to get task", "error", err, "task_id", id)
		flashError(w, r, h.renderer, redirectTasks, apiclient.Message(err, "Task not found"))
		return
	}

	h.renderForm(w, r, http.StatusOK, TaskFormData{
		ID:     id,
		IsEdit: true,
		Task: model.TaskInput{
			Title:        task.Title,
			Description:  task.Description,
			AssignedUser: task.AssignedUser.String(),
			StartDate:    uikit.InputDate(task.StartDate),
			EndDate:      uikit.InputDate(task.EndDate),
			Status:       task.Status,
			Priority:     task.Priority,
			ProjectID:    task.ProjectID.String(),
			CreatedBy:    task.CreatedBy.String(),
		},
	})
}

// Update handles POST /tasks/{id}.
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if !parseFormOrRedirect(w, r, h.renderer, redirectTasks) {
		return
	}

	in := taskInputFromForm(r).WithDefaults()
	if msg := validateTask(in); msg != "" {
		h.renderForm(w, r, http.StatusUnprocessableEntity, TaskFormData{ID: id, IsEdit: true, Task: in, Error: msg})
		return
	}

	if err := h.api.UpdateTask(r.Context(), id, in); err != nil {
		slog.Error("failed to update task", "error", err, "task_id", id)
		h.renderForm(w, r, http.StatusUnprocessableEntity, TaskFormData{
			ID:     id,
			IsEdit: true,
			Task:   in,
			Error:  apiclient.Message(err, "Error saving task"),
		})
		return
	}

	slog.Info("task updated", "task_id", id, "updated_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectTasks, "Task updated successfully")
}

// Delete handles POST /tasks/{id}/delete.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	if err := h.api.DeleteTask(r.Context(), id); err != nil {
		slog.Error("failed to delete task", "error", err, "task_id", id)
		flashError(w, r, h.renderer, redirectTasks, apiclient.Message(err, "Error deleting task"))
		return
	}

	slog.Info("task deleted", "task_id", id, "deleted_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectTasks, "Task deleted successfully")
}

func (h *TasksHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data TaskFormData) {
	data.Statuses = model.TaskStatuses
	data.Priorities = model.TaskPriorities
	data.Users, data.Projects = h.pickers(r.Context())

	title, crumb := "Add New Task", "New"
	if data.IsEdit {
		title, crumb = "Edit Task", "Edit"
	}
	renderPageStatus(w, r, h.renderer, status, tmplTaskForm, render.PageData{
		Title:       title,
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Tasks", RouteTasks, crumb, r.URL.Path),
		Data:        data,
	})
}

// pickers loads the assignee and project lists. Failures leave a list empty.
func (h *TasksHandler) pickers(ctx context.Context) ([]model.User, []model.ProjectRef) {
	var (
		users    []model.User
		projects []model.ProjectRef
		err      error
	)
	if h.lookups != nil {
		users, err = h.lookups.TaskAssignees(ctx)
	} else {
		users, err = h.api.TaskAssignableUsers(ctx)
	}
	if err != nil {
		slog.Warn("failed to load task assignees", "error", err)
	}

	if h.lookups != nil {
		projects, err = h.lookups.TaskProjects(ctx)
	} else {
		projects, err = h.api.TaskProjects(ctx)
	}
	if err != nil {
		slog.Warn("failed to load task projects", "error", err)
	}
	return users, projects
}

func taskInputFromForm(r *http.Request) model.TaskInput {
	return model.TaskInput{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  strings.TrimSpace(r.FormValue("description")),
		AssignedUser: r.FormValue("assigned_user"),
		StartDate:    r.FormValue("start_date"),
		EndDate:      r.FormValue("end_date"),
		Status:       r.FormValue("status"),
		Priority:     r.FormValue("priority"),
		ProjectID:    r.FormValue("project_id"),
		CreatedBy:    r.FormValue("created_by"),
	}
}

func validateTask(in model.TaskInput) string {
	switch {
	case in.Title == "":
		return "Title is required"
	case !model.ValidTaskStatus(in.Status):
		return "Invalid task status"
	}
	for _, p := range model.TaskPriorities {
		if p == in.Priority {
			return ""
		}
	}
	return "Invalid task priority"
}
