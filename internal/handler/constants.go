// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixEdit is the suffix for edit routes.
	RouteSuffixEdit = "/edit"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteHealth is the health probe route.
	RouteHealth = "/health"

	// RouteDashboard is the reports dashboard.
	RouteDashboard = "/dashboard"
	// RouteDashboardClear resets the report filter.
	RouteDashboardClear = RouteDashboard + "/clear"
	// RouteDashboardExport downloads the dashboard as PDF.
	RouteDashboardExport = RouteDashboard + "/export"
	// RouteDashboardExports lists scheduled exports.
	RouteDashboardExports = RouteDashboard + "/exports"

	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteProjects is the projects admin route.
	RouteProjects = "/projects"
	// RouteTasks is the tasks admin route.
	RouteTasks = "/tasks"
	// RouteAssignedProjects lists the signed-in user's projects.
	RouteAssignedProjects = "/assignedproject"
	// RouteAssignedTasks lists the signed-in user's tasks.
	RouteAssignedTasks = "/assignedtask"
)

const (
	redirectLogin    = RouteLogin
	redirectUsers    = RouteUsers
	redirectProjects = RouteProjects
	redirectTasks    = RouteTasks

	redirectUsersID    = RouteUsers + "/%s" + RouteSuffixEdit
	redirectProjectsID = RouteProjects + "/%s" + RouteSuffixEdit
	redirectTasksID    = RouteTasks + "/%s" + RouteSuffixEdit
)

// Template names.
const (
	tmplLogin            = "auth/login"
	tmplDashboard        = "admin/dashboard"
	tmplExports          = "admin/exports"
	tmplUsers            = "admin/users"
	tmplUserForm         = "admin/user_form"
	tmplProjects         = "admin/projects"
	tmplProjectForm      = "admin/project_form"
	tmplTasks            = "admin/tasks"
	tmplTaskForm         = "admin/task_form"
	tmplAssignedProjects = "admin/assigned_projects"
	tmplAssignedTasks    = "admin/assigned_tasks"
)

// User-visible messages.
const (
	msgInvalidCredentials = "Invalid username/email or password"
	msgUserIDNotFound     = "User ID not found"
	msgInvalidForm        = "Invalid form data"
	msgProjectUpdated     = "Project updated successfully"
	msgTaskStatusUpdated  = "Task status updated successfully"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
