// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/cache"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/uikit"
)

// UsersHandler handles user management routes.
type UsersHandler struct {
	api      *apiclient.Client
	renderer *render.Renderer
	lookups  *cache.Lookups
}

// NewUsersHandler creates a new UsersHandler. lookups may be nil.
func NewUsersHandler(api *apiclient.Client, renderer *render.Renderer, lookups *cache.Lookups) *UsersHandler {
	return &UsersHandler{api: api, renderer: renderer, lookups: lookups}
}

// UsersListData holds data for the users list template.
type UsersListData struct {
	Users         []model.User
	CurrentUserID model.ID
	Pagination    uikit.Pagination
	Error         string
}

// UserFormData holds data for the user form template.
type UserFormData struct {
	ID     string
	User   model.UserInput
	Roles  []model.Role
	IsEdit bool
	Error  string
}

// List handles GET /users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	data := UsersListData{CurrentUserID: currentSession(r).UserID}

	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		data.Error = "Error fetching users"
	}
	data.Users, data.Pagination = uikit.Paginate(r, users, RouteUsers)

	renderPage(w, r, h.renderer, tmplUsers, render.PageData{
		Title:       "Manage Users",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Users", RouteUsers),
		Data:        data,
	})
}

// NewForm handles GET /users/new.
func (h *UsersHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, UserFormData{User: model.UserInput{Role: model.RoleMember}})
}

// Create handles POST /users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteUsers+RouteSuffixNew) {
		return
	}

	in := userInputFromForm(r)
	if err := h.api.RegisterUser(r.Context(), in); err != nil {
		slog.Error("failed to create user", "error", err, "username", in.Username)
		in.Password = ""
		h.renderForm(w, r, http.StatusUnprocessableEntity, UserFormData{
			User:  in,
			Error: apiclient.Message(err, "Error adding user"),
		})
		return
	}

	h.invalidate(r)
	slog.Info("user created", "username", in.Username, "role", in.Role, "created_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectUsers, "User added successfully")
}

// EditForm handles GET /users/{id}/edit.
func (h *UsersHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		flashError(w, r, h.renderer, redirectUsers, "Error fetching users")
		return
	}
	user, ok := findByID(users, id, func(u model.User) model.ID { return u.ID })
	if !ok {
		flashError(w, r, h.renderer, redirectUsers, "User not found")
		return
	}

	h.renderForm(w, r, http.StatusOK, UserFormData{
		ID:     id,
		IsEdit: true,
		User: model.UserInput{
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	})
}

// Update handles POST /users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if !parseFormOrRedirect(w, r, h.renderer, fmt.Sprintf(redirectUsersID, id)) {
		return
	}

	in := userInputFromForm(r)
	if err := h.api.UpdateUser(r.Context(), id, in); err != nil {
		slog.Error("failed to update user", "error", err, "user_id", id)
		in.Password = ""
		h.renderForm(w, r, http.StatusUnprocessableEntity, UserFormData{
			ID:     id,
			IsEdit: true,
			User:   in,
			Error:  apiclient.Message(err, "Error updating user"),
		})
		return
	}

	h.invalidate(r)
	slog.Info("user updated", "user_id", id, "role", in.Role, "updated_by", currentSession(r).UserID)
	flashSuccess(w, r, h.renderer, redirectUsers, "User updated successfully")
}

// Delete handles POST /users/{id}/delete.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	sess := currentSession(r)

	// Prevent self-deletion
	if sess.UserID != "" && sess.UserID.String() == id {
		flashError(w, r, h.renderer, redirectUsers, "You cannot delete your own account")
		return
	}

	if err := h.api.DeleteUser(r.Context(), id); err != nil {
		slog.Error("failed to delete user", "error", err, "user_id", id)
		flashError(w, r, h.renderer, redirectUsers, apiclient.Message(err, "Error deleting user"))
		return
	}

	h.invalidate(r)
	slog.Info("user deleted", "user_id", id, "deleted_by", sess.UserID)
	flashSuccess(w, r, h.renderer, redirectUsers, "User deleted successfully")
}

func (h *UsersHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data UserFormData) {
	data.Roles = model.Roles
	title, crumb := "Add New User", "New"
	if data.IsEdit {
		title, crumb = "Edit User", "Edit"
	}
	renderPageStatus(w, r, h.renderer, status, tmplUserForm, render.PageData{
		Title:       title,
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Users", RouteUsers, crumb, r.URL.Path),
		Data:        data,
	})
}

func (h *UsersHandler) invalidate(r *http.Request) {
	if h.lookups != nil {
		h.lookups.InvalidateUsers(r.Context())
	}
}

// userInputFromForm reads the user form. Unknown roles become member.
func userInputFromForm(r *http.Request) model.UserInput {
	return model.UserInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     model.Role(r.FormValue("role")).OrDefault(),
	}
}
