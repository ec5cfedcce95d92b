// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the console's HTTP handlers: sign-in, the
// reports dashboard, the admin entity views and the assigned-work pages.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/session"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, msgInvalidForm)
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage renders a page with status 200, answering 500 if rendering fails.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, name string, data render.PageData) {
	renderPageStatus(w, r, renderer, http.StatusOK, name, data)
}

// renderPageStatus is renderPage with an explicit status code.
func renderPageStatus(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, status int, name string, data render.PageData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, "failed to render template", "template", name, "error", err)
	}
}

// currentSession returns the session loaded by middleware. Routes behind
// middleware.Auth always have one.
func currentSession(r *http.Request) session.Session {
	sess, _ := middleware.GetSession(r)
	return sess
}

// dashboardKey identifies the signed-in user's dashboard in the registry.
func dashboardKey(sess session.Session) string {
	if sess.UserID != "" {
		return "id:" + sess.UserID.String()
	}
	return "user:" + sess.Username
}

// idParam returns the {id} URL parameter.
func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// findByID returns the element of items whose id is id.
func findByID[T any](items []T, id string, idOf func(T) model.ID) (T, bool) {
	for _, it := range items {
		if idOf(it).String() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// usernames indexes users by id.
func usernames(users []model.User) map[model.ID]string {
	m := make(map[model.ID]string, len(users))
	for _, u := range users {
		m[u.ID] = u.Username
	}
	return m
}

// nameOr returns names[id], the raw id when unknown, or "-" when id is empty.
func nameOr(names map[model.ID]string, id model.ID) string {
	if id == "" {
		return "-"
	}
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.String()
}
