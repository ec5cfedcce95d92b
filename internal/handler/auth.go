// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/session"
)

// Authenticator exchanges credentials for a user. *apiclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (model.User, error)
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	api             Authenticator
	renderer        *render.Renderer
	sessions        *session.Store
	loginProtection *middleware.LoginProtection
	dashboards      *reports.Registry
}

// NewAuthHandler creates a new AuthHandler. lp and dashboards may be nil.
func NewAuthHandler(api Authenticator, renderer *render.Renderer, sessions *session.Store, lp *middleware.LoginProtection, dashboards *reports.Registry) *AuthHandler {
	return &AuthHandler{
		api:             api,
		renderer:        renderer,
		sessions:        sessions,
		loginProtection: lp,
		dashboards:      dashboards,
	}
}

// LoginData holds data for the login template.
type LoginData struct {
	Identifier string
	Error      string
}

// Root handles GET / by sending visitors to the dashboard or the login page.
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSession(r); ok {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
}

// LoginForm renders the login page. Signed-in users go to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSession(r); ok {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginData{})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	renderPageStatus(w, r, h.renderer, status, tmplLogin, render.PageData{
		Title: "Sign In",
		Data:  data,
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, LoginData{Error: msgInvalidForm})
		return
	}

	identifier := strings.TrimSpace(r.FormValue("identifier"))
	password := r.FormValue("password")
	data := LoginData{Identifier: identifier}

	if identifier == "" || password == "" {
		data.Error = msgInvalidCredentials
		h.renderLogin(w, r, http.StatusUnauthorized, data)
		return
	}

	clientIP := middleware.GetClientIP(r)

	// Check if the identifier is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsLocked(identifier); locked {
			slog.Warn("login attempt on locked account", "identifier", identifier, "ip", clientIP)
			data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(remaining))
			h.renderLogin(w, r, http.StatusTooManyRequests, data)
			return
		}
	}

	user, err := h.api.Login(r.Context(), identifier, password)
	if err != nil {
		h.loginFailed(w, r, data, clientIP, err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(identifier)
	}

	if err := h.sessions.Put(r.Context(), user); err != nil {
		logAndInternalError(w, "failed to store session", "error", err)
		return
	}

	ua := useragent.Parse(r.UserAgent())
	slog.Info("user logged in",
		"user_id", user.ID,
		"role", user.Role,
		"ip", clientIP,
		"browser", ua.Name,
		"os", ua.OS,
		"device", deviceType(ua),
	)

	http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
}

// loginFailed records the failure and re-renders the form. Every cause shows
// the same message.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, data LoginData, clientIP string, err error) {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError,
		errors.Is(err, apiclient.ErrEmptyLogin):
		slog.Warn("login failed", "identifier", data.Identifier, "ip", clientIP, "error", err)
	default:
		slog.Error("login request failed", "identifier", data.Identifier, "error", err)
	}

	data.Error = msgInvalidCredentials
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(data.Identifier); locked {
			slog.Warn("login locked after failed attempts", "identifier", data.Identifier, "ip", clientIP, "duration", lockDuration)
			data.Error = fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration))
			h.renderLogin(w, r, http.StatusTooManyRequests, data)
			return
		}
	}
	h.renderLogin(w, r, http.StatusUnauthorized, data)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if ok && h.dashboards != nil {
		h.dashboards.Drop(dashboardKey(sess))
	}

	if err := h.sessions.Clear(r.Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
	}
	if ok {
		slog.Info("user logged out", "user_id", sess.UserID, "username", sess.Username)
	}

	http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// formatDuration formats a lockout duration for humans, rounding up to
// whole minutes above one minute.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Round(time.Second).Seconds())
		if secs <= 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	mins := int((d + time.Minute - 1) / time.Minute)
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
