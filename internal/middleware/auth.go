// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeySession     ContextKey = "session"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/login"

// LoadSession creates middleware that puts the current session, if any, into
// the request context. It never redirects.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := store.Get(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Auth creates middleware that requires a signed-in session.
// It redirects to the login page if there is none.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r); !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession retrieves the session loaded by LoadSession.
func GetSession(r *http.Request) (session.Session, bool) {
	sess, ok := r.Context().Value(ContextKeySession).(session.Session)
	return sess, ok
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, sess)
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// roleLevel returns a numeric level for role hierarchy.
// Higher level = more permissions. Unknown roles have level 0.
func roleLevel(role model.Role) int {
	switch role {
	case model.RoleAdmin:
		return 2
	case model.RoleEngineer, model.RoleMember:
		return 1
	default:
		return 0
	}
}

// RequireRole creates middleware that requires a minimum user role.
// Roles are hierarchical: admin > engineer = member.
// For example, RequireRole(model.RoleMember) allows admins too.
//
// The API still authorizes every call; this check keeps pages a role cannot
// use from being served at all.
func RequireRole(minRole model.Role) func(http.Handler) http.Handler {
	minLevel := roleLevel(minRole)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r)
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			if roleLevel(sess.Role) < minLevel {
				// Log 403 for security monitoring
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", sess.UserID,
					"user_role", sess.Role,
					"required_role", minRole,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that requires admin role.
// Shorthand for RequireRole(model.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// RequireMember creates middleware that requires at least member level.
// Allows admin, engineer and member users.
func RequireMember() func(http.Handler) http.Handler {
	return RequireRole(model.RoleMember)
}
