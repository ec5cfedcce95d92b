// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/model"
)

func labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	tests := []struct {
		role model.Role
		want []string
	}{
		{model.RoleAdmin, []string{"Dashboard", "Manage Users", "Projects", "Tasks"}},
		{model.RoleMember, []string{"Dashboard", "Your Projects", "Your Tasks"}},
		{model.RoleEngineer, []string{"Dashboard", "Your Projects", "Your Tasks"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, labels(tbl.ForRole(tt.role)))
		})
	}
}

func TestForRoleUnknownIsDeterministic(t *testing.T) {
	tbl := Default()
	member := tbl.ForRole(model.RoleMember)

	for _, role := range []model.Role{"", "superuser", "ADMIN", "guest"} {
		got := tbl.ForRole(role)
		assert.Equal(t, member, got, "role %q", role)
		assert.Equal(t, got, tbl.ForRole(role), "role %q must give the same list twice", role)
	}
}

func TestForRoleReturnsCopy(t *testing.T) {
	tbl := Default()

	got := tbl.ForRole(model.RoleAdmin)
	got[0].Label = "changed"

	assert.Equal(t, "Dashboard", tbl.ForRole(model.RoleAdmin)[0].Label)
}

func TestAdminOnlyEntries(t *testing.T) {
	tbl := Default()

	assert.Contains(t, labels(tbl.ForRole(model.RoleAdmin)), "Manage Users")
	assert.NotContains(t, labels(tbl.ForRole(model.RoleMember)), "Manage Users")
	assert.NotContains(t, labels(tbl.ForRole("unknown")), "Manage Users")
}

func TestValidate(t *testing.T) {
	tbl := Default()

	routes := []string{"/login", "/dashboard", "/users", "/projects", "/tasks", "/assignedproject", "/assignedtask"}
	require.NoError(t, tbl.Validate(routes))

	err := tbl.Validate([]string{"/dashboard", "/users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/assignedtask")
	assert.Contains(t, err.Error(), "/projects")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "admin: ["},
		{"unknown role", "member:\n  - {path: /a, label: A}\nroot:\n  - {path: /b, label: B}\n"},
		{"relative path", "member:\n  - {path: dashboard, label: Dashboard}\n"},
		{"missing label", "member:\n  - {path: /dashboard}\n"},
		{"duplicate path", "member:\n  - {path: /a, label: A}\n  - {path: /a, label: B}\n"},
		{"no default role", "admin:\n  - {path: /a, label: A}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestIsActive(t *testing.T) {
	e := Entry{Path: "/projects", Label: "Projects"}

	assert.True(t, IsActive(e, "/projects"))
	assert.True(t, IsActive(e, "/projects/12"))
	assert.False(t, IsActive(e, "/projectsx"))
	assert.False(t, IsActive(e, "/tasks"))
}
