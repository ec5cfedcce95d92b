// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types exchanged with the project-tracking API,
// including users, projects, tasks and roles.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Role is a console role as reported by the API.
type Role string

// Known roles.
const (
	RoleAdmin    Role = "admin"
	RoleEngineer Role = "engineer"
	RoleMember   Role = "member"
)

// DefaultRole is used when no role is known for the current visitor.
const DefaultRole = RoleMember

// Roles lists the known roles in display order.
var Roles = []Role{RoleAdmin, RoleEngineer, RoleMember}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEngineer, RoleMember:
		return true
	default:
		return false
	}
}

// OrDefault returns r when it is a known role and DefaultRole otherwise.
func (r Role) OrDefault() Role {
	if r.Valid() {
		return r
	}
	return DefaultRole
}

// ID is a remote entity identifier. The API emits ids either as JSON numbers or
// strings; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so the API sees the type it issued.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the textual id.
func (id ID) String() string {
	return string(id)
}

// User is an account as returned by the users endpoints and by login.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserInput is the body for registering or updating a user.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}
