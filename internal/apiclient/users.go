// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/olegiv/taskdesk/internal/model"
)

// ErrEmptyLogin is returned when the login response has no user.
var ErrEmptyLogin = errors.New("login response has no user")

// Login exchanges credentials for the signed-in user.
func (c *Client) Login(ctx context.Context, identifier, password string) (model.User, error) {
	body := map[string]string{"identifier": identifier, "password": password}
	var resp struct {
		User *model.User `json:"user"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/users/login", body, &resp); err != nil {
		return model.User{}, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return model.User{}, ErrEmptyLogin
	}
	return *resp.User, nil
}

// ListUsers returns all accounts.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.GetJSON(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RegisterUser creates an account. An empty role registers a member.
func (c *Client) RegisterUser(ctx context.Context, in model.UserInput) error {
	if in.Role == "" {
		in.Role = model.RoleMember
	}
	return c.sendJSON(ctx, http.MethodPost, "/users/register", in, nil)
}

// UpdateUser changes username, email and role. The password is never sent.
func (c *Client) UpdateUser(ctx context.Context, id string, in model.UserInput) error {
	in.Password = ""
	return c.sendJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), in, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}
