// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olegiv/taskdesk/internal/model"
)

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.GetJSON(ctx, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ProjectAssignableUsers returns the users a project can be assigned to.
func (c *Client) ProjectAssignableUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.GetJSON(ctx, "/projects/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateProject creates a project with optional images.
func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput, images []File) error {
	return c.sendMultipart(ctx, http.MethodPost, "/projects", in.Fields(), "images", images, nil)
}

// UpdateProject replaces a project's fields and appends images.
func (c *Client) UpdateProject(ctx context.Context, id string, in model.ProjectInput, images []File) error {
	return c.sendMultipart(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), in.Fields(), "images", images, nil)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

// AssignedProjects returns the projects assigned to userID.
func (c *Client) AssignedProjects(ctx context.Context, userID string) ([]model.Project, error) {
	var projects []model.Project
	if err := c.GetJSON(ctx, "/project/assigned/"+url.PathEscape(userID), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateAssignedProject sets the status of one of userID's projects and uploads images.
func (c *Client) UpdateAssignedProject(ctx context.Context, userID, projectID, status string, images []File) error {
	fields := [][2]string{
		{"status", status},
		{"project_id", projectID},
	}
	return c.sendMultipart(ctx, http.MethodPut, "/project/assigned/"+url.PathEscape(userID), fields, "images", images, nil)
}
