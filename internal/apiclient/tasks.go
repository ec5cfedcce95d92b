// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/olegiv/taskdesk/internal/model"
)

// ListTasks returns all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.GetJSON(ctx, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	if err := c.GetJSON(ctx, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) error {
	return c.sendJSON(ctx, http.MethodPost, "/tasks", in.WithDefaults(), nil)
}

// UpdateTask replaces a task.
func (c *Client) UpdateTask(ctx context.Context, id string, in model.TaskInput) error {
	return c.sendJSON(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), in, nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// TaskAssignableUsers returns the users a task can be assigned to.
func (c *Client) TaskAssignableUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.GetJSON(ctx, "/tas/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// TaskProjects returns the projects a task can belong to.
func (c *Client) TaskProjects(ctx context.Context) ([]model.ProjectRef, error) {
	var projects []model.ProjectRef
	if err := c.GetJSON(ctx, "/tas/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// AssignedTasks returns the tasks assigned to userID.
func (c *Client) AssignedTasks(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.GetJSON(ctx, "/tasks/assigned/"+url.PathEscape(userID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskStatus sets a task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.sendJSON(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id)+"/status", body, nil)
}
