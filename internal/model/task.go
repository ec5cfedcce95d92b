// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Task statuses.
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
	TaskStatusDelayed    = "Delayed"
)

// TaskStatuses lists task statuses in form order.
var TaskStatuses = []string{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusDelayed,
}

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// TaskPriorities lists priorities in form order.
var TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a task record.
type Task struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssignedUser ID     `json:"assigned_user"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	ProjectID    ID     `json:"project_id"`
	CreatedBy    ID     `json:"created_by"`

	CreatedByUsername string `json:"created_by_username,omitempty"`
}

// TaskInput is the JSON body of a task create or update.
type TaskInput struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssignedUser string `json:"assigned_user"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	ProjectID    string `json:"project_id"`
	CreatedBy    string `json:"created_by"`
}

// WithDefaults fills status and priority the way a new task form starts out.
func (t TaskInput) WithDefaults() TaskInput {
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	return t
}

// ValidTaskStatus reports whether s is an accepted task status.
func ValidTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidProjectStatus reports whether s is an accepted project status.
func ValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}
