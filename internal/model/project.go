// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Project statuses accepted by the API.
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusDelayed    = "delayed"
)

// ProjectStatuses lists project statuses in form order.
var ProjectStatuses = []string{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusDelayed,
}

// Project is a project record.
type Project struct {
	ID             ID       `json:"id"`
	ProjectName    string   `json:"project_name"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Budget         string   `json:"budget"`
	ProjectManager string   `json:"project_manager"`
	Location       string   `json:"location"`
	AssignedUser   ID       `json:"assigned_user"`
	Images         []string `json:"images"`
}

// ProjectInput holds the multipart form fields of a project create or update.
type ProjectInput struct {
	ProjectName    string
	Description    string
	Status         string
	StartDate      string
	EndDate        string
	Budget         string
	ProjectManager string
	Location       string
	AssignedUser   string
}

// Fields returns the form fields in a stable order.
func (p ProjectInput) Fields() [][2]string {
	return [][2]string{
		{"project_name", p.ProjectName},
		{"description", p.Description},
		{"status", p.Status},
		{"start_date", p.StartDate},
		{"end_date", p.EndDate},
		{"budget", p.Budget},
		{"project_manager", p.ProjectManager},
		{"location", p.Location},
		{"assigned_user", p.AssignedUser},
	}
}

// ProjectRef is an entry of the task form's project picker.
type ProjectRef struct {
	ID          ID     `json:"id"`
	ProjectName string `json:"project_name"`
}
