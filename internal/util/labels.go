// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Badge classes used by status and priority pills.
const (
	BadgeSuccess  = "badge-success"
	BadgeWarning  = "badge-warning"
	BadgeDanger   = "badge-danger"
	BadgeOverdue  = "badge-overdue"
	BadgeInfo     = "badge-info"
	BadgePlanning = "badge-planning"
	BadgeNeutral  = "badge-neutral"
)

var titleCaser = cases.Title(language.English)

// StatusLabel turns an API status value into display text:
// "in_progress" becomes "In Progress", "On Track" stays as it is.
func StatusLabel(status string) string {
	s := strings.TrimSpace(strings.ReplaceAll(status, "_", " "))
	if s == "" {
		return "-"
	}
	return titleCaser.String(s)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(status, "_", " ")))
}

// StatusClass returns the badge class for a project, task or report status.
func StatusClass(status string) string {
	switch normalizeStatus(status) {
	case "on track":
		return BadgeSuccess
	case "at risk":
		return BadgeWarning
	case "delayed":
		return BadgeDanger
	case "overdue":
		return BadgeOverdue
	case "completed", "in progress":
		return BadgeInfo
	case "planning":
		return BadgePlanning
	default:
		return BadgeNeutral
	}
}

// PriorityClass returns the badge class for a task priority.
func PriorityClass(priority string) string {
	switch normalizeStatus(priority) {
	case "high":
		return BadgeDanger
	case "medium":
		return BadgeWarning
	case "low":
		return BadgeSuccess
	default:
		return BadgeNeutral
	}
}

// ProgressClass colors a progress bar by status, falling back to the
// completion percentage when the status says nothing.
func ProgressClass(status string, percent float64) string {
	if c := StatusClass(status); c != BadgeNeutral {
		return c
	}
	switch {
	case percent >= 100:
		return BadgeInfo
	case percent >= 50:
		return BadgeSuccess
	default:
		return BadgeNeutral
	}
}
