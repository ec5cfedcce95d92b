// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"in_progress", "In Progress"},
		{"planning", "Planning"},
		{"On Track", "On Track"},
		{"at risk", "At Risk"},
		{"  completed ", "Completed"},
		{"", "-"},
	}

	for _, tt := range tests {
		if got := StatusLabel(tt.in); got != tt.want {
			t.Errorf("StatusLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"On Track", BadgeSuccess},
		{"At Risk", BadgeWarning},
		{"Delayed", BadgeDanger},
		{"delayed", BadgeDanger},
		{"Overdue", BadgeOverdue},
		{"Completed", BadgeInfo},
		{"in_progress", BadgeInfo},
		{"In Progress", BadgeInfo},
		{"planning", BadgePlanning},
		{"Pending", BadgeNeutral},
		{"", BadgeNeutral},
	}

	for _, tt := range tests {
		if got := StatusClass(tt.in); got != tt.want {
			t.Errorf("StatusClass(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPriorityClass(t *testing.T) {
	tests := map[string]string{
		"High":   BadgeDanger,
		"Medium": BadgeWarning,
		"Low":    BadgeSuccess,
		"urgent": BadgeNeutral,
	}
	for in, want := range tests {
		if got := PriorityClass(in); got != want {
			t.Errorf("PriorityClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressClass(t *testing.T) {
	tests := []struct {
		status  string
		percent float64
		want    string
	}{
		{"At Risk", 90, BadgeWarning},
		{"", 100, BadgeInfo},
		{"", 60, BadgeSuccess},
		{"unknown", 10, BadgeNeutral},
	}
	for _, tt := range tests {
		if got := ProgressClass(tt.status, tt.percent); got != tt.want {
			t.Errorf("ProgressClass(%q, %v) = %q, want %q", tt.status, tt.percent, got, tt.want)
		}
	}
}
