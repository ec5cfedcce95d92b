// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "v1.0.0",
		GitCommit: "abc1234",
		BuildTime: "2025-01-30T12:00:00Z",
	}

	want := "taskdesk v1.0.0 (commit: abc1234, built: 2025-01-30T12:00:00Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewDefaults(t *testing.T) {
	info := New("", "", "")

	if info.Version != "dev" {
		t.Errorf("Version = %q, want %q", info.Version, "dev")
	}
	if info.GitCommit != "unknown" {
		t.Errorf("GitCommit = %q, want %q", info.GitCommit, "unknown")
	}
	if info.BuildTime != "unknown" {
		t.Errorf("BuildTime = %q, want %q", info.BuildTime, "unknown")
	}
}

func TestNewKeepsValues(t *testing.T) {
	info := New("v2.1.0", "deadbee", "2026-03-01T00:00:00Z")

	if info.Version != "v2.1.0" || info.GitCommit != "deadbee" || info.BuildTime != "2026-03-01T00:00:00Z" {
		t.Errorf("New() = %+v, want values preserved", info)
	}
}
