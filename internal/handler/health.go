// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/model"
	"github.com/olegiv/taskdesk/internal/uikit"
	"github.com/olegiv/taskdesk/internal/version"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db        Pinger
	exportDir string
	version   version.Info
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, exportDir string, v version.Info) *HealthHandler {
	return &HealthHandler{
		db:        db,
		exportDir: exportDir,
		version:   v,
		startTime: time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the health response for signed-in callers.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
}

// Health handles GET /health.
// Anonymous callers only learn the overall status; admins also see the checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	diskCheck := h.checkDiskSpace()

	overall := "healthy"
	if dbCheck.Status != "healthy" || diskCheck.Status != "healthy" {
		overall = "degraded"
	}

	w.Header().Set(HeaderContentType, "application/json")
	if overall != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	sess, ok := middleware.GetSession(r)
	if !ok {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overall})
		return
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Version,
	}
	if sess.Role == model.RoleAdmin {
		status.Checks = map[string]Check{
			"database": dbCheck,
			"exports":  diskCheck,
		}
		if r.URL.Query().Get("verbose") == "true" {
			status.System = systemInfo()
		}
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: "healthy", Message: "Not configured"}
	}

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: "healthy", Message: "Connected", Latency: latency.String()}
}

// checkDiskSpace reports free space in the export directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if h.exportDir == "" {
		return Check{Status: "healthy", Message: "Exports disabled"}
	}
	if _, err := os.Stat(h.exportDir); os.IsNotExist(err) {
		return Check{Status: "healthy", Message: "Export directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.exportDir, &stat); err != nil {
		return Check{Status: "unhealthy", Message: "Failed to check disk space: " + err.Error()}
	}

	available := stat.Bavail * uint64(stat.Bsize)
	const minSpace = 100 * 1024 * 1024
	if available < minSpace {
		return Check{Status: "degraded", Message: "Low disk space: " + uikit.FormatBytes(int64(available)) + " available"}
	}
	return Check{Status: "healthy", Message: uikit.FormatBytes(int64(available)) + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     uikit.FormatBytes(int64(m.Alloc)),
	}
}
