// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

// ProjectOverview is a row of /reports/project-overview.
type ProjectOverview struct {
	ProjectName        Field `json:"project_name"`
	Status             Field `json:"status"`
	StartDate          Field `json:"start_date"`
	EndDate            Field `json:"end_date"`
	AssignedUser       Field `json:"assigned_user"`
	TaskCompletionRate Field `json:"task_completion_rate"`
}

// Cells returns the "Project Details" columns.
func (r ProjectOverview) Cells() []string {
	return []string{
		r.ProjectName.Or(),
		r.Status.Or(),
		formatDate(r.StartDate),
		formatDate(r.EndDate),
		r.AssignedUser.Or(),
		formatPercent(r.TaskCompletionRate),
	}
}

// Progress returns the completion rate clamped to 0..100 for progress bars.
func (r ProjectOverview) Progress() float64 {
	return clampPercent(r.TaskCompletionRate)
}

// UserPerformance is a row of /reports/user-performance.
type UserPerformance struct {
	Username       Field `json:"username"`
	TotalTasks     Field `json:"total_tasks"`
	CompletedTasks Field `json:"completed_tasks"`
	DelayedTasks   Field `json:"delayed_tasks"`
	CompletionRate Field `json:"completion_rate"`
}

// Cells returns the "Team Performance" columns.
func (r UserPerformance) Cells() []string {
	return []string{
		r.Username.Or(),
		r.TotalTasks.Or(),
		r.CompletedTasks.Or(),
		r.DelayedTasks.Or(),
		formatPercent(r.CompletionRate),
	}
}

// Progress returns the completion rate clamped to 0..100 for progress bars.
func (r UserPerformance) Progress() float64 {
	return clampPercent(r.CompletionRate)
}

// ProjectStatus is a row of /reports/project-status.
type ProjectStatus struct {
	ProjectID            Field `json:"project_id"`
	ProjectName          Field `json:"project_name"`
	CompletionPercentage Field `json:"completion_percentage"`
	DaysRemaining        Field `json:"days_remaining"`
	ProjectStatus        Field `json:"project_status"`
	CompletedTasks       Field `json:"completed_tasks"`
	TotalTasks           Field `json:"total_tasks"`
}

// Cells returns the "Project Status Overview" columns.
func (r ProjectStatus) Cells() []string {
	return []string{
		r.ProjectName.Or(),
		formatPercent(r.CompletionPercentage),
		formatDaysLeft(r.DaysRemaining),
		r.ProjectStatus.Or(),
		formatRatio(r.CompletedTasks, r.TotalTasks),
	}
}

// Overdue reports whether the project is past its end date.
func (r ProjectStatus) Overdue() bool {
	v, ok := r.DaysRemaining.Float()
	return ok && v < 0
}

// Progress returns the completion percentage clamped to 0..100 for progress bars.
func (r ProjectStatus) Progress() float64 {
	return clampPercent(r.CompletionPercentage)
}

// RecentUpdate is a row of /reports/recent-updates.
type RecentUpdate struct {
	Month           Field `json:"month"`
	ProjectsUpdated Field `json:"projects_updated"`
}

// Cells returns the "Recent Updates" columns.
func (r RecentUpdate) Cells() []string {
	return []string{
		r.Month.Or(),
		r.ProjectsUpdated.Or(),
	}
}

func clampPercent(f Field) float64 {
	v, ok := f.Float()
	switch {
	case !ok || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
