// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uikit provides reusable template helpers, pagination logic and
// small view model types for the console's server-rendered pages.
package uikit

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// DisplayDateLayout is how dates are shown in tables and documents.
const DisplayDateLayout = "1/2/2006"

// InputDateLayout is the value format of <input type="date">.
const InputDateLayout = "2006-01-02"

// ParseAPIDate accepts the date shapes the remote API emits: a bare
// YYYY-MM-DD or an RFC 3339 timestamp.
func ParseAPIDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if len(s) >= len(InputDateLayout) {
		if t, err := time.Parse(InputDateLayout, s[:len(InputDateLayout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate formats an API date as M/D/YYYY, "-" when empty and the raw
// value when it cannot be parsed.
func DisplayDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := ParseAPIDate(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDateLayout)
}

// InputDate formats an API date for a date input, "" when unparseable.
func InputDate(s string) string {
	t, ok := ParseAPIDate(s)
	if !ok {
		return ""
	}
	return t.Format(InputDateLayout)
}

// TemplateFuncs returns a template.FuncMap with pure helper functions.
//
// Callers merge project-specific functions on top:
//
//	funcs := uikit.TemplateFuncs()
//	funcs["myFunc"] = myProjectFunc
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"truncate": func(s string, length int) string {
			r := []rune(s)
			if len(r) <= length {
				return s
			}
			return string(r[:length]) + "..."
		},
		"join": strings.Join,

		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(start, end int) []int {
			var result []int
			for i := start; i <= end; i++ {
				result = append(result, i)
			}
			return result
		},

		"displayDate": DisplayDate,
		"inputDate":   InputDate,
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},

		"formatBytes": FormatBytes,

		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 MB".
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
