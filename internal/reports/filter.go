// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Query parameter names shared by the four report endpoints and the dashboard form.
const (
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
)

// ISODate is the wire format of filter dates.
const ISODate = "2006-01-02"

// Filter is an optional date range applied identically to all four datasets.
// A zero Start or End means that bound is open.
type Filter struct {
	Start time.Time
	End   time.Time
}

// Active reports whether any bound is set.
func (f Filter) Active() bool {
	return !f.Start.IsZero() || !f.End.IsZero()
}

// Params returns the query parameters for the set bounds only.
func (f Filter) Params() url.Values {
	v := url.Values{}
	if !f.Start.IsZero() {
		v.Set(ParamStartDate, f.Start.Format(ISODate))
	}
	if !f.End.IsZero() {
		v.Set(ParamEndDate, f.End.Format(ISODate))
	}
	return v
}

// StartValue returns the start bound as YYYY-MM-DD, or "".
func (f Filter) StartValue() string {
	if f.Start.IsZero() {
		return ""
	}
	return f.Start.Format(ISODate)
}

// EndValue returns the end bound as YYYY-MM-DD, or "".
func (f Filter) EndValue() string {
	if f.End.IsZero() {
		return ""
	}
	return f.End.Format(ISODate)
}

// RangeLabel returns the header line shown for an active filter, using
// "Start" and "End" for open bounds.
func (f Filter) RangeLabel() string {
	start, end := "Start", "End"
	if !f.Start.IsZero() {
		start = f.Start.Format(DisplayDateLayout)
	}
	if !f.End.IsZero() {
		end = f.End.Format(DisplayDateLayout)
	}
	return fmt.Sprintf("Date Range: %s to %s", start, end)
}

// ErrInvertedRange is returned by ParseFilter when the end date precedes the start date.
var ErrInvertedRange = errors.New("end date is before start date")

// ParseFilter reads start_date and end_date from q. Blank values are open bounds.
// Both bounds set requires End not before Start.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	var err error
	if f.Start, err = parseDate(q.Get(ParamStartDate)); err != nil {
		return Filter{}, fmt.Errorf("invalid %s: %w", ParamStartDate, err)
	}
	if f.End, err = parseDate(q.Get(ParamEndDate)); err != nil {
		return Filter{}, fmt.Errorf("invalid %s: %w", ParamEndDate, err)
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return Filter{}, ErrInvertedRange
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(ISODate, s)
}
