// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterParams(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   url.Values
	}{
		{name: "unfiltered", filter: Filter{}, want: url.Values{}},
		{name: "start only", filter: Filter{Start: date(2024, 1, 5)}, want: url.Values{"start_date": {"2024-01-05"}}},
		{name: "end only", filter: Filter{End: date(2024, 2, 1)}, want: url.Values{"end_date": {"2024-02-01"}}},
		{
			name:   "both",
			filter: Filter{Start: date(2024, 1, 5), End: date(2024, 2, 1)},
			want:   url.Values{"start_date": {"2024-01-05"}, "end_date": {"2024-02-01"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Params())
			assert.Equal(t, len(tt.want) > 0, tt.filter.Active())
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{"start_date": {"2024-01-05"}, "end_date": {" "}})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 5), f.Start)
	assert.True(t, f.End.IsZero())
	assert.Equal(t, "2024-01-05", f.StartValue())
	assert.Equal(t, "", f.EndValue())

	_, err = ParseFilter(url.Values{"end_date": {"01/05/2024"}})
	assert.Error(t, err)

	empty, err := ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.False(t, empty.Active())
}

func TestParseFilter_EndBeforeStart(t *testing.T) {
	_, err := ParseFilter(url.Values{"start_date": {"2024-03-10"}, "end_date": {"2024-03-01"}})
	assert.ErrorIs(t, err, ErrInvertedRange)

	same, err := ParseFilter(url.Values{"start_date": {"2024-03-10"}, "end_date": {"2024-03-10"}})
	require.NoError(t, err)
	assert.Equal(t, same.Start, same.End)

	_, err = ParseFilter(url.Values{"end_date": {"2024-03-01"}})
	assert.NoError(t, err, "an open start accepts any end")
}

func TestFilterRangeLabel(t *testing.T) {
	assert.Equal(t, "Date Range: 1/5/2024 to 2/1/2024",
		Filter{Start: date(2024, 1, 5), End: date(2024, 2, 1)}.RangeLabel())
	assert.Equal(t, "Date Range: Start to 2/1/2024", Filter{End: date(2024, 2, 1)}.RangeLabel())
	assert.Equal(t, "Date Range: 1/5/2024 to End", Filter{Start: date(2024, 1, 5)}.RangeLabel())
}
