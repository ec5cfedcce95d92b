// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Placeholder is rendered for any value that is missing or unusable.
const Placeholder = "-"

// Field is one primitive value of a report row. Report endpoints are loose about
// types (counts arrive as numbers or strings), so a Field keeps the textual form
// and whether the key was present at all.
type Field struct {
	text  string
	num   float64
	isNum bool
	set   bool
}

// Text returns a string Field.
func Text(s string) Field {
	f := Field{text: s, set: true}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		f.num, f.isNum = v, true
	}
	return f
}

// Num returns a numeric Field.
func Num(v float64) Field {
	return Field{text: strconv.FormatFloat(v, 'f', -1, 64), num: v, isNum: true, set: true}
}

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*f = Field{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Text(s)
	case b[0] == '{' || b[0] == '[':
		// Nested values are not rendered; treat as missing.
		*f = Field{}
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*f = Field{text: string(b), set: true}
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		v, _ := n.Float64()
		*f = Field{text: n.String(), num: v, isNum: true, set: true}
	}
	return nil
}

// MarshalJSON writes the value back in its original kind.
func (f Field) MarshalJSON() ([]byte, error) {
	switch {
	case !f.set:
		return []byte("null"), nil
	case f.isNum && f.text == strconv.FormatFloat(f.num, 'f', -1, 64):
		return []byte(f.text), nil
	default:
		return json.Marshal(f.text)
	}
}

// IsSet reports whether the field was present and non-null.
func (f Field) IsSet() bool {
	return f.set
}

// String returns the raw text, empty when unset.
func (f Field) String() string {
	return f.text
}

// Float returns the numeric value when the field is a number or numeric text.
func (f Field) Float() (float64, bool) {
	return f.num, f.set && f.isNum
}

// Or returns the raw text, or Placeholder when the field is missing or blank.
func (f Field) Or() string {
	return formatOr(f, func(f Field) (string, bool) {
		return f.text, strings.TrimSpace(f.text) != ""
	})
}

// formatOr applies format to f and falls back to Placeholder when f is unset or
// format rejects it. Every exported cell goes through here, so a malformed row
// renders placeholders instead of failing the document.
func formatOr(f Field, format func(Field) (string, bool)) string {
	if !f.set {
		return Placeholder
	}
	s, ok := format(f)
	if !ok {
		return Placeholder
	}
	return s
}

// formatPercent renders "x%".
func formatPercent(f Field) string {
	return formatOr(f, func(f Field) (string, bool) {
		t := strings.TrimSpace(f.text)
		return t + "%", t != ""
	})
}

// formatDaysLeft renders "Overdue" for negative values and "N days" otherwise.
func formatDaysLeft(f Field) string {
	return formatOr(f, func(f Field) (string, bool) {
		v, ok := f.Float()
		if !ok {
			return "", false
		}
		if v < 0 {
			return "Overdue", true
		}
		return strings.TrimSpace(f.text) + " days", true
	})
}

// formatRatio renders "done/total"; either side missing gives the placeholder.
func formatRatio(done, total Field) string {
	if !done.set || !total.set {
		return Placeholder
	}
	return done.Or() + "/" + total.Or()
}

// dateLayouts are the date shapes the API has been seen to emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DisplayDateLayout is used for every date shown to users (M/D/YYYY).
const DisplayDateLayout = "1/2/2006"

// formatDate renders a date as M/D/YYYY. Unparseable text is shown as-is.
func formatDate(f Field) string {
	return formatOr(f, func(f Field) (string, bool) {
		raw := strings.TrimSpace(f.text)
		if raw == "" {
			return "", false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(DisplayDateLayout), true
			}
		}
		return raw, true
	})
}
