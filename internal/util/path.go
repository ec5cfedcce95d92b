// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small helpers shared by the web layer and the report
// export paths.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFilename keeps only the base name of filename. It fails for names
// that do not denote a file ("", ".", "..", "/").
func SanitizeFilename(filename string) (string, error) {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// withinBase reports whether target resolves to base or somewhere below it.
func withinBase(base, target string) (bool, error) {
	absBase, err := filepath.Abs(filepath.Clean(base))
	if err != nil {
		return false, fmt.Errorf("invalid base path: %w", err)
	}
	absTarget, err := filepath.Abs(filepath.Clean(target))
	if err != nil {
		return false, fmt.Errorf("invalid target path: %w", err)
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(filepath.Separator)), nil
}

// SafeJoinPath joins components under base and fails when the result escapes it.
func SafeJoinPath(base string, components ...string) (string, error) {
	full := filepath.Join(append([]string{base}, components...)...)
	ok, err := withinBase(base, full)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", full, base)
	}
	return full, nil
}

// ExportPath creates dir when needed and returns the location for a file named
// name inside it. Directory parts of name are dropped.
func ExportPath(dir, name string) (string, error) {
	safe, err := SanitizeFilename(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	return SafeJoinPath(dir, safe)
}
