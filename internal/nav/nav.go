// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav maps console roles to their sidebar entries.
package nav

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/taskdesk/internal/model"
)

//go:embed nav.yaml
var defaultTable []byte

// Entry is one sidebar link.
type Entry struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
}

// Table holds the ordered entries of every role.
type Table struct {
	roles map[model.Role][]Entry
}

// Default returns the built-in table. It panics if the embedded file is malformed,
// which tests catch.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("nav: embedded table: %v", err))
	}
	return t
}

// Parse decodes a YAML table and checks it is well formed.
func Parse(data []byte) (*Table, error) {
	var raw map[string][]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding nav table: %w", err)
	}

	t := &Table{roles: make(map[model.Role][]Entry, len(raw))}
	for name, entries := range raw {
		role := model.Role(name)
		if !role.Valid() {
			return nil, fmt.Errorf("nav table: unknown role %q", name)
		}
		seen := make(map[string]bool, len(entries))
		for i, e := range entries {
			if !strings.HasPrefix(e.Path, "/") || e.Label == "" {
				return nil, fmt.Errorf("nav table: role %s entry %d needs an absolute path and a label", name, i)
			}
			if seen[e.Path] {
				return nil, fmt.Errorf("nav table: role %s lists %s twice", name, e.Path)
			}
			seen[e.Path] = true
		}
		t.roles[role] = entries
	}

	if _, ok := t.roles[model.DefaultRole]; !ok {
		return nil, fmt.Errorf("nav table: default role %q has no entries", model.DefaultRole)
	}
	return t, nil
}

// ForRole returns the entries for role. Unknown or empty roles get the default
// role's entries. The result is a copy.
func (t *Table) ForRole(role model.Role) []Entry {
	entries, ok := t.roles[role]
	if !ok {
		entries = t.roles[model.DefaultRole]
	}
	return slices.Clone(entries)
}

// Paths returns every distinct path in the table, sorted.
func (t *Table) Paths() []string {
	set := make(map[string]struct{})
	for _, entries := range t.roles {
		for _, e := range entries {
			set[e.Path] = struct{}{}
		}
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Validate reports entries whose path is not among routes.
func (t *Table) Validate(routes []string) error {
	declared := make(map[string]bool, len(routes))
	for _, r := range routes {
		declared[r] = true
	}

	var missing []string
	for _, p := range t.Paths() {
		if !declared[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("nav table references undeclared routes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsActive reports whether entry e should be highlighted for currentPath.
func IsActive(e Entry, currentPath string) bool {
	return currentPath == e.Path || strings.HasPrefix(currentPath, e.Path+"/")
}
