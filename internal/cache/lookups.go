// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/olegiv/taskdesk/internal/model"
)

// Lookup keys. Everything the console caches lives under lookupPrefix.
const (
	lookupPrefix         = "lookup:"
	KeyProjectAssignees  = lookupPrefix + "users:project"
	KeyTaskAssignees     = lookupPrefix + "users:task"
	KeyTaskProjectPicker = lookupPrefix + "projects:task"
)

// LookupSource fetches the lists that back form pickers.
type LookupSource interface {
	ProjectAssignableUsers(ctx context.Context) ([]model.User, error)
	TaskAssignableUsers(ctx context.Context) ([]model.User, error)
	TaskProjects(ctx context.Context) ([]model.ProjectRef, error)
}

// Lookups serves picker lists from cache and collapses concurrent misses for
// the same list into one remote call.
type Lookups struct {
	src      LookupSource
	store    Cacher
	users    *TypedCache[[]model.User]
	projects *TypedCache[[]model.ProjectRef]
	group    singleflight.Group
	logger   *slog.Logger
}

// NewLookups creates a lookup cache over src.
func NewLookups(src LookupSource, store Cacher, ttl time.Duration, logger *slog.Logger) *Lookups {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookups{
		src:      src,
		store:    store,
		users:    NewTypedCache[[]model.User](store, ttl),
		projects: NewTypedCache[[]model.ProjectRef](store, ttl),
		logger:   logger,
	}
}

// ProjectAssignees returns the users a project can be assigned to.
func (l *Lookups) ProjectAssignees(ctx context.Context) ([]model.User, error) {
	return cachedList(ctx, l, l.users, KeyProjectAssignees, l.src.ProjectAssignableUsers)
}

// TaskAssignees returns the users a task can be assigned to.
func (l *Lookups) TaskAssignees(ctx context.Context) ([]model.User, error) {
	return cachedList(ctx, l, l.users, KeyTaskAssignees, l.src.TaskAssignableUsers)
}

// TaskProjects returns the project picker entries of the task form.
func (l *Lookups) TaskProjects(ctx context.Context) ([]model.ProjectRef, error) {
	return cachedList(ctx, l, l.projects, KeyTaskProjectPicker, l.src.TaskProjects)
}

// InvalidateUsers drops both assignee lists.
func (l *Lookups) InvalidateUsers(ctx context.Context) {
	l.drop(ctx, KeyProjectAssignees, KeyTaskAssignees)
}

// InvalidateProjects drops the task form's project picker.
func (l *Lookups) InvalidateProjects(ctx context.Context) {
	l.drop(ctx, KeyTaskProjectPicker)
}

// InvalidateAll drops every cached lookup.
func (l *Lookups) InvalidateAll(ctx context.Context) {
	if err := l.store.DeleteByPrefix(ctx, lookupPrefix); err != nil {
		l.logger.Warn("lookup cache flush failed", "error", err)
	}
}

func (l *Lookups) drop(ctx context.Context, keys ...string) {
	for _, k := range keys {
		if err := l.store.Delete(ctx, k); err != nil {
			l.logger.Warn("lookup cache delete failed", "key", k, "error", err)
		}
	}
}

func cachedList[T any](ctx context.Context, l *Lookups, tc *TypedCache[[]T], key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := tc.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		list, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []T{}
		}
		if err := tc.Set(ctx, key, list); err != nil {
			l.logger.Warn("lookup cache store failed", "key", key, "error", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}
