// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/taskdesk/internal/model"
)

// Keys written at sign-in and removed together at sign-out.
const (
	keyRole     = "role"
	keyUser     = "user"
	keyUsername = "username"
	keyID       = "id"
)

// Session is the signed-in user's identity as the console sees it.
type Session struct {
	UserID   model.ID
	Username string
	Role     model.Role
	User     model.User
}

// NavRole returns the role used to pick navigation entries.
func (s Session) NavRole() model.Role {
	return s.Role.OrDefault()
}

// Store is the only reader and writer of the session keys.
type Store struct {
	sm *scs.SessionManager
}

// NewStore wraps a session manager.
func NewStore(sm *scs.SessionManager) *Store {
	return &Store{sm: sm}
}

// Manager returns the underlying session manager (for LoadAndSave and flashes).
func (s *Store) Manager() *scs.SessionManager {
	return s.sm
}

// Put replaces any existing session with one for u.
func (s *Store) Put(ctx context.Context, u model.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}

	// Prevent session fixation
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	s.sm.Put(ctx, keyUser, string(raw))
	s.sm.Put(ctx, keyUsername, u.Username)
	s.sm.Put(ctx, keyRole, string(u.Role))
	s.sm.Put(ctx, keyID, u.ID.String())
	return nil
}

// Get returns the current session. ok is false when nobody is signed in.
// A session may lack a user id when the API omitted it at sign-in; callers
// that need the id check UserID themselves.
func (s *Store) Get(ctx context.Context) (Session, bool) {
	id := s.sm.GetString(ctx, keyID)
	username := s.sm.GetString(ctx, keyUsername)
	if id == "" && username == "" {
		return Session{}, false
	}

	sess := Session{
		UserID:   model.ID(id),
		Username: username,
		Role:     model.Role(s.sm.GetString(ctx, keyRole)),
	}
	if raw := s.sm.GetString(ctx, keyUser); raw != "" {
		_ = json.Unmarshal([]byte(raw), &sess.User)
	}
	return sess, true
}

// Clear removes all session keys and discards the session token.
func (s *Store) Clear(ctx context.Context) error {
	for _, k := range []string{keyRole, keyUser, keyUsername, keyID} {
		s.sm.Remove(ctx, k)
	}
	return s.sm.Destroy(ctx)
}
