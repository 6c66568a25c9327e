// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client's in-memory session state: the
// authenticated user and the conversation list. Stores are the single
// writer surface for that state; readers get snapshots, never live
// references, so a backend refresh can never race a render.
package store

import (
	"sync"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// AUTH STORE
// =============================================================================

// AuthStore tracks the signed-in user. A nil user means signed out.
type AuthStore struct {
	mu   sync.RWMutex
	user *model.User
}

// NewAuthStore creates an empty, signed-out store.
func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

// SetUser replaces the current user. Pass the record the backend
// returned; the store copies it so later mutation by the caller cannot
// leak in.
func (s *AuthStore) SetUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	if u.Profile != nil {
		p := *u.Profile
		cp.Profile = &p
	}
	s.user = &cp
}

// User returns a copy of the current user, or nil when signed out.
func (s *AuthStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	if s.user.Profile != nil {
		p := *s.user.Profile
		cp.Profile = &p
	}
	return &cp
}

// UserID returns the current user id, or "" when signed out.
func (s *AuthStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.UserID
}

// IsAuthenticated reports whether a user is signed in.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Clear signs the user out.
func (s *AuthStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
