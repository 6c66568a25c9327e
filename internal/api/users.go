// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// USER ENDPOINTS
// =============================================================================

// registerRequest is the body for POST /api/users/register.
type registerRequest struct {
	Username string             `json:"username"`
	Password string             `json:"password"`
	Profile  *model.UserProfile `json:"profile,omitempty"`
}

// loginRequest is the body for POST /api/users/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// convertRequest is the body for guest-to-registered conversion.
type convertRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateGuest creates an anonymous guest account, optionally seeded
// with a birth profile.
func (c *Client) CreateGuest(ctx context.Context, profile *model.UserProfile) (*model.User, error) {
	body := any(struct{}{})
	if profile != nil {
		body = profile
	}
	var user model.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/guest", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a registered account.
func (c *Client) Register(ctx context.Context, username, password string, profile *model.UserProfile) (*model.User, error) {
	var user model.User
	req := registerRequest{Username: username, Password: password, Profile: profile}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates a registered user.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	req := loginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user record by id.
func (c *Client) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+userID, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile submits a profile. The backend merges server-side and
// returns the full updated user record.
func (c *Client) UpdateProfile(ctx context.Context, userID string, profile model.UserProfile) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/"+userID+"/profile", nil, profile, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ConvertToRegistered upgrades a guest account to a registered one,
// keeping its conversations.
func (c *Client) ConvertToRegistered(ctx context.Context, userID, username, password string) (*model.User, error) {
	var user model.User
	req := convertRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/"+userID+"/convert", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser permanently removes a user and their conversations.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+userID, nil, nil, nil)
}
