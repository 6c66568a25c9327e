// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// CONVERSATION ENDPOINTS
// =============================================================================

// createConversationRequest is the body for POST /api/conversations.
type createConversationRequest struct {
	SessionType model.SessionType `json:"session_type"`
}

// updateTitleRequest is the body for PUT /api/conversations/title.
type updateTitleRequest struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

// ExitResult reports whether the backend persisted session notes on
// conversation exit.
type ExitResult struct {
	NotebookUpdated bool `json:"notebook_updated"`
}

// CreateConversation creates a new conversation for the user with the
// given persona.
func (c *Client) CreateConversation(ctx context.Context, userID string, sessionType model.SessionType) (*model.Conversation, error) {
	query := url.Values{"user_id": {userID}}
	var conv model.Conversation
	req := createConversationRequest{SessionType: sessionType}
	if err := c.doJSON(ctx, http.MethodPost, "/api/conversations", query, req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversation fetches a fully hydrated conversation.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/api/conversations/"+conversationID, nil, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations fetches all conversations belonging to a user,
// most recent first.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/api/conversations/user/"+userID, nil, nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// UpdateTitle renames a conversation and returns the updated record.
func (c *Client) UpdateTitle(ctx context.Context, conversationID, title string) (*model.Conversation, error) {
	var conv model.Conversation
	req := updateTitleRequest{ConversationID: conversationID, Title: title}
	if err := c.doJSON(ctx, http.MethodPut, "/api/conversations/title", nil, req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// DeleteConversation permanently removes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/conversations/"+conversationID, nil, nil, nil)
}

// ExitConversation notifies the backend that the user left the
// conversation so it can persist notes. Best-effort: callers log
// failures and move on.
func (c *Client) ExitConversation(ctx context.Context, conversationID string) (*ExitResult, error) {
	var result ExitResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/conversations/"+conversationID+"/exit", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
