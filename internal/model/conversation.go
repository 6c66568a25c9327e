// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/arcana-tui/internal/util"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// SessionType selects which AI persona a conversation talks to.
type SessionType string

const (
	SessionTarot     SessionType = "tarot"
	SessionAstrology SessionType = "astrology"
	// SessionChat is reserved by the backend and not offered in the UI.
	SessionChat SessionType = "chat"
)

// DisplayName returns a human-readable persona name.
func (s SessionType) DisplayName() string {
	switch s {
	case SessionTarot:
		return "Tarot Reading"
	case SessionAstrology:
		return "Astrology"
	default:
		return string(s)
	}
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a backend-owned conversation record. Messages are
// append-only from the client's view; insertion order is conversation
// order.
type Conversation struct {
	ConversationID string      `json:"conversation_id"`
	UserID         string      `json:"user_id"`
	SessionType    SessionType `json:"session_type"`
	Title          string      `json:"title"`
	Messages       []Message   `json:"messages"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	IsCompleted    bool        `json:"is_completed"`
	HasDrawnCards  bool        `json:"has_drawn_cards"`
}

// VisibleMessages returns the turns that should be rendered, skipping
// system turns and synthetic trigger turns.
func (c *Conversation) VisibleMessages() []Message {
	visible := make([]Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.Hidden() {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

// LastMessage returns the most recent turn, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// AppendMessage adds a locally constructed turn. Used only for the
// optimistic user-message append; the next refresh replaces the whole
// message list with the backend's authoritative copy.
func (c *Conversation) AppendMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// DisplayTitle returns the title or a persona-based fallback.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return util.TruncateRunes(c.Title, 40)
	}
	return c.SessionType.DisplayName()
}

// Clone returns a deep copy. Store snapshots hand these out so callers
// can never mutate shared state through a returned pointer.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}
