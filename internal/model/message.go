// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Reader"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE KIND
// =============================================================================

// Kind classifies how a message entered the conversation. The backend
// does not carry this field; the client tags messages it knows it sent
// as hidden control turns so display filtering never depends on string
// matching in the view layer.
type Kind int

const (
	// KindNormal is a regular user-visible turn.
	KindNormal Kind = iota
	// KindSynthetic is a client-generated trigger turn (draw
	// interpretation, chart-ready continuation, profile acknowledgement)
	// that must never be rendered.
	KindSynthetic
)

// =============================================================================
// TAROT TYPES
// =============================================================================

// SpreadType identifies the layout of a card draw.
type SpreadType string

const (
	SpreadSingle      SpreadType = "single"
	SpreadThreeCard   SpreadType = "three_card"
	SpreadCelticCross SpreadType = "celtic_cross"
	SpreadCustom      SpreadType = "custom"
)

// TarotCard is a single drawn card instance. CardID indexes the fixed
// 78-card reference deck; orientation is decided by the draw, not the
// deck.
type TarotCard struct {
	CardID   int    `json:"card_id"`
	CardName string `json:"card_name"`
	Reversed bool   `json:"reversed"`
}

// DrawCardsRequest describes the spread the assistant asks the
// user to fulfil. When Positions is non-empty its length must equal
// CardCount.
type DrawCardsRequest struct {
	SpreadType SpreadType `json:"spread_type"`
	CardCount  int        `json:"card_count"`
	Positions  []string   `json:"positions,omitempty"`
}

// Valid reports whether the request is internally consistent.
func (r DrawCardsRequest) Valid() bool {
	if r.CardCount <= 0 {
		return false
	}
	if len(r.Positions) > 0 && len(r.Positions) != r.CardCount {
		return false
	}
	return true
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation turn as stored by the backend, plus
// the client-local Kind tag.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Set on assistant turns that carry a completed draw.
	TarotCards  []TarotCard       `json:"tarot_cards,omitempty"`
	DrawRequest *DrawCardsRequest `json:"draw_request,omitempty"`

	// Client-local, never sent to or received from the backend.
	Kind Kind `json:"-"`
}

// NewUserMessage builds a locally constructed user turn for optimistic
// display before the backend confirms it.
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Hidden reports whether the message must be excluded from display:
// system turns and the client's own synthetic trigger turns.
func (m Message) Hidden() bool {
	return m.Role == RoleSystem || m.Kind == KindSynthetic
}

// HasCards reports whether this turn carries drawn cards.
func (m Message) HasCards() bool {
	return len(m.TarotCards) > 0
}
