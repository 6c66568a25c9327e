// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/url"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// TAROT ENDPOINTS
// =============================================================================

// drawCardsResponse wraps the cards drawn by the backend.
type drawCardsResponse struct {
	Cards []model.TarotCard `json:"cards"`
}

// DrawCards performs the requested spread for the conversation. The
// backend records the draw on the conversation; callers re-fetch to
// see it.
func (c *Client) DrawCards(ctx context.Context, persona Persona, conversationID string, draw *model.DrawCardsRequest) ([]model.TarotCard, error) {
	q := url.Values{"conversation_id": {conversationID}}
	var resp drawCardsResponse
	if err := c.doJSON(ctx, "POST", persona.drawPath(), q, draw, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

// AllCardNames fetches the backend's canonical 78-card name list as a
// bare array, indexed by card id. Used to cross-check the local deck
// table.
func (c *Client) AllCardNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, "GET", "/api/tarot/cards", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}
