// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"

	"github.com/jeranaias/arcana-tui/internal/api"
	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// LOOKUPS
// =============================================================================

// CurrentZodiac returns the sun sign currently in season. Decorative;
// callers should treat a failure as "don't show it".
func (o *Orchestrator) CurrentZodiac(ctx context.Context) (*api.ZodiacInfo, error) {
	return o.client.CurrentZodiac(ctx)
}

// ProfileStatus reports whether the signed-in user has the birth data
// chart computation needs, and what is still missing.
func (o *Orchestrator) ProfileStatus(ctx context.Context) (*api.ProfileStatus, error) {
	userID := o.auth.UserID()
	if userID == "" {
		return nil, ErrNotSignedIn
	}
	return o.client.CheckProfile(ctx, userID)
}

// verifyDeck cross-checks the embedded card table against the
// backend's canonical list. A mismatch means the binary is out of date
// relative to the server; readings still work, so it is only logged.
func (o *Orchestrator) verifyDeck(ctx context.Context) {
	names, err := o.client.AllCardNames(ctx)
	if err != nil {
		o.logger.Printf("orchestrator: card list fetch failed: %v", err)
		return
	}
	if len(names) != 0 && len(names) != model.DeckSize {
		o.logger.Printf("orchestrator: backend deck has %d cards, client has %d", len(names), model.DeckSize)
	}
}
