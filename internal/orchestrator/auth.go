// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// ACCOUNT FLOWS
// =============================================================================

// SignInGuest creates an anonymous guest account and loads its
// conversations, cache first.
func (o *Orchestrator) SignInGuest(ctx context.Context, profile *model.UserProfile) error {
	user, err := o.client.CreateGuest(ctx, profile)
	if err != nil {
		return err
	}
	o.adoptUser(ctx, user)
	return nil
}

// Register creates a named account and signs it in.
func (o *Orchestrator) Register(ctx context.Context, username, password string, profile *model.UserProfile) error {
	user, err := o.client.Register(ctx, username, password, profile)
	if err != nil {
		return err
	}
	o.adoptUser(ctx, user)
	return nil
}

// Login signs an existing account in.
func (o *Orchestrator) Login(ctx context.Context, username, password string) error {
	user, err := o.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	o.adoptUser(ctx, user)
	return nil
}

// ConvertToRegistered upgrades the current guest account to a named
// one, keeping its history.
func (o *Orchestrator) ConvertToRegistered(ctx context.Context, username, password string) error {
	user := o.auth.User()
	if user == nil {
		return ErrNotSignedIn
	}
	converted, err := o.client.ConvertToRegistered(ctx, user.UserID, username, password)
	if err != nil {
		return err
	}
	o.auth.SetUser(converted)
	o.notify(Notice{Kind: NoticeUserChanged})
	return nil
}

// DeleteAccount removes the account, its local cache, and all session
// state.
func (o *Orchestrator) DeleteAccount(ctx context.Context) error {
	userID := o.auth.UserID()
	if userID == "" {
		return ErrNotSignedIn
	}
	if err := o.client.DeleteUser(ctx, userID); err != nil {
		return err
	}
	if o.cache != nil {
		if err := o.cache.Delete(userID); err != nil {
			o.logger.Printf("orchestrator: cache delete failed: %v", err)
		}
	}
	o.SignOut()
	return nil
}

// SignOut clears all in-memory session state. The on-disk cache is
// kept so the account signs back in with an instant sidebar.
func (o *Orchestrator) SignOut() {
	o.auth.Clear()
	o.convs.Clear()
	o.mu.Lock()
	o.pendingDraw = nil
	o.pendingDrawConv = ""
	o.pendingProfileConv = ""
	o.mu.Unlock()
	o.notify(Notice{Kind: NoticeUserChanged})
	o.notify(Notice{Kind: NoticeConversationsChanged})
}

// adoptUser installs a freshly authenticated user and loads their
// conversations: cached list first for instant paint, then the
// backend's truth. A failed refresh leaves the cached view standing.
func (o *Orchestrator) adoptUser(ctx context.Context, user *model.User) {
	o.auth.SetUser(user)
	o.notify(Notice{Kind: NoticeUserChanged})
	o.LoadCachedConversations()
	if err := o.RefreshConversations(ctx); err != nil {
		o.logger.Printf("orchestrator: conversation refresh failed: %v", err)
	}
	o.verifyDeck(ctx)
}
