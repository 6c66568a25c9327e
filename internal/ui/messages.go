// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface: an authentication
// screen, a session picker with a conversation sidebar, the chat
// transcript, the card drawer, and the birth-profile form. All state
// of record lives in the stores; the UI holds only presentation state.
package ui

import (
	"github.com/jeranaias/arcana-tui/internal/api"
	"github.com/jeranaias/arcana-tui/internal/orchestrator"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// FlowNoticeMsg wraps an orchestrator notice delivered through
// Program.Send. One notice, one message: ordering is preserved.
type FlowNoticeMsg struct {
	Notice orchestrator.Notice
}

// flowFinishedMsg reports that a blocking flow command returned.
type flowFinishedMsg struct {
	err error
}

// authFinishedMsg reports that a sign-in, registration, or guest
// creation attempt completed.
type authFinishedMsg struct {
	err error
}

// signedOutMsg reports that a sign-out (and, for guests, account
// deletion) completed.
type signedOutMsg struct {
	err error
}

// profileSavedMsg reports that a profile submission flow completed.
type profileSavedMsg struct {
	err error
}

// conversationOpenedMsg reports that a conversation selected from the
// sidebar finished loading.
type conversationOpenedMsg struct {
	conversationID string
	err            error
}

// exportedMsg reports a finished transcript export.
type exportedMsg struct {
	path string
}

// zodiacMsg carries the sun sign currently in season for the status
// bar. A nil info means the lookup failed and nothing is shown.
type zodiacMsg struct {
	info *api.ZodiacInfo
}

// profileStatusMsg reports which birth fields the backend still needs.
type profileStatusMsg struct {
	missing string
}

// clearStatusMsg expires a transient status-bar message.
type clearStatusMsg struct{}
