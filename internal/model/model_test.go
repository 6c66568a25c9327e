// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"
)

// =============================================================================
// PROFILE TESTS
// =============================================================================

func TestProfileMergeKeepsExistingFields(t *testing.T) {
	base := UserProfile{
		Nickname:  "Luna",
		BirthYear: IntPtr(1993),
		BirthCity: "Shanghai",
	}

	merged := base.Merge(UserProfile{
		BirthMonth: IntPtr(4),
		BirthDay:   IntPtr(12),
	})

	if merged.Nickname != "Luna" {
		t.Errorf("Nickname lost in merge: %q", merged.Nickname)
	}
	if merged.BirthYear == nil || *merged.BirthYear != 1993 {
		t.Error("BirthYear lost in merge")
	}
	if merged.BirthMonth == nil || *merged.BirthMonth != 4 {
		t.Error("BirthMonth not applied")
	}
	if merged.BirthCity != "Shanghai" {
		t.Errorf("BirthCity lost in merge: %q", merged.BirthCity)
	}
}

func TestProfileMergeOverwritesSetFields(t *testing.T) {
	base := UserProfile{Nickname: "Old", BirthHour: IntPtr(3)}
	merged := base.Merge(UserProfile{Nickname: "New", BirthHour: IntPtr(15)})

	if merged.Nickname != "New" {
		t.Errorf("expected Nickname overwrite, got %q", merged.Nickname)
	}
	if merged.BirthHour == nil || *merged.BirthHour != 15 {
		t.Error("expected BirthHour overwrite")
	}
}

func TestProfileJSONOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(UserProfile{Nickname: "Luna"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"nickname":"Luna"}` {
		t.Errorf("unset fields leaked into JSON: %s", data)
	}
}

// =============================================================================
// DRAW REQUEST TESTS
// =============================================================================

func TestDrawCardsRequestValid(t *testing.T) {
	tests := []struct {
		name string
		req  DrawCardsRequest
		want bool
	}{
		{"single no positions", DrawCardsRequest{SpreadType: SpreadSingle, CardCount: 1}, true},
		{"three card with positions", DrawCardsRequest{
			SpreadType: SpreadThreeCard,
			CardCount:  3,
			Positions:  []string{"past", "present", "future"},
		}, true},
		{"position count mismatch", DrawCardsRequest{
			SpreadType: SpreadThreeCard,
			CardCount:  3,
			Positions:  []string{"past", "future"},
		}, false},
		{"zero cards", DrawCardsRequest{SpreadType: SpreadCustom, CardCount: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// MESSAGE VISIBILITY TESTS
// =============================================================================

func TestVisibleMessagesFiltersHiddenTurns(t *testing.T) {
	conv := &Conversation{
		ConversationID: "c1",
		SessionType:    SessionTarot,
		Messages: []Message{
			{Role: RoleSystem, Content: "persona prompt"},
			{Role: RoleAssistant, Content: "Welcome, seeker."},
			{Role: RoleUser, Content: "please interpret", Kind: KindSynthetic},
			{Role: RoleAssistant, Content: "The cards say..."},
			{Role: RoleUser, Content: "tell me more"},
		},
	}

	visible := conv.VisibleMessages()
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible messages, got %d", len(visible))
	}
	if visible[0].Content != "Welcome, seeker." {
		t.Errorf("unexpected first visible message: %q", visible[0].Content)
	}
	if visible[2].Content != "tell me more" {
		t.Errorf("unexpected last visible message: %q", visible[2].Content)
	}
}

func TestConversationCloneIsDeep(t *testing.T) {
	conv := &Conversation{
		ConversationID: "c1",
		Messages:       []Message{{Role: RoleUser, Content: "hi"}},
	}

	clone := conv.Clone()
	clone.Messages[0].Content = "changed"
	clone.AppendMessage(NewUserMessage("extra"))

	if conv.Messages[0].Content != "hi" {
		t.Error("clone shares message backing array with original")
	}
	if len(conv.Messages) != 1 {
		t.Error("appending to clone grew the original")
	}
}

func TestNewUserMessageTimestamp(t *testing.T) {
	before := time.Now()
	msg := NewUserMessage("hello")
	if msg.Role != RoleUser {
		t.Errorf("expected user role, got %s", msg.Role)
	}
	if msg.Timestamp.Before(before.Add(-time.Second)) {
		t.Error("timestamp not set to now")
	}
}

// =============================================================================
// DECK TESTS
// =============================================================================

func TestDeckHas78DenseIDs(t *testing.T) {
	if len(Deck) != DeckSize {
		t.Fatalf("deck has %d cards, want %d", len(Deck), DeckSize)
	}
	for i, card := range Deck {
		if card.ID != i {
			t.Errorf("card at index %d has ID %d", i, card.ID)
		}
		if card.Name == "" {
			t.Errorf("card %d has empty name", i)
		}
	}
}

func TestDeckSuitBoundaries(t *testing.T) {
	tests := []struct {
		id   int
		name string
		suit Suit
	}{
		{0, "The Fool", SuitMajor},
		{21, "The World", SuitMajor},
		{22, "Ace of Wands", SuitWands},
		{35, "King of Wands", SuitWands},
		{36, "Ace of Cups", SuitCups},
		{50, "Ace of Swords", SuitSwords},
		{64, "Ace of Pentacles", SuitPentacles},
		{77, "King of Pentacles", SuitPentacles},
	}

	for _, tt := range tests {
		info, ok := CardByID(tt.id)
		if !ok {
			t.Errorf("CardByID(%d) not found", tt.id)
			continue
		}
		if info.Name != tt.name {
			t.Errorf("card %d = %q, want %q", tt.id, info.Name, tt.name)
		}
		if info.Suit != tt.suit {
			t.Errorf("card %d suit = %q, want %q", tt.id, info.Suit, tt.suit)
		}
	}
}

func TestCardNameFallsBackToBackendName(t *testing.T) {
	name := CardName(TarotCard{CardID: 999, CardName: "Mystery"})
	if name != "Mystery" {
		t.Errorf("expected backend fallback name, got %q", name)
	}

	name = CardName(TarotCard{CardID: 0, CardName: "whatever"})
	if name != "The Fool" {
		t.Errorf("expected reference name, got %q", name)
	}
}
