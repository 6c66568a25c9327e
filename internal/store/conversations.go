// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore holds the conversation list (newest first) and the
// id of the conversation currently open in the chat view. All mutating
// operations take the write lock for their whole duration, so a
// replace-by-id observed mid-refresh can never interleave with a
// remove-by-id.
type ConversationStore struct {
	mu      sync.RWMutex
	convs   []model.Conversation
	current string
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// SetAll replaces the whole list, preserving newest-first order as
// given. The current id is kept if it still resolves, cleared if not.
func (s *ConversationStore) SetAll(convs []model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs = make([]model.Conversation, len(convs))
	for i := range convs {
		s.convs[i] = *convs[i].Clone()
	}
	if s.current != "" && s.indexOf(s.current) < 0 {
		s.current = ""
	}
}

// Prepend inserts a newly created conversation at the head and makes
// it current.
func (s *ConversationStore) Prepend(conv model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs = append([]model.Conversation{*conv.Clone()}, s.convs...)
	s.current = conv.ConversationID
}

// ReplaceByID swaps the stored conversation with the same id for the
// given one, atomically. Unknown ids are prepended rather than
// dropped: a conversation the backend knows about belongs in the list.
func (s *ConversationStore) ReplaceByID(conv model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(conv.ConversationID); i >= 0 {
		s.convs[i] = *conv.Clone()
		return
	}
	s.convs = append([]model.Conversation{*conv.Clone()}, s.convs...)
}

// RemoveByID deletes the conversation, clearing the current id if it
// pointed at the removed one.
func (s *ConversationStore) RemoveByID(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(conversationID)
	if i < 0 {
		return
	}
	s.convs = append(s.convs[:i], s.convs[i+1:]...)
	if s.current == conversationID {
		s.current = ""
	}
}

// AppendMessageToCurrent adds a message to the current conversation's
// transcript. No-op when nothing is current. Used for the optimistic
// echo of the user's own message before the backend confirms it.
func (s *ConversationStore) AppendMessageToCurrent(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(s.current)
	if i < 0 {
		return
	}
	s.convs[i].AppendMessage(msg)
}

// SetCurrent selects the conversation open in the chat view. An empty
// id deselects.
func (s *ConversationStore) SetCurrent(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = conversationID
}

// CurrentID returns the selected conversation id, or "".
func (s *ConversationStore) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current returns a copy of the selected conversation, or nil.
func (s *ConversationStore) Current() *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(s.current)
	if i < 0 {
		return nil
	}
	return s.convs[i].Clone()
}

// Get returns a copy of the conversation with the given id, or nil.
func (s *ConversationStore) Get(conversationID string) *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(conversationID)
	if i < 0 {
		return nil
	}
	return s.convs[i].Clone()
}

// All returns a snapshot of the list, newest first.
func (s *ConversationStore) All() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Conversation, len(s.convs))
	for i := range s.convs {
		out[i] = *s.convs[i].Clone()
	}
	return out
}

// Len returns the number of stored conversations.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

// Clear drops everything, for sign-out.
func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs = nil
	s.current = ""
}

// indexOf finds a conversation position by id. Caller holds the lock.
func (s *ConversationStore) indexOf(conversationID string) int {
	if conversationID == "" {
		return -1
	}
	for i := range s.convs {
		if s.convs[i].ConversationID == conversationID {
			return i
		}
	}
	return -1
}
