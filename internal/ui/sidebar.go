// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/store"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
	"github.com/jeranaias/arcana-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// sidebarView lists the user's readings, newest first.
type sidebarView struct {
	theme  *styles.Theme
	width  int
	height int

	items   []model.Conversation
	current string
}

func newSidebarView(theme *styles.Theme) sidebarView {
	return sidebarView{theme: theme}
}

func (s *sidebarView) resize(width, height int) {
	s.width = width
	s.height = height
}

// reload snapshots the store.
func (s *sidebarView) reload(convs *store.ConversationStore) {
	s.items = convs.All()
	s.current = convs.CurrentID()
}

// move shifts the selection and returns the newly selected id, or ""
// when there is nothing to move to.
func (s *sidebarView) move(delta int, convs *store.ConversationStore) string {
	if len(s.items) == 0 {
		return ""
	}
	idx := 0
	for i := range s.items {
		if s.items[i].ConversationID == s.current {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		idx = len(s.items) - 1
	}
	if idx >= len(s.items) {
		idx = 0
	}
	s.current = s.items[idx].ConversationID
	return s.current
}

func (s *sidebarView) view(height int) string {
	if s.width == 0 {
		return ""
	}
	t := s.theme
	var b strings.Builder
	b.WriteString(t.HeaderTitle.Render("Readings"))
	b.WriteString("\n\n")

	if len(s.items) == 0 {
		b.WriteString(t.SidebarEmptyHint.Render("No readings yet."))
	}

	maxItems := height - 4
	for i, conv := range s.items {
		if i >= maxItems {
			break
		}
		line := util.TruncateWidth(conv.DisplayTitle(), s.width-6)
		tag := t.SidebarSessionType.Render("[" + conv.SessionType.DisplayName() + "] ")
		if conv.ConversationID == s.current {
			b.WriteString(t.SidebarItemSelected.Render("▸ " + line))
		} else {
			b.WriteString(t.SidebarItem.Render("  " + line))
		}
		b.WriteString("\n")
		b.WriteString("  " + tag)
		b.WriteString("\n")
	}

	return t.Sidebar.Width(s.width).Height(height).Render(b.String())
}
