// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// =============================================================================
// CARD DRAWER
// =============================================================================

// drawerView is the overlay shown when the reading calls for a draw:
// first the invitation, then the revealed cards.
type drawerView struct {
	theme *styles.Theme

	request *model.DrawCardsRequest
	cards   []model.TarotCard

	width  int
	height int
}

func newDrawerView(theme *styles.Theme) drawerView {
	return drawerView{theme: theme}
}

func (d *drawerView) resize(width, height int) {
	d.width = width
	d.height = height
}

func (d *drawerView) setRequest(req *model.DrawCardsRequest) {
	d.request = req
	d.cards = nil
}

func (d *drawerView) setCards(cards []model.TarotCard) {
	d.cards = cards
}

func (d *drawerView) hasCards() bool {
	return len(d.cards) > 0
}

func (d *drawerView) hasRequest() bool {
	return d.request != nil
}

func (d *drawerView) reset() {
	d.request = nil
	d.cards = nil
}

func (d *drawerView) view() string {
	if d.hasCards() {
		return d.viewCards()
	}
	return d.viewInvitation()
}

// viewInvitation asks the user to draw.
func (d *drawerView) viewInvitation() string {
	t := d.theme
	var b strings.Builder

	spread := "a card"
	if d.request != nil {
		switch d.request.SpreadType {
		case model.SpreadSingle:
			spread = "one card"
		case model.SpreadThreeCard:
			spread = "three cards: past, present, future"
		case model.SpreadCelticCross:
			spread = "the Celtic Cross, ten cards"
		default:
			spread = fmt.Sprintf("%d cards", d.request.CardCount)
		}
	}

	b.WriteString(t.FormTitle.Render("The deck is ready"))
	b.WriteString("\n\n")
	b.WriteString("Focus on your question and draw " + spread + ".")
	b.WriteString("\n\n")
	b.WriteString(t.FormHint.Render("enter: draw  esc: not yet"))

	return t.DrawPrompt.Render(b.String())
}

// viewCards reveals the draw, position labels included when the
// request named them.
func (d *drawerView) viewCards() string {
	t := d.theme

	boxes := make([]string, 0, len(d.cards))
	for i, card := range d.cards {
		var b strings.Builder
		if d.request != nil && i < len(d.request.Positions) {
			b.WriteString(t.SidebarSessionType.Render(d.request.Positions[i]))
			b.WriteString("\n")
		}
		b.WriteString(t.CardName.Render(model.CardName(card)))
		if card.Reversed {
			b.WriteString("\n")
			b.WriteString(t.CardReversed.Render("reversed"))
		}
		boxes = append(boxes, t.CardBox.Render(b.String()))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	hint := t.FormHint.Render("enter: hear the interpretation")
	return lipgloss.JoinVertical(lipgloss.Center, row, "", hint)
}
