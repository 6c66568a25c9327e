// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// =============================================================================
// CHAT VIEW
// =============================================================================

// inputCharLimit caps a single message.
const inputCharLimit = 2000

// quickReplies are per-session starter questions offered while the
// reading has no user turns yet. Tab cycles them into the input.
var quickReplies = map[model.SessionType][]string{
	model.SessionTarot: {
		"Draw three cards for my week ahead",
		"What should I focus on today?",
		"I have a decision to make. Can the cards help?",
	},
	model.SessionAstrology: {
		"What does my natal chart say about me?",
		"How do the current transits affect me?",
		"Tell me about my sun sign",
	},
}

// chatView renders the reading transcript and the input line.
type chatView struct {
	theme *styles.Theme

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	// renderer formats assistant markdown. Rebuilt on resize; nil
	// until the first WindowSizeMsg, in which case text passes through.
	renderer *glamour.TermRenderer

	width  int
	height int

	conv      *model.Conversation
	streaming bool
	streamBuf strings.Builder

	replies  []string
	replyIdx int
}

func newChatView(theme *styles.Theme) chatView {
	input := textinput.New()
	input.Placeholder = "Ask the cards..."
	input.CharLimit = inputCharLimit
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	return chatView{
		theme:    theme,
		viewport: viewport.New(0, 0),
		input:    input,
		spin:     spin,
	}
}

func (c *chatView) init() tea.Cmd {
	return textinput.Blink
}

func (c *chatView) resize(width, height int) {
	c.width = width
	c.height = height

	inputHeight := 3
	c.viewport.Width = width
	c.viewport.Height = height - inputHeight
	if c.viewport.Height < 1 {
		c.viewport.Height = 1
	}
	c.input.Width = width - 6

	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	); err == nil {
		c.renderer = r
	}
	c.rebuild()
}

// =============================================================================
// STREAMING
// =============================================================================

func (c *chatView) beginStream() {
	c.streaming = true
	c.streamBuf.Reset()
	c.rebuild()
}

func (c *chatView) appendChunk(content string) {
	c.streamBuf.WriteString(content)
	c.rebuild()
	c.viewport.GotoBottom()
}

func (c *chatView) endStream() {
	c.streaming = false
	c.streamBuf.Reset()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// loadTranscript swaps in a fresh conversation snapshot. Nil clears
// the view.
func (c *chatView) loadTranscript(conv *model.Conversation) {
	c.conv = conv
	c.replies = nil
	c.replyIdx = 0
	if conv != nil && !hasUserTurn(conv) {
		c.replies = quickReplies[conv.SessionType]
	}
	c.rebuild()
	c.viewport.GotoBottom()
}

// hasUserTurn reports whether the user has already asked something.
func hasUserTurn(conv *model.Conversation) bool {
	for _, msg := range conv.VisibleMessages() {
		if msg.Role == model.RoleUser {
			return true
		}
	}
	return false
}

// cycleQuickReply drops the next starter question into the input.
// Returns false when there are none to offer, so the key falls
// through to normal input handling.
func (c *chatView) cycleQuickReply() bool {
	if len(c.replies) == 0 {
		return false
	}
	c.input.SetValue(c.replies[c.replyIdx])
	c.input.CursorEnd()
	c.replyIdx = (c.replyIdx + 1) % len(c.replies)
	return true
}

// rebuild re-renders the viewport content from the snapshot plus any
// in-progress stream text.
func (c *chatView) rebuild() {
	if c.width == 0 {
		return
	}
	var b strings.Builder

	if c.conv == nil {
		b.WriteString(c.theme.SidebarEmptyHint.Render(
			"Start a reading: ctrl+t for tarot, ctrl+a for astrology."))
	} else {
		for _, msg := range c.conv.VisibleMessages() {
			b.WriteString(c.renderMessage(msg))
			b.WriteString("\n")
		}
		if len(c.replies) > 0 && !c.streaming {
			b.WriteString(c.theme.SidebarEmptyHint.Render(
				"tab cycles suggested questions:\n  " + strings.Join(c.replies, "\n  ")))
			b.WriteString("\n")
		}
	}

	if c.streaming {
		text := c.streamBuf.String()
		if text == "" {
			text = c.spin.View() + " consulting the stars..."
		}
		b.WriteString(c.theme.AssistantBubble.Width(c.bubbleWidth()).Render(text))
		b.WriteString("\n")
	}

	c.viewport.SetContent(b.String())
}

func (c *chatView) renderMessage(msg model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return c.theme.UserBubble.Width(c.bubbleWidth()).Render(msg.Content)
	default:
		body := msg.Content
		if c.renderer != nil {
			if out, err := c.renderer.Render(msg.Content); err == nil {
				body = strings.TrimRight(out, "\n")
			}
		}
		rendered := c.theme.AssistantBubble.Width(c.bubbleWidth()).Render(body)
		if msg.HasCards() {
			rendered = lipgloss.JoinVertical(lipgloss.Left, c.renderCards(msg.TarotCards), rendered)
		}
		return rendered
	}
}

// renderCards shows the cards attached to an interpretation.
func (c *chatView) renderCards(cards []model.TarotCard) string {
	boxes := make([]string, 0, len(cards))
	for _, card := range cards {
		name := c.theme.CardName.Render(model.CardName(card))
		if card.Reversed {
			name += "\n" + c.theme.CardReversed.Render("reversed")
		}
		boxes = append(boxes, c.theme.CardBox.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (c *chatView) bubbleWidth() int {
	w := c.width - 10
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// INPUT & UPDATES
// =============================================================================

// takeInput returns the trimmed input text and clears the field.
func (c *chatView) takeInput() string {
	content := strings.TrimSpace(c.input.Value())
	if content != "" {
		c.input.Reset()
	}
	return content
}

func (c *chatView) updateInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *chatView) update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if _, ok := msg.(spinner.TickMsg); ok {
		c.spin, cmd = c.spin.Update(msg)
		if c.streaming {
			c.rebuild()
			cmds = append(cmds, cmd)
		}
	} else {
		c.input, cmd = c.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (c *chatView) spinnerTick() tea.Cmd {
	return c.spin.Tick
}

func (c *chatView) scroll(direction int) {
	if direction < 0 {
		c.viewport.HalfViewUp()
	} else {
		c.viewport.HalfViewDown()
	}
}

// view renders the transcript above the input line.
func (c *chatView) view() string {
	title := "arcana"
	if c.conv != nil {
		title = c.conv.SessionType.DisplayName() + ": " + c.conv.DisplayTitle()
	}
	header := c.theme.HeaderTitle.Render(title)
	input := c.theme.InputContainer.Width(c.width - 2).Render(c.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, c.viewport.View(), input)
}
