// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Timestamp       lipgloss.Style

	// ==========================================================================
	// CARD STYLES
	// ==========================================================================

	CardBox      lipgloss.Style
	CardName     lipgloss.Style
	CardReversed lipgloss.Style
	DrawPrompt   lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarSessionType  lipgloss.Style
	SidebarEmptyHint    lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Spinner        lipgloss.Style

	// ==========================================================================
	// FORM AND FEEDBACK STYLES
	// ==========================================================================

	FormBox      lipgloss.Style
	FormTitle    lipgloss.Style
	FormLabel    lipgloss.Style
	FormHint     lipgloss.Style
	ErrorBox     lipgloss.Style
	SuccessStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. The plain
// variant keeps layout but strips color, for recording-friendly output.
func NewTheme(plain bool) *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	if plain {
		t.initPlainStyles()
	} else {
		t.initStyles()
	}
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(VioletDeep).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(0, 2).
		MarginRight(4)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CardBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Gold).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.CardName = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold)

	t.CardReversed = lipgloss.NewStyle().
		Italic(true).
		Foreground(Rose)

	t.DrawPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Gold).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(GoldDeep).
		Padding(1, 4)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarItemSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.SidebarSessionType = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SidebarEmptyHint = lipgloss.NewStyle().
		Italic(true).
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(1, 3)

	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FormHint = lipgloss.NewStyle().
		Italic(true).
		Foreground(TextMuted)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald)
}

// initPlainStyles keeps spacing and borders but no color.
func (t *Theme) initPlainStyles() {
	border := lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder())

	t.Header = border.Padding(0, 2).Bold(true)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true)
	t.HeaderSubtitle = lipgloss.NewStyle()
	t.UserBubble = border.Padding(0, 2).MarginLeft(4)
	t.AssistantBubble = border.Padding(0, 2).MarginRight(4)
	t.Timestamp = lipgloss.NewStyle().Faint(true)
	t.CardBox = border.Padding(0, 2)
	t.CardName = lipgloss.NewStyle().Bold(true)
	t.CardReversed = lipgloss.NewStyle().Italic(true)
	t.DrawPrompt = border.Padding(1, 4).Bold(true)
	t.Sidebar = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderRight(true).Padding(0, 1)
	t.SidebarItem = lipgloss.NewStyle()
	t.SidebarItemSelected = lipgloss.NewStyle().Bold(true).Reverse(true)
	t.SidebarSessionType = lipgloss.NewStyle().Faint(true)
	t.SidebarEmptyHint = lipgloss.NewStyle().Italic(true).Faint(true)
	t.InputContainer = border.Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Bold(true)
	t.StatusBar = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Faint(true)
	t.Spinner = lipgloss.NewStyle()
	t.FormBox = border.Padding(1, 3)
	t.FormTitle = lipgloss.NewStyle().Bold(true)
	t.FormLabel = lipgloss.NewStyle()
	t.FormHint = lipgloss.NewStyle().Italic(true).Faint(true)
	t.ErrorBox = border.Padding(0, 1)
	t.SuccessStyle = lipgloss.NewStyle().Bold(true)
}
