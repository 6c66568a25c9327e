// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders readings as Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	visible := conv.VisibleMessages()
	if len(visible) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.DisplayTitle()))
	sb.WriteString(fmt.Sprintf("- **Type**: %s\n", conv.SessionType.DisplayName()))
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Date**: %s\n", conv.CreatedAt.Format("January 2, 2006 15:04")))
	}
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("\n---\n\n")

	for _, msg := range visible {
		switch msg.Role {
		case model.RoleUser:
			sb.WriteString("## You")
		default:
			sb.WriteString("## Reader")
		}
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf(" (%s)", msg.Timestamp.Format("15:04")))
		}
		sb.WriteString("\n\n")

		if msg.HasCards() {
			sb.WriteString(renderCardTable(msg.TarotCards))
			sb.WriteString("\n")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// renderCardTable lists a draw as a Markdown table.
func renderCardTable(cards []model.TarotCard) string {
	var sb strings.Builder
	sb.WriteString("| Card | Orientation |\n|------|-------------|\n")
	for _, card := range cards {
		orientation := "upright"
		if card.Reversed {
			orientation = "reversed"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", model.CardName(card), orientation))
	}
	return sb.String()
}
