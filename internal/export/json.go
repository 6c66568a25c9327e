// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders readings as a machine-readable document.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// jsonDocument is the export envelope. It carries the visible
// transcript only, under a schema the app controls.
type jsonDocument struct {
	Title       string          `json:"title"`
	SessionType string          `json:"session_type"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
	ExportedAt  time.Time       `json:"exported_at"`
	Messages    []model.Message `json:"messages"`
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	visible := conv.VisibleMessages()
	if len(visible) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	doc := jsonDocument{
		Title:       conv.DisplayTitle(),
		SessionType: string(conv.SessionType),
		CreatedAt:   conv.CreatedAt,
		ExportedAt:  time.Now().UTC(),
		Messages:    visible,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
