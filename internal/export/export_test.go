// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/arcana-tui/internal/model"
)

func sampleConversation() *model.Conversation {
	return &model.Conversation{
		ConversationID: "c-1",
		SessionType:    model.SessionTarot,
		Title:          "The Tower Question",
		CreatedAt:      time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC),
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "What does my draw mean?", Timestamp: time.Now()},
			{Role: model.RoleUser, Content: "请根据抽牌结果进行解读", Kind: model.KindSynthetic},
			{
				Role:    model.RoleAssistant,
				Content: "Upheaval, and the chance to rebuild.",
				TarotCards: []model.TarotCard{
					{CardID: 16, CardName: "The Tower", Reversed: true},
				},
			},
		},
	}
}

func TestMarkdownExportOmitsSyntheticTurns(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleConversation())
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if strings.Contains(text, "请根据抽牌结果进行解读") {
		t.Error("synthetic turn exported")
	}
	for _, want := range []string{"# The Tower Question", "What does my draw mean?", "The Tower", "reversed"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleConversation())
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Title       string          `json:"title"`
		SessionType string          `json:"session_type"`
		Messages    []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.SessionType != "tarot" || len(doc.Messages) != 2 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestExportEmptyConversationFails(t *testing.T) {
	conv := &model.Conversation{ConversationID: "c-1", SessionType: model.SessionTarot}
	if _, err := NewMarkdownExporter(nil).Export(conv); err == nil {
		t.Error("expected error for empty conversation")
	}
}

func TestExportToFileWritesSafeName(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(sampleConversation(), NewMarkdownExporter(nil), &Options{OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".md") || strings.ContainsAny(path[len(dir):], "?*:") {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}
