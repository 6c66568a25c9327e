// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/arcana-tui/internal/orchestrator"
	"github.com/jeranaias/arcana-tui/internal/store"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// Run wires the orchestrator into a Bubble Tea program and blocks
// until the user quits. Orchestrator notices are forwarded through
// Program.Send, which is safe from the flow goroutines.
func Run(orch *orchestrator.Orchestrator, auth *store.AuthStore, convs *store.ConversationStore, theme *styles.Theme, logger *log.Logger) error {
	app := NewApp(orch, auth, convs, theme, logger)
	program := tea.NewProgram(app, tea.WithAltScreen())

	orch.SetNotify(func(n orchestrator.Notice) {
		program.Send(FlowNoticeMsg{Notice: n})
	})

	_, err := program.Run()
	return err
}
