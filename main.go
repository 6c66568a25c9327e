// arcana TUI - A terminal interface for tarot and astrology readings.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/jeranaias/arcana-tui/internal/api"
	"github.com/jeranaias/arcana-tui/internal/config"
	"github.com/jeranaias/arcana-tui/internal/orchestrator"
	"github.com/jeranaias/arcana-tui/internal/storage"
	"github.com/jeranaias/arcana-tui/internal/store"
	"github.com/jeranaias/arcana-tui/internal/ui"
	"github.com/jeranaias/arcana-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("arcana %s (%s)\n", Version, GitCommit)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "arcana is an interactive terminal app; run it in a terminal")
		os.Exit(1)
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	logger := newLogger(cfg.Log.Path)
	logger.Printf("arcana %s starting, backend %s", Version, cfg.API.BaseURL)

	client := api.NewClient(cfg.API.BaseURL)
	client.SetLogger(logger)

	auth := store.NewAuthStore()
	convs := store.NewConversationStore()
	cache := storage.NewCache(dir + "/cache")
	orch := orchestrator.New(client, auth, convs, cache, logger)

	theme := styles.NewTheme(cfg.UI.Theme == "plain")

	if err := ui.Run(orch, auth, convs, theme, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes diagnostics to the configured file. The TUI owns
// the terminal, so stderr logging is only a fallback when the file
// cannot be opened.
func newLogger(path string) *log.Logger {
	if path == "" {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(os.Stderr, "arcana ", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags|log.Lshortfile)
}
