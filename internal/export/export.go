// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes reading transcripts to local files so a
// reading can be kept outside the app. Synthetic trigger turns are
// omitted: the export mirrors what the user saw, not the wire log.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one output format.
type Exporter interface {
	// Export renders the conversation and returns the file content.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the extension for the format (".md").
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written.
	OutputDir string

	// IncludeTimestamps includes per-message times.
	IncludeTimestamps bool
}

// DefaultOptions writes timestamped transcripts to the working
// directory.
func DefaultOptions() *Options {
	return &Options{OutputDir: ".", IncludeTimestamps: true}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders the conversation and writes it atomically,
// returning the output path.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	content, err := exporter.Export(conv)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(opts.OutputDir, exportFilename(conv, exporter.FileExtension()))
	if err := util.AtomicWriteFile(path, content, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// exportFilename builds a stable, filesystem-safe name.
func exportFilename(conv *model.Conversation, ext string) string {
	title := sanitizeFilename(conv.DisplayTitle())
	stamp := time.Now().Format("2006-01-02-150405")
	return fmt.Sprintf("%s-%s%s", title, stamp, ext)
}

// sanitizeFilename keeps letters, digits, and dashes.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "reading"
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return out
}
