// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists a local cache of the conversation list so
// the sidebar renders instantly on startup, before the first backend
// refresh lands. The backend stays the state of record; the cache is
// advisory and any corrupt file is discarded, never repaired.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/util"
)

// =============================================================================
// CONVERSATION CACHE
// =============================================================================

// cacheVersion guards against stale layouts after an upgrade.
const cacheVersion = 1

// cacheFile is the envelope written to disk.
type cacheFile struct {
	Version       int                  `json:"version"`
	UserID        string               `json:"user_id"`
	SavedAt       time.Time            `json:"saved_at"`
	Conversations []model.Conversation `json:"conversations"`
}

// Cache reads and writes the per-user conversation snapshot.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir (typically ~/.arcana/cache).
// The directory is created on first save, not here.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// path returns the cache file for a user.
func (c *Cache) path(userID string) string {
	return filepath.Join(c.dir, fmt.Sprintf("conversations-%s.json", userID))
}

// Save writes the conversation list for the user atomically.
func (c *Cache) Save(userID string, convs []model.Conversation) error {
	if userID == "" {
		return errors.New("cache: empty user id")
	}
	data, err := json.MarshalIndent(cacheFile{
		Version:       cacheVersion,
		UserID:        userID,
		SavedAt:       time.Now().UTC(),
		Conversations: convs,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	return util.AtomicWriteFile(c.path(userID), data, 0o600)
}

// Load reads the cached conversation list for the user. A missing,
// corrupt, version-mismatched, or foreign file yields (nil, nil):
// the caller falls through to a backend refresh either way.
func (c *Cache) Load(userID string) ([]model.Conversation, error) {
	data, err := os.ReadFile(c.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil
	}
	if f.Version != cacheVersion || f.UserID != userID {
		return nil, nil
	}
	return f.Conversations, nil
}

// Delete removes the user's cache file, for sign-out and account
// deletion. Missing files are not an error.
func (c *Cache) Delete(userID string) error {
	err := os.Remove(c.path(userID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
