// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/url"
)

// =============================================================================
// ASTROLOGY ENDPOINTS
// =============================================================================

// ChartResult is the outcome of a natal-chart computation.
type ChartResult struct {
	Success   bool   `json:"success"`
	ChartText string `json:"chart_text"`
}

// ProfileStatus reports whether a user has complete birth data on file.
type ProfileStatus struct {
	HasProfile bool     `json:"has_complete_profile"`
	Missing    []string `json:"missing_fields,omitempty"`
}

// ZodiacInfo describes the sun sign currently in season.
type ZodiacInfo struct {
	Sign string `json:"zodiac"`
}

// FetchChart asks the backend to compute the natal chart for the
// conversation's user and attach it to the conversation context.
func (c *Client) FetchChart(ctx context.Context, conversationID string) (*ChartResult, error) {
	q := url.Values{"conversation_id": {conversationID}}
	var result ChartResult
	if err := c.doJSON(ctx, "POST", "/api/astrology/fetch-chart", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckProfile reports whether the user's stored profile has the birth
// data chart computation needs.
func (c *Client) CheckProfile(ctx context.Context, userID string) (*ProfileStatus, error) {
	var status ProfileStatus
	if err := c.doJSON(ctx, "GET", "/api/astrology/check-profile/"+userID, nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// CurrentZodiac returns the sun sign for today's date.
func (c *Client) CurrentZodiac(ctx context.Context) (*ZodiacInfo, error) {
	var info ZodiacInfo
	if err := c.doJSON(ctx, "GET", "/api/astrology/current-zodiac", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
