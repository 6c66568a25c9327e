// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/arcana-tui/internal/model"
)

func TestErrorDetailPreservedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"detail":"用户名已存在"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Register(context.Background(), "luna", "secret", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Detail != "用户名已存在" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("status = %d", apiErr.Status)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Error("APIError should match ErrRequestFailed")
	}
}

func TestErrorNonJSONBodyFallsBackToText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetUser(context.Background(), "u-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "upstream unavailable" {
		t.Fatalf("err = %v", err)
	}
}

func TestEndpointPaths(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		// Bare-array endpoints.
		if strings.HasPrefix(r.URL.Path, "/api/conversations/user/") || r.URL.Path == "/api/tarot/cards" {
			io.WriteString(w, "[]")
			return
		}
		io.WriteString(w, "{}")
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
	}{
		{"create guest", func() error { _, err := c.CreateGuest(ctx, nil); return err },
			"POST", "/api/users/guest", ""},
		{"login", func() error { _, err := c.Login(ctx, "luna", "pw"); return err },
			"POST", "/api/users/login", ""},
		{"get user", func() error { _, err := c.GetUser(ctx, "u-1"); return err },
			"GET", "/api/users/u-1", ""},
		{"update profile", func() error { _, err := c.UpdateProfile(ctx, "u-1", model.UserProfile{}); return err },
			"PUT", "/api/users/u-1/profile", ""},
		{"convert", func() error { _, err := c.ConvertToRegistered(ctx, "u-1", "luna", "pw"); return err },
			"POST", "/api/users/u-1/convert", ""},
		{"delete user", func() error { return c.DeleteUser(ctx, "u-1") },
			"DELETE", "/api/users/u-1", ""},
		{"create conversation", func() error { _, err := c.CreateConversation(ctx, "u-1", model.SessionTarot); return err },
			"POST", "/api/conversations", "user_id=u-1"},
		{"get conversation", func() error { _, err := c.GetConversation(ctx, "c-1"); return err },
			"GET", "/api/conversations/c-1", ""},
		{"list conversations", func() error { _, err := c.ListConversations(ctx, "u-1"); return err },
			"GET", "/api/conversations/user/u-1", ""},
		{"update title", func() error { _, err := c.UpdateTitle(ctx, "c-1", "New"); return err },
			"PUT", "/api/conversations/title", ""},
		{"delete conversation", func() error { return c.DeleteConversation(ctx, "c-1") },
			"DELETE", "/api/conversations/c-1", ""},
		{"exit conversation", func() error { _, err := c.ExitConversation(ctx, "c-1"); return err },
			"POST", "/api/conversations/c-1/exit", ""},
		{"draw tarot", func() error {
			_, err := c.DrawCards(ctx, PersonaTarot, "c-1", &model.DrawCardsRequest{SpreadType: "single", CardCount: 1})
			return err
		},
			"POST", "/api/tarot/draw", "conversation_id=c-1"},
		{"draw astrology", func() error {
			_, err := c.DrawCards(ctx, PersonaAstrology, "c-1", &model.DrawCardsRequest{SpreadType: "single", CardCount: 1})
			return err
		},
			"POST", "/api/astrology/draw", "conversation_id=c-1"},
		{"fetch chart", func() error { _, err := c.FetchChart(ctx, "c-1"); return err },
			"POST", "/api/astrology/fetch-chart", "conversation_id=c-1"},
		{"check profile", func() error { _, err := c.CheckProfile(ctx, "u-1"); return err },
			"GET", "/api/astrology/check-profile/u-1", ""},
		{"current zodiac", func() error { _, err := c.CurrentZodiac(ctx); return err },
			"GET", "/api/astrology/current-zodiac", ""},
		{"card names", func() error { _, err := c.AllCardNames(ctx); return err },
			"GET", "/api/tarot/cards", ""},
	}

	for _, tt := range tests {
		if err := tt.call(); err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if gotMethod != tt.method || gotPath != tt.path || gotQuery != tt.query {
			t.Errorf("%s: got %s %s?%s, want %s %s?%s",
				tt.name, gotMethod, gotPath, gotQuery, tt.method, tt.path, tt.query)
		}
	}

	// The draw endpoints must carry the requested spread in the body;
	// the backend rejects a bodiless draw.
	_, err := c.DrawCards(ctx, PersonaTarot, "c-1", &model.DrawCardsRequest{
		SpreadType: "three_card",
		CardCount:  3,
		Positions:  []string{"past", "present", "future"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var sent model.DrawCardsRequest
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("draw body did not decode: %v (body %q)", err, gotBody)
	}
	if sent.SpreadType != "three_card" || sent.CardCount != 3 || len(sent.Positions) != 3 {
		t.Errorf("draw body = %+v", sent)
	}
}

func TestCardNamesDecodeBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `["愚者","魔术师","女祭司"]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	names, err := c.AllCardNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "愚者" {
		t.Errorf("names = %q", names)
	}
}

func TestCheckProfileDecodesCompletenessAndMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"has_complete_profile":false,"missing_fields":["出生年份","出生城市"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.CheckProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if status.HasProfile {
		t.Error("incomplete profile decoded as complete")
	}
	if len(status.Missing) != 2 || status.Missing[0] != "出生年份" {
		t.Errorf("missing = %q", status.Missing)
	}
}

func TestCurrentZodiacDecodesSign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"zodiac":"处女座"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	info, err := c.CurrentZodiac(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Sign != "处女座" {
		t.Errorf("sign = %q", info.Sign)
	}
}

func TestListConversationsDecodesNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Conversation{
			{ConversationID: "c-2", SessionType: model.SessionAstrology},
			{ConversationID: "c-1", SessionType: model.SessionTarot},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	convs, err := c.ListConversations(context.Background(), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].ConversationID != "c-2" {
		t.Fatalf("conversations = %+v", convs)
	}
}
