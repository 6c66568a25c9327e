// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/arcana-tui/internal/api"
	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/store"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend scripts the streaming endpoints per message content and
// records everything the client sends.
type fakeBackend struct {
	mu         sync.Mutex
	sent       []string            // chat message contents, in order
	script     map[string][]string // content -> raw JSON data payloads
	transcript []model.Message
	drawCalls  int
	lastDraw   *model.DrawCardsRequest
	chartCalls int
	exitCalls  int
	exitStatus int
	created    int

	// streamDelay stalls each message response before the sentinel,
	// holding the flow open long enough to test overlap handling.
	streamDelay time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{script: map[string][]string{}, exitStatus: http.StatusOK}
}

func (f *fakeBackend) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == "POST" && r.URL.Path == "/api/conversations":
		f.mu.Lock()
		f.created++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(model.Conversation{
			ConversationID: "c-1",
			UserID:         r.URL.Query().Get("user_id"),
			SessionType:    model.SessionTarot,
		})

	case r.Method == "GET" && r.URL.Path == "/api/conversations/c-1":
		f.mu.Lock()
		conv := model.Conversation{
			ConversationID: "c-1",
			SessionType:    model.SessionTarot,
			Messages:       append([]model.Message(nil), f.transcript...),
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(conv)

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/message"):
		var req struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.sent = append(f.sent, req.Content)
		f.transcript = append(f.transcript, model.Message{Role: model.RoleUser, Content: req.Content})
		lines := f.script[req.Content]
		delay := f.streamDelay
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		for _, l := range lines {
			io.WriteString(w, "data: "+l+"\n")
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		io.WriteString(w, "data: [DONE]\n")

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/draw"):
		var draw model.DrawCardsRequest
		json.NewDecoder(r.Body).Decode(&draw)
		f.mu.Lock()
		f.drawCalls++
		f.lastDraw = &draw
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string][]model.TarotCard{
			"cards": {{CardID: 16, CardName: "The Tower", Reversed: true}},
		})

	case r.Method == "POST" && r.URL.Path == "/api/astrology/fetch-chart":
		f.mu.Lock()
		f.chartCalls++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(api.ChartResult{Success: true, ChartText: "Sun in Leo"})

	case r.Method == "PUT" && strings.HasSuffix(r.URL.Path, "/profile"):
		var p model.UserProfile
		json.NewDecoder(r.Body).Decode(&p)
		json.NewEncoder(w).Encode(model.User{UserID: "u-1", UserType: model.UserTypeGuest, Profile: &p})

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/exit"):
		f.mu.Lock()
		f.exitCalls++
		f.mu.Unlock()
		w.WriteHeader(f.exitStatus)
		if f.exitStatus == http.StatusOK {
			io.WriteString(w, `{"notebook_updated":true}`)
		} else {
			io.WriteString(w, `{"detail":"exit failed"}`)
		}

	case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/api/conversations/user/"):
		io.WriteString(w, "[]")

	default:
		http.NotFound(w, r)
	}
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	backend *fakeBackend
	orch    *Orchestrator
	convs   *store.ConversationStore

	noticeMu sync.Mutex
	notices  []Notice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	client.SetLogger(log.New(io.Discard, "", 0))
	auth := store.NewAuthStore()
	auth.SetUser(&model.User{UserID: "u-1", UserType: model.UserTypeGuest})
	convs := store.NewConversationStore()

	h := &harness{backend: backend, convs: convs}
	h.orch = New(client, auth, convs, nil, log.New(io.Discard, "", 0))
	h.orch.settleDelay = 0
	h.orch.SetNotify(func(n Notice) {
		h.noticeMu.Lock()
		h.notices = append(h.notices, n)
		h.noticeMu.Unlock()
	})
	return h
}

func (h *harness) noticeKinds() []NoticeKind {
	h.noticeMu.Lock()
	defer h.noticeMu.Unlock()
	kinds := make([]NoticeKind, len(h.notices))
	for i, n := range h.notices {
		kinds[i] = n.Kind
	}
	return kinds
}

func (h *harness) countNotices(kind NoticeKind) int {
	n := 0
	for _, k := range h.noticeKinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// =============================================================================
// TESTS
// =============================================================================

func TestStartSessionOpensWithGreeting(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"content":"Welcome, seeker."}`}

	if err := h.orch.StartSession(context.Background(), model.SessionTarot); err != nil {
		t.Fatal(err)
	}

	if got := h.backend.sentMessages(); len(got) != 1 || got[0] != "" {
		t.Fatalf("sent = %q, want one empty opening message", got)
	}
	if h.convs.CurrentID() != "c-1" {
		t.Errorf("current = %q", h.convs.CurrentID())
	}
	if h.countNotices(NoticeStreamChunk) != 1 {
		t.Errorf("notices = %v", h.noticeKinds())
	}
}

func TestStartSessionDoublePressCreatesOneConversation(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"content":"hello"}`}
	h.backend.streamDelay = 200 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.orch.StartSession(context.Background(), model.SessionTarot)
		}()
	}
	wg.Wait()

	h.backend.mu.Lock()
	created := h.backend.created
	h.backend.mu.Unlock()
	if created != 1 {
		t.Errorf("created %d conversations, want 1", created)
	}
}

func TestSendMessageWithoutConversationIsNoOp(t *testing.T) {
	h := newHarness(t)
	if err := h.orch.SendMessage(context.Background(), "anyone there?"); err != nil {
		t.Fatal(err)
	}
	if len(h.backend.sentMessages()) != 0 {
		t.Error("message sent with no conversation selected")
	}
}

func TestSendMessageEchoesOptimistically(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"content":"hi"}`}
	h.backend.script["what does the tower mean?"] = []string{`{"content":"Upheaval."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)
	if err := h.orch.SendMessage(context.Background(), "what does the tower mean?"); err != nil {
		t.Fatal(err)
	}

	cur := h.convs.Current()
	found := false
	for _, m := range cur.Messages {
		if m.Role == model.RoleUser && m.Content == "what does the tower mean?" {
			found = true
		}
	}
	if !found {
		t.Errorf("user message missing from transcript: %+v", cur.Messages)
	}
}

func TestDrawFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{
		`{"content":"Let us draw."}`,
		`{"draw_cards":{"spread_type":"single","card_count":1}}`,
	}
	h.backend.script[promptInterpretDraw] = []string{`{"content":"The Tower reversed speaks of averted disaster."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)

	draw := h.orch.PendingDraw()
	if draw == nil || draw.CardCount != 1 {
		t.Fatalf("pending draw = %+v", draw)
	}

	if err := h.orch.CompleteDraw(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.backend.mu.Lock()
	drawCalls, sentDraw := h.backend.drawCalls, h.backend.lastDraw
	h.backend.mu.Unlock()
	if drawCalls != 1 {
		t.Errorf("draw calls = %d", drawCalls)
	}
	if sentDraw == nil || sentDraw.SpreadType != "single" || sentDraw.CardCount != 1 {
		t.Errorf("transmitted draw request = %+v", sentDraw)
	}
	sent := h.backend.sentMessages()
	if len(sent) != 2 || sent[1] != promptInterpretDraw {
		t.Errorf("sent = %q", sent)
	}
	if h.orch.PendingDraw() != nil {
		t.Error("pending draw not cleared")
	}
	if h.countNotices(NoticeCardsDrawn) != 1 {
		t.Errorf("notices = %v", h.noticeKinds())
	}
}

func TestCompleteDrawWithoutPendingIsNoOp(t *testing.T) {
	h := newHarness(t)
	if err := h.orch.CompleteDraw(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(h.backend.sentMessages()) != 0 {
		t.Error("interpretation requested with no pending draw")
	}
}

func TestDrawDuringInterpretationIgnored(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"draw_cards":{"spread_type":"single","card_count":1}}`}
	// The interpretation response tries to trigger another draw.
	h.backend.script[promptInterpretDraw] = []string{
		`{"content":"Interesting."}`,
		`{"draw_cards":{"spread_type":"single","card_count":1}}`,
	}

	h.orch.StartSession(context.Background(), model.SessionTarot)
	h.orch.CompleteDraw(context.Background())

	if h.orch.PendingDraw() != nil {
		t.Error("draw request during interpretation should be ignored")
	}
	if h.countNotices(NoticeDrawRequested) != 1 {
		t.Errorf("draw notices = %d, want 1", h.countNotices(NoticeDrawRequested))
	}
}

func TestProfileFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"need_profile":true}`}
	h.backend.script[promptProfileDone] = []string{`{"content":"Thank you."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)
	if h.countNotices(NoticeProfileRequested) != 1 {
		t.Fatalf("notices = %v", h.noticeKinds())
	}

	profile := model.UserProfile{Nickname: "Luna", BirthYear: model.IntPtr(1990)}
	if err := h.orch.SubmitProfile(context.Background(), profile); err != nil {
		t.Fatal(err)
	}

	sent := h.backend.sentMessages()
	if len(sent) != 2 || sent[1] != promptProfileDone {
		t.Errorf("sent = %q", sent)
	}
}

func TestSubmitProfileWithoutPendingConversation(t *testing.T) {
	h := newHarness(t)
	if err := h.orch.SubmitProfile(context.Background(), model.UserProfile{Nickname: "Luna"}); err != nil {
		t.Fatal(err)
	}
	if len(h.backend.sentMessages()) != 0 {
		t.Error("resume prompt sent with no conversation waiting")
	}
}

func TestChartFlowContinuesExactlyOnce(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{
		`{"content":"Computing your chart."}`,
		`{"fetch_chart":true}`,
	}
	h.backend.script[promptChartReady] = []string{`{"content":"Your sun is in Leo."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)

	h.backend.mu.Lock()
	chartCalls := h.backend.chartCalls
	h.backend.mu.Unlock()
	if chartCalls != 1 {
		t.Errorf("chart calls = %d", chartCalls)
	}
	sent := h.backend.sentMessages()
	if len(sent) != 2 || sent[1] != promptChartReady {
		t.Fatalf("sent = %q", sent)
	}
}

func TestChartDuringContinuationDoesNotChain(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"fetch_chart":true}`}
	// The continuation asks for the chart again.
	h.backend.script[promptChartReady] = []string{`{"fetch_chart":true}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)

	sent := h.backend.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("sent = %q, continuation chained", sent)
	}
}

func TestDuplicateChartRequestInOneStream(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"fetch_chart":true}`, `{"fetch_chart":true}`}
	h.backend.script[promptChartReady] = []string{`{"content":"done"}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)

	h.backend.mu.Lock()
	chartCalls := h.backend.chartCalls
	h.backend.mu.Unlock()
	if chartCalls != 1 {
		t.Errorf("chart calls = %d, want 1", chartCalls)
	}
}

func TestSyntheticTurnsHiddenAfterRefresh(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"draw_cards":{"spread_type":"single","card_count":1}}`}
	h.backend.script[promptInterpretDraw] = []string{`{"content":"It means change."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)
	h.orch.CompleteDraw(context.Background())

	cur := h.convs.Current()
	for _, m := range cur.VisibleMessages() {
		if m.Content == promptInterpretDraw {
			t.Error("injected prompt visible in transcript")
		}
	}
	// The raw transcript still carries it.
	raw := false
	for _, m := range cur.Messages {
		if m.Content == promptInterpretDraw {
			raw = true
		}
	}
	if !raw {
		t.Error("injected prompt missing from raw transcript")
	}
}

func TestExitConversationBestEffort(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"content":"hi"}`}
	h.orch.StartSession(context.Background(), model.SessionTarot)

	h.backend.exitStatus = http.StatusInternalServerError
	h.orch.ExitConversation(context.Background())

	if h.convs.CurrentID() != "" {
		t.Error("conversation still selected after failed exit")
	}
}

func TestStartSessionExitsPreviousConversation(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"content":"Welcome, seeker."}`}

	h.orch.StartSession(context.Background(), model.SessionTarot)
	h.orch.StartSession(context.Background(), model.SessionTarot)

	h.backend.mu.Lock()
	exits, created := h.backend.exitCalls, h.backend.created
	h.backend.mu.Unlock()
	if exits != 1 {
		t.Errorf("exit calls = %d, want 1", exits)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
}

func TestChartFetchFailureIsSilent(t *testing.T) {
	h := newHarness(t)
	h.backend.script[""] = []string{`{"fetch_chart":true}`}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/astrology/fetch-chart" {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"detail":"ephemeris offline"}`)
			return
		}
		h.backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL)
	client.SetLogger(log.New(io.Discard, "", 0))
	auth := store.NewAuthStore()
	auth.SetUser(&model.User{UserID: "u-1"})
	orch := New(client, auth, store.NewConversationStore(), nil, log.New(io.Discard, "", 0))
	orch.settleDelay = 0

	var errNotices int
	var mu sync.Mutex
	orch.SetNotify(func(n Notice) {
		if n.Kind == NoticeError {
			mu.Lock()
			errNotices++
			mu.Unlock()
		}
	})

	if err := orch.StartSession(context.Background(), model.SessionTarot); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if errNotices != 0 {
		t.Errorf("error notices = %d, want none for a failed chart pre-fetch", errNotices)
	}
	if got := h.backend.sentMessages(); len(got) != 1 {
		t.Errorf("sent = %q, want no continuation after a failed fetch", got)
	}
}

func TestTruncatedStreamKeepsDeliveredChunks(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/message") {
			w.Header().Set("Content-Type", "text/event-stream")
			io.WriteString(w, "data: {\"content\":\"partial\"}\n")
			// Connection drops with no [DONE]; EOF ends the stream.
			return
		}
		h.backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL)
	client.SetLogger(log.New(io.Discard, "", 0))
	auth := store.NewAuthStore()
	auth.SetUser(&model.User{UserID: "u-1"})
	orch := New(client, auth, store.NewConversationStore(), nil, log.New(io.Discard, "", 0))
	orch.settleDelay = 0

	var chunks []string
	var mu sync.Mutex
	orch.SetNotify(func(n Notice) {
		if n.Kind == NoticeStreamChunk {
			mu.Lock()
			chunks = append(chunks, n.Content)
			mu.Unlock()
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		orch.StartSession(context.Background(), model.SessionTarot)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("flow did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(chunks) != 1 || chunks[0] != "partial" {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestProfileStatusRequiresUser(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:0")
	client.SetLogger(log.New(io.Discard, "", 0))
	orch := New(client, store.NewAuthStore(), store.NewConversationStore(), nil, log.New(io.Discard, "", 0))

	if _, err := orch.ProfileStatus(context.Background()); err != ErrNotSignedIn {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
}
