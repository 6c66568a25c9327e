// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator drives conversation flows: it sends messages,
// consumes the response stream, reacts to interleaved instructions
// (card draws, profile collection, chart computation), and keeps the
// stores and on-disk cache in sync with the backend afterwards.
//
// Flow methods block until the flow completes. The UI runs them off
// its render loop and receives progress through the notify callback,
// which must be safe to call from any goroutine.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/arcana-tui/internal/api"
	"github.com/jeranaias/arcana-tui/internal/model"
	"github.com/jeranaias/arcana-tui/internal/storage"
	"github.com/jeranaias/arcana-tui/internal/store"
)

// =============================================================================
// NOTICES
// =============================================================================

// NoticeKind tags a progress notice delivered to the UI.
type NoticeKind int

const (
	// NoticeStreamStart marks the beginning of an assistant response.
	NoticeStreamStart NoticeKind = iota
	// NoticeStreamChunk carries one fragment of assistant text.
	NoticeStreamChunk
	// NoticeStreamEnd marks the end of a response. The refreshed
	// transcript is already in the store when it fires.
	NoticeStreamEnd
	// NoticeDrawRequested asks the UI to present the card drawer.
	NoticeDrawRequested
	// NoticeCardsDrawn reports the cards the backend dealt.
	NoticeCardsDrawn
	// NoticeProfileRequested asks the UI to present the birth form.
	NoticeProfileRequested
	// NoticeConversationsChanged signals a store update worth a
	// re-render: list refresh, optimistic append, title change.
	NoticeConversationsChanged
	// NoticeUserChanged signals an auth-store update.
	NoticeUserChanged
	// NoticeError reports a failure the user should see.
	NoticeError
)

// Notice is one progress event from a running flow.
type Notice struct {
	Kind           NoticeKind
	ConversationID string
	Content        string
	Draw           *model.DrawCardsRequest
	Cards          []model.TarotCard
	Err            error
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Prompts the client injects on the user's behalf. They drive the
// backend's flow handling and are tagged synthetic so the transcript
// view never shows them.
const (
	promptInterpretDraw = "请根据抽牌结果进行解读"
	promptChartReady    = "星盘数据已准备好，请继续解读"
	promptProfileDone   = "我已经填写好出生信息了"
)

// drawSettleDelay gives the backend time to attach a finished draw to
// the conversation before the interpretation request arrives.
const drawSettleDelay = 500 * time.Millisecond

var (
	// ErrNotSignedIn is returned by flows that need a user.
	ErrNotSignedIn = errors.New("not signed in")
)

// Orchestrator coordinates one user's session against the backend.
type Orchestrator struct {
	client *api.Client
	auth   *store.AuthStore
	convs  *store.ConversationStore
	cache  *storage.Cache
	logger *log.Logger
	notify func(Notice)

	// inFlight rejects overlapping flows. In particular it makes
	// double-submitting the new-session action create one
	// conversation, not two.
	inFlight atomic.Bool

	// settleDelay is drawSettleDelay in production; tests shorten it.
	settleDelay time.Duration

	mu                 sync.Mutex
	pendingDraw        *model.DrawCardsRequest
	pendingDrawConv    string
	pendingProfileConv string
}

// New creates an orchestrator over the given client and stores. The
// cache may be nil to disable local persistence.
func New(client *api.Client, auth *store.AuthStore, convs *store.ConversationStore, cache *storage.Cache, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		client:      client,
		auth:        auth,
		convs:       convs,
		cache:       cache,
		logger:      logger,
		notify:      func(Notice) {},
		settleDelay: drawSettleDelay,
	}
}

// SetNotify installs the UI progress callback. Must be called before
// the first flow starts.
func (o *Orchestrator) SetNotify(fn func(Notice)) {
	if fn != nil {
		o.notify = fn
	}
}

// Busy reports whether a flow is currently running.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// PendingDraw returns the draw request awaiting the user, if any.
func (o *Orchestrator) PendingDraw() *model.DrawCardsRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pendingDraw
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// StartSession creates a conversation of the given type and lets the
// assistant open it with a greeting. A second call while one is in
// flight is ignored, so a double-press cannot create two sessions.
func (o *Orchestrator) StartSession(ctx context.Context, sessionType model.SessionType) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Printf("orchestrator: session creation already in flight, ignoring")
		return nil
	}
	defer o.inFlight.Store(false)

	userID := o.auth.UserID()
	if userID == "" {
		return ErrNotSignedIn
	}

	// Leaving the previous reading persists its session notes.
	o.ExitConversation(ctx)

	conv, err := o.client.CreateConversation(ctx, userID, sessionType)
	if err != nil {
		o.notify(Notice{Kind: NoticeError, Err: err})
		return err
	}
	o.convs.Prepend(*conv)
	o.notify(Notice{Kind: NoticeConversationsChanged})

	// Empty content asks the assistant to speak first.
	o.runFlow(ctx, conv.ConversationID, "", true)
	return nil
}

// SendMessage sends the user's message to the current conversation.
// A no-op when no conversation is selected or a flow is running.
func (o *Orchestrator) SendMessage(ctx context.Context, content string) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Printf("orchestrator: flow in progress, dropping message")
		return nil
	}
	defer o.inFlight.Store(false)

	convID := o.convs.CurrentID()
	if convID == "" {
		o.logger.Printf("orchestrator: no conversation selected, dropping message")
		return nil
	}

	// Echo immediately; the post-flow refresh replaces the transcript
	// with the backend's version.
	o.convs.AppendMessageToCurrent(model.NewUserMessage(content))
	o.notify(Notice{Kind: NoticeConversationsChanged})

	o.runFlow(ctx, convID, content, true)
	return nil
}

// CompleteDraw performs the pending card draw and asks the assistant
// to interpret the result. A no-op when no draw is pending.
func (o *Orchestrator) CompleteDraw(ctx context.Context) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Printf("orchestrator: flow in progress, ignoring draw")
		return nil
	}
	defer o.inFlight.Store(false)

	o.mu.Lock()
	draw := o.pendingDraw
	convID := o.pendingDrawConv
	o.pendingDraw = nil
	o.pendingDrawConv = ""
	o.mu.Unlock()
	if draw == nil {
		o.logger.Printf("orchestrator: no draw pending, ignoring")
		return nil
	}

	conv := o.convs.Get(convID)
	if conv == nil {
		o.logger.Printf("orchestrator: draw conversation %s vanished", convID)
		return nil
	}

	cards, err := o.client.DrawCards(ctx, api.PersonaFor(conv.SessionType), convID, draw)
	if err != nil {
		o.notify(Notice{Kind: NoticeError, ConversationID: convID, Err: err})
		return err
	}
	o.notify(Notice{Kind: NoticeCardsDrawn, ConversationID: convID, Cards: cards})
	o.refresh(ctx, convID)

	// Let the backend finish attaching the draw before asking about it.
	time.Sleep(o.settleDelay)

	// Draws are disabled during interpretation: a second draw request
	// here would loop the flow.
	o.runFlow(ctx, convID, promptInterpretDraw, false)
	return nil
}

// SubmitProfile saves the birth profile, merging the submitted fields
// over whatever is already on file, then resumes the conversation that
// asked for it (if any).
func (o *Orchestrator) SubmitProfile(ctx context.Context, profile model.UserProfile) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Printf("orchestrator: flow in progress, ignoring profile submission")
		return nil
	}
	defer o.inFlight.Store(false)

	user := o.auth.User()
	if user == nil {
		return ErrNotSignedIn
	}

	merged := profile
	if user.Profile != nil {
		merged = user.Profile.Merge(profile)
	}
	updated, err := o.client.UpdateProfile(ctx, user.UserID, merged)
	if err != nil {
		o.notify(Notice{Kind: NoticeError, Err: err})
		return err
	}
	o.auth.SetUser(updated)
	o.notify(Notice{Kind: NoticeUserChanged})

	o.mu.Lock()
	convID := o.pendingProfileConv
	o.pendingProfileConv = ""
	o.mu.Unlock()
	if convID == "" {
		return nil
	}

	o.runFlow(ctx, convID, promptProfileDone, true)
	return nil
}

// ExitConversation tells the backend the user left the current
// conversation so it can persist session notes, then deselects it.
// Best-effort: a failed exit call is logged and the user moves on.
func (o *Orchestrator) ExitConversation(ctx context.Context) {
	convID := o.convs.CurrentID()
	if convID == "" {
		return
	}
	if result, err := o.client.ExitConversation(ctx, convID); err != nil {
		o.logger.Printf("orchestrator: exit notification failed for %s: %v", convID, err)
	} else if result.NotebookUpdated {
		o.logger.Printf("orchestrator: notebook updated on exit of %s", convID)
	}
	o.convs.SetCurrent("")
}

// =============================================================================
// FLOW CORE
// =============================================================================

// runFlow sends content to the conversation's persona endpoint and
// consumes the full response stream. When the stream asked for a chart
// and the fetch succeeded, exactly one follow-up flow is started to
// interpret it; the follow-up cannot chain another.
func (o *Orchestrator) runFlow(ctx context.Context, convID, content string, allowDraw bool) {
	chartFetched := o.runStream(ctx, convID, content, allowDraw)
	o.refresh(ctx, convID)

	if chartFetched {
		if o.runStream(ctx, convID, promptChartReady, allowDraw) {
			o.logger.Printf("orchestrator: chart requested again during interpretation, ignoring")
		}
		o.refresh(ctx, convID)
	}
}

// runStream executes one request/stream round trip and reports whether
// a chart was fetched during it. The report is local to this stream:
// each round trip starts from a clean slate.
func (o *Orchestrator) runStream(ctx context.Context, convID, content string, allowDraw bool) bool {
	conv := o.convs.Get(convID)
	if conv == nil {
		o.logger.Printf("orchestrator: conversation %s not in store, aborting flow", convID)
		return false
	}
	persona := api.PersonaFor(conv.SessionType)

	events, err := o.client.StreamMessage(ctx, persona, convID, content)
	if err != nil {
		o.notify(Notice{Kind: NoticeError, ConversationID: convID, Err: err})
		return false
	}

	o.notify(Notice{Kind: NoticeStreamStart, ConversationID: convID})
	defer o.notify(Notice{Kind: NoticeStreamEnd, ConversationID: convID})

	chartFetched := false
	for ev := range events {
		switch ev.Kind {
		case api.EventChunk:
			o.notify(Notice{Kind: NoticeStreamChunk, ConversationID: convID, Content: ev.Content})

		case api.EventDrawCards:
			if !allowDraw {
				o.logger.Printf("orchestrator: draw requested during interpretation, ignoring")
				continue
			}
			o.mu.Lock()
			o.pendingDraw = ev.Draw
			o.pendingDrawConv = convID
			o.mu.Unlock()
			o.notify(Notice{Kind: NoticeDrawRequested, ConversationID: convID, Draw: ev.Draw})

		case api.EventNeedProfile:
			o.mu.Lock()
			o.pendingProfileConv = convID
			o.mu.Unlock()
			o.notify(Notice{Kind: NoticeProfileRequested, ConversationID: convID})

		case api.EventFetchChart:
			if chartFetched {
				o.logger.Printf("orchestrator: duplicate chart request in one stream, ignoring")
				continue
			}
			// Synchronous on purpose: the backend needs the chart in
			// context before any later event makes sense.
			// A failed pre-fetch never surfaces: the reading carries on
			// without chart context.
			result, err := o.client.FetchChart(ctx, convID)
			if err != nil {
				o.logger.Printf("orchestrator: chart fetch failed: %v", err)
				continue
			}
			if !result.Success {
				o.logger.Printf("orchestrator: backend declined chart computation")
				continue
			}
			chartFetched = true

		case api.EventError:
			o.logger.Printf("orchestrator: stream error: %v", ev.Err)
			o.notify(Notice{Kind: NoticeError, ConversationID: convID, Err: ev.Err})
		}
	}
	return chartFetched
}

// =============================================================================
// STORE SYNC
// =============================================================================

// refresh replaces the stored conversation with the backend's version
// and persists the updated list. Failures are logged; the optimistic
// state stays until the next successful refresh.
func (o *Orchestrator) refresh(ctx context.Context, convID string) {
	conv, err := o.client.GetConversation(ctx, convID)
	if err != nil {
		o.logger.Printf("orchestrator: refresh of %s failed: %v", convID, err)
		return
	}
	markSyntheticTurns(conv)
	o.convs.ReplaceByID(*conv)
	o.saveCache()
	o.notify(Notice{Kind: NoticeConversationsChanged, ConversationID: convID})
}

// RefreshConversations reloads the user's whole conversation list.
func (o *Orchestrator) RefreshConversations(ctx context.Context) error {
	userID := o.auth.UserID()
	if userID == "" {
		return ErrNotSignedIn
	}
	convs, err := o.client.ListConversations(ctx, userID)
	if err != nil {
		return err
	}
	for i := range convs {
		markSyntheticTurns(&convs[i])
	}
	o.convs.SetAll(convs)
	o.saveCache()
	o.notify(Notice{Kind: NoticeConversationsChanged})
	return nil
}

// LoadCachedConversations seeds the store from the on-disk cache so
// the sidebar has content before the first refresh. Missing or stale
// caches are silently skipped.
func (o *Orchestrator) LoadCachedConversations() {
	userID := o.auth.UserID()
	if userID == "" || o.cache == nil {
		return
	}
	convs, err := o.cache.Load(userID)
	if err != nil {
		o.logger.Printf("orchestrator: cache load failed: %v", err)
		return
	}
	if convs == nil {
		return
	}
	for i := range convs {
		markSyntheticTurns(&convs[i])
	}
	o.convs.SetAll(convs)
	o.notify(Notice{Kind: NoticeConversationsChanged})
}

// DeleteConversation removes a conversation on the backend and in the
// store.
func (o *Orchestrator) DeleteConversation(ctx context.Context, convID string) error {
	if err := o.client.DeleteConversation(ctx, convID); err != nil {
		return err
	}
	o.convs.RemoveByID(convID)
	o.saveCache()
	o.notify(Notice{Kind: NoticeConversationsChanged})
	return nil
}

// RenameConversation changes a conversation's title.
func (o *Orchestrator) RenameConversation(ctx context.Context, convID, title string) error {
	conv, err := o.client.UpdateTitle(ctx, convID, title)
	if err != nil {
		return err
	}
	markSyntheticTurns(conv)
	o.convs.ReplaceByID(*conv)
	o.saveCache()
	o.notify(Notice{Kind: NoticeConversationsChanged, ConversationID: convID})
	return nil
}

// saveCache persists the current list. Log-only on failure.
func (o *Orchestrator) saveCache() {
	if o.cache == nil {
		return
	}
	userID := o.auth.UserID()
	if userID == "" {
		return
	}
	if err := o.cache.Save(userID, o.convs.All()); err != nil {
		o.logger.Printf("orchestrator: cache save failed: %v", err)
	}
}

// markSyntheticTurns tags the client-injected prompts in a transcript
// fetched from the backend, which stores them as ordinary user turns.
// Tagging once at ingest keeps the view free of content matching.
func markSyntheticTurns(conv *model.Conversation) {
	for i := range conv.Messages {
		m := &conv.Messages[i]
		if m.Role != model.RoleUser {
			continue
		}
		switch m.Content {
		case promptInterpretDraw, promptChartReady, promptProfileDone:
			m.Kind = model.KindSynthetic
		}
	}
}
