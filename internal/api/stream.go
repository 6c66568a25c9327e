// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/arcana-tui/internal/model"
)

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// EventKind tags a decoded stream event.
type EventKind int

const (
	// EventChunk carries a fragment of assistant text. The consumer is
	// responsible for accumulation.
	EventChunk EventKind = iota
	// EventDrawCards asks the user to perform a card draw.
	EventDrawCards
	// EventNeedProfile asks the client to collect the birth profile.
	EventNeedProfile
	// EventFetchChart asks the client to trigger chart computation.
	EventFetchChart
	// EventError reports a transport failure mid-stream. It is always
	// the final event on the channel.
	EventError
)

// Event is one decoded element of a chat response stream.
type Event struct {
	Kind EventKind

	// Content is set for EventChunk.
	Content string

	// Draw is set for EventDrawCards.
	Draw *model.DrawCardsRequest

	// Instruction is the raw instruction payload for EventNeedProfile
	// and EventFetchChart. Diagnostic only; the kind is the contract.
	Instruction string

	// Err is set for EventError.
	Err error
}

// Persona selects which AI endpoint a chat message goes to.
type Persona string

const (
	PersonaTarot     Persona = "tarot"
	PersonaAstrology Persona = "astrology"
)

// messagePath returns the streaming chat endpoint for the persona.
func (p Persona) messagePath() string {
	return "/api/" + string(p) + "/message"
}

// drawPath returns the card-draw endpoint for the persona.
func (p Persona) drawPath() string {
	return "/api/" + string(p) + "/draw"
}

// PersonaFor maps a session type to the persona that serves it. The
// reserved chat type falls back to tarot, matching the backend default.
func PersonaFor(sessionType model.SessionType) Persona {
	if sessionType == model.SessionAstrology {
		return PersonaAstrology
	}
	return PersonaTarot
}

// sendMessageRequest is the body for the streaming chat endpoints.
// Empty content is valid: it asks the assistant to open the
// conversation unprompted.
type sendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// streamPayload covers every payload shape the backend interleaves into
// one stream. Shapes are mutually exclusive per event and checked in
// declaration order.
type streamPayload struct {
	Content     *string                 `json:"content"`
	DrawCards   *model.DrawCardsRequest `json:"draw_cards"`
	NeedProfile json.RawMessage         `json:"need_profile"`
	FetchChart  json.RawMessage         `json:"fetch_chart"`
}

// =============================================================================
// STREAMING SEND
// =============================================================================

// doneSentinel terminates a stream; nothing after it is decoded.
const doneSentinel = "[DONE]"

// StreamMessage posts a chat message to the persona's streaming
// endpoint and returns a channel of decoded events in stream order.
//
// The channel is closed after the [DONE] sentinel (or EOF), so "no
// events after DONE" holds structurally: the decoder stops reading and
// no later bytes can surface. A non-2xx response fails immediately with
// ErrRequestFailed before any event is produced; a missing body fails
// with ErrStreamUnavailable. Transport failures mid-stream arrive as a
// final EventError; chunks already delivered are not retracted.
//
// The decoder never retries. Retry policy, if any, belongs to callers.
func (c *Client) StreamMessage(ctx context.Context, persona Persona, conversationID, content string) (<-chan Event, error) {
	body, err := json.Marshal(sendMessageRequest{ConversationID: conversationID, Content: content})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+persona.messagePath(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.errorFromResponse(resp.StatusCode, io.LimitReader(resp.Body, MaxResponseSize))
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrStreamUnavailable
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		c.decodeStream(ctx, resp.Body, events)
	}()

	return events, nil
}

// decodeStream reads SSE lines from r and emits decoded events until
// the [DONE] sentinel, EOF, or a transport error.
func (c *Client) decodeStream(ctx context.Context, r io.Reader, events chan<- Event) {
	reader := bufio.NewReader(r)

	for {
		select {
		case <-ctx.Done():
			events <- Event{Kind: EventError, Err: ctx.Err()}
			return
		default:
		}

		// ReadString buffers partial lines internally, so a line split
		// across read boundaries is never parsed prematurely.
		line, err := reader.ReadString('\n')
		if line != "" {
			if done := c.decodeLine(line, events); done {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				events <- Event{Kind: EventError, Err: err}
			}
			return
		}
	}
}

// decodeLine parses one stream line, emitting at most one event.
// Returns true when the DONE sentinel was reached.
func (c *Client) decodeLine(line string, events chan<- Event) bool {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "data: ") {
		// Blank keep-alive lines and unknown SSE fields are ignored.
		return false
	}

	data := line[len("data: "):]
	if data == doneSentinel {
		return true
	}

	var payload streamPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		// One malformed line must not abort the stream.
		c.logger.Printf("stream: skipping malformed line: %v", err)
		return false
	}

	switch {
	case payload.Content != nil:
		events <- Event{Kind: EventChunk, Content: *payload.Content}
	case payload.DrawCards != nil:
		events <- Event{Kind: EventDrawCards, Draw: payload.DrawCards}
	case payload.NeedProfile != nil:
		events <- Event{Kind: EventNeedProfile, Instruction: string(payload.NeedProfile)}
	case payload.FetchChart != nil:
		events <- Event{Kind: EventFetchChart, Instruction: string(payload.FetchChart)}
	default:
		c.logger.Printf("stream: skipping unrecognized payload: %s", data)
	}
	return false
}
