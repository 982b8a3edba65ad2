// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway wraps the single logical event channel to the chat
// backend.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the gateway client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConnected
	ErrTypeClosed
	ErrTypeRateLimited
	ErrTypeEncode
	ErrTypeWrite
)

// Sentinel errors for easy checking.
var (
	ErrNotConnected = &ClientError{Type: ErrTypeNotConnected, Message: "gateway is not connected"}
	ErrClosed       = &ClientError{Type: ErrTypeClosed, Message: "gateway is closed"}
	ErrRateLimited  = &ClientError{Type: ErrTypeRateLimited, Message: "send rate exceeded"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the gateway client.
type ClientConfig struct {
	// URL is the backend websocket endpoint.
	// Uses explicit IPv4 to avoid IPv6 resolution issues on Windows.
	URL string

	// DialTimeout bounds connection establishment (default: 5s).
	DialTimeout time.Duration

	// WriteTimeout bounds a single outbound send (default: 10s).
	WriteTimeout time.Duration

	// SendRate and SendBurst throttle outbound events, mirroring the
	// backend's per-client limiter so the client fails fast locally instead
	// of tripping the remote limit.
	SendRate  rate.Limit
	SendBurst int

	// EventBuffer is the inbound channel capacity (default: 64).
	EventBuffer int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		URL:          "ws://127.0.0.1:5678/ws",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendRate:     rate.Limit(10),
		SendBurst:    20,
		EventBuffer:  64,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the websocket event channel. Reads run on an internal goroutine
// and surface as decoded Events on Events(); writes are serialized by an
// internal mutex, so the Client is safe for concurrent use.
type Client struct {
	config *ClientConfig

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	limiter *rate.Limiter
	events  chan Event
}

// NewClient creates a gateway client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a gateway client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = "ws://127.0.0.1:5678/ws"
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.SendRate == 0 {
		config.SendRate = rate.Limit(10)
	}
	if config.SendBurst == 0 {
		config.SendBurst = 20
	}
	if config.EventBuffer == 0 {
		config.EventBuffer = 64
	}

	return &Client{
		config:  config,
		limiter: rate.NewLimiter(config.SendRate, config.SendBurst),
		events:  make(chan Event, config.EventBuffer),
	}
}

// Dial connects to the backend and starts the read loop. The events channel
// closes when the connection drops or Close is called.
func (c *Client) Dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeNotConnected, Message: "dial " + c.config.URL, Cause: err}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Events returns the inbound event stream. Decoded events arrive in wire
// order; the channel closes on disconnect.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close tears down the connection. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	close(c.events)
	return nil
}

// readLoop decodes inbound frames until the connection dies. Unknown kinds
// and malformed payloads are logged and dropped (closed enum: reject, don't
// reinterpret).
func (c *Client) readLoop(conn *websocket.Conn) {
	defer close(c.events)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()
			if !wasClosed {
				log.Printf("gateway: connection lost: %v", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("gateway: malformed frame dropped: %v", err)
			continue
		}

		ev, err := DecodeEvent(env)
		if err != nil {
			log.Printf("gateway: dropped %q event: %v", env.Event, err)
			continue
		}

		c.events <- ev
	}
}

// =============================================================================
// OUTBOUND SENDS
// =============================================================================

// Send encodes and writes one outbound event. Over-limit sends fail fast
// with ErrRateLimited rather than queueing; callers surface that to the
// user instead of silently delaying.
func (c *Client) Send(kind EventKind, payload any) error {
	if !c.limiter.Allow() {
		return ErrRateLimited
	}

	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &ClientError{Type: ErrTypeEncode, Message: "encode " + string(kind), Cause: err}
		}
		data = b
	}
	frame, err := json.Marshal(Envelope{Event: kind, Data: data})
	if err != nil {
		return &ClientError{Type: ErrTypeEncode, Message: "encode envelope", Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil {
		return ErrNotConnected
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return &ClientError{Type: ErrTypeWrite, Message: "write " + string(kind), Cause: err}
	}
	return nil
}

// RequestSessions asks for the current session index.
func (c *Client) RequestSessions() error {
	return c.Send(EventGetSessions, nil)
}

// RequestModels asks for a fresh provider/model scan.
func (c *Client) RequestModels() error {
	return c.Send(EventGetModels, nil)
}

// SendMessage submits a prompt for generation in the given session.
func (c *Client) SendMessage(content, sessionID, provider, modelName string) error {
	return c.Send(EventSendMessage, SendMessagePayload{
		Content:   content,
		SessionID: sessionID,
		Provider:  provider,
		Model:     modelName,
	})
}

// StopGeneration interrupts the in-flight reply.
func (c *Client) StopGeneration() error {
	return c.Send(EventStopGeneration, nil)
}

// LoadSession requests a persisted session's history.
func (c *Client) LoadSession(sessionID string) error {
	return c.Send(EventLoadSession, LoadSessionPayload{SessionID: sessionID})
}

// DeleteSession requests permanent deletion of a session.
func (c *Client) DeleteSession(sessionID string) error {
	return c.Send(EventDeleteSession, DeleteSessionPayload{SessionID: sessionID})
}

// GenerateTTS requests speech synthesis; id is echoed back on the result.
func (c *Client) GenerateTTS(text string, id int) error {
	return c.Send(EventGenerateTTS, GenerateTTSPayload{Text: text, ID: id})
}

// IsRateLimited reports whether err is the local send throttle.
func IsRateLimited(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeRateLimited
}

// IsClosed reports whether err indicates a closed or never-connected
// gateway.
func IsClosed(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && (ce.Type == ErrTypeClosed || ce.Type == ErrTypeNotConnected)
}
