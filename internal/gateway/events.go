// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway wraps the single logical event channel to the chat
// backend.
package gateway

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jeranaias/neural-tui/internal/model"
)

// =============================================================================
// EVENT KINDS
// =============================================================================

// EventKind identifies one message kind on the wire. The set is closed:
// decoding rejects kinds that are not listed here.
type EventKind string

// Outbound (client -> backend) kinds.
const (
	EventGetSessions    EventKind = "get_sessions"
	EventSendMessage    EventKind = "send_message"
	EventStopGeneration EventKind = "stop_generation"
	EventLoadSession    EventKind = "load_session"
	EventDeleteSession  EventKind = "delete_session"
	EventGenerateTTS    EventKind = "generate_tts"
	EventGetModels      EventKind = "get_models"
)

// Inbound (backend -> client) kinds.
const (
	EventSystemStatus      EventKind = "system_status"
	EventModelsData        EventKind = "models_data"
	EventChatChunk         EventKind = "chat_chunk"
	EventChatEnd           EventKind = "chat_end"
	EventError             EventKind = "error"
	EventGenerationStopped EventKind = "generation_stopped"
	EventSessionsList      EventKind = "sessions_list"
	EventSessionLoaded     EventKind = "session_loaded"
	EventNewSessionTitle   EventKind = "new_session_title"
	EventTTSReady          EventKind = "tts_ready"
	EventTTSError          EventKind = "tts_error"
)

// ErrUnknownEvent is returned when an envelope names a kind outside the
// closed enum.
var ErrUnknownEvent = errors.New("unknown event kind")

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the wire frame carrying one event.
type Envelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is a decoded inbound event as delivered to the application.
type Event struct {
	Kind    EventKind
	Payload any
}

// =============================================================================
// OUTBOUND PAYLOADS
// =============================================================================

// SendMessagePayload submits a user prompt for generation.
type SendMessagePayload struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// LoadSessionPayload requests the full history of a persisted session.
type LoadSessionPayload struct {
	SessionID string `json:"session_id"`
}

// DeleteSessionPayload requests permanent deletion of a session.
type DeleteSessionPayload struct {
	SessionID string `json:"session_id"`
}

// GenerateTTSPayload requests speech synthesis for a message. ID is the
// correlation token echoed back on tts_ready/tts_error.
type GenerateTTSPayload struct {
	Text string `json:"text"`
	ID   int    `json:"id"`
}

// =============================================================================
// INBOUND PAYLOADS
// =============================================================================

// StatusIdle is the backend status accepting new prompts.
const StatusIdle = "IDLE"

// SystemStatusPayload reports the backend generation state.
type SystemStatusPayload struct {
	Status string `json:"status"`
}

// ModelsDataPayload lists available models per provider.
type ModelsDataPayload struct {
	Providers map[string][]string `json:"providers"`
}

// ChatChunkPayload carries one reply fragment.
type ChatChunkPayload struct {
	Content string `json:"content"`
}

// ChatEndPayload is the terminal, authoritative reply event.
type ChatEndPayload struct {
	TotalContent string        `json:"total_content"`
	Metrics      model.Metrics `json:"metrics"`
}

// ErrorPayload reports a backend failure.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SessionInfo is one entry of the session index.
type SessionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SessionsListPayload carries the session index.
type SessionsListPayload struct {
	Sessions []SessionInfo `json:"sessions"`
}

// SessionMessage is one persisted message as the backend serializes it.
// Timestamps come over the wire as strings in assorted formats, so parsing
// is best-effort.
type SessionMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metrics   *model.Metrics `json:"metrics,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// ToModel converts a wire message to the in-memory model. Unparseable
// timestamps fall back to the zero time; unknown roles map to system so
// they stay visible instead of disappearing.
func (sm SessionMessage) ToModel() *model.Message {
	role := model.Role(sm.Role)
	if !role.Valid() {
		role = model.RoleSystem
	}
	ts, _ := time.Parse(time.RFC3339, sm.Timestamp)
	return &model.Message{
		Role:      role,
		Content:   sm.Content,
		Metrics:   sm.Metrics,
		Timestamp: ts,
	}
}

// SessionLoadedPayload delivers a session's full history.
type SessionLoadedPayload struct {
	SessionID string           `json:"session_id"`
	Messages  []SessionMessage `json:"messages"`
}

// NewSessionTitlePayload reports the backend's auto-generated title for a
// fresh session.
type NewSessionTitlePayload struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
}

// TTSReadyPayload reports a completed speech synthesis. TextID echoes the
// correlation token from generate_tts.
type TTSReadyPayload struct {
	URL    string `json:"url"`
	TextID int    `json:"text_id"`
}

// TTSErrorPayload reports a failed speech synthesis.
type TTSErrorPayload struct {
	Message string `json:"message"`
	TextID  int    `json:"text_id"`
}

// GenerationStoppedPayload confirms a user-triggered interrupt.
type GenerationStoppedPayload struct{}

// =============================================================================
// DECODING
// =============================================================================

// DecodeEvent decodes one inbound envelope into its typed payload.
// Kinds outside the closed enum return ErrUnknownEvent.
func DecodeEvent(env Envelope) (Event, error) {
	var payload any

	switch env.Event {
	case EventSystemStatus:
		payload = &SystemStatusPayload{}
	case EventModelsData:
		payload = &ModelsDataPayload{}
	case EventChatChunk:
		payload = &ChatChunkPayload{}
	case EventChatEnd:
		payload = &ChatEndPayload{}
	case EventError:
		payload = &ErrorPayload{}
	case EventGenerationStopped:
		payload = &GenerationStoppedPayload{}
	case EventSessionsList:
		payload = &SessionsListPayload{}
	case EventSessionLoaded:
		payload = &SessionLoadedPayload{}
	case EventNewSessionTitle:
		payload = &NewSessionTitlePayload{}
	case EventTTSReady:
		payload = &TTSReadyPayload{}
	case EventTTSError:
		payload = &TTSErrorPayload{}
	default:
		return Event{}, ErrUnknownEvent
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return Event{}, err
		}
	}

	return Event{Kind: env.Event, Payload: payload}, nil
}
