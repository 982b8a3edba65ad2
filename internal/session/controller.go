// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/neural-tui/internal/model"
)

// =============================================================================
// SESSION IDS
// =============================================================================

// NewSessionID mints a client-side session id. The backend adopts it as-is
// when the first prompt arrives, so it only has to be unique per client.
func NewSessionID() string {
	ms := time.Now().UnixMilli()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "sess_" + strconv.FormatInt(ms, 10) + "_" + suffix
}

// =============================================================================
// MESSAGES
// =============================================================================

// ResetSettle is how long a hard reset stays guarded. Long enough for any
// already-queued events to drain through the update loop and land stale.
const ResetSettle = 10 * time.Millisecond

// ResetSettledMsg ends the reset guard.
type ResetSettledMsg struct{}

// settleCmd arms the reset guard timer.
func settleCmd() tea.Cmd {
	return tea.Tick(ResetSettle, func(time.Time) tea.Msg {
		return ResetSettledMsg{}
	})
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the active conversation. There is always exactly one;
// swaps replace it wholesale rather than mutating it in place.
type Controller struct {
	conv *model.Conversation

	// resetting gates inbound stream events while a hard reset settles.
	resetting bool

	// loading is the session id we asked the backend for, if any.
	loading string

	// pendingDelete is the session id awaiting its second confirmation.
	pendingDelete string
}

// NewController starts with a fresh, empty local session.
func NewController() *Controller {
	return &Controller{conv: model.NewConversation(NewSessionID())}
}

// Conversation returns the active conversation.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// SessionID returns the active session id.
func (c *Controller) SessionID() string {
	return c.conv.SessionID
}

// Resetting reports whether a hard reset is still settling. The update
// loop drops stream and audio events while this holds.
func (c *Controller) Resetting() bool {
	return c.resetting
}

// =============================================================================
// NEW SESSION (HARD RESET)
// =============================================================================

// Reset swaps in a brand-new empty session and raises the settle guard.
// The caller cancels the stream and audio pipelines around this call; the
// returned command lowers the guard after ResetSettle.
func (c *Controller) Reset() tea.Cmd {
	c.conv = model.NewConversation(NewSessionID())
	c.resetting = true
	c.loading = ""
	c.pendingDelete = ""
	return settleCmd()
}

// Settle lowers the reset guard.
func (c *Controller) Settle() {
	c.resetting = false
}

// =============================================================================
// LOADING PERSISTED SESSIONS
// =============================================================================

// BeginLoad records intent to switch to sessionID. Returns false when the
// session is already active, in which case nothing should be requested.
func (c *Controller) BeginLoad(sessionID string) bool {
	if sessionID == c.conv.SessionID {
		return false
	}
	c.loading = sessionID
	return true
}

// ApplyLoaded swaps in a loaded session's history. The swap is guarded the
// same way Reset is: the settle timer from the returned command lowers the
// guard, and stream events arriving before then land stale. History arriving
// for a session nobody is waiting on anymore is dropped and nil is returned.
func (c *Controller) ApplyLoaded(sessionID string, messages []*model.Message) tea.Cmd {
	if sessionID != c.loading {
		return nil
	}
	c.conv = model.NewConversationWithMessages(sessionID, messages)
	c.resetting = true
	c.loading = ""
	c.pendingDelete = ""
	return settleCmd()
}

// ApplyTitle records the backend's generated title if it belongs to the
// active session.
func (c *Controller) ApplyTitle(sessionID, title string) bool {
	if sessionID != c.conv.SessionID {
		return false
	}
	c.conv.SetTitle(title)
	return true
}

// =============================================================================
// TWO-STEP DELETE
// =============================================================================

// RequestDelete advances the delete flow for sessionID. The first call
// arms the confirmation; a second call for the same id confirms it and
// returns true, meaning the deletion should actually be sent. Asking about
// a different session re-arms on that one instead.
func (c *Controller) RequestDelete(sessionID string) bool {
	if c.pendingDelete == sessionID {
		c.pendingDelete = ""
		return true
	}
	c.pendingDelete = sessionID
	return false
}

// PendingDelete returns the session awaiting confirmation, if any.
func (c *Controller) PendingDelete() (string, bool) {
	return c.pendingDelete, c.pendingDelete != ""
}

// CancelDelete disarms the confirmation.
func (c *Controller) CancelDelete() {
	c.pendingDelete = ""
}

// ApplyDeleted reconciles a completed deletion. Deleting the session you
// are looking at keeps the transcript on screen; it just no longer exists
// server-side, and the next prompt recreates it under the same id.
func (c *Controller) ApplyDeleted(sessionID string) {
	if c.pendingDelete == sessionID {
		c.pendingDelete = ""
	}
	if c.loading == sessionID {
		c.loading = ""
	}
}
