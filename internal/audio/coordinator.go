// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the coordinator's lifecycle state.
type Phase int

const (
	// PhaseIdle means no audio activity.
	PhaseIdle Phase = iota
	// PhaseLoading means a synthesis request is in flight.
	PhaseLoading
	// PhasePlaying means a clip is audible.
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// PlaybackDoneMsg reports that a clip finished (or was killed). Token ties
// it to the request that started it.
type PlaybackDoneMsg struct {
	Token int
	Err   error
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator serializes speech playback across messages. All methods run
// on the update loop; the only concurrency is the playback command it
// returns, which reports back via PlaybackDoneMsg.
type Coordinator struct {
	player Player

	phase Phase
	index int // message index owning the current activity
	token int // monotonic request id, bumped on every new request
}

// New creates an idle coordinator. player may be nil when no playback
// binary exists; requests then still load but completed clips are dropped.
func New(player Player) *Coordinator {
	return &Coordinator{player: player, index: -1}
}

// Phase returns the current lifecycle state.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// ActiveIndex returns the message index with audio activity, if any.
func (c *Coordinator) ActiveIndex() (int, bool) {
	if c.phase == PhaseIdle {
		return 0, false
	}
	return c.index, true
}

// Request handles an audio action on the message at index. The returned
// token identifies the new synthesis request; start is false when the
// action resolved locally (toggle-off or duplicate) and nothing should be
// sent to the backend.
func (c *Coordinator) Request(index int) (token int, start bool) {
	switch {
	case c.phase == PhasePlaying && c.index == index:
		// Toggle off.
		c.stopPlayer()
		c.phase = PhaseIdle
		c.index = -1
		return 0, false

	case c.phase == PhaseLoading && c.index == index:
		// Already being synthesized; pressing again does nothing.
		return 0, false

	default:
		// New target preempts whatever was active.
		c.stopPlayer()
		c.token++
		c.phase = PhaseLoading
		c.index = index
		return c.token, true
	}
}

// HandleReady accepts a completed synthesis. Results whose token does not
// match the current request are stale and are dropped; index equality is
// not enough, since the same message can be re-requested.
func (c *Coordinator) HandleReady(textID int, url string) tea.Cmd {
	if c.phase != PhaseLoading || textID != c.token {
		return nil
	}
	// A prior clip may still hold the player; release it before claiming.
	c.stopPlayer()
	c.phase = PhasePlaying
	return c.playCmd(c.token, url)
}

// HandleError resolves a failed synthesis. Reports whether the error
// belonged to the current request.
func (c *Coordinator) HandleError(textID int) bool {
	if c.phase != PhaseLoading || textID != c.token {
		return false
	}
	c.phase = PhaseIdle
	c.index = -1
	return true
}

// HandleDone resolves the end of playback. Stale completions (from a
// preempted clip) are ignored.
func (c *Coordinator) HandleDone(msg PlaybackDoneMsg) {
	if msg.Token != c.token || c.phase != PhasePlaying {
		return
	}
	c.phase = PhaseIdle
	c.index = -1
}

// ForceIdle abandons all audio activity. Used on session swaps: the token
// bump guarantees any in-flight result lands stale.
func (c *Coordinator) ForceIdle() {
	c.stopPlayer()
	c.token++
	c.phase = PhaseIdle
	c.index = -1
}

func (c *Coordinator) stopPlayer() {
	if c.player != nil {
		c.player.Stop()
	}
}

// playCmd downloads and plays one clip off the update loop.
func (c *Coordinator) playCmd(token int, url string) tea.Cmd {
	player := c.player
	return func() tea.Msg {
		path, err := FetchClip(context.Background(), url)
		if err != nil {
			return PlaybackDoneMsg{Token: token, Err: err}
		}
		defer os.Remove(path)
		if player == nil {
			return PlaybackDoneMsg{Token: token, Err: ErrNoPlayer}
		}
		return PlaybackDoneMsg{Token: token, Err: player.Play(path)}
	}
}
