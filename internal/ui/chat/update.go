// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/neural-tui/internal/audio"
	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/model"
	"github.com/jeranaias/neural-tui/internal/session"
	"github.com/jeranaias/neural-tui/internal/stream"
	"github.com/jeranaias/neural-tui/internal/typewriter"
	"github.com/jeranaias/neural-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update is the single mutation point for all chat state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case GatewayEventMsg:
		cmds = append(cmds, m.handleEvent(msg.Event))

	case GatewayClosedMsg:
		m.statusbar.SetConn(components.ConnOffline)
		cmds = append(cmds, m.toasts.PushError("Connection to backend lost"))

	case SendFailedMsg:
		cmds = append(cmds, m.handleSendFailed(msg))

	case stream.ThinkingRevealMsg:
		if m.asm.Reveal(msg.Epoch) {
			m.spinner.Stop()
			m.tw.SetTarget(m.asm.VisibleTarget())
			cmds = append(cmds, m.tw.StartCmd())
			m.refreshTranscript()
		}

	case typewriter.TickMsg:
		interval, more := m.tw.Tick()
		m.refreshTranscript()
		if more {
			cmds = append(cmds, typewriter.TickCmd(interval))
		}

	case audio.PlaybackDoneMsg:
		m.aud.HandleDone(msg)
		if msg.Err != nil {
			log.Printf("chat: playback ended with error: %v", msg.Err)
		}

	case session.ResetSettledMsg:
		m.ctl.Settle()

	case ConfigReloadedMsg:
		m.applyConfig(msg.Cfg)
		cmds = append(cmds, m.toasts.PushStatus("Config reloaded"))

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg)

	default:
		cmds = append(cmds, m.spinner.Update(msg))
	}

	// Non-key messages still drive the blink cursor and viewport inertia.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// GATEWAY EVENT DISPATCH
// =============================================================================

// handleEvent routes one decoded backend event. Events touching the active
// conversation are dropped while a hard reset settles.
func (m *Model) handleEvent(ev gateway.Event) tea.Cmd {
	switch p := ev.Payload.(type) {
	case *gateway.SystemStatusPayload:
		if p.Status == gateway.StatusIdle {
			m.statusbar.SetConn(components.ConnIdle)
		} else {
			m.statusbar.SetConn(components.ConnBusy)
		}
		return nil

	case *gateway.ModelsDataPayload:
		m.setProviders(p.Providers)
		return nil

	case *gateway.ChatChunkPayload:
		if m.ctl.Resetting() {
			return nil
		}
		cmd := m.asm.ApplyChunk(p.Content)
		var tick tea.Cmd
		if m.asm.VisibleTarget() != "" {
			m.tw.SetTarget(m.asm.VisibleTarget())
			tick = m.tw.StartCmd()
		}
		m.refreshTranscript()
		return tea.Batch(cmd, tick)

	case *gateway.ChatEndPayload:
		if m.ctl.Resetting() {
			return nil
		}
		if !m.asm.ApplyEnd(p.TotalContent, p.Metrics) {
			return nil
		}
		m.spinner.Stop()
		m.tw.SetTarget(p.TotalContent)
		m.statusbar.SetMetrics(&p.Metrics)
		m.refreshTranscript()
		return m.tw.StartCmd()

	case *gateway.ErrorPayload:
		if m.ctl.Resetting() {
			return nil
		}
		m.asm.ApplyError(p.Message)
		m.spinner.Stop()
		m.tw.Reset()
		m.refreshTranscript()
		return m.toasts.PushError(p.Message)

	case *gateway.GenerationStoppedPayload:
		if m.ctl.Resetting() {
			return nil
		}
		m.asm.ApplyStopped()
		m.spinner.Stop()
		conv := m.ctl.Conversation()
		last := conv.Last()
		if last != nil && last.Role == model.RoleAssistant && last.Content == model.Placeholder {
			// Stopped before anything was revealed: no reply to keep.
			conv.Remove(conv.Len() - 1)
			m.tw.Reset()
			m.refreshTranscript()
			return nil
		}
		if last != nil {
			m.tw.SetTarget(last.Content)
		}
		m.refreshTranscript()
		return m.tw.StartCmd()

	case *gateway.SessionsListPayload:
		m.sidebar.SetSessions(p.Sessions)
		m.sidebar.SetActive(m.ctl.SessionID())
		if m.cache != nil {
			if err := m.cache.ReplaceAll(p.Sessions); err != nil {
				log.Printf("chat: session cache write failed: %v", err)
			}
		}
		return nil

	case *gateway.SessionLoadedPayload:
		msgs := make([]*model.Message, 0, len(p.Messages))
		for _, sm := range p.Messages {
			msgs = append(msgs, sm.ToModel())
		}
		settle := m.ctl.ApplyLoaded(p.SessionID, msgs)
		if settle == nil {
			return nil
		}
		m.swapPipelines()
		m.viewport.GotoBottom()
		return settle

	case *gateway.NewSessionTitlePayload:
		m.ctl.ApplyTitle(p.SessionID, p.Title)
		if m.cache != nil {
			if err := m.cache.UpdateTitle(p.SessionID, p.Title); err != nil {
				log.Printf("chat: title cache write failed: %v", err)
			}
		}
		sessions := m.sidebar.Sessions()
		for i := range sessions {
			if sessions[i].ID == p.SessionID {
				sessions[i].Title = p.Title
			}
		}
		m.sidebar.SetSessions(sessions)
		return nil

	case *gateway.TTSReadyPayload:
		if m.ctl.Resetting() {
			return nil
		}
		return m.aud.HandleReady(p.TextID, p.URL)

	case *gateway.TTSErrorPayload:
		if m.aud.HandleError(p.TextID) {
			return m.toasts.PushError(p.Message)
		}
		return nil

	default:
		log.Printf("chat: unhandled event %q", ev.Kind)
		return nil
	}
}

// swapPipelines rebinds the stream, typewriter, and audio pipelines to the
// controller's current conversation. Any in-flight work lands stale.
func (m *Model) swapPipelines() {
	m.asm.Cancel()
	m.asm.Bind(m.ctl.Conversation())
	m.tw.Reset()
	m.aud.ForceIdle()
	m.spinner.Stop()
	m.sidebar.SetActive(m.ctl.SessionID())
	m.sidebar.SetDeletePending("")
	m.statusbar.SetMetrics(nil)
	m.refreshTranscript()
}

func (m *Model) handleSendFailed(msg SendFailedMsg) tea.Cmd {
	switch {
	case gateway.IsRateLimited(msg.Err):
		return m.toasts.PushError("Slow down: too many requests")
	case gateway.IsClosed(msg.Err):
		m.statusbar.SetConn(components.ConnOffline)
		return m.toasts.PushError("Not connected to backend")
	default:
		return m.toasts.PushError(msg.Err.Error())
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.Sidebar) {
		if m.showSidebar && m.focusSidebar {
			m.focusSidebar = false
			m.input.Focus()
		} else {
			m.showSidebar = true
			m.focusSidebar = true
			m.input.Blur()
		}
		m.resize(m.width, m.height)
		return m, nil
	}

	if m.focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SidebarUp):
		m.sidebar.CursorUp()

	case key.Matches(msg, m.keys.SidebarDown):
		m.sidebar.CursorDown()

	case key.Matches(msg, m.keys.SidebarOpen):
		sel, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if !m.ctl.BeginLoad(sel.ID) {
			// Already on screen; just hand focus back.
			m.focusSidebar = false
			m.input.Focus()
			return m, nil
		}
		return m, m.sendCmd(func() error { return m.gw.LoadSession(sel.ID) })

	case key.Matches(msg, m.keys.Delete):
		sel, ok := m.sidebar.Selected()
		if !ok {
			return m, nil
		}
		if m.ctl.RequestDelete(sel.ID) {
			m.sidebar.SetDeletePending("")
			m.ctl.ApplyDeleted(sel.ID)
			if m.cache != nil {
				if err := m.cache.Remove(sel.ID); err != nil {
					log.Printf("chat: cache remove failed: %v", err)
				}
			}
			return m, m.sendCmd(func() error { return m.gw.DeleteSession(sel.ID) })
		}
		m.sidebar.SetDeletePending(sel.ID)

	case key.Matches(msg, m.keys.Cancel):
		m.ctl.CancelDelete()
		m.sidebar.SetDeletePending("")
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.Stop):
		if m.asm.Streaming() {
			return m, m.sendCmd(func() error { return m.gw.StopGeneration() })
		}
		return m, nil

	case key.Matches(msg, m.keys.NewSession):
		return m, m.newSession()

	case key.Matches(msg, m.keys.Retry):
		return m, m.retryLastExchange()

	case key.Matches(msg, m.keys.DeleteLast):
		m.deleteLastExchange()
		return m, nil

	case key.Matches(msg, m.keys.PlayAudio):
		return m, m.toggleLastReplyAudio()

	case key.Matches(msg, m.keys.NextModel):
		m.cycleModel()
		return m, nil

	case key.Matches(msg, m.keys.NextProv):
		m.cycleProvider()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.toasts.DismissAll()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit sends the typed prompt. One exchange at a time: submission is
// refused while a reply is in flight.
func (m *Model) submit() tea.Cmd {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return nil
	}
	if m.asm.Streaming() || m.statusbar.Conn() == components.ConnBusy {
		return m.toasts.PushStatus("Still generating; C-s to stop")
	}

	m.asm.Begin(content)
	m.tw.Reset()
	m.input.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	sessionID := m.ctl.SessionID()
	provider, modelName := m.provider, m.modelName
	return tea.Batch(
		m.spinner.Start(),
		m.sendCmd(func() error {
			return m.gw.SendMessage(content, sessionID, provider, modelName)
		}),
	)
}

// newSession performs the hard reset: everything in flight is abandoned
// and a fresh empty session takes over.
func (m *Model) newSession() tea.Cmd {
	settle := m.ctl.Reset()
	m.swapPipelines()
	return settle
}

// retryLastExchange rewinds past the last reply and resubmits the prompt
// that produced it.
func (m *Model) retryLastExchange() tea.Cmd {
	conv := m.ctl.Conversation()
	if m.asm.Streaming() {
		return nil
	}
	last := conv.Len() - 1
	if last < 0 || conv.At(last).Role != model.RoleAssistant {
		return nil
	}
	prompt, ok := conv.TruncateForRetry(last)
	if !ok {
		return nil
	}

	m.asm.BeginRetry()
	m.tw.Reset()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	sessionID := m.ctl.SessionID()
	provider, modelName := m.provider, m.modelName
	return tea.Batch(
		m.spinner.Start(),
		m.sendCmd(func() error {
			return m.gw.SendMessage(prompt, sessionID, provider, modelName)
		}),
	)
}

// deleteLastExchange removes the newest reply and the prompt that produced
// it. Refused while a reply is in flight; the stream would be left without
// a target.
func (m *Model) deleteLastExchange() {
	if m.asm.Streaming() {
		return
	}
	conv := m.ctl.Conversation()
	last := conv.Len() - 1
	if last < 0 || conv.At(last).Role != model.RoleAssistant {
		return
	}
	conv.Remove(last)
	if last-1 >= 0 && conv.At(last-1).Role == model.RoleUser {
		conv.Remove(last - 1)
	}
	m.tw.Reset()
	m.aud.ForceIdle()
	m.refreshTranscript()
}

// cycleModel steps the selection to the next model of the current provider.
func (m *Model) cycleModel() {
	models := m.providers[m.provider]
	if len(models) < 2 {
		return
	}
	for i, name := range models {
		if name == m.modelName {
			m.modelName = models[(i+1)%len(models)]
			m.statusbar.SetSelection(m.provider, m.modelName)
			return
		}
	}
	m.modelName = models[0]
	m.statusbar.SetSelection(m.provider, m.modelName)
}

// cycleProvider steps to the next provider that advertises at least one
// model, carrying the selection to its first model.
func (m *Model) cycleProvider() {
	if len(m.providers) < 2 {
		return
	}
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	start := 0
	for i, name := range names {
		if name == m.provider {
			start = i
			break
		}
	}
	for off := 1; off <= len(names); off++ {
		next := names[(start+off)%len(names)]
		if len(m.providers[next]) > 0 {
			m.provider = next
			m.modelName = m.providers[next][0]
			m.statusbar.SetSelection(m.provider, m.modelName)
			return
		}
	}
}

// toggleLastReplyAudio requests speech for the newest settled reply, or
// stops it when it is already playing.
func (m *Model) toggleLastReplyAudio() tea.Cmd {
	if !m.cfg.Audio.Enabled {
		return nil
	}
	conv := m.ctl.Conversation()
	for i := conv.Len() - 1; i >= 0; i-- {
		msg := conv.At(i)
		if msg.Role != model.RoleAssistant || msg.Streaming || msg.IsPlaceholder() {
			continue
		}
		token, start := m.aud.Request(i)
		if !start {
			return nil
		}
		text := msg.Content
		return m.sendCmd(func() error { return m.gw.GenerateTTS(text, token) })
	}
	return nil
}
