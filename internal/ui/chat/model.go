// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"sort"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/neural-tui/internal/audio"
	"github.com/jeranaias/neural-tui/internal/config"
	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/session"
	"github.com/jeranaias/neural-tui/internal/storage"
	"github.com/jeranaias/neural-tui/internal/stream"
	"github.com/jeranaias/neural-tui/internal/typewriter"
	"github.com/jeranaias/neural-tui/internal/ui/components"
	"github.com/jeranaias/neural-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the root Bubble Tea model for the chat view.
type Model struct {
	gw    *gateway.Client
	cache *storage.SessionIndex // may be nil when the cache failed to open
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	// Core pipelines. The controller owns the conversation; the assembler
	// and typewriter operate on whatever it currently holds.
	ctl *session.Controller
	asm *stream.Assembler
	tw  *typewriter.Buffer
	aud *audio.Coordinator

	// Components
	viewport  viewport.Model
	input     textarea.Model
	spinner   components.Spinner
	sidebar   components.Sidebar
	statusbar components.StatusBar
	toasts    components.ToastStack

	// Model selection
	providers map[string][]string
	provider  string
	modelName string

	// Markdown rendering; nil falls back to the code-block parser.
	markdown *glamour.TermRenderer

	// Layout
	width        int
	height       int
	ready        bool
	showSidebar  bool
	focusSidebar bool
}

// New creates the chat view. cache may be nil.
func New(gw *gateway.Client, cache *storage.SessionIndex, player audio.Player, cfg *config.Config) *Model {
	ctl := session.NewController()

	tw := typewriter.New()
	tw.SetEnabled(cfg.Typewriter.Enabled)

	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.CharLimit = 0
	input.Focus()

	m := &Model{
		gw:          gw,
		cache:       cache,
		cfg:         cfg,
		theme:       styles.NewTheme(cfg.UI.Theme),
		keys:        DefaultKeyMap(),
		ctl:         ctl,
		asm:         stream.New(ctl.Conversation()),
		tw:          tw,
		aud:         audio.New(player),
		viewport:    viewport.New(0, 0),
		input:       input,
		spinner:     components.NewThinkingSpinner(),
		sidebar:     components.NewSidebar(),
		statusbar:   components.NewStatusBar(),
		provider:    cfg.Chat.DefaultProvider,
		modelName:   cfg.Chat.DefaultModel,
		showSidebar: cfg.UI.SidebarVisible,
	}
	m.sidebar.SetActive(ctl.SessionID())
	m.statusbar.SetSelection(m.provider, m.modelName)

	if cfg.UI.Markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			log.Printf("chat: markdown renderer unavailable: %v", err)
		} else {
			m.markdown = renderer
		}
	}

	if cache != nil {
		if sessions, err := cache.List(); err == nil && len(sessions) > 0 {
			m.sidebar.SetSessions(sessions)
		}
	}

	return m
}

// Init requests the initial session and model listings.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.sendCmd(func() error { return m.gw.RequestSessions() }),
		m.sendCmd(func() error { return m.gw.RequestModels() }),
	)
}

// sendCmd runs one outbound send and surfaces failures as a message.
func (m *Model) sendCmd(send func() error) tea.Cmd {
	return func() tea.Msg {
		if err := send(); err != nil {
			return SendFailedMsg{Err: err}
		}
		return nil
	}
}

// applyConfig re-applies a hot-reloaded configuration.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.tw.SetEnabled(cfg.Typewriter.Enabled)
	if m.provider == "" {
		m.provider = cfg.Chat.DefaultProvider
	}
	if m.modelName == "" {
		m.modelName = cfg.Chat.DefaultModel
	}
	m.statusbar.SetSelection(m.provider, m.modelName)
}

// setProviders records the backend's model listing and settles the
// selection on something that exists.
func (m *Model) setProviders(providers map[string][]string) {
	m.providers = providers

	if models, ok := providers[m.provider]; ok && len(models) > 0 {
		if m.modelName == "" || !contains(models, m.modelName) {
			m.modelName = models[0]
		}
	} else {
		names := make([]string, 0, len(providers))
		for name := range providers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if len(providers[name]) > 0 {
				m.provider = name
				m.modelName = providers[name][0]
				break
			}
		}
	}
	m.statusbar.SetSelection(m.provider, m.modelName)
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
