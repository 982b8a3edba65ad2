// neural TUI - A streaming terminal client for a conversational AI backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/jeranaias/neural-tui/internal/audio"
	"github.com/jeranaias/neural-tui/internal/config"
	"github.com/jeranaias/neural-tui/internal/gateway"
	"github.com/jeranaias/neural-tui/internal/storage"
	"github.com/jeranaias/neural-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("neural %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "neural: stdout is not a terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "neural: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)

	// All diagnostics go to a file; the terminal belongs to the TUI.
	setupLogging()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "neural: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging redirects the standard logger to ~/.neural/logs/neural.log.
// Failures fall back to discarding output rather than scribbling over the
// alternate screen.
func setupLogging() {
	path, err := config.LogPath()
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			var f *os.File
			if f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
				log.SetOutput(f)
				log.SetFlags(log.LstdFlags | log.Lmicroseconds)
				return
			}
		}
	}
	log.SetOutput(io.Discard)
}

func run(cfg *config.Config) error {
	// Session index cache is best-effort: the sidebar just starts empty
	// until the backend's listing arrives.
	var cache *storage.SessionIndex
	if path, err := config.CachePath(); err == nil {
		if cache, err = storage.Open(path); err != nil {
			log.Printf("main: session cache unavailable: %v", err)
			cache = nil
		}
	}
	if cache != nil {
		defer cache.Close()
	}

	// Audio is optional as well: with no player binary on PATH the toggle
	// key simply does nothing.
	var player audio.Player
	if cfg.Audio.Enabled {
		p, err := audio.NewExecPlayer(cfg.Audio.Player)
		if err != nil {
			log.Printf("main: audio disabled: %v", err)
		} else {
			player = p
		}
	}

	client := gateway.NewClientWithConfig(&gateway.ClientConfig{
		URL:         cfg.Backend.URL,
		DialTimeout: time.Duration(cfg.Backend.DialTimeoutSecs) * time.Second,
		SendRate:    rate.Limit(cfg.Backend.SendRate),
		SendBurst:   cfg.Backend.SendBurst,
	})

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.DialTimeoutSecs)*time.Second)
	err := client.Dial(dialCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot reach backend at %s: %w", cfg.Backend.URL, err)
	}
	defer client.Close()

	m := chat.New(client, cache, player, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Pump decoded backend events into the program. Channel order is wire
	// order, and p.Send preserves it.
	go func() {
		for ev := range client.Events() {
			p.Send(chat.GatewayEventMsg{Event: ev})
		}
		p.Send(chat.GatewayClosedMsg{})
	}()

	// Hot-reload config edits while the TUI runs.
	watcher, err := config.NewWatcher(func(reloaded *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Cfg: reloaded})
	})
	if err != nil {
		log.Printf("main: config watcher unavailable: %v", err)
	} else {
		if werr := watcher.Watch(); werr != nil {
			log.Printf("main: config watch failed: %v", werr)
		}
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal error: %w", err)
	}
	return nil
}
