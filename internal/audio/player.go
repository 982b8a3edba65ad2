// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"errors"
	"os/exec"
	"sync"
)

// =============================================================================
// PLAYER
// =============================================================================

// Player renders one audio file at a time. Play blocks until the clip ends
// or Stop interrupts it; Stop on an idle player is a no-op.
type Player interface {
	Play(path string) error
	Stop()
}

// ErrNoPlayer means no supported playback binary was found on PATH.
var ErrNoPlayer = errors.New("no audio player binary found")

// playerCandidates are tried in order. Each plays a wav file passed as the
// final argument and exits when the clip ends.
var playerCandidates = [][]string{
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpv", "--no-video", "--really-quiet"},
}

// ExecPlayer shells out to the first available system playback binary.
type ExecPlayer struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	argv []string
}

// NewExecPlayer locates a playback binary on PATH. An explicit command
// overrides detection; empty means autodetect.
func NewExecPlayer(command string) (*ExecPlayer, error) {
	if command != "" {
		if _, err := exec.LookPath(command); err != nil {
			return nil, err
		}
		return &ExecPlayer{argv: []string{command}}, nil
	}
	for _, candidate := range playerCandidates {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return &ExecPlayer{argv: candidate}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Play runs the playback binary and blocks until it exits. A concurrent
// Stop kills the process, which surfaces here as an error; callers treat
// any exit as "playback over".
func (p *ExecPlayer) Play(path string) error {
	args := append(append([]string{}, p.argv[1:]...), path)
	cmd := exec.Command(p.argv[0], args...)

	p.mu.Lock()
	if p.cmd != nil {
		p.mu.Unlock()
		return errors.New("player is busy")
	}
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.cmd = cmd
	p.mu.Unlock()

	err := cmd.Wait()

	p.mu.Lock()
	p.cmd = nil
	p.mu.Unlock()
	return err
}

// Stop kills the running playback process, if any.
func (p *ExecPlayer) Stop() {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
