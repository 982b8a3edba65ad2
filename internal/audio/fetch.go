// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// fetchTimeout bounds one clip download. Clips are short wav files served
// by the local backend, so this is generous.
const fetchTimeout = 30 * time.Second

// FetchClip downloads a synthesized clip to a temp file and returns its
// path. The caller removes the file when playback ends.
func FetchClip(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch clip: unexpected status %s", resp.Status)
	}

	f, err := os.CreateTemp("", "neural-tts-*.wav")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
