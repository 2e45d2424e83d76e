// SPDX-License-Identifier: MIT
package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dspengine/internal/audiosource"
	"dspengine/internal/config"
)

// requirePortAudio skips the test if the host has no usable PortAudio
// subsystem, mirroring the teacher's device tests: these exercise the real
// audio stack and are meaningless on a machine with none.
func requirePortAudio(t *testing.T) {
	t.Helper()
	if err := audiosource.Initialize(); err != nil {
		t.Skipf("no usable PortAudio subsystem: %v", err)
	}
	audiosource.Terminate()
}

func testConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

func TestInitPlaybackWithEmptyPathFails(t *testing.T) {
	requirePortAudio(t)

	h, err := Init(testConfig(), Playback, "")
	if err == nil {
		h.Stop()
		t.Fatal("expected error for empty playback path")
	}
	if !strings.Contains(err.Error(), "file path") {
		t.Errorf("error = %q, want mention of file path", err)
	}
}

func TestInitPlaybackWithUnsupportedExtensionFails(t *testing.T) {
	requirePortAudio(t)

	path := filepath.Join(t.TempDir(), "sample.ogg")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	h, err := Init(testConfig(), Playback, path)
	if err == nil {
		h.Stop()
		t.Fatal("expected error for unsupported file extension")
	}
	if !strings.Contains(err.Error(), "unsupported file extension") {
		t.Errorf("error = %q, want mention of unsupported extension", err)
	}
}

func TestInitWithNilConfigFails(t *testing.T) {
	requirePortAudio(t)

	if _, err := Init(nil, Capture, ""); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestStopIsSafeWhenNoEngineRunning(t *testing.T) {
	h := &Handle{ctrl: nil}
	// Stop only inspects the package-level singleton, not h itself, so this
	// exercises the "no-op if absent" contract regardless of h's state.
	if err := h.Stop(); err != nil {
		t.Fatalf("Stop with no running engine: %v", err)
	}
}
