// SPDX-License-Identifier: MIT
package telemetry

import (
	"testing"

	"dspengine/internal/dsp"
	"dspengine/internal/dsp/fft"
	"dspengine/internal/subtitle"
)

func newTestSurface() *Surface {
	clock := dsp.NewClock(48000)
	analyzer := fft.NewAnalyzer(48000)
	store := subtitle.NewStore()
	selector := subtitle.NewSelector(store)
	return NewSurface(clock, analyzer, selector, store)
}

func TestSurfaceDefaultGainIsOne(t *testing.T) {
	s := newTestSurface()
	if got := s.Gain(); got != 1.0 {
		t.Errorf("default gain: got %v, want 1.0", got)
	}
}

func TestSurfaceSetGetRMS(t *testing.T) {
	s := newTestSurface()
	s.SetRMS(0.707)
	if got := s.RMS(); got != 0.707 {
		t.Errorf("got %v, want 0.707", got)
	}
}

func TestSurfaceNeutralAfterReset(t *testing.T) {
	s := newTestSurface()
	s.SetRMS(0.5)
	s.Reset()

	if got := s.RMS(); got != 0 {
		t.Errorf("RMS after reset: got %v, want 0", got)
	}
	if got := s.SubtitleIndex(); got != -1 {
		t.Errorf("SubtitleIndex after reset: got %d, want -1", got)
	}
}

func TestSurfaceSnapshotCopiesMagnitudes(t *testing.T) {
	s := newTestSurface()
	snap := s.Snapshot()

	if len(snap.Magnitudes) != fft.Bins {
		t.Fatalf("snapshot magnitudes length: got %d, want %d", len(snap.Magnitudes), fft.Bins)
	}

	// Mutating the live analyzer buffer must not affect a taken snapshot.
	snap.Magnitudes[0] = 99
	if got := s.Magnitudes()[0]; got == 99 {
		t.Error("Snapshot aliased the live magnitude buffer")
	}
}

func TestSurfaceRunningFlag(t *testing.T) {
	s := newTestSurface()
	if s.Running() {
		t.Error("new surface should report not running")
	}
	s.SetRunning(true)
	if !s.Running() {
		t.Error("expected running after SetRunning(true)")
	}
}
