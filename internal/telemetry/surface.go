// SPDX-License-Identifier: MIT

// Package telemetry exposes the engine's lock-free, word-sized atomics to
// the host thread and to any registered network transport, without ever
// putting either on the audio callback's path.
package telemetry

import (
	"math"
	"sync/atomic"

	"dspengine/internal/dsp"
	"dspengine/internal/dsp/fft"
	"dspengine/internal/subtitle"
)

// Surface aggregates the engine's published state behind a single handle.
// currentRms and masterGain are word-sized floats stored via their bit
// pattern in an atomic.Uint32, the same trick the underlying C++ engine
// this was ported from gets for free from std::atomic<float>.
type Surface struct {
	isRunning  atomic.Bool
	currentRms atomic.Uint32
	masterGain atomic.Uint32

	clock    *dsp.Clock
	analyzer *fft.Analyzer
	selector *subtitle.Selector
	store    *subtitle.Store
}

// Snapshot is a point-in-time copy of the telemetry surface, suitable for
// handing to a network transport without holding any reference into the
// engine's live buffers.
type Snapshot struct {
	RMS           float32   `json:"rms"`
	Magnitudes    []float32 `json:"magnitudes"`
	MediaTime     float64   `json:"mediaTime"`
	SubtitleIndex int32     `json:"subtitleIndex"`
}

// NewSurface wires a Surface to the components it reports on. masterGain
// defaults to 1.0.
func NewSurface(clock *dsp.Clock, analyzer *fft.Analyzer, selector *subtitle.Selector, store *subtitle.Store) *Surface {
	s := &Surface{
		clock:    clock,
		analyzer: analyzer,
		selector: selector,
		store:    store,
	}
	s.masterGain.Store(math.Float32bits(1.0))
	return s
}

// SetRunning is called once on start and once on stop.
func (s *Surface) SetRunning(running bool) {
	s.isRunning.Store(running)
}

// Running reports whether the engine is currently started.
func (s *Surface) Running() bool {
	return s.isRunning.Load()
}

// SetRMS publishes the current RMS level. Called once per callback from the
// audio thread.
func (s *Surface) SetRMS(v float32) {
	s.currentRms.Store(math.Float32bits(v))
}

// RMS returns the most recently published RMS level.
func (s *Surface) RMS() float32 {
	return math.Float32frombits(s.currentRms.Load())
}

// SetGain updates the master gain applied to subsequent samples. Called
// from the host thread.
func (s *Surface) SetGain(v float32) {
	s.masterGain.Store(math.Float32bits(v))
}

// Gain returns the current master gain.
func (s *Surface) Gain() float32 {
	return math.Float32frombits(s.masterGain.Load())
}

// MediaTime returns totalFramesProcessed / sample rate, in seconds.
func (s *Surface) MediaTime() float64 {
	return s.clock.Seconds()
}

// FramesProcessed returns the monotonic frame counter.
func (s *Surface) FramesProcessed() uint64 {
	return s.clock.Frames()
}

// Magnitudes returns the current front magnitude buffer: exactly
// fft.Bins entries, never a torn frame.
func (s *Surface) Magnitudes() []float32 {
	return s.analyzer.Magnitudes()
}

// SubtitleIndex returns the currently active cue index, or -1.
func (s *Surface) SubtitleIndex() int32 {
	return s.selector.Index()
}

// SubtitleText returns the text of cue i, or "" if i is out of range.
func (s *Surface) SubtitleText(i int32) string {
	return s.store.Text(i)
}

// Snapshot copies the current telemetry into a value safe to hand to a
// transport goroutine. The magnitude slice is copied, not aliased: a
// transport may hold onto a Snapshot past the next audio callback.
func (s *Surface) Snapshot() Snapshot {
	front := s.Magnitudes()
	mags := make([]float32, len(front))
	copy(mags, front)

	return Snapshot{
		RMS:           s.RMS(),
		Magnitudes:    mags,
		MediaTime:     s.MediaTime(),
		SubtitleIndex: s.SubtitleIndex(),
	}
}

// Reset restores the neutral post-stop telemetry values: RMS = 0,
// subtitle index = -1. The clock is reset separately by the pipeline
// controller, and masterGain is intentionally left untouched across
// sessions.
func (s *Surface) Reset() {
	s.currentRms.Store(0)
	s.selector.Reset()
}
