// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	"dspengine/internal/dsp"
	"dspengine/internal/dsp/fft"
	applog "dspengine/internal/log"
	"dspengine/internal/subtitle"
	"dspengine/internal/telemetry"
)

// Mode is the controller's run state.
type Mode int

const (
	Idle Mode = iota
	Capture
	Playback
)

func (m Mode) String() string {
	switch m {
	case Capture:
		return "capture"
	case Playback:
		return "playback"
	default:
		return "idle"
	}
}

// SampleRate is fixed for device, decoder, clock and subtitle time
// conversion; resampling is a non-goal.
const SampleRate = 48000

// scratchCapacity bounds the per-callback buffer the controller
// pre-allocates at construction; real device periods (~256 frames) and
// playback pulls both fit comfortably under it.
const scratchCapacity = 4096

// Controller is the state machine described in the package documentation.
// It never allocates once a session has started.
type Controller struct {
	mu   sync.Mutex
	mode Mode

	source     AudioSource
	fileSource FileSource
	sink       AudioSink

	dcBlocker *dsp.DCBlocker
	analyzer  *fft.Analyzer
	clock     *dsp.Clock
	store     *subtitle.Store
	selector  *subtitle.Selector
	telemetry *telemetry.Surface

	ring   [fft.Size]float32
	cursor int

	scratch []float32
}

// NewController wires up the signal path and returns an idle controller.
func NewController() *Controller {
	clock := dsp.NewClock(SampleRate)
	analyzer := fft.NewAnalyzer(SampleRate)
	store := subtitle.NewStore()
	selector := subtitle.NewSelector(store)

	return &Controller{
		dcBlocker: dsp.NewDCBlocker(),
		analyzer:  analyzer,
		clock:     clock,
		store:     store,
		selector:  selector,
		telemetry: telemetry.NewSurface(clock, analyzer, selector, store),
		scratch:   make([]float32, scratchCapacity),
	}
}

// Telemetry returns the surface this controller publishes to.
func (c *Controller) Telemetry() *telemetry.Surface {
	return c.telemetry
}

// Mode returns the controller's current run state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// StartCapture transitions Idle -> Capture, opening source for callbacks.
// A no-op if already running, per the base spec's "start is idempotent"
// contract.
func (c *Controller) StartCapture(source AudioSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Idle {
		return nil
	}
	if source == nil {
		return fmt.Errorf("pipeline: capture source is nil")
	}

	if err := source.Start(c.handleCapture); err != nil {
		return fmt.Errorf("pipeline: starting capture source: %w", err)
	}

	c.source = source
	c.mode = Capture
	c.telemetry.SetRunning(true)
	return nil
}

// StartPlayback transitions Idle -> Playback, opening a decoder and an
// output device configured for the same format.
func (c *Controller) StartPlayback(file FileSource, sink AudioSink) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Idle {
		return nil
	}
	if file == nil {
		return fmt.Errorf("pipeline: playback file source is nil")
	}
	if sink == nil {
		return fmt.Errorf("pipeline: playback sink is nil")
	}

	if err := sink.Start(c.handlePlayback); err != nil {
		file.Close()
		return fmt.Errorf("pipeline: starting playback sink: %w", err)
	}

	c.fileSource = file
	c.sink = sink
	c.mode = Playback
	c.telemetry.SetRunning(true)
	return nil
}

// Stop tears the active device/decoder down, synchronously, then resets
// all session state. A no-op if already idle.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case Capture:
		if err := c.source.Stop(); err != nil {
			applog.Errorf("pipeline: error stopping capture source: %v", err)
		}
		c.source = nil
	case Playback:
		if err := c.sink.Stop(); err != nil {
			applog.Errorf("pipeline: error stopping playback sink: %v", err)
		}
		if err := c.fileSource.Close(); err != nil {
			applog.Errorf("pipeline: error closing file source: %v", err)
		}
		c.sink = nil
		c.fileSource = nil
	default:
		return nil
	}

	c.mode = Idle
	c.dcBlocker.Reset()
	c.clock.Reset()
	c.cursor = 0
	for i := range c.ring {
		c.ring[i] = 0
	}
	c.analyzer.Reset()
	c.telemetry.Reset()
	c.telemetry.SetRunning(false)
	return nil
}

// SetGain updates the master gain applied to subsequent samples.
func (c *Controller) SetGain(g float32) {
	c.telemetry.SetGain(g)
}

// LoadSubtitles replaces the cue store. The contract is that this is only
// called while the engine is stopped: the swap itself is lock-free and
// memory-safe at any time, but calling it mid-stream can jump the
// selector's fast-path index across stores without a defined transition,
// which is a logic bug rather than a crash.
func (c *Controller) LoadSubtitles(text string) error {
	cues, err := subtitle.ParseString(text)
	if err != nil {
		return fmt.Errorf("pipeline: loading subtitles: %w", err)
	}

	if c.Mode() != Idle {
		applog.Warnf("pipeline: LoadSubtitles called while running; selector index may glitch across the swap")
	}

	c.store.Replace(cues)
	return nil
}

// handleCapture is the capture device's per-callback entry point.
// Performance critical: no allocation, no locks beyond what the audio
// library itself already holds, no I/O.
func (c *Controller) handleCapture(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	buf := c.scratch[:len(in)]
	copy(buf, in)
	c.processBuffer(buf)
}

// handlePlayback is the output device's per-callback entry point: pull
// exactly len(out) frames from the decoder, copy them verbatim to out, and
// analyze the same samples.
func (c *Controller) handlePlayback(out []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	buf := c.scratch[:len(out)]
	if err := c.fileSource.Read(buf); err != nil {
		applog.Errorf("pipeline: decoder read failed: %v", err)
		for i := range buf {
			buf[i] = 0
		}
	}

	copy(out, buf)
	c.processBuffer(buf)
}

// processBuffer is the shared DSP hot path: gain, DC block, level meter,
// FFT ring accumulation, clock advance, subtitle selection. No allocation.
func (c *Controller) processBuffer(buf []float32) {
	gain := c.telemetry.Gain()
	for i, s := range buf {
		s *= gain
		buf[i] = c.dcBlocker.Process(s)
	}

	c.telemetry.SetRMS(dsp.RMS(buf))

	for _, s := range buf {
		c.ring[c.cursor] = s
		c.cursor++
		if c.cursor == fft.Size {
			c.analyzer.Process(c.ring[:])
			c.cursor = 0
		}
	}

	c.clock.Advance(uint64(len(buf)))
	c.selector.Select(c.clock.Seconds())
}
