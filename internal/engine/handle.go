// SPDX-License-Identifier: MIT

// Package engine is the process-wide lifecycle wrapper around the audio
// pipeline: it owns the one engine handle a process may have running at a
// time, resolves Config into concrete device/decoder/transport adapters,
// and exposes the control surface a host application drives (start in a
// mode, poll telemetry, stop).
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dspengine/internal/audiosource"
	"dspengine/internal/config"
	"dspengine/internal/decoder"
	applog "dspengine/internal/log"
	"dspengine/internal/pipeline"
	"dspengine/internal/telemetry"
	"dspengine/internal/transport"
	"dspengine/internal/transport/udp"
)

// Mode selects what Init starts the engine doing.
type Mode int

const (
	Capture Mode = iota
	Playback
)

// Handle is the single running engine instance a process may hold. Created
// by Init, destroyed by Stop; every other operation is a method on it.
type Handle struct {
	mode Mode
	ctrl *pipeline.Controller

	source     *audiosource.Source
	sink       *audiosource.Sink
	fileSource pipeline.FileSource

	transports []transport.Transport
}

var (
	singletonMu sync.Mutex
	singleton   *Handle
)

// Init creates the process singleton and starts it in mode, or returns the
// existing singleton unchanged if one is already running: two consecutive
// Init calls leave exactly one running engine.
func Init(cfg *config.Config, mode Mode, filePath string) (*Handle, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil {
		return singleton, nil
	}
	if cfg == nil {
		return nil, fmt.Errorf("engine: config cannot be nil")
	}

	if err := audiosource.Initialize(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	h := &Handle{mode: mode, ctrl: pipeline.NewController()}

	var err error
	switch mode {
	case Capture:
		err = h.startCapture(cfg)
	case Playback:
		err = h.startPlayback(cfg, filePath)
	default:
		err = fmt.Errorf("engine: unknown mode %d", mode)
	}
	if err != nil {
		audiosource.Terminate()
		return nil, err
	}

	h.startTransports(cfg)

	singleton = h
	return h, nil
}

func (h *Handle) startCapture(cfg *config.Config) error {
	src, err := audiosource.NewSource(cfg.Audio.InputDevice, cfg.Audio.Channels, cfg.Audio.FramesPerBuffer, cfg.Audio.SampleRate, cfg.Audio.LowLatency)
	if err != nil {
		return fmt.Errorf("engine: opening capture device: %w", err)
	}
	if err := h.ctrl.StartCapture(src); err != nil {
		return fmt.Errorf("engine: starting capture: %w", err)
	}
	h.source = src
	return nil
}

func (h *Handle) startPlayback(cfg *config.Config, filePath string) error {
	if filePath == "" {
		return fmt.Errorf("engine: playback mode requires a non-empty file path")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("engine: opening %s: %w", filePath, err)
	}

	fileSource, err := openFileSource(file, filePath, int(cfg.Audio.SampleRate))
	if err != nil {
		file.Close()
		return fmt.Errorf("engine: decoding %s: %w", filePath, err)
	}

	sink, err := audiosource.NewSink(cfg.Audio.OutputDevice, cfg.Audio.FramesPerBuffer, cfg.Audio.SampleRate, cfg.Audio.LowLatency)
	if err != nil {
		fileSource.Close()
		return fmt.Errorf("engine: opening playback device: %w", err)
	}

	if err := h.ctrl.StartPlayback(fileSource, sink); err != nil {
		fileSource.Close()
		return fmt.Errorf("engine: starting playback: %w", err)
	}

	h.fileSource = fileSource
	h.sink = sink
	return nil
}

// openFileSource picks a FileSource adapter by the file's extension.
func openFileSource(f *os.File, path string, sampleRate int) (pipeline.FileSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decoder.NewWAV(f)
	case ".flac":
		return decoder.NewFLAC(f, sampleRate)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (expected .wav or .flac)", filepath.Ext(path))
	}
}

func (h *Handle) startTransports(cfg *config.Config) {
	surface := h.ctrl.Telemetry()

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocket(cfg.Transport.WebSocketAddr, cfg.Transport.WebSocketInterval, surface)
		if err := ws.Start(); err != nil {
			applog.Errorf("engine: WebSocket telemetry transport failed to start: %v", err)
		} else {
			h.transports = append(h.transports, ws)
		}
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Errorf("engine: UDP telemetry transport failed to dial: %v", err)
		} else if pub, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, surface); err != nil {
			applog.Errorf("engine: UDP telemetry transport failed to initialize: %v", err)
			sender.Close()
		} else if err := pub.Start(); err != nil {
			applog.Errorf("engine: UDP telemetry transport failed to start: %v", err)
			sender.Close()
		} else {
			h.transports = append(h.transports, udpTransport{pub: pub, sender: sender})
		}
	}

	if cfg.Transport.LoggingEnabled {
		lt := transport.NewLoggingTransport(cfg.Transport.LoggingInterval, surface)
		if err := lt.Start(); err != nil {
			applog.Errorf("engine: logging telemetry transport failed to start: %v", err)
		} else {
			h.transports = append(h.transports, lt)
		}
	}
}

// udpTransport bundles a Publisher with the Sender it owns so Stop tears
// both down; Publisher alone satisfies transport.Transport but never closes
// its sender.
type udpTransport struct {
	pub    *udp.Publisher
	sender *udp.Sender
}

func (t udpTransport) Start() error { return t.pub.Start() }
func (t udpTransport) Stop() error {
	err := t.pub.Stop()
	if cerr := t.sender.Close(); err == nil {
		err = cerr
	}
	return err
}

// Stop tears the singleton down. Safe to call more than once; a second
// call on an already-stopped engine is a no-op.
func (h *Handle) Stop() error {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton == nil {
		return nil
	}

	for _, t := range h.transports {
		if err := t.Stop(); err != nil {
			applog.Errorf("engine: error stopping telemetry transport: %v", err)
		}
	}
	h.transports = nil

	if err := h.ctrl.Stop(); err != nil {
		applog.Errorf("engine: error stopping pipeline: %v", err)
	}

	if err := audiosource.Terminate(); err != nil {
		applog.Errorf("engine: error terminating audio subsystem: %v", err)
	}

	singleton = nil
	return nil
}

// Telemetry returns the telemetry surface this engine publishes to.
func (h *Handle) Telemetry() *telemetry.Surface {
	return h.ctrl.Telemetry()
}

// RMSLevel is the current RMS level; 0 when idle.
func (h *Handle) RMSLevel() float32 {
	return h.ctrl.Telemetry().RMS()
}

// FFTMagnitudes returns the 512-entry front magnitude buffer.
func (h *Handle) FFTMagnitudes() []float32 {
	return h.ctrl.Telemetry().Magnitudes()
}

// SetGain updates the master gain applied to subsequent samples.
func (h *Handle) SetGain(g float32) {
	h.ctrl.SetGain(g)
}

// LoadSubtitles replaces the cue store. See pipeline.Controller.LoadSubtitles
// for the strict-reject contract.
func (h *Handle) LoadSubtitles(text string) error {
	return h.ctrl.LoadSubtitles(text)
}

// SubtitleIndex is the active cue index, or -1.
func (h *Handle) SubtitleIndex() int32 {
	return h.ctrl.Telemetry().SubtitleIndex()
}

// SubtitleText is the text of cue i, or "" if i is out of range.
func (h *Handle) SubtitleText(i int32) string {
	return h.ctrl.Telemetry().SubtitleText(i)
}

// MediaTime is frames processed / sample rate, in seconds.
func (h *Handle) MediaTime() float64 {
	return h.ctrl.Telemetry().MediaTime()
}
