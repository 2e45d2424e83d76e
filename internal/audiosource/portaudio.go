// SPDX-License-Identifier: MIT
package audiosource

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Source is a PortAudio-backed pipeline.AudioSource: mono float32 capture
// at a fixed sample rate and period. If the underlying device is opened
// with more than one channel, frames are down-mixed to mono by averaging
// channels, the same policy the FileSource decoders use.
type Source struct {
	stream *portaudio.Stream

	deviceInfo      *portaudio.DeviceInfo
	channels        int
	sampleRate      float64
	framesPerBuffer int
	latency         time.Duration

	mono []float32
}

// NewSource resolves deviceID (DefaultDeviceID for the system default) and
// returns a Source ready to Start.
func NewSource(deviceID, channels, framesPerBuffer int, sampleRate float64, lowLatency bool) (*Source, error) {
	info, err := inputDeviceInfo(deviceID)
	if err != nil {
		return nil, fmt.Errorf("audiosource: resolving input device: %w", err)
	}

	latency := info.DefaultHighInputLatency
	if lowLatency {
		latency = info.DefaultLowInputLatency
	}

	return &Source{
		deviceInfo:      info,
		channels:        channels,
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		latency:         latency,
		mono:            make([]float32, framesPerBuffer),
	}, nil
}

// Start opens and starts the capture stream, invoking fn once per callback
// with a mono float32 buffer.
func (s *Source) Start(fn func(in []float32)) error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   s.deviceInfo,
			Channels: s.channels,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.framesPerBuffer,
		SampleRate:      s.sampleRate,
	}

	callback := func(in []float32) {
		if s.channels == 1 {
			fn(in)
			return
		}
		for i := 0; i < s.framesPerBuffer && i*s.channels+s.channels <= len(in); i++ {
			var sum float32
			for ch := 0; ch < s.channels; ch++ {
				sum += in[i*s.channels+ch]
			}
			s.mono[i] = sum / float32(s.channels)
		}
		fn(s.mono)
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("audiosource: opening capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("audiosource: starting capture stream: %w", err)
	}

	s.stream = stream
	return nil
}

// Stop stops and closes the stream. Safe to call if Start was never called
// or already stopped.
func (s *Source) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("audiosource: stopping capture stream: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("audiosource: closing capture stream: %w", err)
	}
	s.stream = nil
	return nil
}

// Sink is a PortAudio-backed pipeline.AudioSink for mono float32 playback.
type Sink struct {
	stream *portaudio.Stream

	deviceInfo      *portaudio.DeviceInfo
	sampleRate      float64
	framesPerBuffer int
	latency         time.Duration
}

// NewSink resolves deviceID (DefaultDeviceID for the system default) and
// returns a Sink ready to Start.
func NewSink(deviceID, framesPerBuffer int, sampleRate float64, lowLatency bool) (*Sink, error) {
	info, err := outputDeviceInfo(deviceID)
	if err != nil {
		return nil, fmt.Errorf("audiosource: resolving output device: %w", err)
	}

	latency := info.DefaultHighOutputLatency
	if lowLatency {
		latency = info.DefaultLowOutputLatency
	}

	return &Sink{
		deviceInfo:      info,
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		latency:         latency,
	}, nil
}

// Start opens and starts the playback stream, invoking fn once per
// callback with a buffer fn must fill completely.
func (s *Sink) Start(fn func(out []float32)) error {
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   s.deviceInfo,
			Channels: 1,
			Latency:  s.latency,
		},
		FramesPerBuffer: s.framesPerBuffer,
		SampleRate:      s.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, fn)
	if err != nil {
		return fmt.Errorf("audiosource: opening playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("audiosource: starting playback stream: %w", err)
	}

	s.stream = stream
	return nil
}

// Stop stops and closes the stream.
func (s *Sink) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("audiosource: stopping playback stream: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("audiosource: closing playback stream: %w", err)
	}
	s.stream = nil
	return nil
}
