// SPDX-License-Identifier: MIT

// Package pipeline implements the audio pipeline controller: the state
// machine that opens/closes a capture or playback source, routes each
// device callback through the DC blocker, level meter, FFT ring, media
// clock and subtitle selector, and, in playback mode, fills the output
// buffer.
//
// The controller is coded against three small interfaces rather than a
// concrete device or decoder library, so it can be driven by synthetic
// implementations in tests.
package pipeline

// AudioSource captures audio. Start registers fn to be invoked once per
// device callback with a buffer of freshly captured mono float32 samples;
// fn must not be retained past the call. Stop tears the stream down and
// blocks until the callback thread has exited.
type AudioSource interface {
	Start(fn func(in []float32)) error
	Stop() error
}

// AudioSink plays audio. Start registers fn to be invoked once per device
// callback; fn must fill out completely before returning. Stop tears the
// stream down and blocks until the callback thread has exited.
type AudioSink interface {
	Start(fn func(out []float32)) error
	Stop() error
}

// FileSource decodes a file into mono float32 PCM at the engine's sample
// rate. Read always fills buf completely: implementations zero-pad a short
// final read rather than returning a short read, so callers never need to
// special-case end-of-file inside the hot path. Read returns a non-nil
// error only for a genuine I/O or decode failure.
type FileSource interface {
	Read(buf []float32) error
	Close() error
}
