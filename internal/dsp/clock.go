// SPDX-License-Identifier: MIT
package dsp

import "sync/atomic"

// Clock is a sample-accurate monotonic frame counter, safe to advance from
// the audio callback thread and read from any other thread.
type Clock struct {
	sampleRate           float64
	totalFramesProcessed atomic.Uint64
}

// NewClock returns a clock counting frames at sampleRate Hz.
func NewClock(sampleRate float64) *Clock {
	return &Clock{sampleRate: sampleRate}
}

// Advance increments the frame count by n. Called once per callback after
// processing, before the subtitle selector runs.
func (c *Clock) Advance(n uint64) {
	c.totalFramesProcessed.Add(n)
}

// Frames returns the total number of frames processed since Reset.
func (c *Clock) Frames() uint64 {
	return c.totalFramesProcessed.Load()
}

// Seconds returns the media time in seconds.
func (c *Clock) Seconds() float64 {
	return float64(c.totalFramesProcessed.Load()) / c.sampleRate
}

// Reset zeroes the frame count. Called on start.
func (c *Clock) Reset() {
	c.totalFramesProcessed.Store(0)
}
