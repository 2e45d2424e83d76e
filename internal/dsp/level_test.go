// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestRMSSilentBufferIsZero(t *testing.T) {
	buf := make([]float32, 512)
	if got := RMS(buf); got != 0 {
		t.Errorf("RMS of silence: got %v, want 0", got)
	}
}

func TestRMSUnitSineApproxPoint707(t *testing.T) {
	const n = 4800
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
	}

	got := RMS(buf)
	want := float32(1 / math.Sqrt2)
	if diff := abs32(got - want); diff > 0.01 {
		t.Errorf("RMS of unit sine: got %v, want ~%v (diff %v)", got, want, diff)
	}
}

func TestRMSEmptyBufferReturnsZero(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS of nil buffer: got %v, want 0", got)
	}
}

func TestRMSHotPathZeroAllocs(t *testing.T) {
	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = float32(i) / 256
	}

	allocs := testing.AllocsPerRun(100, func() {
		_ = RMS(buf)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in RMS hot path, got %.1f", allocs)
	}
}
