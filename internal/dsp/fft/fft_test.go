// SPDX-License-Identifier: MIT
package fft

import (
	"math"
	"testing"
)

const testSampleRate = 48000

func sineBlock(freq float64) []float32 {
	block := make([]float32, Size)
	for i := range block {
		block[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate))
	}
	return block
}

func TestMagnitudeLengthIsBins(t *testing.T) {
	a := NewAnalyzer(testSampleRate)
	if got := len(a.Magnitudes()); got != 512 {
		t.Errorf("Magnitudes length: got %d, want 512", got)
	}
}

func TestSilentBlockProducesNearZeroMagnitudes(t *testing.T) {
	a := NewAnalyzer(testSampleRate)
	a.Process(make([]float32, Size))

	for i, m := range a.Magnitudes() {
		if m > 1e-4 {
			t.Fatalf("bin %d: got %v, want ~0 for silence", i, m)
		}
	}
}

func TestPureToneDominatesByTwentyDB(t *testing.T) {
	const k = 9 // round(440 * 1024 / 48000)
	freq := float64(k) * testSampleRate / Size

	a := NewAnalyzer(testSampleRate)
	a.Process(sineBlock(freq))

	mags := a.Magnitudes()
	peakBin := 0
	for i, m := range mags {
		if m > mags[peakBin] {
			peakBin = i
		}
	}
	if peakBin != k {
		t.Fatalf("peak bin: got %d, want %d", peakBin, k)
	}

	// The Hann window spreads a bin-centred tone over bins k-1..k+1 (the
	// neighbours sit at half the peak, -6 dB), so the second peak is the
	// largest bin outside that main lobe.
	second := float32(0)
	for i, m := range mags {
		if i >= peakBin-1 && i <= peakBin+1 {
			continue
		}
		if m > second {
			second = m
		}
	}
	if second == 0 {
		return
	}
	ratioDB := 20 * math.Log10(float64(mags[peakBin]/second))
	if ratioDB < 20 {
		t.Errorf("peak/second-peak ratio: got %.1f dB, want >= 20 dB", ratioDB)
	}
}

func TestMagnitudeDoubleBufferNeverTorn(t *testing.T) {
	a := NewAnalyzer(testSampleRate)
	block := sineBlock(1000)

	a.Process(block)
	want := append([]float32(nil), a.Magnitudes()...)

	for i := 0; i < 5; i++ {
		a.Process(block)
		mags := a.Magnitudes()
		if len(mags) != Bins {
			t.Fatalf("iteration %d: torn/short frame, length %d", i, len(mags))
		}
		for k, m := range mags {
			if m != want[k] {
				t.Fatalf("iteration %d, bin %d: got %v, want %v (frame differs from an identical block's)", i, k, m, want[k])
			}
		}
	}
}

func TestProcessHotPathZeroAllocs(t *testing.T) {
	a := NewAnalyzer(testSampleRate)
	block := sineBlock(440)

	a.Process(block) // warm-up
	allocs := testing.AllocsPerRun(20, func() {
		a.Process(block)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in FFT Process hot path, got %.1f", allocs)
	}
}

func TestFrequencyForBin(t *testing.T) {
	a := NewAnalyzer(testSampleRate)

	if got := a.FrequencyForBin(-1); got != 0 {
		t.Errorf("negative bin: got %v, want 0", got)
	}
	if got := a.FrequencyForBin(Bins); got != 0 {
		t.Errorf("out-of-range bin: got %v, want 0", got)
	}
	if got, want := a.FrequencyForBin(9), 9*testSampleRate/float64(Size); math.Abs(got-want) > 1e-9 {
		t.Errorf("FrequencyForBin(9): got %v, want %v", got, want)
	}
}

func BenchmarkProcess(b *testing.B) {
	a := NewAnalyzer(testSampleRate)
	block := sineBlock(440)

	b.ReportAllocs()
	for b.Loop() {
		a.Process(block)
	}
}
