// SPDX-License-Identifier: MIT
package testutil

import (
	"errors"
	"testing"

	"dspengine/internal/transport"
)

var _ transport.Transport = (*MockTransport)(nil)

func TestGenerateSineWaveStaysInRange(t *testing.T) {
	buf := GenerateSineWave(256, 48000, 440)
	for i, v := range buf {
		if v < -1.0001 || v > 1.0001 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestFindPeakBinLocatesMaximum(t *testing.T) {
	mags := []float32{0.1, 0.2, 0.9, 0.3, 0.05}
	if got := FindPeakBin(mags, 0, len(mags)-1); got != 2 {
		t.Errorf("FindPeakBin = %d, want 2", got)
	}
}

func TestFindPeakBinClampsBounds(t *testing.T) {
	mags := []float32{0.1, 0.2, 0.3}
	if got := FindPeakBin(mags, -5, 100); got != 2 {
		t.Errorf("FindPeakBin = %d, want 2", got)
	}
}

func TestFindPeakBinEmptyReturnsZero(t *testing.T) {
	if got := FindPeakBin(nil, 0, 0); got != 0 {
		t.Errorf("FindPeakBin on empty = %d, want 0", got)
	}
}

func TestMockTransportRecordsCalls(t *testing.T) {
	m := &MockTransport{StartErr: errors.New("boom")}
	if err := m.Start(); err == nil {
		t.Fatal("expected StartErr to propagate")
	}
	if !m.Started {
		t.Error("expected Started to be true")
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !m.Stopped {
		t.Error("expected Stopped to be true")
	}
}
