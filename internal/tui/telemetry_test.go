// SPDX-License-Identifier: MIT
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	rms        float32
	magnitudes []float32
	mediaTime  float64
	subIdx     int32
	subText    map[int32]string
}

func (f *fakeSource) RMSLevel() float32          { return f.rms }
func (f *fakeSource) FFTMagnitudes() []float32   { return f.magnitudes }
func (f *fakeSource) MediaTime() float64         { return f.mediaTime }
func (f *fakeSource) SubtitleIndex() int32       { return f.subIdx }
func (f *fakeSource) SubtitleText(i int32) string {
	return f.subText[i]
}

func TestViewRendersCoreFields(t *testing.T) {
	src := &fakeSource{
		rms:        0.5,
		magnitudes: make([]float32, 512),
		mediaTime:  12.5,
		subIdx:     0,
		subText:    map[int32]string{0: "hello world"},
	}
	m := NewTelemetryModel(src)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = model.(TelemetryModel)

	view := m.View()
	if !strings.Contains(view, "12.50s") {
		t.Errorf("view missing media time: %s", view)
	}
	if !strings.Contains(view, "hello world") {
		t.Errorf("view missing active subtitle text: %s", view)
	}
}

func TestViewHidesSubtitleWhenIndexNegative(t *testing.T) {
	src := &fakeSource{subIdx: -1}
	m := NewTelemetryModel(src)
	view := m.View()
	if strings.Contains(view, "hello") {
		t.Errorf("expected no subtitle text rendered: %s", view)
	}
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := NewTelemetryModel(&fakeSource{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
}

func TestLevelBarClampsToWidth(t *testing.T) {
	if got := levelBar(2.0, 10); strings.Count(got, "#") > 10 {
		t.Errorf("levelBar overflowed width: %q", got)
	}
	if got := levelBar(-1.0, 10); strings.Contains(got, "#") {
		t.Errorf("levelBar with negative value should be empty: %q", got)
	}
}

func TestSpectrumBarsHandlesEmptyInput(t *testing.T) {
	if got := spectrumBars(nil, 16); len(got) == 0 {
		t.Error("expected non-empty placeholder for empty magnitudes")
	}
}
