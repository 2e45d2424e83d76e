// SPDX-License-Identifier: MIT

// Package tui renders engine telemetry to a terminal via Bubble Tea,
// standing in for "a host application" for manual testing purposes. It
// exercises no functionality the engine doesn't already expose through its
// control API.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Bold(true)
)

// TelemetrySource is the read surface the TUI polls. engine.Handle
// satisfies it structurally; tests drive the model with a fake.
type TelemetrySource interface {
	RMSLevel() float32
	FFTMagnitudes() []float32
	MediaTime() float64
	SubtitleIndex() int32
	SubtitleText(i int32) string
}

// tickInterval is the TUI's own refresh rate, independent of the audio
// callback cadence; it only ever reads the telemetry surface's atomics.
const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

// TelemetryModel is the Bubble Tea model driving the live telemetry view.
type TelemetryModel struct {
	source TelemetrySource
	width  int
}

// NewTelemetryModel returns a model polling source at tickInterval.
func NewTelemetryModel(source TelemetrySource) TelemetryModel {
	return TelemetryModel{source: source}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the refresh ticker.
func (m TelemetryModel) Init() tea.Cmd {
	return tick()
}

// Update handles a refresh tick, a window resize, or a quit key.
func (m TelemetryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		return m, tick()
	}
	return m, nil
}

// View renders RMS, a bar-chart spectrum, media time, and the active
// subtitle line.
func (m TelemetryModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("dspengine telemetry"))
	sb.WriteString("\n\n")

	rms := m.source.RMSLevel()
	sb.WriteString(infoStyle.Render(fmt.Sprintf("RMS:   %s", levelBar(rms, width-8))))
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Time:  %.2fs", m.source.MediaTime())))
	sb.WriteString("\n\n")

	sb.WriteString(infoStyle.Render("Spectrum:"))
	sb.WriteString("\n")
	sb.WriteString(spectrumBars(m.source.FFTMagnitudes(), width))
	sb.WriteString("\n\n")

	if idx := m.source.SubtitleIndex(); idx >= 0 {
		sb.WriteString(subtitleStyle.Render(m.source.SubtitleText(idx)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(infoStyle.Render("q: quit"))

	return sb.String()
}

// levelBar renders v (expected roughly in [0,1]) as a filled bar of the
// given character width.
func levelBar(v float32, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(v * float32(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barStyle.Render(strings.Repeat("#", filled) + strings.Repeat(".", width-filled))
}

// spectrumBars collapses mags into a fixed number of columns, each a
// vertical bar of the column's peak magnitude, one row tall in this
// terminal-friendly rendering.
func spectrumBars(mags []float32, width int) string {
	if len(mags) == 0 {
		return barStyle.Render(strings.Repeat(".", width))
	}

	columns := width
	if columns < 1 {
		columns = 1
	}
	if columns > len(mags) {
		columns = len(mags)
	}

	perCol := len(mags) / columns
	if perCol < 1 {
		perCol = 1
	}

	var sb strings.Builder
	for c := 0; c < columns; c++ {
		start := c * perCol
		end := start + perCol
		if end > len(mags) {
			end = len(mags)
		}
		var peak float32
		for _, v := range mags[start:end] {
			if v > peak {
				peak = v
			}
		}
		sb.WriteString(barChar(peak))
	}
	return barStyle.Render(sb.String())
}

// barChar maps a linear magnitude to one of a small set of block
// characters, giving a coarse vertical bar without per-cell color.
func barChar(v float32) string {
	levels := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	idx := int(v * float32(len(levels)-1) * 8)
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return string(levels[idx])
}
