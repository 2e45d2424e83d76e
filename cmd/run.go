// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"dspengine/internal/engine"
	applog "dspengine/internal/log"
	"dspengine/internal/tui"
)

// runEngine resolves configuration, starts the engine in the requested
// mode, runs the telemetry TUI until the user quits or the process
// receives a termination signal, then tears the engine down.
func runEngine(opts *Options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("cmd: %w", err)
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	mode := engine.Capture
	if opts.Mode == "playback" {
		mode = engine.Playback
	} else if opts.Mode != "capture" {
		return fmt.Errorf("cmd: unknown mode %q (want capture or playback)", opts.Mode)
	}

	h, err := engine.Init(cfg, mode, opts.FilePath)
	if err != nil {
		return fmt.Errorf("cmd: starting engine: %w", err)
	}
	defer func() {
		if err := h.Stop(); err != nil {
			applog.Errorf("cmd: error stopping engine: %v", err)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	program := tea.NewProgram(tui.NewTelemetryModel(h), tea.WithAltScreen())
	progDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		progDone <- err
	}()

	select {
	case <-done:
		program.Quit()
		<-progDone
	case err := <-progDone:
		if err != nil {
			return fmt.Errorf("cmd: TUI exited: %w", err)
		}
	}
	return nil
}
