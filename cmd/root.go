// SPDX-License-Identifier: MIT

// Package cmd implements the dspengine demo CLI: a thin host application
// that drives internal/engine through its control API and renders its
// telemetry to a terminal, standing in for a real UI front-end.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dspengine/internal/audiosource"
	"dspengine/internal/config"
	"dspengine/pkg/build"
)

// Options holds the resolved flags for the root command's run.
type Options struct {
	ConfigPath string
	Mode       string
	FilePath   string
	Device     int
	SampleRate float64
	Frames     int
	LowLatency bool
}

// Execute parses os.Args and runs the selected command.
func Execute() error {
	opts := &Options{}

	root := &cobra.Command{
		Use:           build.GetBuildFlags().Name,
		Short:         "Realtime DSP engine demo: capture or playback with live telemetry",
		Version:       build.GetBuildFlags().Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVarP(&opts.Mode, "mode", "m", "capture", "Run mode: capture or playback")
	root.PersistentFlags().StringVarP(&opts.FilePath, "file", "f", "", "File to play back (required for --mode playback)")
	root.PersistentFlags().IntVarP(&opts.Device, "device", "d", audiosource.DefaultDeviceID, "Device ID to use; -1 for system default")
	root.PersistentFlags().Float64VarP(&opts.SampleRate, "sample-rate", "s", 48000, "Sample rate override, in Hz")
	root.PersistentFlags().IntVarP(&opts.Frames, "frames-per-buffer", "b", 1024, "Frames per buffer override")
	root.PersistentFlags().BoolVarP(&opts.LowLatency, "low-latency", "l", false, "Request low-latency device parameters")

	root.AddCommand(devicesCmd())

	root.SetArgs(os.Args[1:])
	return root.Execute()
}

// devicesCmd lists the audio devices PortAudio can see, then exits. A
// one-off command that never starts the engine.
func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audiosource.Initialize(); err != nil {
				return err
			}
			defer audiosource.Terminate()

			devices, err := audiosource.Devices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Printf("[%d] %s (in=%d out=%d, default %.0f Hz)\n",
					d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
			}
			return nil
		},
	}
}

// resolveConfig loads opts.ConfigPath (or the defaults) and layers the
// device, sample-rate, frames-per-buffer and low-latency flag values on
// top. Every one of those flags is applied whether or not it was passed,
// so a flag left at its default also replaces the file's value.
func resolveConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg.Audio.InputDevice = opts.Device
	cfg.Audio.OutputDevice = opts.Device
	cfg.Audio.SampleRate = opts.SampleRate
	cfg.Audio.FramesPerBuffer = opts.Frames
	cfg.Audio.LowLatency = opts.LowLatency
	return cfg, nil
}
