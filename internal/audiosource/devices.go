// SPDX-License-Identifier: MIT

// Package audiosource provides a PortAudio-backed implementation of the
// pipeline package's AudioSource/AudioSink interfaces, plus device
// enumeration.
package audiosource

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceID selects the system default input/output device.
const DefaultDeviceID = -1

// Device describes one enumerated PortAudio device.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Initialize starts the PortAudio subsystem. Must be called before any
// other function in this package and paired with a deferred Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audiosource: initializing PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts the PortAudio subsystem down.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("audiosource: terminating PortAudio: %w", err)
	}
	return nil
}

// Devices returns all devices PortAudio knows about.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audiosource: enumerating devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// inputDeviceInfo resolves a configured device ID to a PortAudio
// DeviceInfo, honoring DefaultDeviceID.
func inputDeviceInfo(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDeviceID {
		return portaudio.DefaultInputDevice()
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(infos) {
		return nil, fmt.Errorf("audiosource: invalid input device ID %d", deviceID)
	}
	return infos[deviceID], nil
}

// outputDeviceInfo resolves a configured device ID to a PortAudio
// DeviceInfo, honoring DefaultDeviceID.
func outputDeviceInfo(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDeviceID {
		return portaudio.DefaultOutputDevice()
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(infos) {
		return nil, fmt.Errorf("audiosource: invalid output device ID %d", deviceID)
	}
	return infos[deviceID], nil
}
