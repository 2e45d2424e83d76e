// SPDX-License-Identifier: MIT

// Package config loads and validates the engine's runtime configuration
// from YAML, with environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"dspengine/pkg/bitint"
)

// Config is the engine's top-level configuration, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`
	LogLevel  string          `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Audio     AudioConfig     `yaml:"audio" validate:"required"`
	Subtitles SubtitleConfig  `yaml:"subtitles"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds device and buffering settings. SampleRate and
// FramesPerBuffer are validated before the engine ever attempts to open a
// device: an out-of-range sample rate or a buffer size that is zero,
// negative, or not a power of two is rejected at load time.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`
	OutputDevice    int     `yaml:"output_device"`
	SampleRate      float64 `yaml:"sample_rate" validate:"min=8000,max=192000"`
	FramesPerBuffer int     `yaml:"frames_per_buffer" validate:"gt=0,pow2"`
	LowLatency      bool    `yaml:"low_latency"`
	Channels        int     `yaml:"channels" validate:"min=1,max=2"`
}

// SubtitleConfig holds the path to an SRT file to load at startup, if any.
type SubtitleConfig struct {
	Path string `yaml:"path" validate:"omitempty,max=4096"`
}

// TransportConfig controls the optional telemetry transports (WebSocket,
// UDP, logging). All three default to disabled; a transport that is enabled but fails to bind or dial does
// not fail engine startup (see internal/transport).
type TransportConfig struct {
	WebSocketEnabled  bool          `yaml:"websocket_enabled"`
	WebSocketAddr     string        `yaml:"websocket_addr" validate:"omitempty,hostname_port"`
	WebSocketInterval time.Duration `yaml:"websocket_interval"`

	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address" validate:"omitempty,hostname_port"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`

	LoggingEnabled  bool          `yaml:"logging_enabled"`
	LoggingInterval time.Duration `yaml:"logging_interval"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	if err := validate.RegisterValidation("pow2", isPowerOfTwo); err != nil {
		panic(fmt.Sprintf("config: registering pow2 validator: %v", err))
	}
}

func isPowerOfTwo(fl validator.FieldLevel) bool {
	return bitint.IsPowerOfTwo(int(fl.Field().Int()))
}

// Default returns the built-in configuration used when no YAML file is
// found and no overrides apply.
func Default() Config {
	return Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     -1,
			OutputDevice:    -1,
			SampleRate:      48000,
			FramesPerBuffer: 1024,
			Channels:        1,
		},
		Transport: TransportConfig{
			WebSocketAddr:     "127.0.0.1:8080",
			WebSocketInterval: 16 * time.Millisecond,
			UDPTargetAddress:  "127.0.0.1:9090",
			UDPSendInterval:   16 * time.Millisecond,
			LoggingInterval:   time.Second,
		},
	}
}

// Load reads configuration from a YAML file at path. If path is empty, it
// looks for "config.yaml" in the working directory; if that is absent too,
// it falls back to Default. Environment overrides and validation are
// applied in every case.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides layers a handful of operational overrides on top of
// whatever was loaded from YAML, applied after the file so an operator can
// override a checked-in config without editing it.
func (cfg *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("DSPENGINE_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v, ok := os.LookupEnv("DSPENGINE_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("DSPENGINE_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = v
	}
	if v, ok := os.LookupEnv("DSPENGINE_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transport.UDPEnabled = b
		}
	}
	if v, ok := os.LookupEnv("DSPENGINE_WEBSOCKET_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transport.WebSocketEnabled = b
		}
	}
	if v, ok := os.LookupEnv("DSPENGINE_LOGGING_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transport.LoggingEnabled = b
		}
	}
}
