package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the gamepadbrainz daemon.
//
// The config file is the primary configuration surface; flags exist for small
// overrides and for udev/systemd template units where a file per controller is
// awkward. Keep defaults and validation centralized so the rest of the code can
// assume a well-formed config.
type Config struct {
	// Device/input configuration
	Device DeviceConfig `yaml:"device"`
	Input  InputConfig  `yaml:"input"`

	// Idle power management
	Idle IdleConfig `yaml:"idle"`

	// Console/TTY management
	TTY TTYConfig `yaml:"tty"`

	// Auxiliary processes
	Remap   RemapConfig   `yaml:"remap"`
	Overlay OverlayConfig `yaml:"overlay"`

	// External tools
	Tools ToolsConfig `yaml:"tools"`

	// IPC configuration
	IPC IPCConfig `yaml:"ipc"`

	// Status WebSocket server
	Status StatusConfig `yaml:"status"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type DeviceConfig struct {
	// PathTemplate is expanded with the controller MAC to obtain the event
	// device path (a udev rule creates the symlink).
	PathTemplate string `yaml:"path_template"`
}

type InputConfig struct {
	DeadZoneLow  int32 `yaml:"dead_zone_low"`
	DeadZoneHigh int32 `yaml:"dead_zone_high"`
}

type IdleConfig struct {
	// TimeoutSec is the no-activity window before a Bluetooth pad is
	// disconnected. Zero disables idle handling.
	TimeoutSec int `yaml:"timeout_sec"`
}

type TTYConfig struct {
	Console       int    `yaml:"console"`
	PrivilegedMin int    `yaml:"privileged_min"`
	MarkerPath    string `yaml:"marker_path"`
}

type RemapConfig struct {
	// Command is the remap helper argv; the device path is appended at launch.
	Command []string `yaml:"command"`
}

type OverlayConfig struct {
	// Command is the overlay toggle argv, run to completion on each fire.
	Command []string `yaml:"command"`
}

type ToolsConfig struct {
	Dualsensectl string `yaml:"dualsensectl"`
	Bluetoothctl string `yaml:"bluetoothctl"`
}

type IPCConfig struct {
	// SocketPath may contain %s, expanded with the controller MAC so per-pad
	// daemons get distinct sockets.
	SocketPath string `yaml:"socket_path"`
}

type StatusConfig struct {
	// Port for the status WebSocket server. Zero disables it, which is the
	// default since one daemon runs per controller.
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults.
// Keep this aligned with constants.go defaults and current CLI defaults.
func DefaultConfig() Config {
	return Config{
		Device: DeviceConfig{
			PathTemplate: "/dev/gamepad-%s",
		},
		Input: InputConfig{
			DeadZoneLow:  defaultDeadZoneLow,
			DeadZoneHigh: defaultDeadZoneHigh,
		},
		Idle: IdleConfig{
			TimeoutSec: defaultIdleTimeoutSec,
		},
		TTY: TTYConfig{
			Console:       defaultConsoleTTY,
			PrivilegedMin: defaultPrivilegedTTYMin,
			MarkerPath:    defaultMarkerPath,
		},
		Remap: RemapConfig{
			Command: []string{"/usr/local/bin/gamepad-remap"},
		},
		Overlay: OverlayConfig{
			Command: []string{"/usr/local/bin/toggle-overlay"},
		},
		Tools: ToolsConfig{
			Dualsensectl: "dualsensectl",
			Bluetoothctl: "bluetoothctl",
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/gamepadbrainz-%s.sock",
		},
		Status: StatusConfig{
			Port: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file.
//
// Notes:
//   - The file must be valid YAML.
//   - Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Ensure there's no trailing garbage (only whitespace/comments are allowed after the document).
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies overrides from flags on top of a loaded config.
//
// Flags should pass pointers; each override is only applied if the pointer is
// non-nil, so main can use flag.Visit to record which flags were actually set.
type FlagOverrides struct {
	IdleTimeoutSec *int
	IPCSocketPath  *string
	StatusPort     *int
	LogLevel       *string
}

// Apply merges the overrides into cfg. If an override pointer is nil, it is ignored.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.IdleTimeoutSec != nil {
		cfg.Idle.TimeoutSec = *o.IdleTimeoutSec
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.StatusPort != nil {
		cfg.Status.Port = *o.StatusPort
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants and returns a user-friendly error.
// This is intended to be called after defaults + file + overrides are applied.
func (c *Config) Validate() error {
	if c.Device.PathTemplate == "" {
		return errors.New("device.path_template must not be empty")
	}
	if !strings.Contains(c.Device.PathTemplate, "%s") {
		return errors.New("device.path_template must contain %s for the controller MAC")
	}

	if c.Input.DeadZoneLow > c.Input.DeadZoneHigh {
		return errors.New("input.dead_zone_low must be <= input.dead_zone_high")
	}

	if c.Idle.TimeoutSec < 0 {
		return errors.New("idle.timeout_sec must be >= 0")
	}

	if c.TTY.Console <= 0 {
		return errors.New("tty.console must be > 0")
	}
	if c.TTY.PrivilegedMin <= 0 {
		return errors.New("tty.privileged_min must be > 0")
	}

	if len(c.Remap.Command) == 0 {
		return errors.New("remap.command must not be empty")
	}
	if len(c.Overlay.Command) == 0 {
		return errors.New("overlay.command must not be empty")
	}

	if c.Tools.Dualsensectl == "" {
		return errors.New("tools.dualsensectl must not be empty")
	}
	if c.Tools.Bluetoothctl == "" {
		return errors.New("tools.bluetoothctl must not be empty")
	}

	if c.IPC.SocketPath == "" {
		return errors.New("ipc.socket_path must not be empty")
	}

	if c.Status.Port < 0 || c.Status.Port > 65535 {
		return errors.New("status.port must be between 0 and 65535")
	}

	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}

	return nil
}

// DevicePath expands the device path template with the controller MAC.
func (c *Config) DevicePath(mac string) string {
	return fmt.Sprintf(c.Device.PathTemplate, mac)
}

// SocketPath expands the IPC socket path with the controller MAC, if the
// configured path carries a placeholder.
func (c *Config) SocketPath(mac string) string {
	if strings.Contains(c.IPC.SocketPath, "%s") {
		return fmt.Sprintf(c.IPC.SocketPath, mac)
	}
	return c.IPC.SocketPath
}
