package main

import (
	"log/slog"
	"strings"
)

// BluetoothLink answers connectivity questions for one controller MAC and can
// drop the link for power management. It is a thin wrapper over bluetoothctl;
// all state lives in the Bluetooth stack.
type BluetoothLink struct {
	runner CommandRunner
	logger *slog.Logger
	tool   string
	mac    string // upper-cased
}

func NewBluetoothLink(runner CommandRunner, logger *slog.Logger, tool, mac string) *BluetoothLink {
	return &BluetoothLink{
		runner: runner,
		logger: logger,
		tool:   tool,
		mac:    strings.ToUpper(mac),
	}
}

// Connected reports whether the controller shows up in the connected-devices
// listing. A probe failure is logged and treated as not connected, which makes
// the daemon fall back to wired behavior.
func (b *BluetoothLink) Connected() bool {
	out, err := b.runner.Output(b.tool, "devices", "Connected")
	if err != nil {
		b.logger.Warn("bluetooth probe failed; assuming wired", "error", err)
		return false
	}
	return strings.Contains(strings.ToUpper(out), b.mac)
}

// Disconnect drops the Bluetooth link.
func (b *BluetoothLink) Disconnect() error {
	return b.runner.Run(b.tool, "disconnect", b.mac)
}
