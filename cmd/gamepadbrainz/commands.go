package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command represents an external side effect to be executed by the daemon loop.
// In this codebase, those are system commands (systemctl/chvt/bluetoothctl/
// dualsensectl) and remap-process lifecycle operations.
type Command interface {
	commandMarker()
	String() string
}

// CmdRestartTTY restarts the getty on the currently active virtual terminal,
// guarded so tty1-8 are never touched.
type CmdRestartTTY struct{}

func (CmdRestartTTY) commandMarker() {}
func (CmdRestartTTY) String() string { return "CmdRestartTTY()" }

// CmdSwitchTTY stops the desktop session manager and switches to a text console.
type CmdSwitchTTY struct {
	TTY int
}

func (CmdSwitchTTY) commandMarker()   {}
func (c CmdSwitchTTY) String() string { return fmt.Sprintf("CmdSwitchTTY(tty=%d)", c.TTY) }

// CmdToggleOverlay toggles the performance overlay via its external script.
type CmdToggleOverlay struct{}

func (CmdToggleOverlay) commandMarker() {}
func (CmdToggleOverlay) String() string { return "CmdToggleOverlay()" }

// CmdToggleRemap toggles the supervised remap process.
type CmdToggleRemap struct{}

func (CmdToggleRemap) commandMarker() {}
func (CmdToggleRemap) String() string { return "CmdToggleRemap()" }

// CmdSetLightbar sets the lightbar color (intensity is transport-dependent and
// applied by the lightbar controller).
type CmdSetLightbar struct {
	R, G, B int
}

func (CmdSetLightbar) commandMarker() {}
func (c CmdSetLightbar) String() string {
	return fmt.Sprintf("CmdSetLightbar(r=%d g=%d b=%d)", c.R, c.G, c.B)
}

// CmdSetLightbarState sets the discrete lightbar state (on/off/blink).
type CmdSetLightbarState struct {
	State string
}

func (CmdSetLightbarState) commandMarker() {}
func (c CmdSetLightbarState) String() string {
	return fmt.Sprintf("CmdSetLightbarState(state=%s)", c.State)
}

// CmdDisconnectTransport drops the Bluetooth link for power management.
type CmdDisconnectTransport struct{}

func (CmdDisconnectTransport) commandMarker() {}
func (CmdDisconnectTransport) String() string { return "CmdDisconnectTransport()" }
