package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// Effects layer
// ============================================================================
// runEffect executes a single reducer-emitted Command against the external
// collaborators and emits observation Events via onEvent.
//
// Design rules:
//   - This is the only place allowed to perform action I/O.
//   - It must never call Reduce() directly; it only emits Events to be reduced
//     by the daemon loop.
//   - Failures are logged, reported as ActionFailed and never retried; no
//     command failure may stop the event loop.
// ============================================================================

// RemapSupervisor is what the effects layer needs from the process supervisor.
type RemapSupervisor interface {
	Toggle() bool
	Alive() bool
	Kill()
}

// Effects bundles the collaborators commands are executed against.
type Effects struct {
	Runner CommandRunner
	Remap  RemapSupervisor
	Bar    *Lightbar
	Link   *BluetoothLink
	Logger *slog.Logger

	// OverlayCommand is the external toggle script for the performance overlay.
	OverlayCommand []string

	// MarkerPath is removed (idempotently) before any terminal-switching action.
	MarkerPath string

	// PrivilegedTTYMin guards getty restarts: consoles below it are never touched.
	PrivilegedTTYMin int
}

// runEffect executes one Command.
func runEffect(fx *Effects, cmd Command, onEvent func(Event)) {
	now := time.Now()

	fail := func(err error) {
		fx.Logger.Error("action failed", "command", cmd.String(), "error", err)
		if onEvent != nil {
			onEvent(ActionFailed{Command: cmd, Err: err, At: now})
		}
	}

	switch c := cmd.(type) {
	case CmdRestartTTY:
		fx.restartTTY(fail)

	case CmdSwitchTTY:
		fx.switchTTY(c.TTY, fail)

	case CmdToggleOverlay:
		if err := fx.Runner.Run(fx.OverlayCommand...); err != nil {
			fail(err)
		}

	case CmdToggleRemap:
		alive := fx.Remap.Toggle()
		if onEvent != nil {
			onEvent(RemapAliveObserved{Alive: alive, At: now})
		}

	case CmdSetLightbar:
		if err := fx.Bar.SetColor(c.R, c.G, c.B); err != nil {
			fail(err)
		}

	case CmdSetLightbarState:
		if err := fx.Bar.SetState(c.State); err != nil {
			fail(err)
		}

	case CmdDisconnectTransport:
		fx.Logger.Info("disconnecting controller", "reason", "requested")
		if err := fx.Link.Disconnect(); err != nil {
			fail(err)
		}

	default:
		fail(fmt.Errorf("unknown command: %s", cmd.String()))
	}
}

// restartTTY restarts the getty on the active console, but only if that
// console is in the managed range (tty1-8 belong to real sessions).
func (fx *Effects) restartTTY(fail func(error)) {
	out, err := fx.Runner.Output("sudo", "fgconsole")
	if err != nil {
		fail(fmt.Errorf("query active console: %w", err))
		return
	}

	tty, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		fail(fmt.Errorf("parse fgconsole output %q: %w", out, err))
		return
	}

	if tty < fx.PrivilegedTTYMin {
		fx.Logger.Info("active console outside managed range; not restarting", "tty", tty)
		return
	}

	fx.removeMarker()
	if err := fx.Runner.Run("sudo", "systemctl", "restart", fmt.Sprintf("getty@tty%d", tty)); err != nil {
		fail(err)
	}
}

// switchTTY stops the desktop session manager, switches to the text console
// and starts its getty. Each step is independent: a failed step is logged and
// the remaining steps still run.
func (fx *Effects) switchTTY(tty int, fail func(error)) {
	fx.Logger.Info("switching console", "tty", tty)

	if err := fx.Runner.Run("sudo", "systemctl", "stop", "gdm"); err != nil {
		fail(err)
	}
	fx.removeMarker()
	if err := fx.Runner.Run("sudo", "chvt", strconv.Itoa(tty)); err != nil {
		fail(err)
	}
	if err := fx.Runner.Run("sudo", "systemctl", "start", fmt.Sprintf("getty@tty%d", tty)); err != nil {
		fail(err)
	}
}

// removeMarker removes the TV-mode marker file. Absence is not an error.
func (fx *Effects) removeMarker() {
	if fx.MarkerPath == "" {
		return
	}
	if err := os.Remove(fx.MarkerPath); err != nil {
		if os.IsNotExist(err) {
			fx.Logger.Debug("marker file absent; nothing to remove", "path", fx.MarkerPath)
		} else {
			fx.Logger.Warn("marker file removal failed", "path", fx.MarkerPath, "error", err)
		}
		return
	}
	fx.Logger.Info("marker file removed", "path", fx.MarkerPath)
}
