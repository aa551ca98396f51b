package main

import (
	"log/slog"
	"strconv"
	"time"
)

// Lightbar drives the controller's RGB bar and microphone LED through the
// dualsensectl command-line tool. Intensity is fixed per transport: wireless
// pads run dim to save battery, wired pads at full brightness. The policy is
// applied uniformly to every color-setting call.
type Lightbar struct {
	runner   CommandRunner
	logger   *slog.Logger
	tool     string
	device   string // controller MAC, as dualsensectl addresses it
	wireless bool
}

func NewLightbar(runner CommandRunner, logger *slog.Logger, tool, device string, wireless bool) *Lightbar {
	return &Lightbar{
		runner:   runner,
		logger:   logger,
		tool:     tool,
		device:   device,
		wireless: wireless,
	}
}

func (l *Lightbar) intensity() int {
	if l.wireless {
		return intensityWireless
	}
	return intensityWired
}

// SetColor sets the lightbar to an RGB color at the transport intensity.
func (l *Lightbar) SetColor(r, g, b int) error {
	return l.runner.Run(l.tool, "-d", l.device, "lightbar",
		strconv.Itoa(r), strconv.Itoa(g), strconv.Itoa(b), strconv.Itoa(l.intensity()))
}

// SetState sets the discrete lightbar state: on, off or blink.
func (l *Lightbar) SetState(state string) error {
	return l.runner.Run(l.tool, "-d", l.device, "lightbar", state)
}

// SetMicLED sets the microphone LED state (on/off).
func (l *Lightbar) SetMicLED(state string) error {
	return l.runner.Run(l.tool, "-d", l.device, "microphone-led", state)
}

// Startup pushes the initial indicator sequence. Wireless pads get a short
// off-then-blue blink to confirm pairing; wired pads go straight to blue.
// Errors are logged and swallowed: the indicator is best-effort feedback.
func (l *Lightbar) Startup() {
	if err := l.SetMicLED("off"); err != nil {
		l.logger.Warn("microphone led update failed", "error", err)
	}

	if l.wireless {
		time.Sleep(500 * time.Millisecond)
		if err := l.SetState("off"); err != nil {
			l.logger.Warn("lightbar state update failed", "error", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	if err := l.SetColor(remapColor(false)); err != nil {
		l.logger.Warn("lightbar color update failed", "error", err)
	}
}
