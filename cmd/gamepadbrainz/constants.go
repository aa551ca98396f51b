package main

// Linux input event types (from <linux/input-event-codes.h>)
const (
	EV_KEY = 0x01
	EV_ABS = 0x03
)

// Gamepad button codes (from <linux/input-event-codes.h>)
const (
	BTN_SOUTH  = 0x130 // cross
	BTN_WEST   = 0x134 // square
	BTN_TL     = 0x136 // left bumper
	BTN_TR     = 0x137 // right bumper
	BTN_SELECT = 0x13a // create/share
	BTN_START  = 0x13b // options
	BTN_MODE   = 0x13c // PS button
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

// Stick axes report 0-255 with ~128 at rest. Values inside the dead zone are
// stick drift, not activity.
const (
	defaultDeadZoneLow  = 120
	defaultDeadZoneHigh = 140
)

// Idle/power management defaults
const (
	defaultIdleTimeoutSec = 300 // disconnect a Bluetooth pad after 5 minutes of no activity
)

// TTY management defaults
const (
	defaultPrivilegedTTYMin = 9  // getty restarts never touch tty1-8
	defaultConsoleTTY       = 11 // text console the tty combo switches to
	defaultMarkerPath       = "/tmp/notv"
)

// Lightbar intensity by transport. Bluetooth pads run dimmer to save battery.
const (
	intensityWireless = 50
	intensityWired    = 255
)
