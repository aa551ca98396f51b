package main

import "time"

// Transport is how the controller is attached. It is resolved once at startup
// and never changes for the process lifetime.
type Transport int

const (
	TransportWired Transport = iota
	TransportWireless
)

func (t Transport) String() string {
	if t == TransportWireless {
		return "wireless"
	}
	return "wired"
}

// DaemonState is the daemon-owned state container.
//
// Goals:
//   - Keep all reducer-owned state in one place (pure reducer, no external mutation).
//   - Everything here is touched only by the daemon goroutine; there is no
//     locking because there is no second writer.
type DaemonState struct {
	// Transport is fixed at startup from the Bluetooth probe.
	Transport Transport

	// Pressed is the live set of currently-held button codes. A code is present
	// iff its most recent event was a press not yet followed by a release,
	// except immediately after a combo match, when the whole set is consumed.
	Pressed map[uint16]struct{}

	// LastActivity is the time of the last meaningful input: any button
	// transition, or an axis sample outside the dead zone.
	LastActivity time.Time

	// RemapAlive mirrors the last observed liveness of the remap process.
	RemapAlive bool

	// LastCombo is the most recently fired combo (for observability only).
	LastCombo ComboID
}

// NewDaemonState returns a state seeded with the startup timestamp so an
// untouched wireless pad still times out relative to daemon start.
func NewDaemonState(transport Transport, now time.Time) *DaemonState {
	return &DaemonState{
		Transport:    transport,
		Pressed:      make(map[uint16]struct{}),
		LastActivity: now,
	}
}
