package main

import "time"

// This file implements the reducer-style architecture building blocks:
//
//   - Events: inputs to the reducer (input events, control events, time-stamped
//     wrappers, observations from executed side effects)
//   - Reduce(): computes next state + commands + broadcasts, without performing I/O
//
// The reducer must be pure. It must not perform I/O, block, or mutate anything
// outside the returned state. The daemon loop executes Commands, turns their
// results into observation Events, and feeds those back into Reduce().

// ==============================
// Events
// ==============================

// Event is the input to the reducer.
type Event interface {
	eventMarker()
}

// TimedEvent wraps a payload Event with the time it entered the daemon loop.
type TimedEvent struct {
	Event Event
	At    time.Time
}

func (TimedEvent) eventMarker() {}

// RemapAliveObserved is emitted by the effects layer after the remap process
// has been toggled, reporting the resulting liveness.
type RemapAliveObserved struct {
	Alive bool
	At    time.Time
}

func (RemapAliveObserved) eventMarker() {}

// ActionFailed is emitted when executing a Command fails. Failures are
// fire-and-forget: the loop's availability wins over any single action, so the
// reducer keeps state as-is.
type ActionFailed struct {
	Command Command
	Err     error
	At      time.Time
}

func (ActionFailed) eventMarker() {}

// ==============================
// Broadcasts (observability)
// ==============================

// StateBroadcast is a reducer-emitted notification for external observers
// (the status WebSocket hub). Broadcasts never influence daemon behavior.
type StateBroadcast interface {
	broadcastMarker()
}

// BroadcastComboFired reports a recognized chord.
type BroadcastComboFired struct {
	Combo ComboID
	At    time.Time
}

func (BroadcastComboFired) broadcastMarker() {}

// BroadcastRemapChanged reports remap process liveness transitions.
type BroadcastRemapChanged struct {
	Alive bool
	At    time.Time
}

func (BroadcastRemapChanged) broadcastMarker() {}

// BroadcastIdleDisconnect reports an idle-timeout disconnect request.
type BroadcastIdleDisconnect struct {
	At time.Time
}

func (BroadcastIdleDisconnect) broadcastMarker() {}

// ==============================
// Reducer input/output
// ==============================

// ReducerConfig carries the policy knobs the reducer needs. It is plain data
// so tests can construct it inline.
type ReducerConfig struct {
	// IdleTimeout is the no-activity window after which a wireless pad is
	// disconnected. Zero disables idle handling entirely.
	IdleTimeout time.Duration

	// DeadZoneLow/High bound the axis rest window; samples inside it are
	// ignored for activity tracking.
	DeadZoneLow  int32
	DeadZoneHigh int32

	// ConsoleTTY is the text console the tty combo switches to.
	ConsoleTTY int
}

// ReduceResult is the output of Reduce(): next state plus Commands to execute
// plus Broadcasts to publish.
type ReduceResult struct {
	State      *DaemonState
	Commands   []Command
	Broadcasts []StateBroadcast
}

// Reduce is the pure reducer.
//
// Idle detection is deliberately sampled here, once per delivered event, not
// on a timer: a pad that produces no events at all is never disconnected.
// That matches the upstream behavior and keeps the loop free of timers.
func Reduce(s *DaemonState, e Event, cfg ReducerConfig) ReduceResult {
	if s == nil {
		s = NewDaemonState(TransportWired, time.Time{})
	}

	var cmds []Command
	var bcasts []StateBroadcast

	switch ev := e.(type) {
	case TimedEvent:
		now := ev.At
		if now.IsZero() {
			now = time.Now()
		}

		// Idle check runs before the event itself is applied, so the event that
		// wakes an idle pad still triggers the disconnect.
		if s.Transport == TransportWireless && cfg.IdleTimeout > 0 &&
			!s.LastActivity.IsZero() && now.Sub(s.LastActivity) > cfg.IdleTimeout {
			cmds = append(cmds, CmdDisconnectTransport{})
			bcasts = append(bcasts, BroadcastIdleDisconnect{At: now})
			// Reset so a disconnect that fails (or takes a moment) doesn't
			// re-fire on every subsequent event.
			s.LastActivity = now
		}

		switch p := ev.Event.(type) {
		case ButtonDown:
			s.LastActivity = now
			s.Pressed[p.Code] = struct{}{}
			if id, ok := matchCombo(s.Pressed); ok {
				// Consume the whole set: the chord is spent, and further downs
				// while it is physically held must not re-fire it.
				s.Pressed = make(map[uint16]struct{})
				s.LastCombo = id
				bcasts = append(bcasts, BroadcastComboFired{Combo: id, At: now})
				cmds = append(cmds, comboCommands(id, cfg)...)
			}

		case ButtonUp:
			s.LastActivity = now
			delete(s.Pressed, p.Code)

		case AxisMoved:
			if p.Value < cfg.DeadZoneLow || p.Value > cfg.DeadZoneHigh {
				s.LastActivity = now
			}

		case ToggleRemap:
			cmds = append(cmds, CmdToggleRemap{})

		case ToggleOverlay:
			cmds = append(cmds, CmdToggleOverlay{})

		case SetLightbar:
			cmds = append(cmds, CmdSetLightbar{R: p.R, G: p.G, B: p.B})

		case DisconnectTransport:
			cmds = append(cmds, CmdDisconnectTransport{})
			s.LastActivity = now

		default:
			// Unknown payload: no-op.
		}

	case RemapAliveObserved:
		s.RemapAlive = ev.Alive
		r, g, b := remapColor(ev.Alive)
		cmds = append(cmds, CmdSetLightbar{R: r, G: g, B: b})
		bcasts = append(bcasts, BroadcastRemapChanged{Alive: ev.Alive, At: ev.At})

	case ActionFailed:
		// Already logged by the effects layer; nothing escalates.
		_ = ev

	default:
		// Unknown event type: no-op.
	}

	return ReduceResult{
		State:      s,
		Commands:   cmds,
		Broadcasts: bcasts,
	}
}

// comboCommands maps a fired combo to its side effects. The match over ComboID
// is exhaustive; ComboMakima is registered but deliberately unbound.
func comboCommands(id ComboID, cfg ReducerConfig) []Command {
	switch id {
	case ComboReset:
		return []Command{CmdRestartTTY{}}
	case ComboTTY:
		return []Command{CmdSwitchTTY{TTY: cfg.ConsoleTTY}}
	case ComboOverlay:
		return []Command{CmdToggleOverlay{}}
	case ComboRemap:
		return []Command{CmdToggleRemap{}}
	case ComboMakima:
		// Reserved slot kept from the original combo table; no action is bound.
		return nil
	default:
		return nil
	}
}

// remapColor is the activity-indicator policy: green while the remap process
// is alive, blue otherwise.
func remapColor(alive bool) (r, g, b int) {
	if alive {
		return 0, 255, 0
	}
	return 0, 0, 255
}
