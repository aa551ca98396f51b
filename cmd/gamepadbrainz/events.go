package main

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// Input & control events
// ============================================================================
// These are the payload events fed into the reducer. They come from two
// sources: the raw input translation loop in main (button/axis events) and the
// IPC socket (control events injected by gamepad-ctl or scripts).
//
// The daemon loop wraps every channel-delivered event in TimedEvent so the
// reducer sees a consistent timestamp; payload types stay clean.
// ============================================================================

// ButtonDown reports a physical button press.
type ButtonDown struct {
	Code uint16 `json:"code"`
}

func (ButtonDown) eventMarker() {}

// ButtonUp reports a physical button release.
type ButtonUp struct {
	Code uint16 `json:"code"`
}

func (ButtonUp) eventMarker() {}

// AxisMoved reports a thumbstick/axis sample (0-255 scale).
type AxisMoved struct {
	Value int32 `json:"value"`
}

func (AxisMoved) eventMarker() {}

// ToggleRemap requests toggling the xboxdrv-style remap process.
type ToggleRemap struct{}

func (ToggleRemap) eventMarker() {}

// ToggleOverlay requests toggling the performance overlay.
type ToggleOverlay struct{}

func (ToggleOverlay) eventMarker() {}

// SetLightbar requests an explicit lightbar color (intensity is applied by the
// lightbar controller based on transport).
type SetLightbar struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (SetLightbar) eventMarker() {}

// DisconnectTransport requests dropping the Bluetooth link now.
type DisconnectTransport struct{}

func (DisconnectTransport) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================
// EventEnvelope wraps events for the line-delimited-JSON IPC protocol.
// Since Go doesn't have union types, we use a type discriminator.
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete Event.
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "button_down":
		var e ButtonDown
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ButtonDown: %w", err)
		}
		return e, nil

	case "button_up":
		var e ButtonUp
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ButtonUp: %w", err)
		}
		return e, nil

	case "axis_moved":
		var e AxisMoved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal AxisMoved: %w", err)
		}
		return e, nil

	case "toggle_remap":
		return ToggleRemap{}, nil

	case "toggle_overlay":
		return ToggleOverlay{}, nil

	case "set_lightbar":
		var e SetLightbar
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SetLightbar: %w", err)
		}
		return e, nil

	case "disconnect_transport":
		return DisconnectTransport{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope with type discriminator.
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	switch e := e.(type) {
	case ButtonDown:
		env.Type = "button_down"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal ButtonDown: %w", err)
		}
		env.Data = data

	case ButtonUp:
		env.Type = "button_up"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal ButtonUp: %w", err)
		}
		env.Data = data

	case AxisMoved:
		env.Type = "axis_moved"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal AxisMoved: %w", err)
		}
		env.Data = data

	case ToggleRemap:
		env.Type = "toggle_remap"

	case ToggleOverlay:
		env.Type = "toggle_overlay"

	case SetLightbar:
		env.Type = "set_lightbar"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SetLightbar: %w", err)
		}
		env.Data = data

	case DisconnectTransport:
		env.Type = "disconnect_transport"

	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}
