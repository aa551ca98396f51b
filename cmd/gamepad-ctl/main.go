package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
)

// ============================================================================
// gamepad-ctl - Command-line IPC Client
// ============================================================================
// This tool sends control events to a gamepadbrainz daemon via IPC.
//
// Usage:
//   gamepad-ctl toggle-remap
//   gamepad-ctl toggle-overlay
//   gamepad-ctl lightbar 0 255 0
//   gamepad-ctl disconnect
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/gamepadbrainz.sock)
// ============================================================================

// Event types (duplicated from the daemon package for standalone binary)
type Event interface{}

type ToggleRemap struct{}

type ToggleOverlay struct{}

type SetLightbar struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

type DisconnectTransport struct{}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func main() {
	socketPath := "/tmp/gamepadbrainz.sock"

	// Parse arguments
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Check for -socket flag
	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Parse command
	var event Event

	switch args[0] {
	case "toggle-remap", "remap":
		event = ToggleRemap{}

	case "toggle-overlay", "overlay":
		event = ToggleOverlay{}

	case "lightbar":
		if len(args) < 4 {
			fmt.Fprintf(os.Stderr, "error: lightbar requires R G B values\n")
			os.Exit(1)
		}
		rgb := make([]int, 3)
		for i := 0; i < 3; i++ {
			v, err := strconv.Atoi(args[1+i])
			if err != nil || v < 0 || v > 255 {
				fmt.Fprintf(os.Stderr, "error: invalid color component %q (must be 0-255)\n", args[1+i])
				os.Exit(1)
			}
			rgb[i] = v
		}
		event = SetLightbar{R: rgb[0], G: rgb[1], B: rgb[2]}

	case "disconnect":
		event = DisconnectTransport{}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	// Send event
	if err := sendEvent(socketPath, event); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

func sendEvent(socketPath string, event Event) error {
	// Connect to socket
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	// Marshal event
	data, err := marshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Send event (line-delimited JSON)
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	// Read response
	var response IPCResponse
	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	// Check response status
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}

	return nil
}

func marshalEvent(event Event) ([]byte, error) {
	var env EventEnvelope

	switch e := event.(type) {
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
		return nil, fmt.Errorf("unknown event type: %T", event)
	}

	return json.Marshal(env)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `gamepad-ctl - Control a gamepadbrainz daemon via IPC

Usage:
  gamepad-ctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/gamepadbrainz.sock)

Commands:
  toggle-remap, remap      Toggle the remap helper process
  toggle-overlay, overlay  Toggle the performance overlay
  lightbar <R> <G> <B>     Set the lightbar color (0-255 per channel)
  disconnect               Disconnect the controller's Bluetooth link
  help, -h, --help         Show this help message

Examples:
  gamepad-ctl toggle-remap
  gamepad-ctl lightbar 255 0 0
  gamepad-ctl -socket /tmp/gamepadbrainz-a0ab51337c7e.sock disconnect
`)
}
