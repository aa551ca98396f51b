package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// gamepad-watch connects to a gamepadbrainz status WebSocket and prints every
// event it receives. Debugging tool: watch chords fire and the remap process
// flip without tailing the daemon log.

func main() {
	var (
		wsURL = flag.String("ws", "ws://127.0.0.1:8765/ws", "gamepadbrainz status WebSocket URL")
		raw   = flag.Bool("raw", false, "Print raw JSON frames instead of formatted lines")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	// Handle shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	// Mutex to protect concurrent writes to websocket
	var writeMu sync.Mutex

	// Set up ping/pong handlers for connection health
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Start ping ticker to keep connection alive
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go func() {
		for range pingTicker.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				log.Printf("ping failed: %v", err)
				return
			}
		}
	}()

	frames := make(chan []byte, 16)
	readErr := make(chan error, 1)
	go func() {
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if messageType == websocket.TextMessage {
				frames <- message
			}
		}
	}()

	for {
		select {
		case <-sigc:
			log.Printf("shutting down")
			return

		case err := <-readErr:
			log.Fatalf("read failed: %v", err)

		case frame := <-frames:
			if *raw {
				fmt.Printf("%s\n", string(frame))
				continue
			}
			printFrame(frame)
		}
	}
}

type statusFrame struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func printFrame(frame []byte) {
	var env statusFrame
	if err := json.Unmarshal(frame, &env); err != nil {
		fmt.Printf("%s\n", string(frame))
		return
	}

	ts := ""
	if env.Ts != nil {
		ts = env.Ts.Local().Format("15:04:05.000")
	}

	switch env.Type {
	case "combo_fired":
		var d struct {
			Combo string `json:"combo"`
		}
		_ = json.Unmarshal(env.Data, &d)
		fmt.Printf("%s  combo     %s\n", ts, d.Combo)

	case "remap_changed":
		var d struct {
			Alive bool `json:"alive"`
		}
		_ = json.Unmarshal(env.Data, &d)
		state := "stopped"
		if d.Alive {
			state = "running"
		}
		fmt.Printf("%s  remap     %s\n", ts, state)

	case "idle_disconnect":
		fmt.Printf("%s  idle      disconnecting controller\n", ts)

	default:
		fmt.Printf("%s  %s  %s\n", ts, env.Type, string(env.Data))
	}
}
