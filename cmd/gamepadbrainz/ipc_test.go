package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestIPC_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	socketPath := filepath.Join(t.TempDir(), "ipc.sock")
	events := make(chan Event, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := runIPCServer(ctx, socketPath, events, testLogger()); err != nil {
			t.Errorf("ipc server: %v", err)
		}
	}()

	// Wait for the listener to come up.
	waitUntil(t, time.Second, func() bool {
		return SendIPCEvent(socketPath, ToggleRemap{}) == nil
	}, "ipc server never accepted a connection")

	select {
	case ev := <-events:
		if _, ok := ev.(ToggleRemap); !ok {
			t.Fatalf("expected ToggleRemap, got %T", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("event never delivered to daemon channel")
	}

	// Payload events carry their data through the envelope.
	if err := SendIPCEvent(socketPath, SetLightbar{R: 10, G: 20, B: 30}); err != nil {
		t.Fatalf("send SetLightbar: %v", err)
	}
	select {
	case ev := <-events:
		lb, ok := ev.(SetLightbar)
		if !ok || lb.R != 10 || lb.G != 20 || lb.B != 30 {
			t.Fatalf("expected SetLightbar{10,20,30}, got %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("event never delivered to daemon channel")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ipc server did not stop on cancel")
	}
}

func TestUnmarshalEventRejectsUnknownType(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"type":"warp_drive"}`)); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}
