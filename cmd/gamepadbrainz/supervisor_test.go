package main

import (
	"testing"
	"time"
)

func TestSupervisor_ToggleAlternates(t *testing.T) {
	sup := NewSupervisor(testLogger(), []string{"/bin/sleep", "60"})

	if sup.Alive() {
		t.Fatalf("fresh supervisor must not be alive")
	}

	if !sup.Toggle() {
		t.Fatalf("first toggle should start the process")
	}
	if !sup.Alive() {
		t.Fatalf("process should be alive after start")
	}

	if sup.Toggle() {
		t.Fatalf("second toggle should kill the process")
	}
	if sup.Alive() {
		t.Fatalf("process should be dead after kill")
	}
}

func TestSupervisor_AliveObservesExit(t *testing.T) {
	sup := NewSupervisor(testLogger(), []string{"/bin/true"})

	sup.Toggle()

	// The process exits on its own; the waiter closes done and Alive flips
	// without anyone calling Kill.
	waitUntil(t, 2*time.Second, func() bool {
		return !sup.Alive()
	}, "Alive never observed process exit")
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	sup := NewSupervisor(testLogger(), []string{"/nonexistent/binary"})

	if sup.Toggle() {
		t.Fatalf("toggle must report dead when spawn fails")
	}
	if sup.Alive() {
		t.Fatalf("failed spawn must leave the handle empty")
	}

	// Kill on an empty handle is a no-op.
	sup.Kill()
}

func TestSupervisor_EmptyCommand(t *testing.T) {
	sup := NewSupervisor(testLogger(), nil)
	if sup.Toggle() {
		t.Fatalf("toggle with no command must report dead")
	}
}
