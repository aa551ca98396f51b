package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRunner records every executed argv and serves canned Output results.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []string
	outputs map[string]string // joined argv -> stdout
	failAll bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]string)}
}

func (r *fakeRunner) Run(argv ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, strings.Join(argv, " "))
	if r.failAll {
		return errors.New("fake failure")
	}
	return nil
}

func (r *fakeRunner) Output(argv ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.Join(argv, " ")
	r.calls = append(r.calls, key)
	if r.failAll {
		return "", errors.New("fake failure")
	}
	return r.outputs[key], nil
}

func (r *fakeRunner) callList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

// mockSupervisor is a RemapSupervisor test double.
type mockSupervisor struct {
	alive       bool
	toggleCalls int
	killCalls   int
}

func (m *mockSupervisor) Toggle() bool {
	m.toggleCalls++
	m.alive = !m.alive
	return m.alive
}

func (m *mockSupervisor) Alive() bool { return m.alive }
func (m *mockSupervisor) Kill()      { m.killCalls++; m.alive = false }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEffects(t *testing.T, runner *fakeRunner, sup *mockSupervisor, wireless bool) *Effects {
	t.Helper()
	logger := testLogger()
	return &Effects{
		Runner:           runner,
		Remap:            sup,
		Bar:              NewLightbar(runner, logger, "dualsensectl", "a0:ab:51:33:7c:7e", wireless),
		Link:             NewBluetoothLink(runner, logger, "bluetoothctl", "a0:ab:51:33:7c:7e"),
		Logger:           logger,
		OverlayCommand:   []string{"/usr/local/bin/toggle-overlay"},
		MarkerPath:       filepath.Join(t.TempDir(), "notv"),
		PrivilegedTTYMin: defaultPrivilegedTTYMin,
	}
}

func TestEffects_SwitchTTYSequence(t *testing.T) {
	runner := newFakeRunner()
	fx := newTestEffects(t, runner, &mockSupervisor{}, false)

	// Marker exists; the switch must remove it.
	if err := os.WriteFile(fx.MarkerPath, []byte{}, 0644); err != nil {
		t.Fatal(err)
	}

	runEffect(fx, CmdSwitchTTY{TTY: 11}, nil)

	want := []string{
		"sudo systemctl stop gdm",
		"sudo chvt 11",
		"sudo systemctl start getty@tty11",
	}
	got := runner.callList()
	if len(got) != len(want) {
		t.Fatalf("call sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := os.Stat(fx.MarkerPath); !os.IsNotExist(err) {
		t.Errorf("marker file was not removed")
	}
}

func TestEffects_RestartTTYGuardsManagedRange(t *testing.T) {
	runner := newFakeRunner()
	fx := newTestEffects(t, runner, &mockSupervisor{}, false)

	// Active console is a real session: no restart.
	runner.outputs["sudo fgconsole"] = "7\n"
	runEffect(fx, CmdRestartTTY{}, nil)
	for _, c := range runner.callList() {
		if strings.Contains(c, "restart") {
			t.Fatalf("restarted getty on a session console: %v", runner.callList())
		}
	}

	// Active console is in the managed range: restart its getty.
	runner.outputs["sudo fgconsole"] = "11\n"
	runEffect(fx, CmdRestartTTY{}, nil)
	found := false
	for _, c := range runner.callList() {
		if c == "sudo systemctl restart getty@tty11" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected getty@tty11 restart, calls: %v", runner.callList())
	}
}

func TestEffects_ToggleRemapEmitsObservation(t *testing.T) {
	runner := newFakeRunner()
	sup := &mockSupervisor{}
	fx := newTestEffects(t, runner, sup, false)

	var observed []Event
	runEffect(fx, CmdToggleRemap{}, func(ev Event) { observed = append(observed, ev) })

	if sup.toggleCalls != 1 {
		t.Fatalf("expected 1 toggle call, got %d", sup.toggleCalls)
	}
	if len(observed) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(observed))
	}
	obs, ok := observed[0].(RemapAliveObserved)
	if !ok || !obs.Alive {
		t.Fatalf("expected RemapAliveObserved{Alive:true}, got %#v", observed[0])
	}
}

func TestEffects_LightbarIntensityFollowsTransport(t *testing.T) {
	runner := newFakeRunner()
	fx := newTestEffects(t, runner, &mockSupervisor{}, true)

	runEffect(fx, CmdSetLightbar{R: 0, G: 255, B: 0}, nil)

	want := "dualsensectl -d a0:ab:51:33:7c:7e lightbar 0 255 0 50"
	got := runner.callList()
	if len(got) != 1 || got[0] != want {
		t.Fatalf("call = %v, want [%s]", got, want)
	}

	// Wired pads run at full brightness.
	runner2 := newFakeRunner()
	fx2 := newTestEffects(t, runner2, &mockSupervisor{}, false)
	runEffect(fx2, CmdSetLightbar{R: 0, G: 0, B: 255}, nil)
	want2 := "dualsensectl -d a0:ab:51:33:7c:7e lightbar 0 0 255 255"
	if got := runner2.callList(); len(got) != 1 || got[0] != want2 {
		t.Fatalf("call = %v, want [%s]", got, want2)
	}
}

func TestEffects_DisconnectUsesBluetoothctl(t *testing.T) {
	runner := newFakeRunner()
	fx := newTestEffects(t, runner, &mockSupervisor{}, true)

	runEffect(fx, CmdDisconnectTransport{}, nil)

	want := "bluetoothctl disconnect A0:AB:51:33:7C:7E"
	if got := runner.callList(); len(got) != 1 || got[0] != want {
		t.Fatalf("call = %v, want [%s]", got, want)
	}
}

func TestEffects_FailureEmitsActionFailed(t *testing.T) {
	runner := newFakeRunner()
	runner.failAll = true
	fx := newTestEffects(t, runner, &mockSupervisor{}, false)

	var observed []Event
	runEffect(fx, CmdToggleOverlay{}, func(ev Event) { observed = append(observed, ev) })

	if len(observed) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(observed))
	}
	if _, ok := observed[0].(ActionFailed); !ok {
		t.Fatalf("expected ActionFailed, got %#v", observed[0])
	}
}

// TestDaemon_RemapComboEndToEnd drives the full loop: chord in, supervisor
// toggled, observation reduced, lightbar turned green.
func TestDaemon_RemapComboEndToEnd(t *testing.T) {
	runner := newFakeRunner()
	sup := &mockSupervisor{}
	fx := newTestEffects(t, runner, sup, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 16)
	broadcasts := make(chan StateBroadcast, 16)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runDaemon(ctx, events, fx, NewDaemonState(TransportWireless, time.Now()), testReducerConfig(), broadcasts, testLogger())
	}()

	events <- ButtonDown{Code: BTN_MODE}
	events <- ButtonDown{Code: BTN_START}

	waitUntil(t, time.Second, func() bool {
		for _, c := range runner.callList() {
			if c == "dualsensectl -d a0:ab:51:33:7c:7e lightbar 0 255 0 50" {
				return true
			}
		}
		return false
	}, "lightbar never turned green after remap toggle")

	if sup.toggleCalls != 1 {
		t.Errorf("expected 1 supervisor toggle, got %d", sup.toggleCalls)
	}

	// Both the chord and the liveness transition are broadcast.
	var sawCombo, sawRemap bool
	deadline := time.After(time.Second)
	for !(sawCombo && sawRemap) {
		select {
		case b := <-broadcasts:
			switch bc := b.(type) {
			case BroadcastComboFired:
				sawCombo = bc.Combo == ComboRemap
			case BroadcastRemapChanged:
				sawRemap = bc.Alive
			}
		case <-deadline:
			t.Fatalf("missing broadcasts: combo=%v remap=%v", sawCombo, sawRemap)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("daemon did not stop on cancel")
	}
}

func TestBluetoothLink_ConnectedParsesListing(t *testing.T) {
	runner := newFakeRunner()
	link := NewBluetoothLink(runner, testLogger(), "bluetoothctl", "a0:ab:51:33:7c:7e")

	runner.outputs["bluetoothctl devices Connected"] = "Device A0:AB:51:33:7C:7E Wireless Controller\n"
	if !link.Connected() {
		t.Fatalf("expected connected for listed MAC")
	}

	runner.outputs["bluetoothctl devices Connected"] = "Device 11:22:33:44:55:66 Keyboard\n"
	if link.Connected() {
		t.Fatalf("expected not connected for unlisted MAC")
	}

	// Probe failure degrades to wired behavior.
	runner.failAll = true
	if link.Connected() {
		t.Fatalf("expected not connected on probe failure")
	}
}
