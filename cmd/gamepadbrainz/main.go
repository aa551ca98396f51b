package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("GamepadBrainz v%s\n", version)
	fmt.Println("Per-controller daemon for chord actions, idle power-off and lightbar status")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gamepadbrainz [OPTIONS] <controller-mac>")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that reads Linux input events from one DualSense controller")
	fmt.Println("  (addressed by MAC) and turns button chords into system actions:")
	fmt.Println("  console switching, getty restart, overlay toggle and an optional")
	fmt.Println("  remap helper process. Idle Bluetooth pads are disconnected to save")
	fmt.Println("  battery, and the lightbar reflects remap liveness.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (flags override file values)")
	fmt.Println()
	fmt.Println("  -idle-timeout-sec int")
	fmt.Printf("        Idle seconds before disconnecting a Bluetooth pad; 0 disables (default %d)\n", defaultIdleTimeoutSec)
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Printf("%s\n", "        Unix domain socket path for IPC; %s expands to the MAC")
	fmt.Printf("%s\n", "        (default \"/tmp/gamepadbrainz-%s.sock\")")
	fmt.Println()
	fmt.Println("  -status-port int")
	fmt.Println("        Status WebSocket listener port; 0 disables (default 0)")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("CHORDS:")
	fmt.Println("  L1 + R1 + PS        restart the getty on the active console")
	fmt.Println("  PS + Cross          switch to the text console")
	fmt.Println("  PS + Square         toggle the performance overlay")
	fmt.Println("  PS + Options        toggle the remap helper process")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start for one controller (udev provides /dev/gamepad-<mac>)")
	fmt.Println("  gamepadbrainz a0:ab:51:33:7c:7e")
	fmt.Println()
	fmt.Println("  # With a config file and debug logging")
	fmt.Println("  gamepadbrainz -config /etc/gamepadbrainz.yaml -log-level debug a0:ab:51:33:7c:7e")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read access to the event device (run as root or add user to 'input' group)")
	fmt.Println("  - Exit status is 1 only when the event device cannot be opened;")
	fmt.Println("    interrupts and read errors (pad disconnect) exit 0 so supervisors")
	fmt.Println("    treat a vanished pad as a normal stop")
	fmt.Println()
}

func main() {
	// Check for version/help flags early
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	// Parse command-line flags
	var (
		configPath     = flag.String("config", "", "Path to YAML config file")
		idleTimeoutSec = flag.Int("idle-timeout-sec", defaultIdleTimeoutSec, "Idle seconds before disconnecting a Bluetooth pad; 0 disables")
		ipcSocketPath  = flag.String("ipc-socket", "/tmp/gamepadbrainz-%s.sock", "Unix domain socket path for IPC; %s expands to the MAC")
		statusPort     = flag.Int("status-port", 0, "Status WebSocket listener port; 0 disables")
		logLevelStr    = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion    = flag.Bool("version", false, "Print version and exit")
		showHelp       = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one controller MAC argument is required")
		printUsage()
		os.Exit(1)
	}
	mac := flag.Arg(0)

	// Load config: defaults, then file, then flag overrides (only flags the
	// user actually set).
	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var overrides FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "idle-timeout-sec":
			overrides.IdleTimeoutSec = idleTimeoutSec
		case "ipc-socket":
			overrides.IPCSocketPath = ipcSocketPath
		case "status-port":
			overrides.StatusPort = statusPort
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// Parse and validate log level
	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(logLevel)

	runner := newExecRunner(logger)
	link := NewBluetoothLink(runner, logger, cfg.Tools.Bluetoothctl, mac)

	// Probe transport before touching the device: intensity and idle policy
	// depend on it, and a failed probe degrades to wired behavior.
	wireless := link.Connected()
	transport := TransportWired
	if wireless {
		transport = TransportWireless
	}

	// Open the event device. This is the only failure that exits non-zero,
	// and it happens before any indicator side effects.
	devicePath := cfg.DevicePath(mac)
	f, err := os.Open(devicePath)
	if err != nil {
		logger.Error("failed to open input device", "device", devicePath, "error", err, "tip", "run as root or add user to 'input' group")
		os.Exit(1)
	}
	defer f.Close()

	socketPath := cfg.SocketPath(mac)

	logger.Info("starting gamepadbrainz",
		"version", version,
		"mac", mac,
		"device", devicePath,
		"transport", transport.String(),
		"idle_timeout_sec", cfg.Idle.TimeoutSec,
		"ipc_socket", socketPath,
		"status_port", cfg.Status.Port)

	bar := NewLightbar(runner, logger, cfg.Tools.Dualsensectl, mac, wireless)
	bar.Startup()

	// The remap helper gets the device path appended so it grabs the same pad.
	sup := NewSupervisor(logger, append(append([]string{}, cfg.Remap.Command...), devicePath))

	fx := &Effects{
		Runner:           runner,
		Remap:            sup,
		Bar:              bar,
		Link:             link,
		Logger:           logger,
		OverlayCommand:   cfg.Overlay.Command,
		MarkerPath:       cfg.TTY.MarkerPath,
		PrivilegedTTYMin: cfg.TTY.PrivilegedMin,
	}

	rcfg := ReducerConfig{
		IdleTimeout:  time.Duration(cfg.Idle.TimeoutSec) * time.Second,
		DeadZoneLow:  cfg.Input.DeadZoneLow,
		DeadZoneHigh: cfg.Input.DeadZoneHigh,
		ConsoleTTY:   cfg.TTY.Console,
	}

	// Handle shutdown
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 64)
	broadcasts := make(chan StateBroadcast, 64)

	// Server goroutines (IPC, optional status WS) under one errgroup.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runIPCServer(gctx, socketPath, events, logger)
	})

	if cfg.Status.Port > 0 {
		server := NewServer(logger, ServerConfig{})
		mux := http.NewServeMux()
		server.Register(mux, "/ws")

		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Status.Port),
			Handler: mux,
		}

		g.Go(func() error {
			server.Hub().Run(gctx)
			return nil
		})
		g.Go(func() error {
			RunBroadcaster(gctx, server.Hub(), broadcasts, logger)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			logger.Info("status ws listening", "port", cfg.Status.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	} else {
		// No status server: drain broadcasts so the daemon never blocks.
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-broadcasts:
				}
			}
		})
	}

	// Daemon brain
	state := NewDaemonState(transport, time.Now())
	daemonDone := make(chan struct{})
	go func() {
		defer close(daemonDone)
		runDaemon(ctx, events, fx, state, rcfg, broadcasts, logger)
	}()

	// Read loop for raw input events
	raw := make(chan inputEvent, 64)
	readErr := make(chan error, 1)
	go readInputEvents(f, raw, readErr)

	shutdown := func(reason string) {
		logger.Info("shutting down", "reason", reason)
		cancel()
		<-daemonDone
		if err := g.Wait(); err != nil {
			logger.Error("server error during shutdown", "error", err)
		}
		if sup.Alive() {
			sup.Kill()
		}
		f.Close()
	}

	// ============================================================================
	// Main Event Loop - Input Coordination Only
	// ============================================================================
	// This loop only handles:
	//   - Shutdown signals
	//   - Input errors (including EOF when the pad disconnects)
	//   - Translating raw input events into payload Events
	//
	// The daemon brain (runDaemon) handles all state updates and actions.
	// ============================================================================

	for {
		select {
		case <-sigc:
			shutdown("signal")
			return

		case err := <-readErr:
			// A vanished pad is a normal stop, not a failure. Exit 0 so
			// supervisors don't flap trying to restart against a device that
			// is gone.
			logger.Error("input reader stopped", "error", err)
			shutdown("read error")
			return

		case ev := <-raw:
			switch ev.Type {
			case EV_KEY:
				switch ev.Value {
				case evValuePress:
					events <- ButtonDown{Code: ev.Code}
				case evValueRelease:
					events <- ButtonUp{Code: ev.Code}
				case evValueRepeat:
					// Autorepeat is not a state transition; drop it.
				}

			case EV_ABS:
				events <- AxisMoved{Value: ev.Value}
			}
		}
	}
}
