package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandRunner executes external system commands on behalf of the daemon.
// Everything side-effecting outside the process (systemctl, chvt, bluetoothctl,
// dualsensectl) goes through this narrow surface so tests can fake it.
type CommandRunner interface {
	// Run executes argv and waits for it; a non-zero exit is an error.
	Run(argv ...string) error

	// Output executes argv and returns its captured stdout.
	Output(argv ...string) (string, error)
}

// execRunner is the real CommandRunner backed by os/exec. Every invocation is
// logged before execution; it carries no other state.
type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) *execRunner {
	return &execRunner{logger: logger}
}

func (r *execRunner) Run(argv ...string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	r.logger.Info("executing", "argv", strings.Join(argv, " "))
	if err := exec.Command(argv[0], argv[1:]...).Run(); err != nil {
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}

func (r *execRunner) Output(argv ...string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	r.logger.Info("executing", "argv", strings.Join(argv, " "))
	out, err := exec.Command(argv[0], argv[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", argv[0], err)
	}
	return string(out), nil
}
