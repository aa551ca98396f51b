package main

import (
	"log/slog"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// ============================================================================
// Remap process supervisor
// ============================================================================
// The daemon supervises at most one auxiliary remap process (the
// xboxdrv-style controller simulator). The process runs in its own process
// group so the whole tree can be reaped with one signal, detached from the
// daemon's stdio.
//
// Ownership discipline: Toggle/Kill are called only from the daemon goroutine
// (and from main on the termination paths, strictly after the daemon loop has
// stopped). The internal waiter goroutine only ever closes the done channel,
// which is what makes Alive() a non-blocking check.
// ============================================================================

// Supervisor owns the optional remap process handle.
type Supervisor struct {
	logger *slog.Logger
	argv   []string

	cmd  *exec.Cmd
	done chan struct{}
}

// NewSupervisor returns a supervisor that will launch argv on demand.
func NewSupervisor(logger *slog.Logger, argv []string) *Supervisor {
	return &Supervisor{logger: logger, argv: argv}
}

// Alive reports whether a remap process is currently running. It never blocks:
// liveness is a select on the waiter's done channel.
func (s *Supervisor) Alive() bool {
	if s.cmd == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Toggle starts the remap process if none is running, or kills the running one,
// and returns the resulting liveness. Spawn failures are logged and leave the
// handle empty; no retry is attempted.
func (s *Supervisor) Toggle() bool {
	if s.Alive() {
		s.Kill()
		return false
	}
	s.start()
	return s.Alive()
}

func (s *Supervisor) start() {
	if len(s.argv) == 0 {
		s.logger.Error("remap command not configured")
		return
	}

	s.logger.Info("starting remap process", "argv", s.argv)

	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	// New process group, stdio discarded: the remap helper must outlive neither
	// the daemon nor hold its terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		s.logger.Error("failed to start remap process", "error", err)
		return
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	s.cmd = cmd
	s.done = done
	s.logger.Info("remap process started", "pid", cmd.Process.Pid)
}

// Kill force-terminates the whole remap process group and clears the handle.
// A group that is already gone is tolerated silently.
func (s *Supervisor) Kill() {
	if s.cmd == nil {
		return
	}

	pid := s.cmd.Process.Pid
	s.logger.Info("stopping remap process", "pid", pid)

	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		s.logger.Debug("remap process group already gone", "pid", pid, "error", err)
	}

	s.cmd = nil
	s.done = nil
}
