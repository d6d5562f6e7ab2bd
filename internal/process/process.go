// Package process runs external commands while relaying interrupts to them.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// relayed are the signals forwarded to a running child.
var relayed = []os.Signal{os.Interrupt, syscall.SIGTERM}

// InterruptedError is returned by Run when the child exited after an
// interrupt or termination signal was relayed to it.
type InterruptedError struct {
	Signal os.Signal
	Err    error // The child's own exit error, nil if it exited cleanly
}

func (e *InterruptedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interrupted by %v: %v", e.Signal, e.Err)
	}
	return fmt.Sprintf("interrupted by %v", e.Signal)
}

func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// Interrupted reports whether err records a relayed signal.
func Interrupted(err error) bool {
	var ie *InterruptedError
	return errors.As(err, &ie)
}

// Run starts cmd and waits for it to exit. While the child is running, any
// interrupt or termination signal received by this process is forwarded to
// the child instead of terminating gwt, so the child can shut down cleanly
// before we return. The returned error is an *InterruptedError whenever a
// signal was relayed, so callers can stop instead of carrying on.
func Run(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, relayed...)
	defer signal.Stop(sigs)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var received os.Signal
	for {
		select {
		case sig := <-sigs:
			received = sig
			if cmd.Process != nil {
				_ = cmd.Process.Signal(sig)
			}
		case err := <-done:
			if received != nil {
				return &InterruptedError{Signal: received, Err: err}
			}
			return err
		}
	}
}

// Interrupt asks cmd's process to stop with an interrupt, killing it where
// interrupts cannot be delivered. It is meant for exec.Cmd.Cancel.
func Interrupt(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}

// ExitCode extracts the exit status from an error returned by Run.
// It returns -1 when err does not carry an exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
