// Package process provides liveness probing and termination for background
// job processes by PID.
//
// A PID is an advisory hint, not an ownership handle: the OS may reuse a PID
// after exit, so IsAlive can report a false positive for an unrelated
// process. Callers needing certainty should pair the probe with the job-end
// sentinel the log copier writes (see supervisor.EndSentinel).
package process

import (
	"os"
	"syscall"
)

// Handle is the capability a supervisor needs over a spawned process.
// The PID-based implementation below is Unix-specific; tests substitute
// their own.
type Handle interface {
	IsAlive() bool
	Terminate() error
}

// PIDHandle probes and signals a process by its OS identifier.
type PIDHandle int

// IsAlive checks if a process with the given PID is still running.
// It uses a signal-sending method that works on Unix-like systems (macOS, Linux).
func (p PIDHandle) IsAlive() bool {
	return IsProcessAlive(int(p))
}

// Terminate sends SIGTERM to the process group so children of the
// log copier (the tail pipeline) go down with it.
func (p PIDHandle) Terminate() error {
	pid := int(p)
	if pgid, err := syscall.Getpgid(pid); err == nil {
		return syscall.Kill(-pgid, syscall.SIGTERM)
	}
	return syscall.Kill(pid, syscall.SIGTERM)
}

// IsProcessAlive checks if a process with the given PID is still running.
func IsProcessAlive(pid int) bool {
	// PID 0 or less is invalid.
	if pid <= 0 {
		return false
	}

	// Find the process. This doesn't fail on Unix if the process doesn't exist.
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, sending signal 0 checks for existence without delivering
	// anything. nil means alive; EPERM means alive but owned by someone else;
	// ESRCH means gone.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
