package engine

import (
	"time"
)

// State is the lifecycle state of an execution session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Spec describes one run request. Secret ownership transfers to the engine:
// the slice is overwritten with zero bytes once it has been handed to the
// spawned process (or as soon as the spawn fails).
type Spec struct {
	Hosts       []string
	Playbook    string   // resolved playbook path
	Inventories []string // inventory file paths, each passed with -i
	Secret      []byte   // vault passphrase; nil when vault mode is off
}

// SessionView is an immutable snapshot of the active session, safe to hand
// to the render loop.
type SessionView struct {
	Hosts     []string
	Playbook  string
	State     State
	ExitCode  int // valid only for StateSucceeded/StateFailed
	VaultUsed bool
	StartedAt time.Time
	EndedAt   time.Time
}

// Elapsed returns the run duration so far (or total, once terminal).
func (v SessionView) Elapsed() time.Duration {
	if v.StartedAt.IsZero() {
		return 0
	}
	if v.EndedAt.IsZero() {
		return time.Since(v.StartedAt)
	}
	return v.EndedAt.Sub(v.StartedAt)
}

// Zeroize overwrites a secret buffer in place.
func Zeroize(secret []byte) {
	for i := range secret {
		secret[i] = 0
	}
}
