// Package orchestrator sequences one update run: remote state, self-update,
// first-run bootstrap, component upgrade, idempotent repairs and content
// sync. The run executes on a worker goroutine and publishes progress and a
// single terminal Result through a Stream.
package orchestrator

import (
	"github.com/chenjicheng/upmc/internal/failure"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	// Success means everything is in sync; the launcher may start.
	Success Outcome = iota
	// Offline means the remote state was unreachable but the install can
	// still be played as it is.
	Offline
	// SelfUpdateRestarting means a replacement helper is running and this
	// process must exit without launching anything.
	SelfUpdateRestarting
	// Error is any fatal failure.
	Error
	// ComponentRuntimeMissing means Java is absent and must be installed by
	// the player.
	ComponentRuntimeMissing
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Offline:
		return "offline"
	case SelfUpdateRestarting:
		return "self-update-restarting"
	case Error:
		return "error"
	case ComponentRuntimeMissing:
		return "component-runtime-missing"
	default:
		return "unknown"
	}
}

// Result is the terminal report of a run. Err is set for Error and
// ComponentRuntimeMissing.
type Result struct {
	Outcome Outcome
	Err     error
}

// Failed classifies a fatal error into a Result.
func Failed(err error) Result {
	if failure.Is(err, failure.ComponentRuntimeMissing) {
		return Result{Outcome: ComponentRuntimeMissing, Err: err}
	}
	return Result{Outcome: Error, Err: err}
}

// ShouldLaunch reports whether the launcher should be started after this
// result.
func (r Result) ShouldLaunch() bool {
	return r.Outcome == Success || r.Outcome == Offline
}
