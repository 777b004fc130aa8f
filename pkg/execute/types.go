// pkg/execute/types.go

package execute

import "time"

// Options describes a single external tool invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
	Timeout time.Duration
	// Label names the operation on the status line during streaming runs,
	// e.g. "Starting database". Defaults to the command itself.
	Label string
}

// ProcessResult is the immutable outcome of one invocation.
//
// TimedOut=true means the child was signalled after the deadline and its
// final state is unknown; the process may still be finishing work in the
// background. Callers should offer cleanup advice rather than retrying
// blindly, since provisioning actions are not all re-entrant mid-flight.
type ProcessResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Combined returns stdout and stderr joined for pattern matching.
func (r *ProcessResult) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// Stage is the coarse progress classification derived from free-text output.
type Stage int

const (
	StageUnknown Stage = iota
	StagePulling
	StageStarting
	StageWaiting
	StageHealthy
	StageError
)

func (s Stage) String() string {
	switch s {
	case StagePulling:
		return "pulling"
	case StageStarting:
		return "starting"
	case StageWaiting:
		return "waiting"
	case StageHealthy:
		return "healthy"
	case StageError:
		return "error"
	default:
		return "working"
	}
}

const (
	defaultTimeout = 3 * time.Minute
	renderInterval = 2 * time.Second
	terminateGrace = 5 * time.Second
)
