// pkg/execute/classify.go

package execute

import "strings"

// stagePatterns maps free-text phrases to coarse stages, checked in order.
// Error phrases are checked first so "error while starting" classifies as an
// error, not a start.
var stagePatterns = []struct {
	stage   Stage
	phrases []string
}{
	{StageError, []string{"error", "failed", "fatal", "cannot", "denied"}},
	{StageHealthy, []string{"healthy", "ready", "running", "started", "available at"}},
	{StageWaiting, []string{"waiting for", "waiting on", "retrying", "health check"}},
	{StagePulling, []string{"pulling", "downloading", "fetching", "extracting"}},
	{StageStarting, []string{"starting", "creating", "initializing", "booting", "applying"}},
}

// ClassifyStage maps one output line to a progress stage. Unrecognized lines
// return StageUnknown so the previous stage sticks.
func ClassifyStage(line string) Stage {
	lower := strings.ToLower(line)
	for _, p := range stagePatterns {
		for _, phrase := range p.phrases {
			if strings.Contains(lower, phrase) {
				return p.stage
			}
		}
	}
	return StageUnknown
}

// FailureKind is the heuristic cause of a non-zero exit.
type FailureKind int

const (
	FailureGeneric FailureKind = iota
	FailurePortConflict
	FailurePermission
	FailureTimeout
)

// Failure carries a classified cause plus operator-facing remediation text.
type Failure struct {
	Kind   FailureKind
	Advice string
}

// ClassifyFailure inspects a failed result's output for known causes and
// returns targeted advice; unknown causes fall back to a generic message.
func ClassifyFailure(res *ProcessResult) Failure {
	if res.TimedOut {
		return Failure{
			Kind: FailureTimeout,
			Advice: "The command did not finish in time. It may still be running in the " +
				"background; check its status before retrying, since a half-finished " +
				"provisioning action is not always safe to repeat.",
		}
	}

	combined := strings.ToLower(res.Combined())

	switch {
	case strings.Contains(combined, "address already in use"),
		strings.Contains(combined, "port is already allocated"),
		strings.Contains(combined, "bind: address"):
		return Failure{
			Kind: FailurePortConflict,
			Advice: "A required port is already in use. A previous run may have left the " +
				"service up; stop it or re-use it and re-run.",
		}
	case strings.Contains(combined, "permission denied"),
		strings.Contains(combined, "operation not permitted"),
		strings.Contains(combined, "access is denied"):
		return Failure{
			Kind: FailurePermission,
			Advice: "Permission was denied. Check that your user can reach the container " +
				"engine socket and write to the project directory.",
		}
	default:
		return Failure{
			Kind:   FailureGeneric,
			Advice: "The command failed; see the captured output above for details.",
		}
	}
}
