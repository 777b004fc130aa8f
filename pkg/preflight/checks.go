// Package preflight probes the host before any mutating step runs: required
// and recommended tools, datastore ports, and free disk space. Checks are
// read-only and safe to repeat; only the base runtime and its package
// installer are blocking.
package preflight

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Severity says whether a missing tool blocks the run.
type Severity int

const (
	Recommended Severity = iota
	Required
)

// ToolCheck is the probe result for one executable.
type ToolCheck struct {
	Name     string
	Present  bool
	Version  string // empty when absent or unparseable
	Severity Severity
}

// PortCheck is the bind-and-release result for one port.
type PortCheck struct {
	Port      int
	Available bool
}

// DiskCheck is a best-effort free-space estimate. Known=false means the
// query failed and the value must not be treated as blocking.
type DiskCheck struct {
	FreeBytes uint64
	Known     bool
}

// ReadinessReport is an immutable snapshot of the host, created once at
// pipeline start and refreshed only after a remediation action.
type ReadinessReport struct {
	Tools []ToolCheck
	Ports []PortCheck
	Disk  DiskCheck
}

// Blocking returns the required tools that are missing.
func (r *ReadinessReport) Blocking() []ToolCheck {
	var missing []ToolCheck
	for _, t := range r.Tools {
		if t.Severity == Required && !t.Present {
			missing = append(missing, t)
		}
	}
	return missing
}

// Tool returns the check for a named tool, if probed.
func (r *ReadinessReport) Tool(name string) (ToolCheck, bool) {
	for _, t := range r.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolCheck{}, false
}

// toolProbe describes how to find one tool and ask it for its version.
type toolProbe struct {
	name        string
	severity    Severity
	versionArgs []string
}

var defaultProbes = []toolProbe{
	{name: "node", severity: Required, versionArgs: []string{"--version"}},
	{name: "pnpm", severity: Required, versionArgs: []string{"--version"}},
	{name: "git", severity: Recommended, versionArgs: []string{"--version"}},
	{name: "docker", severity: Recommended, versionArgs: []string{"--version"}},
	{name: "supabase", severity: Recommended, versionArgs: []string{"--version"}},
}

// DatastorePorts are the local service ports probed ahead of provisioning.
var DatastorePorts = []int{54321, 54322, 54323, 54324}

// Check produces a fresh readiness report. It never fails for a missing
// optional tool and treats an unanswerable disk query as unknown.
func Check(rc *forge_io.RuntimeContext) *ReadinessReport {
	logger := otelzap.Ctx(rc.Ctx)

	report := &ReadinessReport{}

	for _, probe := range defaultProbes {
		check := ToolCheck{Name: probe.name, Severity: probe.severity}
		if _, ok := execute.LookPath(probe.name); ok {
			check.Present = true
			check.Version = probeVersion(rc, probe)
		}
		logger.Debug("Tool probe",
			zap.String("tool", check.Name),
			zap.Bool("present", check.Present),
			zap.String("version", check.Version))
		report.Tools = append(report.Tools, check)
	}

	for _, port := range DatastorePorts {
		report.Ports = append(report.Ports, PortCheck{
			Port:      port,
			Available: PortAvailable(port, time.Second),
		})
	}

	free, err := diskFree(".")
	if err != nil {
		logger.Debug("Disk space query failed, reporting unknown", zap.Error(err))
		report.Disk = DiskCheck{Known: false}
	} else {
		report.Disk = DiskCheck{FreeBytes: free, Known: true}
	}

	return report
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// probeVersion runs the tool's version command and extracts the first
// semver-looking token. Failures just leave the version empty.
func probeVersion(rc *forge_io.RuntimeContext, probe toolProbe) string {
	res, err := execute.Run(rc.Ctx, execute.Options{
		Command: probe.name,
		Args:    probe.versionArgs,
		Timeout: 10 * time.Second,
	})
	if err != nil || !res.Success {
		return ""
	}
	if m := versionPattern.FindStringSubmatch(res.Stdout); m != nil {
		return m[1]
	}
	return strings.TrimSpace(strings.SplitN(res.Stdout, "\n", 2)[0])
}

// PortAvailable tries a bind-and-release on localhost. A bind failure means
// "in use" — a soft warning, since the datastore may already be running from
// a prior session. The probe never blocks past the timeout.
func PortAvailable(port int, timeout time.Duration) bool {
	done := make(chan bool, 1)
	go func() {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			done <- false
			return
		}
		_ = ln.Close()
		done <- true
	}()

	select {
	case ok := <-done:
		return ok
	case <-time.After(timeout):
		return false
	}
}
