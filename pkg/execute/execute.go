// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/forgeworks/forge/pkg/forge_err"
	"github.com/forgeworks/forge/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Run executes a command buffered and synchronously. Used for short
// idempotent queries (version checks, status probes).
//
// A non-zero exit is not a Go error: the result carries Success/ExitCode and
// the captured output so callers can classify the failure. The error return
// is reserved for spawn-level problems (binary missing, bad working dir).
func Run(ctx context.Context, opts Options) (*ProcessResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(opts.Timeout))
	defer cancel()

	rctx, span := telemetry.Start(rctx, "execute.Run",
		attribute.String("command", opts.Command))
	defer span.End()

	logger := otelzap.Ctx(rctx)
	logger.Debug("Starting execution",
		zap.String("command", opts.Command),
		zap.Strings("args", opts.Args))

	cmd := exec.CommandContext(rctx, opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = mergedEnv(opts.Env)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = terminateGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &ProcessResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	return finish(rctx, res, cmd, err, opts)
}

// finish fills exit status and timeout state shared by Run and RunStreaming.
func finish(ctx context.Context, res *ProcessResult, cmd *exec.Cmd, err error, opts Options) (*ProcessResult, error) {
	logger := otelzap.Ctx(ctx)

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		logger.Warn("Command timed out; final state unknown",
			zap.String("command", opts.Command),
			zap.Duration("after", res.Duration))
		return res, nil
	}

	if err == nil {
		res.Success = true
		res.ExitCode = 0
		logger.Debug("Execution succeeded",
			zap.String("command", opts.Command),
			zap.Duration("duration", res.Duration))
		return res, nil
	}

	var exitErr *exec.ExitError
	if cerr.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		logger.Debug("Execution failed",
			zap.String("command", opts.Command),
			zap.Int("exit_code", res.ExitCode),
			zap.String("summary", forge_err.ExtractSummary(res.Combined(), 2)))
		return res, nil
	}

	// Spawn-level failure: nothing ran, output buffers are empty.
	res.ExitCode = -1
	return res, cerr.Wrapf(err, "start %s", opts.Command)
}

// LookPath reports whether a tool resolves on PATH, with its full path.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

func mergedEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit
	}
	return append(os.Environ(), extra...)
}
