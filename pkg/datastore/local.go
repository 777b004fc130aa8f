// pkg/datastore/local.go

package datastore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/forgeworks/forge/pkg/execute"
	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/docker/docker/client"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// LocalContainer provisions the managed service on the local container
// engine via its companion CLI. First run may pull images, so the start is
// streamed with a long timeout.
type LocalContainer struct {
	Root string

	// StartTimeout bounds the service start; defaults to 10 minutes.
	StartTimeout time.Duration
	// Runner allows tests to substitute the streaming executor.
	Runner *execute.StreamRunner
	// EnginePing allows tests to stub engine reachability.
	EnginePing func(rc *forge_io.RuntimeContext) error
}

func (l *LocalContainer) Provision(rc *forge_io.RuntimeContext) (*Config, error) {
	logger := otelzap.Ctx(rc.Ctx)

	ping := l.EnginePing
	if ping == nil {
		ping = engineReachable
	}
	if err := ping(rc); err != nil {
		logger.Warn("Container engine unreachable, emitting placeholder config", zap.Error(err))
		return Placeholder(StrategyLocalContainer,
			"container engine unreachable: "+err.Error(),
			"start the engine and re-run forge setup, or fill .env.local by hand"), nil
	}

	if err := l.ensureServiceConfig(rc); err != nil {
		return Placeholder(StrategyLocalContainer,
			"service configuration could not be initialized: "+err.Error()), nil
	}

	runner := l.Runner
	if runner == nil {
		runner = execute.NewStreamRunner()
	}
	timeout := l.StartTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	res, err := runner.RunStreaming(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    []string{"start"},
		Dir:     l.Root,
		Timeout: timeout,
		Label:   "Starting local datastore",
	})
	if err != nil {
		return Placeholder(StrategyLocalContainer, "service start failed: "+err.Error()), nil
	}
	if res.TimedOut {
		return Placeholder(StrategyLocalContainer,
			"service start timed out; containers may still be coming up",
			"run 'supabase status' once it settles and copy the values into .env.local"), nil
	}
	if !res.Success {
		failure := execute.ClassifyFailure(res)
		logger.Warn("Service start failed",
			zap.Int("exit_code", res.ExitCode),
			zap.String("advice", failure.Advice))
		return Placeholder(StrategyLocalContainer, "service start failed: "+failure.Advice), nil
	}

	// The start output already resembles the status report; prefer a fresh
	// status query, falling back to the start output when status misbehaves.
	status, err := execute.Run(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    []string{"status"},
		Dir:     l.Root,
		Timeout: 30 * time.Second,
	})
	report := res.Combined()
	if err == nil && status.Success {
		report = status.Stdout
	}

	cfg := ParseStatusReport(report)
	for _, w := range cfg.Warnings {
		logger.Warn("Datastore value defaulted", zap.String("detail", w))
	}
	logger.Info("Local datastore provisioned",
		zap.String("endpoint", cfg.EndpointURL),
		zap.String("dashboard", cfg.DashboardURL))
	return cfg, nil
}

// ensureServiceConfig runs the CLI's init when no service config exists yet.
func (l *LocalContainer) ensureServiceConfig(rc *forge_io.RuntimeContext) error {
	if _, err := os.Stat(filepath.Join(l.Root, "supabase", "config.toml")); err == nil {
		return nil
	}

	res, err := execute.Run(rc.Ctx, execute.Options{
		Command: "supabase",
		Args:    []string{"init"},
		Dir:     l.Root,
		Timeout: time.Minute,
	})
	if err != nil {
		return err
	}
	if !res.Success {
		return execErr(res)
	}
	return nil
}

// engineReachable pings the container engine over its API socket.
func engineReachable(rc *forge_io.RuntimeContext) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return err
	}
	defer cli.Close()

	_, err = cli.Ping(rc.Ctx)
	return err
}
