// pkg/execute/stream.go

package execute

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// StreamRunner executes long-running tools with line-oriented progress
// parsing and a periodically re-rendered status line. The current status is
// owned by the runner instance and guarded by a mutex: the render ticker and
// the output readers both touch it.
type StreamRunner struct {
	Out      io.Writer     // status line destination, defaults to stderr
	Interval time.Duration // render cadence, defaults to 2s

	mu      sync.Mutex
	stage   Stage
	status  string
	started time.Time
}

// NewStreamRunner returns a runner rendering to stderr every 2 seconds.
func NewStreamRunner() *StreamRunner {
	return &StreamRunner{Out: os.Stderr, Interval: renderInterval}
}

// RunStreaming spawns the command with piped output, classifies each line
// into a coarse stage, and keeps one status line fresh on a fixed interval
// regardless of output cadence. The timeout terminates the child and returns
// TimedOut=true without hanging the caller past the grace margin.
func (sr *StreamRunner) RunStreaming(ctx context.Context, opts Options) (*ProcessResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(opts.Timeout))
	defer cancel()

	logger := otelzap.Ctx(rctx)
	label := opts.Label
	if label == "" {
		label = opts.Command
	}

	cmd := exec.CommandContext(rctx, opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = mergedEnv(opts.Env)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = terminateGrace

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return &ProcessResult{ExitCode: -1}, cerr.Wrap(err, "stdout pipe")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return &ProcessResult{ExitCode: -1}, cerr.Wrap(err, "stderr pipe")
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &ProcessResult{ExitCode: -1}, cerr.Wrapf(err, "start %s", opts.Command)
	}

	sr.mu.Lock()
	sr.stage = StageUnknown
	sr.status = label
	sr.started = start
	sr.mu.Unlock()

	var stdout, stderr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go sr.consume(&wg, stdoutPipe, &stdout)
	go sr.consume(&wg, stderrPipe, &stderr)

	renderDone := make(chan struct{})
	go sr.renderLoop(renderDone, label)

	wg.Wait()
	waitErr := cmd.Wait()
	close(renderDone)
	sr.clearLine()

	res := &ProcessResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	res, err = finish(rctx, res, cmd, waitErr, opts)
	if res.TimedOut {
		logger.Warn("Streamed command hit its timeout",
			zap.String("command", opts.Command),
			zap.String("last_stage", sr.Stage().String()))
	}
	return res, err
}

// consume feeds one pipe into the capture buffer and the stage classifier.
func (sr *StreamRunner) consume(wg *sync.WaitGroup, pipe io.Reader, capture *bytes.Buffer) {
	defer wg.Done()
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		capture.WriteString(line)
		capture.WriteByte('\n')
		sr.observe(line)
	}
}

// observe updates the shared status from one output line.
func (sr *StreamRunner) observe(line string) {
	stage := ClassifyStage(line)

	sr.mu.Lock()
	defer sr.mu.Unlock()
	if stage != StageUnknown {
		sr.stage = stage
	}
	if trimmed := trimStatus(line); trimmed != "" {
		sr.status = trimmed
	}
}

// Stage returns the last classified stage.
func (sr *StreamRunner) Stage() Stage {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.stage
}

// renderLoop rewrites the status line on a fixed interval so the operator
// sees elapsed time even when the child goes silent.
func (sr *StreamRunner) renderLoop(done <-chan struct{}, label string) {
	interval := sr.Interval
	if interval <= 0 {
		interval = renderInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sr.render(label)
		}
	}
}

func (sr *StreamRunner) render(label string) {
	sr.mu.Lock()
	elapsed := time.Since(sr.started).Round(time.Second)
	stage := sr.stage
	status := sr.status
	sr.mu.Unlock()

	fmt.Fprintf(sr.out(), "\r\033[K%s [%s] %s (%s)", label, stage, status, elapsed)
}

func (sr *StreamRunner) clearLine() {
	fmt.Fprint(sr.out(), "\r\033[K")
}

func (sr *StreamRunner) out() io.Writer {
	if sr.Out == nil {
		return os.Stderr
	}
	return sr.Out
}

// trimStatus shortens a raw output line for single-line display.
func trimStatus(line string) string {
	const max = 60
	line = strings.TrimSpace(line)
	if len(line) > max {
		return line[:max-3] + "..."
	}
	return line
}
