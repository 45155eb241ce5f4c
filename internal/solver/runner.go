package solver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeLimitSeconds bounds a standard optimisation run
	DefaultTimeLimitSeconds = 60

	// MaxTimeLimitSeconds bounds an "optimal" run
	MaxTimeLimitSeconds = 14400

	// stopGrace is how long the child gets to flush its best-known plan
	// after a cooperative stop before being killed.
	stopGrace = 10 * time.Second

	// stopMessage is written to the child's stdin to request a cooperative
	// stop; the child answers with its best feasible plan.
	stopMessage = "STOP\n"
)

// SolveOptions tunes one solver invocation
type SolveOptions struct {
	// OnProgress receives throttled progress callbacks (nil to ignore)
	OnProgress func(Progress)

	// Stop, when closed, requests a cooperative stop
	Stop <-chan struct{}
}

// Result carries the parsed solution plus any warnings the run produced
type Result struct {
	Output   *Output
	Warnings []string
}

// Runner drives the constraint-programming engine as a child process:
// one JSON document in on stdin, exactly one JSON document out on stdout,
// newline-delimited progress JSON on stderr. The engine binary is opaque;
// only the wire contract couples the two processes.
type Runner struct {
	command []string
	logger  *zap.SugaredLogger
}

// NewRunner creates a runner for the given child command line
func NewRunner(command []string, logger *zap.SugaredLogger) (*Runner, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("solver command not configured")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{command: command, logger: logger}, nil
}

// Solve runs the child to completion, honouring the input's time limit as
// the wall-clock bound plus a flush grace. A cooperative stop makes the
// child return its current best-known feasible plan. Non-zero exit is not
// an error at this level: the exit text is recorded as a warning and the
// run yields no plan.
func (r *Runner) Solve(ctx context.Context, in *Input, opts SolveOptions) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.TimeLimitSeconds > MaxTimeLimitSeconds {
		return nil, fmt.Errorf("time limit %ds exceeds the %ds cap", in.TimeLimitSeconds, MaxTimeLimitSeconds)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solver input: %w", err)
	}

	deadline := time.Duration(in.TimeLimitSeconds)*time.Second + stopGrace
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.command[0], r.command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open solver stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open solver stderr: %w", err)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start solver %q: %w", r.command[0], err)
	}
	r.logger.Infow("solver started", "command", r.command[0], "days", in.Days(), "timeLimitSeconds", in.TimeLimitSeconds)

	// Newline-terminated so line-oriented engines detect end of document
	// without waiting for stdin to close.
	payload = append(payload, '\n')
	if _, err := stdin.Write(payload); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("failed to write solver input: %w", err)
	}
	// Keep stdin open: it is also the stop channel.

	stopDone := make(chan struct{})
	go r.watchStop(opts.Stop, stdin, stopDone)

	stderrTail := r.pumpProgress(stderr, opts.OnProgress)

	waitErr := cmd.Wait()
	close(stopDone)

	result := &Result{}
	if waitErr != nil {
		tail := strings.TrimSpace(stderrTail)
		warning := fmt.Sprintf("solver exited abnormally: %v", waitErr)
		if tail != "" {
			warning = fmt.Sprintf("%s: %s", warning, tail)
		}
		if runCtx.Err() == context.DeadlineExceeded {
			warning = fmt.Sprintf("solver hit the %s wall-clock bound: %v", deadline, waitErr)
		}
		r.logger.Warnw("solver failed", "error", waitErr, "stderrTail", tail)
		result.Warnings = append(result.Warnings, warning)
		return result, nil
	}

	out, err := decodeSingleDocument(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	if err := out.Validate(in.InitialState); err != nil {
		return nil, fmt.Errorf("solver output rejected: %w", err)
	}

	r.logger.Infow("solver finished",
		"status", out.Status,
		"deliveries", out.ObjectiveDeliveries,
		"liters", out.ObjectiveLiters)
	result.Output = out
	return result, nil
}

// watchStop forwards one cooperative stop request to the child's stdin,
// then closes the pipe so the child sees end-of-input.
func (r *Runner) watchStop(stop <-chan struct{}, stdin io.WriteCloser, done <-chan struct{}) {
	defer stdin.Close()
	if stop == nil {
		<-done
		return
	}
	select {
	case <-stop:
		if _, err := io.WriteString(stdin, stopMessage); err != nil {
			r.logger.Warnw("failed to deliver stop message", "error", err)
		} else {
			r.logger.Infow("stop message delivered to solver")
		}
		<-done
	case <-done:
	}
}

// pumpProgress reads the child's stderr line by line. JSON lines become
// progress callbacks, throttled so the caller observes at most one update
// per second; anything else is kept as the diagnostic tail.
func (r *Runner) pumpProgress(stderr io.Reader, onProgress func(Progress)) string {
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	var tail string

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		var p Progress
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			if strings.TrimSpace(line) != "" {
				tail = line
			}
			continue
		}
		if onProgress != nil && limiter.Allow() {
			onProgress(p)
		}
	}
	return tail
}

// decodeSingleDocument parses stdout, which must contain exactly one JSON
// document and nothing else.
func decodeSingleDocument(raw []byte) (*Output, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var out Output
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse solver output: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("solver stdout must contain exactly one JSON document")
	}
	return &out, nil
}
