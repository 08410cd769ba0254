// Package subprocess runs the external programs of the synthesis pipeline
// with bounded run time and captured stderr.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// DefaultTimeout bounds a run whose context has no deadline.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout is returned when a process outlives its deadline.
	ErrTimeout = errors.New("subprocess timed out")
	// ErrEmptyCommand is returned for a blank command line.
	ErrEmptyCommand = errors.New("empty command")
)

// Runner executes commands. Runs are independent; a Runner may be shared.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a runner. A timeout <= 0 selects DefaultTimeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Timeout returns the deadline applied to runs without one.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run starts name with args, feeds stdin (which may be nil) and returns
// stdout. Stdin is attached before the process starts.
func (r *Runner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	err := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s: %w", ErrTimeout, name, ctxErr)
		}
		return nil, fmt.Errorf("%s cancelled: %w", name, ctxErr)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w\nstderr: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// ParseCommand splits a configured command line into the program and its
// leading arguments, honoring shell quoting and $VAR expansion.
func ParseCommand(line string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = true
	words, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", line, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

// CheckBinary checks if a binary exists in the system PATH.
func CheckBinary(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("binary '%s' not found in PATH: %w", name, err)
	}
	return nil
}
