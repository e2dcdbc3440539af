// Package delegate provides the gateway to the external reasoning delegate.
//
// The delegate is an opaque text oracle: every stage that needs reasoning
// (plan generation, step counting, step execution, cleanup, PR content)
// submits a prompt and receives text back. Backends shell out to the
// corresponding CLI in one-shot mode and normalize failures into
// errors.DelegateError values.
package delegate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to fake delegate execution.
var CommandContext = exec.CommandContext

// LookPath is the function used to resolve delegate binaries on PATH.
// It can be replaced in tests to control availability.
var LookPath = exec.LookPath

// DefaultTimeout bounds a single delegate call when the caller's context
// carries no deadline and configuration supplies no timeout.
const DefaultTimeout = 30 * time.Minute

// Backend names accepted in configuration.
const (
	BackendClaude = "claude"
	BackendCodex  = "codex"
)

// ErrUnknownBackend is returned when the configured backend is unsupported.
var ErrUnknownBackend = errors.New("unknown delegate backend")

// Oracle is the reasoning delegate consumed by the pipeline stages.
type Oracle interface {
	// Name returns the backend identifier, e.g. "claude".
	Name() string

	// DisplayName returns the human-facing backend name, e.g. "Claude".
	DisplayName() string

	// Generate submits a prompt to the delegate and returns its text reply.
	// The reply is the delegate's result payload with any CLI envelope
	// removed; emptiness is the caller's concern.
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the configured backend. An empty backend name selects Claude.
func New(cfg config.DelegateConfig, logger *logging.Logger) (Oracle, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendClaude, "":
		return NewClaude(cfg, logger), nil
	case BackendCodex:
		return NewCodex(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// runDelegate executes a delegate CLI in one-shot mode and returns its
// stdout. Context cancellation, timeouts, missing binaries, and non-zero
// exits all come back as *errors.DelegateError.
func runDelegate(ctx context.Context, backend string, timeout time.Duration, args []string) ([]byte, error) {
	if _, err := LookPath(backend); err != nil {
		return nil, errors.NewDelegateError(
			fmt.Sprintf("%s CLI not found on PATH", backend),
			errors.ErrDelegateNotFound,
		).WithBackend(backend)
	}

	// Apply the configured timeout only when the caller did not set one.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := CommandContext(ctx, backend, args...)
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewDelegateError("delegate call timed out", errors.ErrTimeout).
				WithBackend(backend).
				WithRetryable(true)
		}
		if ctx.Err() == context.Canceled {
			return nil, errors.NewDelegateError("delegate call canceled", errors.ErrCanceled).
				WithBackend(backend)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.NewDelegateError("delegate exited with an error", err).
				WithBackend(backend).
				WithStderr(strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errors.NewDelegateError("failed to run delegate", err).WithBackend(backend)
	}

	return bytes.TrimSpace(output), nil
}
