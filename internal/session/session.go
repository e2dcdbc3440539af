// Package session drives the step-by-step execution of an implementation
// plan through the reasoning delegate.
//
// A session is single-use and owned by one pipeline run: it starts Idle,
// moves through Running(step=i) under the auto-confirm scope, and ends in
// Completed or Aborted. Per-step outcomes are appended to an ordered log and
// never mutated afterwards.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/confirm"
	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
	"github.com/capstanhq/capstan/internal/notify"
	"github.com/capstanhq/capstan/internal/plan"
)

// State represents the current state of an execution session.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// ErrorKind classifies a step failure.
type ErrorKind string

const (
	ErrorKindTimeout  ErrorKind = "timeout"
	ErrorKindCanceled ErrorKind = "canceled"
	ErrorKindDelegate ErrorKind = "delegate"
)

// classifyError maps a step error to its kind.
func classifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, errors.ErrTimeout):
		return ErrorKindTimeout
	case errors.Is(err, errors.ErrCanceled):
		return ErrorKindCanceled
	default:
		return ErrorKindDelegate
	}
}

// Outcome is the record of one step execution. Outcomes are appended to the
// session log in step order and never mutated after append.
type Outcome struct {
	Index     int
	Succeeded bool
	Kind      ErrorKind // empty when Succeeded
	Message   string
}

// Options configures a session.
type Options struct {
	// AbortPolicy is config.AbortPolicyFirstError or
	// config.AbortPolicyContinue; empty selects FirstError.
	AbortPolicy string
	Logger      *logging.Logger
	Notifier    *notify.Notifier
}

// Session executes the steps of an implementation plan in order.
type Session struct {
	plan     *plan.ImplementationPlan
	oracle   delegate.Oracle
	gate     *confirm.Gate
	policy   string
	logger   *logging.Logger
	notifier *notify.Notifier

	state    State
	current  int
	outcomes []Outcome
}

// New creates an Idle session holding the plan and its extracted step count.
func New(p *plan.ImplementationPlan, oracle delegate.Oracle, gate *confirm.Gate, opts Options) *Session {
	policy := opts.AbortPolicy
	if policy == "" {
		policy = config.AbortPolicyFirstError
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Silent()
	}
	if gate == nil {
		gate = confirm.NewGate(nil)
	}
	return &Session{
		plan:     p,
		oracle:   oracle,
		gate:     gate,
		policy:   policy,
		logger:   logger,
		notifier: notifier,
		state:    StateIdle,
	}
}

// Run drives the session from Idle to a terminal state. All steps execute
// under the auto-confirm scope so nothing blocks on a human mid-run; the
// scope is released when Run returns, on success and failure alike.
//
// Run returns an error only when the session aborts (first-error policy,
// or cancellation between steps). Per-step failures under the continue
// policy are recorded in the outcome log and do not fail Run.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateIdle {
		return fmt.Errorf("session already ran (state: %s)", s.state)
	}

	total := len(s.plan.Steps)
	s.logger.Info("execution session starting",
		"steps", total,
		"abort_policy", s.policy)

	return s.gate.AutoConfirm(func() error {
		for _, step := range s.plan.Steps {
			// Cancellation is observed between steps; outcomes for completed
			// steps stay intact.
			if ctx.Err() != nil {
				s.state = StateAborted
				s.logger.Warn("execution canceled", "completed_steps", len(s.outcomes))
				return errors.NewDelegateError("execution canceled", errors.ErrCanceled).
					WithStage("steps")
			}

			s.state = StateRunning
			s.current = step.Index
			s.notifier.Stepf(step.Index, total, step.Description)
			stepLogger := s.logger.WithStep(step.Index)
			stepLogger.Info("step starting")

			reply, err := s.oracle.Generate(ctx, s.instruction(step))
			if err != nil {
				s.outcomes = append(s.outcomes, Outcome{
					Index:     step.Index,
					Succeeded: false,
					Kind:      classifyError(err),
					Message:   err.Error(),
				})
				stepLogger.Error("step failed", "error", err.Error(), "kind", string(classifyError(err)))
				s.notifier.Failf("Step %d failed: %v", step.Index, err)

				if s.policy == config.AbortPolicyFirstError {
					s.state = StateAborted
					return errors.Wrapf(err, "step %d failed", step.Index)
				}
				continue
			}

			s.outcomes = append(s.outcomes, Outcome{
				Index:     step.Index,
				Succeeded: true,
				Message:   summarize(reply),
			})
			stepLogger.Info("step completed")
		}

		s.state = StateCompleted
		s.logger.Info("execution session completed",
			"succeeded", s.SucceededCount(),
			"failed", s.FailedCount())
		return nil
	})
}

// instruction builds the canonical step prompt. The delegate must receive
// both the step's position and its literal description; the plan document
// name is included so the delegate can consult the full plan on disk.
func (s *Session) instruction(step plan.PlanStep) string {
	var b strings.Builder
	if name := filepath.Base(s.plan.Path); s.plan.Path != "" {
		fmt.Fprintf(&b, "Implement only step %d of the implementation plan in %s.", step.Index, name)
	} else {
		fmt.Fprintf(&b, "Implement only step %d of the implementation plan.", step.Index)
	}
	if step.Description != "" {
		fmt.Fprintf(&b, "\n\nStep %d: %s", step.Index, step.Description)
	}
	fmt.Fprintf(&b, "\n\nIf adding code to an existing file, follow the coding style of that file. Once step %d is implemented, stop.", step.Index)
	return b.String()
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// CurrentStep returns the index of the step being (or last) executed.
func (s *Session) CurrentStep() int {
	return s.current
}

// Outcomes returns a copy of the ordered outcome log.
func (s *Session) Outcomes() []Outcome {
	out := make([]Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Remaining returns how many steps were never attempted. It is zero for a
// completed session.
func (s *Session) Remaining() int {
	return len(s.plan.Steps) - len(s.outcomes)
}

// SucceededCount returns the number of steps that succeeded.
func (s *Session) SucceededCount() int {
	n := 0
	for _, o := range s.outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// FailedCount returns the number of steps that failed.
func (s *Session) FailedCount() int {
	return len(s.outcomes) - s.SucceededCount()
}

// summarize keeps the first line of a delegate reply, truncated, as the
// outcome message.
func summarize(reply string) string {
	line := strings.TrimSpace(strings.SplitN(reply, "\n", 2)[0])
	return notify.TruncateSimple(line, 120)
}
