package plan

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/capstanhq/capstan/internal/delegate"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// stepCountPromptFormat asks for a bare integer so the reply can be parsed
// strictly.
const stepCountPromptFormat = `How many distinct implementation steps are in this plan? Respond with just an integer corresponding to the number of steps, nothing else.

PLAN:
%s`

// StepExtractor determines the number of steps in a plan document by asking
// the reasoning delegate.
type StepExtractor struct {
	oracle delegate.Oracle
	logger *logging.Logger
}

// NewStepExtractor creates a StepExtractor.
func NewStepExtractor(oracle delegate.Oracle, logger *logging.Logger) *StepExtractor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &StepExtractor{oracle: oracle, logger: logger}
}

// Count asks the delegate how many steps the plan contains. Any reply that
// does not parse as a positive integer fails with *errors.StepCountError;
// no fallback count is ever guessed.
func (e *StepExtractor) Count(ctx context.Context, planContent string) (int, error) {
	reply, err := e.oracle.Generate(ctx, fmt.Sprintf(stepCountPromptFormat, planContent))
	if err != nil {
		return 0, errors.Wrap(err, "step count query failed")
	}

	count, err := ParseStepCount(reply)
	if err != nil {
		return 0, err
	}

	e.logger.Info("step count extracted", "count", count)
	return count, nil
}

// ParseStepCount strictly parses the delegate's step-count answer as a
// single positive integer.
func ParseStepCount(reply string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n <= 0 {
		return 0, errors.NewStepCountError(reply)
	}
	return n, nil
}
