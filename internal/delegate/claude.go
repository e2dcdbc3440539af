package delegate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// claudeEnvelope is the JSON wrapper emitted by the claude CLI when invoked
// with --output-format json.
type claudeEnvelope struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// Claude runs prompts through the claude CLI in non-interactive print mode.
type Claude struct {
	timeout   time.Duration
	extraArgs []string
	logger    *logging.Logger
}

// NewClaude creates a Claude backend from config.
func NewClaude(cfg config.DelegateConfig, logger *logging.Logger) *Claude {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Claude{
		timeout:   cfg.Timeout(),
		extraArgs: cfg.ExtraArgs,
		logger:    logger,
	}
}

func (c *Claude) Name() string { return BackendClaude }

func (c *Claude) DisplayName() string { return "Claude" }

// Generate submits the prompt via `claude -p` and unwraps the JSON envelope.
// --dangerously-skip-permissions is required for non-interactive use; the
// prompt itself is the only input the CLI receives.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	args := []string{"-p", prompt, "--output-format", "json", "--dangerously-skip-permissions"}
	args = append(args, c.extraArgs...)

	c.logger.Debug("delegate call starting", "backend", BackendClaude, "prompt_chars", len(prompt))
	start := time.Now()

	output, err := runDelegate(ctx, BackendClaude, c.timeout, args)
	if err != nil {
		return "", err
	}

	reply, err := decodeClaudeEnvelope(output)
	if err != nil {
		return "", err
	}

	c.logger.Debug("delegate call completed",
		"backend", BackendClaude,
		"duration_ms", time.Since(start).Milliseconds(),
		"reply_chars", len(reply))
	return reply, nil
}

// decodeClaudeEnvelope extracts the result text from the CLI's JSON wrapper.
func decodeClaudeEnvelope(output []byte) (string, error) {
	var env claudeEnvelope
	if err := json.Unmarshal(output, &env); err != nil {
		return "", errors.NewDelegateError("failed to parse delegate response", err).
			WithBackend(BackendClaude)
	}
	if env.Type != "result" {
		return "", errors.NewDelegateError(
			fmt.Sprintf("unexpected delegate response type %q", env.Type), nil,
		).WithBackend(BackendClaude)
	}
	if env.IsError {
		return "", errors.NewDelegateError(env.Result, errors.ErrDelegateReportedFailure).
			WithBackend(BackendClaude)
	}
	return env.Result, nil
}
