package delegate

import (
	"context"
	"strings"
	"time"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/logging"
)

// Codex runs prompts through the codex CLI in one-shot exec mode.
type Codex struct {
	timeout   time.Duration
	extraArgs []string
	logger    *logging.Logger
}

// NewCodex creates a Codex backend from config.
func NewCodex(cfg config.DelegateConfig, logger *logging.Logger) *Codex {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Codex{
		timeout:   cfg.Timeout(),
		extraArgs: cfg.ExtraArgs,
		logger:    logger,
	}
}

func (c *Codex) Name() string { return BackendCodex }

func (c *Codex) DisplayName() string { return "Codex" }

// Generate submits the prompt via `codex exec --full-auto`. Codex prints the
// final agent message to stdout without a JSON envelope, so the trimmed
// output is the reply.
func (c *Codex) Generate(ctx context.Context, prompt string) (string, error) {
	args := []string{"exec", "--full-auto"}
	args = append(args, c.extraArgs...)
	args = append(args, prompt)

	c.logger.Debug("delegate call starting", "backend", BackendCodex, "prompt_chars", len(prompt))
	start := time.Now()

	output, err := runDelegate(ctx, BackendCodex, c.timeout, args)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(string(output))
	c.logger.Debug("delegate call completed",
		"backend", BackendCodex,
		"duration_ms", time.Since(start).Milliseconds(),
		"reply_chars", len(reply))
	return reply, nil
}
