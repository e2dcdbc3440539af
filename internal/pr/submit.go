package pr

import (
	"context"
	"os/exec"
	"strings"

	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// Command construction seams, swapped out by tests.
var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// Request is a fully assembled pull request submission.
type Request struct {
	Branch    string
	Base      string
	Title     string
	Body      string
	Draft     bool
	Reviewers []string
	Labels    []string
}

// Submitter files a pull request and returns its URL.
type Submitter interface {
	Submit(ctx context.Context, req Request) (string, error)
}

// GH submits pull requests through the GitHub CLI.
type GH struct {
	logger *logging.Logger
}

// NewGH creates a CLI-backed submitter.
func NewGH(logger *logging.Logger) *GH {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &GH{logger: logger}
}

var _ Submitter = (*GH)(nil)

// Available verifies that the gh binary is installed and answers --version.
// The returned error wraps ErrGHNotInstalled.
func (g *GH) Available(ctx context.Context) error {
	if _, err := lookPath("gh"); err != nil {
		return errors.Wrap(errors.ErrGHNotInstalled, "GitHub CLI (gh) not found, install it to create pull requests")
	}
	if err := commandContext(ctx, "gh", "--version").Run(); err != nil {
		return errors.Wrap(errors.ErrGHNotInstalled, "GitHub CLI (gh) is installed but not runnable")
	}
	return nil
}

// Submit runs gh pr create and returns the URL it prints.
func (g *GH) Submit(ctx context.Context, req Request) (string, error) {
	args := []string{"pr", "create",
		"--title", req.Title,
		"--body", req.Body,
		"--head", req.Branch,
		"--base", req.Base,
	}
	if req.Draft {
		args = append(args, "--draft")
	}
	for _, reviewer := range req.Reviewers {
		args = append(args, "--reviewer", reviewer)
	}
	for _, label := range req.Labels {
		args = append(args, "--label", label)
	}

	g.logger.Debug("creating pull request", "head", req.Branch, "base", req.Base, "draft", req.Draft)

	cmd := commandContext(ctx, "gh", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.Wrapf(err, "failed to create pull request: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", errors.Wrap(err, "failed to create pull request")
	}

	url := strings.TrimSpace(string(output))
	g.logger.Info("pull request created", "url", url)
	return url, nil
}
