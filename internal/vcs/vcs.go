// Package vcs finalizes a pipeline run against version control: branch
// detection, commit helpers for the plan artifact and step edits, and the
// push whose classified result gates PR creation.
package vcs

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns combined output.
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// RunQuiet executes a command and returns only the error.
	RunQuiet(ctx context.Context, dir string, name string, args ...string) error
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLICommandExecutor) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// RunQuiet executes a command and returns only the error.
func (e *CLICommandExecutor) RunQuiet(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Run()
}

var _ CommandExecutor = (*CLICommandExecutor)(nil)

// Repository wraps git operations on a single working tree.
type Repository struct {
	dir      string
	executor CommandExecutor
	logger   *logging.Logger
}

// New creates a Repository rooted at dir.
func New(dir string) *Repository {
	return NewWithExecutor(dir, NewCLICommandExecutor(), nil)
}

// NewWithExecutor creates a Repository with a custom executor. This is
// primarily useful for testing.
func NewWithExecutor(dir string, executor CommandExecutor, logger *logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Repository{
		dir:      dir,
		executor: executor,
		logger:   logger,
	}
}

// Dir returns the directory the repository was opened at.
func (r *Repository) Dir() string {
	return r.dir
}

// Check verifies the directory is inside a git working tree.
func (r *Repository) Check(ctx context.Context) error {
	if err := r.executor.RunQuiet(ctx, r.dir, "git", "rev-parse", "--git-dir"); err != nil {
		return errors.NewGitError("not a git repository", errors.ErrNotGitRepository).
			WithRepository(r.dir)
	}
	return nil
}

// Root returns the top-level directory of the working tree.
func (r *Repository) Root(ctx context.Context) (string, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.NewGitError("failed to locate repository root", err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// DetectBranch queries the working tree for the currently checked-out
// branch. Results are never cached: the branch can change between pipeline
// stages, so callers ask again before every push.
func (r *Repository) DetectBranch(ctx context.Context) (string, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.NewGitError("failed to detect current branch", err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}

	branch := strings.TrimSpace(string(output))
	if branch == "HEAD" {
		return "", errors.NewGitError("HEAD is detached; check out a branch before pushing", errors.ErrDetachedHead).
			WithRepository(r.dir)
	}
	return branch, nil
}

// DefaultBranch returns the repository's default branch, main or master.
func (r *Repository) DefaultBranch(ctx context.Context) (string, error) {
	for _, name := range []string{"main", "master"} {
		if err := r.executor.RunQuiet(ctx, r.dir, "git", "rev-parse", "--verify", name); err == nil {
			return name, nil
		}
	}
	return "", errors.NewGitError("could not determine default branch", errors.ErrNoDefaultBranch).
		WithRepository(r.dir)
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "remote", "get-url", remote)
	if err != nil {
		return "", errors.NewGitError("failed to read remote URL for "+remote, err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// HasUncommittedChanges returns true if there are uncommitted changes.
func (r *Repository) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "status", "--porcelain")
	if err != nil {
		return false, errors.NewGitError("failed to check git status", err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// ChangedFiles returns the files changed on head since it diverged from
// base. Uses three-dot syntax so commits landed on base afterwards do not
// pollute the list.
func (r *Repository) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "diff", "--name-only", base+"..."+head)
	if err != nil {
		return nil, errors.NewGitError("failed to list changed files", err).
			WithRepository(r.dir).
			WithBranch(base + "..." + head).
			WithGitOutput(string(output))
	}

	lines := strings.TrimSpace(string(output))
	if lines == "" {
		return []string{}, nil
	}
	return strings.Split(lines, "\n"), nil
}

// CommitHistory returns one line per commit on head beyond base, short hash
// and subject, merges excluded.
func (r *Repository) CommitHistory(ctx context.Context, base, head string) (string, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "log", base+".."+head, "--pretty=format:%h %s", "--no-merges")
	if err != nil {
		return "", errors.NewGitError("failed to get commit history", err).
			WithRepository(r.dir).
			WithBranch(base + ".." + head).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// CommitsAhead returns how many commits head carries beyond base.
func (r *Repository) CommitsAhead(ctx context.Context, base, head string) (int, error) {
	output, err := r.executor.Run(ctx, r.dir, "git", "rev-list", "--count", base+".."+head)
	if err != nil {
		return 0, errors.NewGitError("failed to count commits", err).
			WithRepository(r.dir).
			WithBranch(base + ".." + head).
			WithGitOutput(string(output))
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0, errors.NewGitError("failed to parse commit count", err).
			WithRepository(r.dir)
	}
	return count, nil
}

// CommitAll stages and commits all changes with the given message.
// Returns nil if there are no changes to commit.
func (r *Repository) CommitAll(ctx context.Context, message string) error {
	output, err := r.executor.Run(ctx, r.dir, "git", "add", "-A")
	if err != nil {
		return errors.NewGitError("failed to stage changes", err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}

	output, err = r.executor.Run(ctx, r.dir, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(string(output), "nothing to commit") {
			return nil
		}
		return errors.NewGitError("failed to commit changes", err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return nil
}

// CommitFile stages a single path and commits it with the given message.
// Used to land the plan artifact on the branch before execution.
func (r *Repository) CommitFile(ctx context.Context, path, message string) error {
	output, err := r.executor.Run(ctx, r.dir, "git", "add", path)
	if err != nil {
		return errors.NewGitError("failed to stage "+path, err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}

	output, err = r.executor.Run(ctx, r.dir, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(string(output), "nothing to commit") {
			return nil
		}
		return errors.NewGitError("failed to commit "+path, err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return nil
}

// RemoveAndCommit removes a tracked file and commits the removal. Used to
// take the plan artifact back off the branch once execution finishes.
func (r *Repository) RemoveAndCommit(ctx context.Context, path, message string) error {
	output, err := r.executor.Run(ctx, r.dir, "git", "rm", path)
	if err != nil {
		return errors.NewGitError("failed to remove "+path, err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}

	output, err = r.executor.Run(ctx, r.dir, "git", "commit", "-m", message)
	if err != nil {
		return errors.NewGitError("failed to commit removal of "+path, err).
			WithRepository(r.dir).
			WithGitOutput(string(output))
	}
	return nil
}
