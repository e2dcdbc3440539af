package vcs

import (
	"context"
	"strings"
)

// FailureKind classifies why a push was rejected.
type FailureKind string

const (
	FailureAuth     FailureKind = "auth"
	FailureNetwork  FailureKind = "network"
	FailureNoRemote FailureKind = "no_remote"
	FailureOther    FailureKind = "other"
)

// PushResult reports the outcome of a push attempt. A rejected push is a
// result, not an error: callers branch on Succeeded and render UserMessage.
type PushResult struct {
	Succeeded bool
	Branch    string
	Kind      FailureKind // empty when Succeeded
	Message   string      // raw git diagnostic
}

// UserMessage renders the classified, user-facing description of a failure.
func (p PushResult) UserMessage() string {
	switch p.Kind {
	case FailureAuth:
		return "Git authentication failed. Check your credentials."
	case FailureNetwork:
		return "Network error while pushing to the remote. Check your connection."
	case FailureNoRemote:
		return "No usable 'origin' remote is configured for this repository."
	default:
		return "Git push failed: " + p.Message
	}
}

// Push pushes branch to origin, establishing it as the tracked upstream.
// Tracking is requested on every push; git treats it as a no-op when the
// branch already tracks origin. Push never returns an error for a rejected
// push — the classification is in the result.
func (r *Repository) Push(ctx context.Context, branch string) PushResult {
	output, err := r.executor.Run(ctx, r.dir, "git", "push", "origin", "--set-upstream", branch)
	if err == nil {
		r.logger.Info("pushed branch", "branch", branch)
		return PushResult{Succeeded: true, Branch: branch}
	}

	raw := strings.TrimSpace(string(output))
	if raw == "" {
		raw = err.Error()
	}

	// A deadline kill leaves no git diagnostic worth classifying.
	if ctx.Err() == context.DeadlineExceeded {
		r.logger.Warn("push timed out", "branch", branch)
		return PushResult{Branch: branch, Kind: FailureNetwork, Message: "push timed out: " + raw}
	}

	kind := classifyPushFailure(raw)
	r.logger.Warn("push failed",
		"branch", branch,
		"kind", string(kind),
		"output", raw)
	return PushResult{Branch: branch, Kind: kind, Message: raw}
}

// classifyPushFailure buckets a git push diagnostic by its text.
func classifyPushFailure(diagnostic string) FailureKind {
	lower := strings.ToLower(diagnostic)
	switch {
	case strings.Contains(lower, "authentication failed"),
		strings.Contains(lower, "could not read username"),
		strings.Contains(lower, "could not read password"),
		strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "publickey"):
		return FailureAuth
	case strings.Contains(lower, "could not resolve host"),
		strings.Contains(lower, "connection timed out"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "network is unreachable"),
		strings.Contains(lower, "operation timed out"):
		return FailureNetwork
	case strings.Contains(lower, "does not appear to be a git repository"),
		strings.Contains(lower, "no configured push destination"),
		strings.Contains(lower, "no such remote"):
		return FailureNoRemote
	default:
		return FailureOther
	}
}
