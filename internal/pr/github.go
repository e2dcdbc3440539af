package pr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

const submitMaxElapsed = 30 * time.Second

// API submits pull requests through the GitHub REST API. It serves
// environments without the gh CLI; authentication uses a personal access
// token.
type API struct {
	client *github.Client
	owner  string
	repo   string
	logger *logging.Logger
}

// NewAPI creates an API submitter for owner/repo using the given token.
func NewAPI(ctx context.Context, token, owner, repo string, logger *logging.Logger) (*API, error) {
	if token == "" {
		return nil, errors.NewValidationError("github token is not set").WithField("github.token")
	}
	if owner == "" || repo == "" {
		return nil, errors.NewValidationError("github owner and repository are required")
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &API{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
		logger: logger,
	}, nil
}

var _ Submitter = (*API)(nil)

// Submit creates the pull request, retrying transient API failures. Reviewer
// and label assignment happen after creation and are best effort.
func (a *API) Submit(ctx context.Context, req Request) (string, error) {
	newPR := &github.NewPullRequest{
		Title:               github.String(req.Title),
		Head:                github.String(req.Branch),
		Base:                github.String(req.Base),
		Body:                github.String(req.Body),
		Draft:               github.Bool(req.Draft),
		MaintainerCanModify: github.Bool(true),
	}

	var created *github.PullRequest
	operation := func() error {
		pr, resp, err := a.client.PullRequests.Create(ctx, a.owner, a.repo, newPR)
		if err != nil {
			if isRetryableStatus(resp) {
				a.logger.Warn("pull request creation failed, retrying", "error", err.Error())
				return err
			}
			return backoff.Permanent(err)
		}
		created = pr
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(newSubmitBackoff(), ctx)); err != nil {
		return "", errors.Wrapf(err, "failed to create pull request for %s/%s", a.owner, a.repo)
	}

	number := created.GetNumber()
	if len(req.Reviewers) > 0 {
		reviewers := github.ReviewersRequest{Reviewers: req.Reviewers}
		if _, _, err := a.client.PullRequests.RequestReviewers(ctx, a.owner, a.repo, number, reviewers); err != nil {
			a.logger.Warn("failed to request reviewers", "pr", number, "error", err.Error())
		}
	}
	if len(req.Labels) > 0 {
		if _, _, err := a.client.Issues.AddLabelsToIssue(ctx, a.owner, a.repo, number, req.Labels); err != nil {
			a.logger.Warn("failed to add labels", "pr", number, "error", err.Error())
		}
	}

	a.logger.Info("pull request created", "url", created.GetHTMLURL(), "number", number)
	return created.GetHTMLURL(), nil
}

// newSubmitBackoff returns a fresh policy per attempt sequence. BackOff
// implementations are stateful and must not be shared.
func newSubmitBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = submitMaxElapsed
	return bo
}

// isRetryableStatus reports whether a failed API call is worth retrying.
// Rate limits and server errors are transient; other client errors are not.
func isRetryableStatus(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		// No HTTP response means a transport-level failure.
		return true
	}
	code := resp.StatusCode
	if code == http.StatusTooManyRequests {
		return true
	}
	if code == http.StatusForbidden && resp.Rate.Remaining == 0 {
		// Secondary rate limiting reports 403 with the quota exhausted.
		return true
	}
	return code >= 500
}

// ParseRepoURL extracts the owner and repository name from a git remote URL.
// SSH (git@github.com:owner/repo.git), HTTPS and ssh:// forms are supported.
func ParseRepoURL(remote string) (owner, repo string, err error) {
	s := strings.TrimSpace(remote)
	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimSuffix(s, "/")

	var path string
	switch {
	case strings.Contains(s, "://"):
		// scheme://host/owner/repo
		rest := s[strings.Index(s, "://")+3:]
		if i := strings.Index(rest, "/"); i >= 0 {
			path = rest[i+1:]
		}
	case strings.Contains(s, "@") && strings.Contains(s, ":"):
		// user@host:owner/repo
		path = s[strings.Index(s, ":")+1:]
	default:
		path = s
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return "", "", errors.NewValidationError(
			fmt.Sprintf("cannot determine owner and repository from remote %q", remote),
		).WithField("remote").WithValue(remote)
	}
	owner = parts[len(parts)-2]
	repo = parts[len(parts)-1]
	if owner == "" || repo == "" {
		return "", "", errors.NewValidationError(
			fmt.Sprintf("cannot determine owner and repository from remote %q", remote),
		).WithField("remote").WithValue(remote)
	}
	return owner, repo, nil
}
