// Package ticket fetches specification content from Jira so a solve run can
// start from an issue key instead of a local ticket file. The fetched issue
// is written to a local ticket file and the rest of the pipeline treats it
// like any other specification.
package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/errors"
	"github.com/capstanhq/capstan/internal/logging"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*-[0-9]+$`)

// IsIssueKey reports whether s looks like a Jira issue key (PROJ-123).
func IsIssueKey(s string) bool {
	return issueKeyPattern.MatchString(s)
}

// FileName returns the local ticket file a fetched issue is written to. The
// implementation plan path derives from it like from any other ticket file.
func FileName(key string) string {
	return fmt.Sprintf("jira_issue_%s.txt", key)
}

// Comment is one issue comment, trimmed to what the planner needs.
type Comment struct {
	Author      string `json:"author"`
	LastUpdated string `json:"last_updated"`
	Comment     string `json:"comment"`
}

// Issue is the ticket content handed to the plan generator.
type Issue struct {
	Key         string    `json:"-"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Document renders the issue as the ticket file content.
func (i *Issue) Document() (string, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode ticket content")
	}
	return string(data), nil
}

// JiraClient fetches issues and moves them through the workflow.
type JiraClient struct {
	api          *jira.Client
	reviewStatus string
	logger       *logging.Logger
}

// NewJiraClient validates the connection settings and builds the client.
// All three of base URL, email and API token are required.
func NewJiraClient(cfg config.JiraConfig, logger *logging.Logger) (*JiraClient, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if cfg.BaseURL == "" || cfg.Email == "" || cfg.Token == "" {
		return nil, errors.NewValidationError(
			"jira.base_url, jira.email and jira.token must all be configured to solve an issue key",
		).WithField("jira")
	}

	transport := jira.BasicAuthTransport{Username: cfg.Email, Password: cfg.Token}
	api, err := jira.NewClient(transport.Client(), cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build jira client")
	}

	reviewStatus := cfg.ReviewStatus
	if reviewStatus == "" {
		reviewStatus = "In review"
	}
	return &JiraClient{api: api, reviewStatus: reviewStatus, logger: logger}, nil
}

// Fetch retrieves the issue and trims it to its planning content: summary,
// description and comments.
func (c *JiraClient) Fetch(ctx context.Context, key string) (*Issue, error) {
	raw, _, err := c.api.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not retrieve issue %s", key)
	}
	if raw.Fields == nil {
		return nil, errors.NewNotFoundError("jira issue", key)
	}

	issue := &Issue{
		Key:         raw.Key,
		Summary:     raw.Fields.Summary,
		Description: raw.Fields.Description,
	}
	if raw.Fields.Comments != nil {
		for _, cm := range raw.Fields.Comments.Comments {
			issue.Comments = append(issue.Comments, Comment{
				Author:      cm.Author.DisplayName,
				LastUpdated: cm.Updated,
				Comment:     cm.Body,
			})
		}
	}

	c.logger.Info("jira issue fetched", "key", key, "comments", len(issue.Comments))
	return issue, nil
}

// TransitionToReview moves the issue to the configured review status. The
// transition must be available from the issue's current status.
func (c *JiraClient) TransitionToReview(ctx context.Context, key string) error {
	transitions, _, err := c.api.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "could not list transitions for %s", key)
	}

	for _, tr := range transitions {
		if !strings.EqualFold(tr.Name, c.reviewStatus) {
			continue
		}
		if _, err := c.api.Issue.DoTransitionWithContext(ctx, key, tr.ID); err != nil {
			return errors.Wrapf(err, "could not transition %s to %q", key, c.reviewStatus)
		}
		c.logger.Info("jira issue transitioned", "key", key, "status", c.reviewStatus)
		return nil
	}
	return fmt.Errorf("issue %s has no %q transition from its current status", key, c.reviewStatus)
}
