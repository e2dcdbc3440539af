package cmd

import (
	"fmt"
	"os"

	"github.com/capstanhq/capstan/internal/pipeline"
	"github.com/capstanhq/capstan/internal/pr"
	"github.com/capstanhq/capstan/internal/ticket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var solveCmd = &cobra.Command{
	Use:   "solve <ticket-file|issue-key>",
	Short: "Run the full ticket-to-pull-request pipeline",
	Long: `Solve runs every pipeline stage in order: generate an implementation plan
from the ticket, commit the plan to the branch, execute the plan step by
step through the reasoning delegate, remove the plan artifact, optionally
run a cleanup pass, push the branch with upstream tracking, and raise a
pull request.

The argument is a local ticket file, or a Jira issue key (PROJ-123) when
jira.base_url, jira.email and jira.token are configured. A fetched issue
is written to a local ticket file, removed from the branch with the plan
artifact, and moved to the review status once its pull request exists.

The run is autonomous by default: confirmation prompts are answered
affirmatively for the duration of the run and restored afterwards.

Examples:
  # Solve a ticket end to end
  capstan solve ticket.md

  # Solve a Jira issue
  capstan solve CAP-123

  # Keep going past failed steps and skip the PR
  capstan solve ticket.md --abort-policy continue_on_error --no-pr

  # Include a low-intensity cleanup pass before pushing
  capstan solve ticket.md --cleanup`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

var (
	solveCleanup     bool
	solveAutonomy    bool
	solveAbortPolicy string
	solveOnConflict  string
	solveBase        string
	solveDraft       bool
	solveNoPR        bool
	solveTimeout     int
)

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().BoolVar(&solveCleanup, "cleanup", false, "Run a low-intensity cleanup pass after the steps")
	solveCmd.Flags().BoolVar(&solveAutonomy, "autonomy", true, "Answer confirmation prompts automatically for the run")
	solveCmd.Flags().StringVar(&solveAbortPolicy, "abort-policy", "", "What to do when a step fails (abort_on_first_error, continue_on_error)")
	solveCmd.Flags().StringVar(&solveOnConflict, "on-conflict", "", "Artifact conflict strategy (overwrite, skip, prompt)")
	solveCmd.Flags().StringVar(&solveBase, "base", "", "PR base branch (default: auto-detect)")
	solveCmd.Flags().BoolVarP(&solveDraft, "draft", "d", false, "Create the PR as a draft")
	solveCmd.Flags().BoolVar(&solveNoPR, "no-pr", false, "Push but do not create a pull request")
	solveCmd.Flags().IntVar(&solveTimeout, "timeout", 0, "Per-delegate-call timeout in minutes (0 = use configured value)")
}

func runSolve(cmd *cobra.Command, args []string) error {
	// The oracle is built from configuration, so the timeout override has to
	// land before the dependency wiring reads it.
	if cmd.Flags().Changed("timeout") {
		viper.Set("delegate.timeout_minutes", solveTimeout)
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()

	resolver, err := d.resolver(solveOnConflict, cmd.Flags().Changed("on-conflict"))
	if err != nil {
		return err
	}
	policy, err := d.abortPolicy(solveAbortPolicy, cmd.Flags().Changed("abort-policy"))
	if err != nil {
		return err
	}

	autonomy := boolSetting(d.cfg.Execution.Autonomy, solveAutonomy, cmd.Flags().Changed("autonomy"))
	draft := boolSetting(d.cfg.PR.Draft, solveDraft, cmd.Flags().Changed("draft"))
	base := d.cfg.PR.Base
	if cmd.Flags().Changed("base") {
		base = solveBase
	}

	var submit pr.Submitter
	if !solveNoPR {
		submit, err = d.submitter(ctx)
		if err != nil {
			return err
		}
	}

	// An argument that looks like an issue key and is not a local file is
	// fetched from Jira and written to a local ticket file first.
	specPath := args[0]
	var (
		jiraKey    string
		jiraClient *ticket.JiraClient
	)
	if ticket.IsIssueKey(args[0]) {
		if _, statErr := os.Stat(args[0]); statErr != nil {
			jiraKey = args[0]
		}
	}
	if jiraKey != "" {
		jiraClient, err = ticket.NewJiraClient(d.cfg.Jira, d.logger)
		if err != nil {
			return err
		}
		d.notifier.Infof("Fetching %s from Jira", jiraKey)
		issue, err := jiraClient.Fetch(ctx, jiraKey)
		if err != nil {
			d.notifier.Failf("%v", err)
			return err
		}
		content, err := issue.Document()
		if err != nil {
			return err
		}
		specPath = ticket.FileName(jiraKey)
		if _, err := resolver.WriteFile(specPath, []byte(content)); err != nil {
			d.notifier.Failf("%v", err)
			return err
		}
		d.notifier.Successf("Ticket saved to %s", specPath)
	}

	opts := pipeline.Options{
		Autonomy:     autonomy,
		AbortPolicy:  policy,
		OnConflict:   resolver.Strategy(),
		WatchPlan:    d.cfg.Execution.WatchPlan,
		Cleanup:      solveCleanup || d.cfg.Cleanup.Enabled,
		CreatePR:     !solveNoPR,
		Draft:        draft,
		Base:         base,
		RemoveTicket: jiraKey != "",
	}

	p := pipeline.New(d.cfg, d.oracle, d.repo, d.gate, resolver, submit, d.logger, d.notifier)
	res, err := p.Solve(ctx, specPath, opts)

	// The ticket only moves to review once its pull request exists.
	if err == nil && jiraKey != "" && res != nil && res.PRURL != "" {
		if terr := jiraClient.TransitionToReview(ctx, jiraKey); terr != nil {
			d.notifier.Warnf("Could not move %s to review: %v", jiraKey, terr)
		} else {
			d.notifier.Successf("%s moved to review", jiraKey)
		}
	}

	if res != nil && res.StepCount > 0 {
		d.notifier.Stage("Summary")
		fmt.Fprint(cmd.OutOrStdout(), pipeline.Summary(res))
	}
	return err
}
