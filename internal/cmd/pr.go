package cmd

import (
	"fmt"

	"github.com/capstanhq/capstan/internal/pipeline"
	"github.com/spf13/cobra"
)

var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Create a pull request for the current branch",
	Long: `PR pushes the current branch and raises a pull request for it. The title
and body are generated by the reasoning delegate from the branch name,
commit history, and changed files. When the repository carries a pull
request template it is discovered and applied; multiple templates inside a
PULL_REQUEST_TEMPLATE directory are put to the delegate to choose from.

Template problems never block the PR: discovery or selection failures fall
back to raising the pull request without a template.

Examples:
  # Push and raise a PR onto the default branch
  capstan pr

  # Draft PR onto a release branch with an explicit title
  capstan pr --base release/2.0 --draft --title "feat: widget support"`,
	Args: cobra.NoArgs,
	RunE: runPR,
}

var (
	prBase       string
	prDraft      bool
	prTitle      string
	prNoTemplate bool
	prNoPush     bool
)

func init() {
	rootCmd.AddCommand(prCmd)
	prCmd.Flags().StringVar(&prBase, "base", "", "PR base branch (default: auto-detect)")
	prCmd.Flags().BoolVarP(&prDraft, "draft", "d", false, "Create as a draft PR")
	prCmd.Flags().StringVarP(&prTitle, "title", "t", "", "Override the generated PR title")
	prCmd.Flags().BoolVar(&prNoTemplate, "no-template", false, "Skip template discovery")
	prCmd.Flags().BoolVar(&prNoPush, "no-push", false, "Don't push the branch before creating the PR")
}

func runPR(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if err := d.repo.Check(ctx); err != nil {
		return err
	}

	draft := d.cfg.PR.Draft
	if cmd.Flags().Changed("draft") {
		draft = prDraft
	}
	base := d.cfg.PR.Base
	if cmd.Flags().Changed("base") {
		base = prBase
	}
	submit, err := d.submitter(ctx)
	if err != nil {
		return err
	}

	// Branch state is detected fresh, never reused from a previous stage.
	branch, err := d.repo.DetectBranch(ctx)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	if !prNoPush {
		res := d.repo.Push(ctx, branch)
		if !res.Succeeded {
			d.notifier.Failf("%s", res.UserMessage())
			return fmt.Errorf("push failed (%s)", res.Kind)
		}
		d.notifier.Successf("Pushed %s to origin with upstream tracking", branch)
	}

	p := pipeline.New(d.cfg, d.oracle, d.repo, d.gate, nil, submit, d.logger, d.notifier)
	opts := pipeline.Options{
		Draft:      draft,
		Base:       base,
		Title:      prTitle,
		NoTemplate: prNoTemplate,
	}
	url, err := p.RaisePR(ctx, branch, opts, d.logger)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	d.notifier.Successf("Pull request created: %s", url)
	return nil
}
