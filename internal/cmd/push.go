package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the current branch to origin with upstream tracking",
	Long: `Push detects the currently checked-out branch and pushes it to origin,
establishing the branch as the tracked upstream. Tracking is requested on
every push; git treats it as a no-op when already configured.

A detached HEAD is reported as such, not as a generic failure, and no push
is attempted. Push failures are classified (authentication, network,
missing remote, other) with a distinct message for each.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if err := d.repo.Check(ctx); err != nil {
		return err
	}

	branch, err := d.repo.DetectBranch(ctx)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	res := d.repo.Push(ctx, branch)
	if !res.Succeeded {
		d.notifier.Failf("%s", res.UserMessage())
		d.logger.Error("push failed", "branch", branch, "kind", string(res.Kind), "output", res.Message)
		return fmt.Errorf("push failed (%s)", res.Kind)
	}

	d.notifier.Successf("Pushed %s to origin with upstream tracking", branch)
	return nil
}
