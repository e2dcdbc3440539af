package cmd

import (
	"fmt"
	"os"

	"github.com/capstanhq/capstan/internal/notify"
	"github.com/capstanhq/capstan/internal/plan"
	"github.com/capstanhq/capstan/internal/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <plan-file>",
	Short: "Execute an existing implementation plan step by step",
	Long: `Run asks the reasoning delegate how many steps the plan contains, then
executes each step in order. Each step instruction carries the step's
position and its literal description from the plan.

A step count that does not parse as a positive integer aborts the run
before any step executes. Execution itself always runs under the
auto-confirm scope; prompts raised mid-step are answered affirmatively
and the previous confirmation behavior is restored afterwards.

Examples:
  # Execute a previously generated plan
  capstan run ticket_implementation_plan.md

  # Record failures and keep going
  capstan run ticket_implementation_plan.md --abort-policy continue_on_error`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var runAbortPolicy string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runAbortPolicy, "abort-policy", "", "What to do when a step fails (abort_on_first_error, continue_on_error)")
}

func runRun(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	planPath := args[0]

	policy, err := d.abortPolicy(runAbortPolicy, cmd.Flags().Changed("abort-policy"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("failed to read plan file: %w", err)
	}
	planText := string(data)

	extractor := plan.NewStepExtractor(d.oracle, d.logger.WithStage("steps"))
	count, err := extractor.Count(ctx, planText)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	implPlan := plan.NewImplementationPlan(planPath, planText, count)
	if implPlan.Diverged() {
		d.notifier.Warnf("Delegate counted %d steps but the plan lists %d numbered entries", count, implPlan.EntryCount)
	}
	d.notifier.Infof("Executing %d steps", count)

	sess := session.New(implPlan, d.oracle, d.gate, session.Options{
		AbortPolicy: policy,
		Logger:      d.logger.WithStage("execute"),
		Notifier:    d.notifier,
	})
	runErr := sess.Run(ctx)

	printOutcomes(d.notifier, sess)
	if runErr != nil {
		d.notifier.Failf("Execution aborted with %d steps unexecuted", sess.Remaining())
		return runErr
	}
	d.notifier.Successf("Executed %d steps (%d succeeded, %d failed)", count, sess.SucceededCount(), sess.FailedCount())
	return nil
}

// printOutcomes renders the per-step outcome table.
func printOutcomes(notifier *notify.Notifier, sess *session.Session) {
	for _, o := range sess.Outcomes() {
		if o.Succeeded {
			notifier.Plainf("  %2d  ok    %s", o.Index, o.Message)
		} else {
			notifier.Plainf("  %2d  FAIL  [%s] %s", o.Index, o.Kind, o.Message)
		}
	}
}
