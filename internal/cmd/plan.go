package cmd

import (
	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/plan"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <ticket-file>",
	Short: "Generate an implementation plan from a ticket",
	Long: `Plan reads the ticket file, asks the reasoning delegate for an ordered
implementation plan, and saves it next to the ticket with the
_implementation_plan.md suffix.

If the plan file already exists, the configured conflict strategy decides
whether it is overwritten.

Examples:
  # Generate and save a plan
  capstan plan ticket.md

  # Regenerate, replacing any existing plan, and render it
  capstan plan ticket.md --on-conflict overwrite --show`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var (
	planOnConflict string
	planShow       bool
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planOnConflict, "on-conflict", "", "Artifact conflict strategy (overwrite, skip, prompt)")
	planCmd.Flags().BoolVar(&planShow, "show", false, "Render the generated plan to the terminal")
}

func runPlan(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	resolver, err := d.resolver(planOnConflict, cmd.Flags().Changed("on-conflict"))
	if err != nil {
		return err
	}

	spec, err := plan.LoadSpecification(args[0])
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	generator := plan.NewGenerator(d.oracle, resolver, d.logger.WithStage("plan"))
	planPath, planText, resolution, err := generator.Generate(cmd.Context(), spec)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	if resolution == artifact.ResolutionSkipped {
		d.notifier.Skipf("Kept existing plan at %s", planPath)
	} else {
		d.notifier.Successf("Implementation plan saved to %s", planPath)
	}

	if planShow {
		d.notifier.Markdown(planText)
	}
	return nil
}
