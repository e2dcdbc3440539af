package cmd

import (
	"github.com/capstanhq/capstan/internal/artifact"
	"github.com/capstanhq/capstan/internal/cleanup"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run a cleanup pass over the code changed on this branch",
	Long: `Cleanup asks the reasoning delegate to tidy the code files modified on the
current branch. The intensity selects how aggressive the pass is:

  low     documentation comments and formatting fixes
  medium  style consistency, redundant comments, edge cases
  high    thorough refactoring while preserving behavior

The pass runs under the auto-confirm scope, so it never blocks on a prompt.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var (
	cleanupIntensity string
	cleanupReport    string
)

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVarP(&cleanupIntensity, "intensity", "i", "", "Cleanup intensity (low, medium, high)")
	cleanupCmd.Flags().StringVar(&cleanupReport, "report", "", "Write a cleanup report to this path")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if err := d.repo.Check(ctx); err != nil {
		return err
	}

	raw := d.cfg.Cleanup.Intensity
	if cmd.Flags().Changed("intensity") {
		raw = cleanupIntensity
	}
	intensity, err := cleanup.ParseIntensity(raw)
	if err != nil {
		return err
	}

	stage := cleanup.NewStage(d.oracle, d.repo, d.gate, cleanup.Options{
		Logger:   d.logger.WithStage("cleanup"),
		Notifier: d.notifier,
	})
	res, err := stage.Run(ctx, intensity)
	if err != nil {
		d.notifier.Failf("%v", err)
		return err
	}

	if cleanupReport != "" {
		resolver, err := d.resolver("", false)
		if err != nil {
			return err
		}
		resolution, err := stage.WriteReport(res, resolver, cleanupReport)
		if err != nil {
			d.notifier.Warnf("Could not write cleanup report: %v", err)
		} else if resolution == artifact.ResolutionWritten {
			d.notifier.Infof("Cleanup report saved to %s", cleanupReport)
		}
	}
	return nil
}
