package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covcheck/internal/issues"
	"covcheck/internal/report"
)

func newCheckIssuesCommand(app *App) *cobra.Command {
	var (
		req        issues.CheckRequest
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "check-issues",
		Short: "Count issues in a Coverity view and gate the build on them",
		Long: `Connect to a configured Coverity instance and count the issues the
project shows in the given view.

When issues are found the command fails with exit code 2, unless
--return-issue-count is set: then the finding is logged as an error and
the command succeeds, printing the count.

Example:
  covcheck check-issues --instance https://coverity.example.com \
    --project my-project --view "Outstanding Issues"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			factory := &issues.CoverityStepFactory{
				Instances: app.Instances,
				Connector: app.Connector,
				Logger:    app.logger(),
			}
			checker := issues.NewChecker(factory, app.logger())
			checker.SetProgressCallback(app.Printer.StepStart)

			count, err := checker.Check(cmd.Context(), req)
			run := checker.LastRun()
			app.Printer.WorkflowSummary(run.Records)

			if reportPath != "" {
				if werr := report.Write(reportPath, report.FromCheck(req, count, err, run, app.now())); werr != nil {
					app.logger().Error("writing report", zap.String("path", reportPath), zap.Error(werr))
					app.Printer.Error(werr.Error())
					return NewExitError(ExitFailure)
				}
			}

			var failure *issues.CheckFailure
			switch {
			case errors.As(err, &failure):
				app.Printer.Error(failure.Message)
				return NewExitError(ExitIssuesFound)
			case err != nil:
				app.Printer.Error(err.Error())
				return NewExitError(ExitFailure)
			}

			app.Printer.IssueCount(count)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.InstanceURL, "instance", "", "URL of the configured Coverity instance")
	cmd.Flags().StringVar(&req.ProjectName, "project", "", "Coverity project name")
	cmd.Flags().StringVar(&req.ViewName, "view", "", "Coverity view name")
	cmd.Flags().BoolVar(&req.ReturnIssueCount, "return-issue-count", false, "report found issues without failing")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML report to this path")
	cmd.MarkFlagRequired("instance")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("view")

	return cmd
}
