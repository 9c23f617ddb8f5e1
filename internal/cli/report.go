package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"covcheck/internal/report"
)

func newReportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report <path>",
		Short: "Show a report written by check-issues --report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Read(args[0])
			if err != nil {
				app.Printer.Error(err.Error())
				return NewExitError(ExitFailure)
			}

			app.Printer.Info(fmt.Sprintf("Run %s at %s", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
			app.Printer.Info(fmt.Sprintf("%s / %s / %s", r.Instance, r.Project, r.View))
			app.Printer.WorkflowSummary(r.Steps)
			app.Printer.Info(fmt.Sprintf("Verdict: %s (%d issues)", r.Verdict, r.IssueCount))
			if r.Error != "" {
				app.Printer.Error(r.Error)
			}
			return nil
		},
	}
}
