package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newViewsCommand(app *App) *cobra.Command {
	var (
		instanceURL string
		refresh     bool
	)

	cmd := &cobra.Command{
		Use:   "views",
		Short: "List the views of a configured Coverity instance",
		Long: `List the view names defined on a configured Coverity instance.

Listing is best effort: when the server cannot be reached the last cached
list is shown, or nothing. Lists are cached on disk unless caching is
disabled in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, ok := app.Instances.Find(instanceURL)
			if !ok {
				app.Printer.Error(fmt.Sprintf("There are no Coverity instances configured with the name %s", instanceURL))
				return NewExitError(ExitFailure)
			}
			app.Printer.List(app.retriever().Views(cmd.Context(), inst, refresh), "no views")
			return nil
		},
	}

	cmd.Flags().StringVar(&instanceURL, "instance", "", "URL of the configured Coverity instance")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the view cache")
	cmd.MarkFlagRequired("instance")

	return cmd
}
