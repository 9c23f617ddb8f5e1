package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"covcheck/internal/connection"
	"covcheck/internal/coverity"
)

func newValidateCommand(app *App) *cobra.Command {
	var (
		instanceURL   string
		address       string
		username      string
		password      string
		ignoreMessage bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Test the connection to a Coverity instance",
		Long: `Test connectivity and credentials of a Coverity Connect server.

With --instance the configured instance of that name is tested with its
configured credentials. With --url an arbitrary address is tested with the
given credentials.

Example:
  covcheck validate --instance https://coverity.example.com
  covcheck validate --url https://coverity.example.com --username ci --password secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			helper := app.fieldHelper()

			var out connection.Outcome
			switch {
			case address != "":
				var creds *coverity.Credentials
				if username != "" || password != "" {
					creds = &coverity.Credentials{Username: username, Password: password}
				}
				out = helper.TestConnectionTo(cmd.Context(), address, creds)
			case ignoreMessage:
				out = helper.CheckInstanceURLIgnoreMessage(cmd.Context(), instanceURL)
			default:
				out = helper.CheckInstanceURL(cmd.Context(), instanceURL)
			}

			if out.IsOK() && out.Message == "" {
				out.Message = "Connection to " + instanceURL + " is valid"
			}
			app.Printer.Outcome(out)
			if out.IsError() {
				return NewExitError(ExitFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&instanceURL, "instance", "", "URL of a configured Coverity instance")
	cmd.Flags().StringVar(&address, "url", "", "address of an arbitrary Coverity server")
	cmd.Flags().StringVar(&username, "username", "", "username for --url")
	cmd.Flags().StringVar(&password, "password", "", "password for --url")
	cmd.Flags().BoolVar(&ignoreMessage, "ignore-message", false, "report only whether the instance is valid")
	cmd.MarkFlagsMutuallyExclusive("instance", "url")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if address == "" && (username != "" || password != "") {
			return errors.New("--username and --password require --url")
		}
		return nil
	}

	return cmd
}

func newInstancesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List configured Coverity instances",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Printer.Options(app.fieldHelper().InstanceItems())
		},
	}
}
