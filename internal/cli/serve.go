package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"covcheck/internal/server"
)

func newServeCommand(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the instance and connection API over HTTP",
		Long: `Serve a JSON API for form-style front ends:

  GET  /v1/instances                    instance options
  GET  /v1/instances/check?url=URL      validate a configured instance
  POST /v1/connection/test              test {url, username, password}
  GET  /v1/views?instance=URL           view names of an instance`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" && app.Config != nil {
				listen = app.Config.Server.Listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mux := server.Routes(app.fieldHelper(), app.Instances, app.retriever(), app.logger())
			if err := server.New(listen, mux, app.logger()).Run(ctx); err != nil {
				app.Printer.Error(err.Error())
				return NewExitError(ExitFailure)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")

	return cmd
}
