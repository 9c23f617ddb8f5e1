// Package cli implements the covcheck command-line interface using Cobra.
//
// Commands are built by [NewRootCommand] around an [App], which carries every
// collaborator a command needs. Tests build an App with mocks and drive the
// commands through Cobra without touching the network or calling os.Exit.
//
// Key types:
//   - [App] holds configuration, logger, printer and the Coverity connector
//   - [ExitError] carries a process exit code out of a command
//   - [ExecuteResult] is the outcome of [RunWithConfig]
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covcheck/internal/config"
	"covcheck/internal/connection"
	"covcheck/internal/coverity"
	"covcheck/internal/logging"
	"covcheck/internal/output"
	"covcheck/internal/views"
)

// App holds the dependencies shared by all commands.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Printer   *output.Printer
	Connector coverity.Connector

	// Instances is the configuration snapshot commands resolve names against.
	Instances coverity.Instances

	// ViewCache is nil when caching is disabled.
	ViewCache *views.Cache

	// Now is the clock used for reports.
	Now func() time.Time
}

// NewApp wires the production dependencies for cfg.
func NewApp(cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Printer:   output.NewPrinter(),
		Connector: coverity.NewClient(coverity.WithTimeout(cfg.Connection.Timeout), coverity.WithLogger(logger)),
		Instances: cfg.Snapshot(),
		Now:       time.Now,
	}
	app.Printer.SetQuiet(cfg.Output.Quiet)

	if cfg.Cache.Enabled {
		dir, err := cfg.CacheDir()
		if err != nil {
			logger.Warn("view cache disabled", zap.Error(err))
		} else {
			app.ViewCache = views.NewCache(dir)
		}
	}
	return app, nil
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) validator() *connection.Validator {
	opts := []connection.ValidatorOption{connection.WithLogger(a.logger())}
	if a.Config != nil {
		opts = append(opts, connection.WithTimeout(a.Config.Connection.Timeout))
	}
	return connection.NewValidator(a.Connector, opts...)
}

func (a *App) fieldHelper() *connection.FieldHelper {
	return connection.NewFieldHelper(a.Instances, a.validator())
}

func (a *App) retriever() *views.Retriever {
	opts := []views.Option{views.WithLogger(a.logger())}
	if a.ViewCache != nil {
		ttl := views.DefaultTTL
		if a.Config != nil {
			ttl = a.Config.Cache.TTL
		}
		opts = append(opts, views.WithCache(a.ViewCache, ttl))
	}
	return views.NewRetriever(a.Connector, opts...)
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "covcheck",
		Short: "Gate CI builds on Coverity Connect issue counts",
		Long: `covcheck connects to a configured Coverity Connect instance, counts the
issues a project shows in a view and fails the build when issues are found.

Instances are configured in covcheck.yaml or the user config directory:

  instances:
    - url: https://coverity.example.com
      username: ci
      password_env: COVERITY_PASSWORD`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newCheckIssuesCommand(app),
		newValidateCommand(app),
		newInstancesCommand(app),
		newViewsCommand(app),
		newServeCommand(app),
		newReportCommand(app),
	)

	return rootCmd
}

// ExecuteResult is the outcome of running the CLI.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// RunWithConfig builds the production [App] for cfg and runs the CLI with
// args. It never calls os.Exit.
func RunWithConfig(cfg *config.Config, args []string) ExecuteResult {
	app, err := NewApp(cfg)
	if err != nil {
		return ExecuteResult{ExitCode: ExitFailure, Err: err}
	}
	defer app.Logger.Sync()

	return run(NewRootCommand(app), args)
}

func run(cmd *cobra.Command, args []string) ExecuteResult {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		return ExecuteResult{ExitCode: ExitFailure, Err: err}
	}
	return ExecuteResult{ExitCode: ExitSuccess}
}

// Execute loads configuration, runs the CLI with the process arguments and
// exits with the resulting code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitFailure)
	}

	result := RunWithConfig(cfg, os.Args[1:])
	if result.Err != nil {
		if _, ok := IsExitError(result.Err); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", result.Err)
		}
	}
	os.Exit(result.ExitCode)
}
