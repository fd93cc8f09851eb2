// Package commands implements the CLI commands for the pac package builder.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/pac/internal/app"
	"go.trai.ch/pac/internal/build"
	"go.trai.ch/pac/internal/core/domain"
)

// CLI represents the command line interface for pac.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	opts    app.Options
	json    bool
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, dir string, opts app.Options) error
	Fetch(ctx context.Context, dir string, opts app.Options) ([]*domain.Package, error)
	Publish(ctx context.Context, dir string, opts app.PublishOptions) error
	ListCache(ctx context.Context, opts app.Options) ([]domain.ArtifactRecord, error)
	Exists(ctx context.Context, dep domain.Dependency, tier string, opts app.Options) (bool, error)
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "pac",
		Short:         "Build packages and their dependency trees through a chain of artifact caches",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.opts.ConfigPath, "config", "c", "", "Path to the global configuration (default $PAC_CONFIG or ~/.pac/config.yaml)")
	flags.IntVarP(&c.opts.Parallelism, "parallelism", "j", 0, "Number of concurrent fetches and builds (default from config)")
	flags.StringVar(&c.opts.MetricsFile, "metrics-file", "", "Write session metrics to this file in the Prometheus text format")
	flags.BoolVar(&c.json, "json", false, "Log in JSON")
	flags.BoolVarP(&c.opts.Progress, "progress", "p", false, "Show a live view of the package builds")

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.json {
			c.app.SetJSON(true)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newFetchCmd())
	rootCmd.AddCommand(c.newPublishCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// projectDir returns the first argument, or the working directory.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
