// Package cli provides the command-line interface for the pulsemon MCP
// server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	pulsemonmcp "github.com/pulsemon/pulsemon-mcp"
)

// Build metadata injected through ldflags.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App wires the cobra command tree to its output streams.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
}

// New builds the root command and its subcommands.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "pulsemon-mcp",
		Short: "Analytics MCP server for monitoring platforms",
		Long: `pulsemon-mcp exposes alert correlation, anomaly detection, forecasting,
and health scoring over a monitoring platform's REST API as Model Context
Protocol tools.

Every analysis recomputes from a fresh fetch; nothing is cached between
calls except session-scoped baselines and analysis results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newServeCmd(),
		app.newToolsCmd(),
		app.newValidateCmd(),
	)

	return app
}

// WithOutput redirects command output, mainly for tests.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the command tree, stopping on SIGINT or SIGTERM.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the command tree with explicit arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pulsemon-mcp version %s\n", pulsemonmcp.Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}
