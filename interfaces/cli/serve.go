package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pulsemonmcp "github.com/pulsemon/pulsemon-mcp"
	"github.com/pulsemon/pulsemon-mcp/domain/metric"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/config"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/logging"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/mcp"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/platform"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/registry"
	"github.com/pulsemon/pulsemon-mcp/infrastructure/session"
	"github.com/pulsemon/pulsemon-mcp/pack/analytics"
)

// serveOptions holds options for the serve command.
type serveOptions struct {
	configPath string
	httpAddr   string
	readOnly   bool
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics tools over MCP",
		Long: `Serve the analytics tool surface over the Model Context Protocol.

By default the server speaks MCP over stdin/stdout, which is how MCP
clients launch it. Pass --http to serve over HTTP with SSE instead.

Configuration comes from a YAML or JSON file, overlaid by PULSEMON_*
environment variables. With no config file, the environment alone must
supply the portal and bearer token.

Examples:
  # Stdio transport, config from environment
  PULSEMON_PORTAL=acme PULSEMON_BEARER_TOKEN=... pulsemon-mcp serve

  # Stdio transport, config file
  pulsemon-mcp serve -c pulsemon.yaml

  # HTTP transport
  pulsemon-mcp serve -c pulsemon.yaml --http :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve over HTTP on this address instead of stdio")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Expose only read-only tools")

	return cmd
}

// loadConfig loads configuration from the given file, or from the
// environment when no file is named.
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path == "" {
		return loader.FromEnv()
	}
	return loader.LoadFile(path)
}

// serve wires the full server and blocks until the context is done.
func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.readOnly {
		cfg.ReadOnly = true
	}

	// Stdout carries the protocol in stdio mode; logs go to stderr.
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	client := platform.NewClient(platform.Config{
		BaseURL:     cfg.PortalURL(),
		BearerToken: cfg.BearerToken,
		Timeout:     cfg.HTTP.Timeout(),
		MaxRetries:  cfg.HTTP.MaxRetries,
	})
	sess := session.New()

	reg := registry.NewToolRegistry()
	p := analytics.New(analytics.PackConfig{
		Alerts:    client,
		Metrics:   metric.NewLoader(client),
		Baselines: sess.Baselines,
		Analyses:  sess.Analyses,
	})
	if err := p.RegisterAll(reg); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	srv := mcp.NewServer(mcp.ServerConfig{
		Name:         "pulsemon-mcp",
		Version:      pulsemonmcp.Version,
		Description:  p.Description,
		Instructions: "Analytics tools over a monitoring platform. Start with correlate_alerts or get_alert_statistics for an overview.",
		Registry:     reg,
		ReadOnly:     cfg.ReadOnly,
	})

	logging.Info().
		Add(logging.Component("cli")).
		Add(logging.Str("portal", cfg.Portal)).
		Add(logging.Operation("serve")).
		Msg("server starting")

	if opts.httpAddr != "" {
		return srv.ServeHTTP(ctx, opts.httpAddr)
	}
	return srv.ServeStdio(ctx)
}
